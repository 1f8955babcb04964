package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTradeFlow_LogCloseAndStats(t *testing.T) {
	app := setupApp(t)
	adminToken := app.bootAdmin(t)
	token := app.joinViaInvite(t, adminToken, "trader@test.com")

	// Step 1: log a buy well above the 1.5% risk rule so an advisory
	// comes back, but the save goes through regardless.
	rec := app.request("POST", "/api/v1/trades",
		`{"symbol":"jiofin","qty":200,"buy_price":"500","sl1":"450","capital":"100000"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	trade := result["trade"].(map[string]interface{})
	tradeID := trade["id"].(float64)
	if trade["symbol"] != "JIOFIN" {
		t.Errorf("symbol = %v, want normalized JIOFIN", trade["symbol"])
	}
	if advisories := result["advisories"].([]interface{}); len(advisories) < 2 {
		t.Errorf("expected risk warning plus capital info, got %v", advisories)
	}

	// Step 2: capital summary reflects the allocation.
	rec = app.request("GET", "/api/v1/insights/capital", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("capital failed: %d %s", rec.Code, rec.Body.String())
	}
	capital := parseJSON(t, rec)["capital"].(map[string]interface{})
	if capital["open_allocation"] != "100000" {
		t.Errorf("open_allocation = %v", capital["open_allocation"])
	}
	if capital["available"] != "400000" {
		t.Errorf("available = %v", capital["available"])
	}

	// Step 3: tighten the stop while the trade is open.
	rec = app.request("PATCH", fmt.Sprintf("/api/v1/trades/%.0f", tradeID),
		`{"sl1":"470"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}

	// Step 4: close at a profit. 200 * (510-500) = 2000 gross, fees
	// 0.03% of both notionals = 60.60, net 1939.40.
	rec = app.request("POST", fmt.Sprintf("/api/v1/trades/%.0f/close", tradeID),
		`{"sell_price":"510","review_comment":"Good trade"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("close failed: %d %s", rec.Code, rec.Body.String())
	}
	closed := parseJSON(t, rec)["trade"].(map[string]interface{})
	if closed["status"] != "closed" {
		t.Errorf("status = %v", closed["status"])
	}
	if closed["fees_abs"] != "60.6" {
		t.Errorf("fees_abs = %v, want 60.6", closed["fees_abs"])
	}
	if closed["pnl_abs"] != "1939.4" {
		t.Errorf("pnl_abs = %v, want 1939.4", closed["pnl_abs"])
	}

	// Step 5: a second closure is rejected and the stored figures stay.
	rec = app.request("POST", fmt.Sprintf("/api/v1/trades/%.0f/close", tradeID),
		`{"sell_price":"999"}`, token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second close: %d, want 409", rec.Code)
	}
	rec = app.request("GET", fmt.Sprintf("/api/v1/trades/%.0f", tradeID), "", token)
	reloaded := parseJSON(t, rec)["trade"].(map[string]interface{})
	if reloaded["sell_price"] != "510" {
		t.Errorf("sell_price = %v after rejected reclose", reloaded["sell_price"])
	}

	// Step 6: stats count the single closed winner.
	rec = app.request("GET", "/api/v1/insights/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats failed: %d %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)["stats"].(map[string]interface{})
	if stats["wins"].(float64) != 1 {
		t.Errorf("wins = %v", stats["wins"])
	}
	if stats["win_rate_pct"] != "100" {
		t.Errorf("win_rate_pct = %v", stats["win_rate_pct"])
	}
}

func TestTradeFlow_Ownership(t *testing.T) {
	app := setupApp(t)
	adminToken := app.bootAdmin(t)
	alice := app.joinViaInvite(t, adminToken, "alice@test.com")
	bob := app.joinViaInvite(t, adminToken, "bob@test.com")

	rec := app.request("POST", "/api/v1/trades",
		`{"symbol":"HDFC","qty":5,"buy_price":"1500"}`, alice)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	tradeID := parseJSON(t, rec)["trade"].(map[string]interface{})["id"].(float64)

	// Bob cannot see, edit, or close Alice's trade.
	rec = app.request("GET", fmt.Sprintf("/api/v1/trades/%.0f", tradeID), "", bob)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get: %d, want 404", rec.Code)
	}
	rec = app.request("POST", fmt.Sprintf("/api/v1/trades/%.0f/close", tradeID),
		`{"sell_price":"1600"}`, bob)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user close: %d, want 404", rec.Code)
	}

	// Bob's trade list stays empty.
	rec = app.request("GET", "/api/v1/trades?status=open", "", bob)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("bob sees %v trades", total)
	}
}

func TestMissedFlow(t *testing.T) {
	app := setupApp(t)
	adminToken := app.bootAdmin(t)
	token := app.joinViaInvite(t, adminToken, "trader@test.com")

	rec := app.request("POST", "/api/v1/missed",
		`{"symbol":"zomato","reason_missed":"hesitated","lesson":"trust the setup"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	missedID := parseJSON(t, rec)["missed"].(map[string]interface{})["id"].(float64)

	rec = app.request("PUT", fmt.Sprintf("/api/v1/missed/%.0f/resolve", missedID),
		`{"resolved":true}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/missed?active=true", "", token)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("active entries = %v, want 0", total)
	}
}

func TestBrokerStub(t *testing.T) {
	app := setupApp(t)
	adminToken := app.bootAdmin(t)
	token := app.joinViaInvite(t, adminToken, "trader@test.com")

	rec := app.request("GET", "/api/v1/broker/status", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status failed: %d", rec.Code)
	}
	if parseJSON(t, rec)["configured"] != false {
		t.Error("broker should be unconfigured in tests")
	}

	rec = app.request("POST", "/api/v1/broker/orders",
		`{"symbol":"HDFC","qty":5,"side":"BUY"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("order failed: %d %s", rec.Code, rec.Body.String())
	}
	order := parseJSON(t, rec)["order"].(map[string]interface{})
	if order["mock"] != true || order["order_type"] != "MARKET" {
		t.Errorf("unexpected order: %v", order)
	}
}
