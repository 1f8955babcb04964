package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/risk"
	"swingtrack/internal/services"
	"swingtrack/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	issueInviteFn      func(adminID uint, email, name string, ttlMinutes int) (*models.Invite, *services.LinkDelivery, error)
	acceptInviteFn     func(token, name, userAgent string) (*services.AuthResult, error)
	requestLoginLinkFn func(email string) (*services.LinkDelivery, error)
	completeLoginFn    func(token, userAgent string) (*services.AuthResult, error)
}

func (m *mockAuthService) IssueInvite(adminID uint, email, name string, ttlMinutes int) (*models.Invite, *services.LinkDelivery, error) {
	if m.issueInviteFn != nil {
		return m.issueInviteFn(adminID, email, name, ttlMinutes)
	}
	return &models.Invite{}, &services.LinkDelivery{Mock: true}, nil
}

func (m *mockAuthService) AcceptInvite(token, name, userAgent string) (*services.AuthResult, error) {
	if m.acceptInviteFn != nil {
		return m.acceptInviteFn(token, name, userAgent)
	}
	return &services.AuthResult{User: &models.User{}, RefreshToken: "rt"}, nil
}

func (m *mockAuthService) RequestLoginLink(email string) (*services.LinkDelivery, error) {
	if m.requestLoginLinkFn != nil {
		return m.requestLoginLinkFn(email)
	}
	return &services.LinkDelivery{Mock: true}, nil
}

func (m *mockAuthService) CompleteLogin(token, userAgent string) (*services.AuthResult, error) {
	if m.completeLoginFn != nil {
		return m.completeLoginFn(token, userAgent)
	}
	return &services.AuthResult{User: &models.User{}, RefreshToken: "rt"}, nil
}

func (m *mockAuthService) ListInvites(page pagination.PageRequest) (*pagination.PageResponse[models.Invite], error) {
	resp := pagination.NewPageResponse([]models.Invite{}, 1, 50, 0)
	return &resp, nil
}

func (m *mockAuthService) SweepExpiredInvites() (int64, error) { return 0, nil }

type mockTradeService struct {
	addFn    func(userID uint, input services.TradeInput) (*models.Trade, []risk.Advisory, error)
	closeFn  func(userID, tradeID uint, input services.CloseInput) (*models.Trade, error)
	lookupFn func(userID uint, query string) ([]models.Trade, error)
}

func (m *mockTradeService) Add(userID uint, input services.TradeInput) (*models.Trade, []risk.Advisory, error) {
	if m.addFn != nil {
		return m.addFn(userID, input)
	}
	return &models.Trade{}, nil, nil
}

func (m *mockTradeService) List(userID uint, status models.TradeStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	resp := pagination.NewPageResponse([]models.Trade{}, 1, 50, 0)
	return &resp, nil
}

func (m *mockTradeService) GetByID(userID, tradeID uint) (*models.Trade, error) {
	return &models.Trade{}, nil
}

func (m *mockTradeService) Update(userID, tradeID uint, update services.TradeUpdate) (*models.Trade, error) {
	return &models.Trade{}, nil
}

func (m *mockTradeService) Close(userID, tradeID uint, input services.CloseInput) (*models.Trade, error) {
	if m.closeFn != nil {
		return m.closeFn(userID, tradeID, input)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) Lookup(userID uint, query string) ([]models.Trade, error) {
	if m.lookupFn != nil {
		return m.lookupFn(userID, query)
	}
	return []models.Trade{}, nil
}

func (m *mockTradeService) Stats(userID uint) (*risk.Stats, error) { return &risk.Stats{}, nil }

func (m *mockTradeService) Capital(userID uint) (*services.CapitalSummary, error) {
	return &services.CapitalSummary{}, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func responseErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseJSON(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
