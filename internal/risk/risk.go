// Package risk implements the risk and ledger computation engine: pure
// functions over persisted trade data with no hidden state. All money
// arithmetic uses decimals so P&L and fee figures are deterministic and
// auditable.
package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"swingtrack/internal/models"
)

// Advisory levels. Advisories never block the underlying operation.
const (
	LevelWarn = "warn"
	LevelInfo = "info"
)

// Advisory is a non-blocking message attached to a trade evaluation.
type Advisory struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

var hundred = decimal.NewFromInt(100)

// StopBasis picks the stop-loss reference for risk computation: SL1 if
// present, else SL2, else zero (risk cannot be computed without a stop).
func StopBasis(sl1, sl2 *decimal.Decimal) decimal.Decimal {
	if sl1 != nil && sl1.IsPositive() {
		return *sl1
	}
	if sl2 != nil && sl2.IsPositive() {
		return *sl2
	}
	return decimal.Zero
}

// Pct computes the risk percentage of a position against the capital
// pool: max(0, buy-stop) * qty / pool * 100. Degenerate inputs yield
// zero rather than an error.
func Pct(qty int, buy, stop, pool decimal.Decimal) decimal.Decimal {
	if qty <= 0 || !buy.IsPositive() || !stop.IsPositive() || !pool.IsPositive() {
		return decimal.Zero
	}
	lossPerShare := buy.Sub(stop)
	if lossPerShare.IsNegative() {
		lossPerShare = decimal.Zero
	}
	return lossPerShare.Mul(decimal.NewFromInt(int64(qty))).Div(pool).Mul(hundred)
}

// Nudges evaluates a trade against the user's risk settings and returns
// zero or more advisories: a warning when the computed risk exceeds the
// per-trade limit, an informational note on remaining deployable
// capital, and a warning when the open-trade limit is reached.
// openCapital is the capital already allocated to the user's open
// trades excluding this one; openCount counts currently open trades.
func Nudges(trade *models.Trade, settings *models.UserSettings, openCapital decimal.Decimal, openCount int) []Advisory {
	pool := settings.CapitalPool
	var alerts []Advisory

	stop := StopBasis(trade.SL1, trade.SL2)
	rp := Pct(trade.Qty, trade.BuyPrice, stop, pool)
	if rp.GreaterThan(settings.MaxRiskPerTradePct) {
		alerts = append(alerts, Advisory{
			Level:   LevelWarn,
			Message: fmt.Sprintf("Risk %s%% exceeds rule of %s%% per trade.", rp.StringFixed(2), settings.MaxRiskPerTradePct.StringFixed(1)),
		})
	}

	tradeCapital := decimal.Zero
	if trade.Capital != nil {
		tradeCapital = *trade.Capital
	}
	remaining := pool.Sub(openCapital).Sub(tradeCapital)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	alerts = append(alerts, Advisory{
		Level:   LevelInfo,
		Message: fmt.Sprintf("Remaining deployable capital after this trade: ₹%s", remaining.StringFixed(0)),
	})

	if openCount >= settings.MaxOpenTrades {
		alerts = append(alerts, Advisory{
			Level:   LevelWarn,
			Message: fmt.Sprintf("Max open trades (%d) reached.", settings.MaxOpenTrades),
		})
	}

	return alerts
}

// Closure holds the financial figures computed when a trade is closed.
type Closure struct {
	FeesAbs  decimal.Decimal
	GrossPnl decimal.Decimal
	PnlAbs   decimal.Decimal
	PnlPct   decimal.Decimal
	HoldDays int
}

// Close computes closure figures for a position. Commission is applied
// one-way on both legs: fees = commissionPct/100 * (buy notional + sell
// notional). P&L percent guards against a non-positive buy price.
func Close(qty int, buy, sell, commissionPct decimal.Decimal, openedAt, closedAt time.Time) Closure {
	q := decimal.NewFromInt(int64(qty))
	buyNotional := buy.Mul(q)
	sellNotional := sell.Mul(q)

	fees := commissionPct.Div(hundred).Mul(buyNotional.Add(sellNotional))
	gross := sell.Sub(buy).Mul(q)
	net := gross.Sub(fees)

	pnlPct := decimal.Zero
	if buy.IsPositive() {
		pnlPct = sell.Sub(buy).Div(buy).Mul(hundred)
	}

	return Closure{
		FeesAbs:  fees,
		GrossPnl: gross,
		PnlAbs:   net,
		PnlPct:   pnlPct,
		HoldDays: HoldDays(openedAt, closedAt),
	}
}

// HoldDays returns the whole calendar days between open and close,
// ignoring time of day: a trade opened and closed on the same calendar
// date holds for 0 days regardless of elapsed hours.
func HoldDays(openedAt, closedAt time.Time) int {
	open := time.Date(openedAt.Year(), openedAt.Month(), openedAt.Day(), 0, 0, 0, 0, time.UTC)
	closed := time.Date(closedAt.Year(), closedAt.Month(), closedAt.Day(), 0, 0, 0, 0, time.UTC)
	return int(closed.Sub(open).Hours() / 24)
}

// Stats aggregates a user's realized performance over closed trades.
// WinRatePct and AvgClosedPct are nil, not zero, when no trades have
// been closed yet.
type Stats struct {
	Realized     decimal.Decimal  `json:"realized"`
	OpenCount    int              `json:"open_count"`
	ClosedCount  int              `json:"closed_count"`
	Wins         int              `json:"wins"`
	Losses       int              `json:"losses"`
	WinRatePct   *decimal.Decimal `json:"win_rate_pct"`
	AvgClosedPct *decimal.Decimal `json:"avg_closed_pct"`
}

// ComputeStats folds a user's trades into aggregate statistics. A win
// is a closed trade with net P&L > 0; a loss is one with net P&L <= 0.
func ComputeStats(trades []models.Trade) Stats {
	stats := Stats{Realized: decimal.Zero}
	pctSum := decimal.Zero

	for i := range trades {
		t := &trades[i]
		if t.Status != models.TradeStatusClosed {
			if t.Status == models.TradeStatusOpen {
				stats.OpenCount++
			}
			continue
		}

		stats.ClosedCount++
		if t.PnlAbs != nil {
			stats.Realized = stats.Realized.Add(*t.PnlAbs)
			if t.PnlAbs.IsPositive() {
				stats.Wins++
			} else {
				stats.Losses++
			}
		}
		if t.PnlPct != nil {
			pctSum = pctSum.Add(*t.PnlPct)
		}
	}

	if total := stats.Wins + stats.Losses; total > 0 {
		rate := decimal.NewFromInt(int64(stats.Wins)).Div(decimal.NewFromInt(int64(total))).Mul(hundred).Round(2)
		stats.WinRatePct = &rate
	}
	if stats.ClosedCount > 0 {
		avg := pctSum.Div(decimal.NewFromInt(int64(stats.ClosedCount))).Round(4)
		stats.AvgClosedPct = &avg
	}

	return stats
}

// OpenCapital sums the allocated capital across open trades, treating
// missing allocations as zero.
func OpenCapital(trades []models.Trade) decimal.Decimal {
	total := decimal.Zero
	for i := range trades {
		t := &trades[i]
		if t.Status == models.TradeStatusOpen && t.Capital != nil {
			total = total.Add(*t.Capital)
		}
	}
	return total
}

// RemainingCapital returns max(0, pool - allocated).
func RemainingCapital(pool, allocated decimal.Decimal) decimal.Decimal {
	remaining := pool.Sub(allocated)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}
