package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
	"swingtrack/internal/risk"
)

// tradeService handles trade journaling. Ownership is enforced in every
// query: a trade belonging to someone else is indistinguishable from a
// missing one.
type tradeService struct {
	db    *gorm.DB
	users UserServicer
}

// NewTradeService creates a new TradeServicer.
func NewTradeService(db *gorm.DB, users UserServicer) TradeServicer {
	return &tradeService{db: db, users: users}
}

// Add validates and persists a new open trade, then evaluates it
// against the user's risk settings. Advisories are attached to the
// response but never block the save.
func (s *tradeService) Add(userID uint, input TradeInput) (*models.Trade, []risk.Advisory, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if input.Qty <= 0 {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be a positive integer")
	}
	if !input.BuyPrice.IsPositive() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "buy price must be positive")
	}

	settings, err := s.users.GetSettings(userID)
	if err != nil {
		return nil, nil, err
	}

	market := input.Market
	if market == "" {
		market = settings.MarketDefault
	}

	trade := &models.Trade{
		UserID:   userID,
		Symbol:   symbol,
		Market:   market,
		Qty:      input.Qty,
		BuyPrice: input.BuyPrice,
		Capital:  input.Capital,
		SL1:      input.SL1,
		SL2:      input.SL2,
		T1:       input.T1,
		T2:       input.T2,
		Sector:   input.Sector,
		SetupTag: input.SetupTag,
		Notes:    input.Notes,
		Status:   models.TradeStatusOpen,
	}
	if err := s.db.Create(trade).Error; err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	open, err := s.openTrades(userID)
	if err != nil {
		return nil, nil, err
	}

	// Deployable-capital math counts the other open positions; the new
	// trade's own allocation enters separately.
	others := make([]models.Trade, 0, len(open))
	for i := range open {
		if open[i].ID != trade.ID {
			others = append(others, open[i])
		}
	}
	advisories := risk.Nudges(trade, settings, risk.OpenCapital(others), len(open))

	return trade, advisories, nil
}

func (s *tradeService) openTrades(userID uint) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Where("user_id = ? AND status = ?", userID, models.TradeStatusOpen).
		Order("created_at DESC").
		Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trades, nil
}

// List returns the user's trades with the given status. Open trades
// sort by creation, closed trades by sell date.
func (s *tradeService) List(userID uint, status models.TradeStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	page.Defaults()

	base := s.db.Model(&models.Trade{}).Where("user_id = ? AND status = ?", userID, status)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	order := "created_at DESC"
	if status == models.TradeStatusClosed {
		order = "sell_date DESC"
	}

	var trades []models.Trade
	if err := base.Scopes(pagination.Paginate(page)).
		Order(order).
		Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(trades, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetByID retrieves a trade owned by the user.
func (s *tradeService) GetByID(userID, tradeID uint) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.Where("id = ? AND user_id = ?", tradeID, userID).First(&trade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTradeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &trade, nil
}

// Update applies the non-nil buy-side fields of the update to an open
// trade. Closed trades are immutable apart from the closure operation
// itself.
func (s *tradeService) Update(userID, tradeID uint, update TradeUpdate) (*models.Trade, error) {
	fields := map[string]interface{}{}
	if update.SL1 != nil {
		fields["sl1"] = *update.SL1
	}
	if update.SL2 != nil {
		fields["sl2"] = *update.SL2
	}
	if update.T1 != nil {
		fields["t1"] = *update.T1
	}
	if update.T2 != nil {
		fields["t2"] = *update.T2
	}
	if update.Capital != nil {
		fields["capital"] = *update.Capital
	}
	if update.Sector != nil {
		fields["sector"] = *update.Sector
	}
	if update.SetupTag != nil {
		fields["setup_tag"] = *update.SetupTag
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
	}
	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no trade fields provided")
	}

	res := s.db.Model(&models.Trade{}).
		Where("id = ? AND user_id = ? AND status = ?", tradeID, userID, models.TradeStatusOpen).
		Updates(fields)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrTradeNotFound
	}

	return s.GetByID(userID, tradeID)
}

// Close performs the single open -> closed transition: financial
// figures are computed from the sell price and the user's commission
// rate, and written with a conditional update keyed on the open status
// so two racing closures produce exactly one success.
func (s *tradeService) Close(userID, tradeID uint, input CloseInput) (*models.Trade, error) {
	if !input.SellPrice.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "sell price must be positive")
	}

	trade, err := s.GetByID(userID, tradeID)
	if err != nil {
		return nil, err
	}
	if !trade.Open() {
		return nil, apperrors.ErrTradeAlreadyClosed
	}

	settings, err := s.users.GetSettings(userID)
	if err != nil {
		return nil, err
	}

	soldAt := time.Now()
	closure := risk.Close(trade.Qty, trade.BuyPrice, input.SellPrice, settings.CommissionPct, trade.CreatedAt, soldAt)

	fields := map[string]interface{}{
		"status":         models.TradeStatusClosed,
		"sell_price":     input.SellPrice,
		"sell_date":      soldAt,
		"hold_days":      closure.HoldDays,
		"fees_abs":       closure.FeesAbs,
		"pnl_abs":        closure.PnlAbs,
		"pnl_pct":        closure.PnlPct,
		"post_exit_move": input.PostExitMove,
		"review_comment": input.ReviewComment,
	}

	res := s.db.Model(&models.Trade{}).
		Where("id = ? AND user_id = ? AND status = ?", tradeID, userID, models.TradeStatusOpen).
		Updates(fields)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost the race to another closure.
		return nil, apperrors.ErrTradeAlreadyClosed
	}

	return s.GetByID(userID, tradeID)
}

// Lookup finds the user's trades by symbol substring or exact trade ID.
func (s *tradeService) Lookup(userID uint, query string) ([]models.Trade, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "query is required")
	}

	q := s.db.Where("user_id = ?", userID)
	if id, err := strconv.ParseUint(query, 10, 32); err == nil {
		q = q.Where("id = ? OR symbol LIKE ?", uint(id), "%"+strings.ToUpper(query)+"%")
	} else {
		q = q.Where("symbol LIKE ?", "%"+strings.ToUpper(query)+"%")
	}

	var trades []models.Trade
	if err := q.Order("created_at DESC").Limit(20).Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trades, nil
}

// Stats folds the user's whole journal into aggregate statistics.
func (s *tradeService) Stats(userID uint) (*risk.Stats, error) {
	var trades []models.Trade
	if err := s.db.Where("user_id = ?", userID).Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	stats := risk.ComputeStats(trades)
	return &stats, nil
}

// Capital reports the user's pool utilisation across open trades.
func (s *tradeService) Capital(userID uint) (*CapitalSummary, error) {
	settings, err := s.users.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	open, err := s.openTrades(userID)
	if err != nil {
		return nil, err
	}

	allocated := risk.OpenCapital(open)
	return &CapitalSummary{
		CapitalPool:    settings.CapitalPool,
		OpenAllocation: allocated,
		Available:      risk.RemainingCapital(settings.CapitalPool, allocated),
	}, nil
}
