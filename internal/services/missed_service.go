package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
)

// missedService handles the missed-opportunity log.
type missedService struct {
	db *gorm.DB
}

// NewMissedService creates a new MissedServicer.
func NewMissedService(db *gorm.DB) MissedServicer {
	return &missedService{db: db}
}

// Add records a skipped setup.
func (s *missedService) Add(userID uint, input MissedInput) (*models.MissedOpportunity, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}

	missed := &models.MissedOpportunity{
		UserID:       userID,
		Symbol:       symbol,
		Sector:       input.Sector,
		SetupTag:     input.SetupTag,
		TriggerPrice: input.TriggerPrice,
		HighAfter:    input.HighAfter,
		MovePct:      input.MovePct,
		ReasonMissed: input.ReasonMissed,
		Lesson:       input.Lesson,
	}
	if err := s.db.Create(missed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return missed, nil
}

// List returns the user's entries newest first, optionally restricted
// to unresolved ones.
func (s *missedService) List(userID uint, activeOnly bool, page pagination.PageRequest) (*pagination.PageResponse[models.MissedOpportunity], error) {
	page.Defaults()

	base := s.db.Model(&models.MissedOpportunity{}).Where("user_id = ?", userID)
	if activeOnly {
		base = base.Where("resolved = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.MissedOpportunity
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// Resolve toggles the resolved flag on an entry owned by the user.
func (s *missedService) Resolve(userID, missedID uint, resolved bool) (*models.MissedOpportunity, error) {
	res := s.db.Model(&models.MissedOpportunity{}).
		Where("id = ? AND user_id = ?", missedID, userID).
		Update("resolved", resolved)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrMissedNotFound
	}

	var missed models.MissedOpportunity
	if err := s.db.Where("id = ? AND user_id = ?", missedID, userID).First(&missed).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &missed, nil
}
