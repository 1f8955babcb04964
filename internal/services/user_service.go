package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "swingtrack/internal/errors"
	"swingtrack/internal/logger"
	"swingtrack/internal/models"
	"swingtrack/internal/pagination"
)

// userService handles user and settings business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// NormalizeEmail lower-cases and trims an email address. All storage
// and lookups go through this, making identity case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail retrieves a user by normalized email.
func (s *userService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (s *userService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// Create registers a new active, verified user together with their
// default settings in a single transaction.
func (s *userService) Create(email, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email is required")
	}

	user := &models.User{
		Email:         email,
		Name:          name,
		Status:        models.UserStatusActive,
		EmailVerified: true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(models.DefaultSettings(user.ID)).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// FindOrCreate attaches to an existing account by email, creating one
// only when none exists. Invite acceptance is idempotent through this.
func (s *userService) FindOrCreate(email, name string) (*models.User, error) {
	user, err := s.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
		return s.Create(email, name)
	}
	return nil, err
}

// List returns all users, newest first. Admin-only at the handler layer.
func (s *userService) List(page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.User{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var users []models.User
	if err := s.db.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(users, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SetStatus suspends or reactivates a user.
func (s *userService) SetStatus(userID uint, status models.UserStatus) error {
	res := s.db.Model(&models.User{}).Where("id = ?", userID).Update("status", status)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// EnsureOwner bootstraps the owner account from configuration. A no-op
// when the email is empty or the account already exists.
func (s *userService) EnsureOwner(email, name string) error {
	if email == "" {
		return nil
	}

	_, err := s.FindByEmail(email)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrUserNotFound.Code {
		return err
	}

	owner, err := s.Create(email, name)
	if err != nil {
		return err
	}
	if err := s.db.Model(owner).Update("is_admin", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("bootstrapped owner account", "email", owner.Email, "user_id", owner.ID)
	return nil
}

// GetSettings retrieves the settings row owned by the user.
func (s *userService) GetSettings(userID uint) (*models.UserSettings, error) {
	var settings models.UserSettings
	if err := s.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}

// UpdateSettings applies the non-nil fields of the update to the user's
// settings row.
func (s *userService) UpdateSettings(userID uint, update SettingsUpdate) (*models.UserSettings, error) {
	fields := map[string]interface{}{}
	if update.MarketDefault != nil {
		fields["market_default"] = *update.MarketDefault
	}
	if update.CapitalPool != nil {
		if !update.CapitalPool.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "capital pool must be positive")
		}
		fields["capital_pool"] = *update.CapitalPool
	}
	if update.MaxRiskPerTradePct != nil {
		fields["max_risk_per_trade_pct"] = *update.MaxRiskPerTradePct
	}
	if update.MaxOpenTrades != nil {
		if *update.MaxOpenTrades <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "max open trades must be positive")
		}
		fields["max_open_trades"] = *update.MaxOpenTrades
	}
	if update.CommissionPct != nil {
		if update.CommissionPct.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "commission cannot be negative")
		}
		fields["commission_pct"] = *update.CommissionPct
	}
	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no settings fields provided")
	}

	res := s.db.Model(&models.UserSettings{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}

	return s.GetSettings(userID)
}
