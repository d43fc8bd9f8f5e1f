// internal/services/coupon_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/utils"
)

type CouponService struct {
	db  *gorm.DB
	now func() time.Time
}

// CouponResult is the public view of a coupon that passed validation.
type CouponResult struct {
	Code        string  `json:"code"`
	PercentOff  float64 `json:"percent_off"`
	MinSubtotal float64 `json:"min_subtotal"`
}

type CreateCouponRequest struct {
	Code        string     `json:"code" validate:"required,coupon_code"`
	PercentOff  float64    `json:"percent_off" validate:"gte=1,lte=100"`
	MinSubtotal *float64   `json:"min_subtotal,omitempty" validate:"omitempty,gte=0"`
	Active      *bool      `json:"active,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db, now: time.Now}
}

// ValidateCoupon checks a code against the subtotal the customer is about to
// pay. Lookup runs in two tiers: a coupon whose window is fully set and
// contains now wins; otherwise any active coupon with the code is taken, as
// long as each bound it does set is satisfied.
func (s *CouponService) ValidateCoupon(ctx context.Context, code string, subtotal float64) (*CouponResult, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return nil, utils.ValidationError("Coupon code is required")
	}

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, couponNotFound()
	}

	if floor := coupon.MinimumSubtotal(); floor > 0 && subtotal < floor {
		return nil, utils.ValidationError("Minimum subtotal of " + FormatMoney(floor) + " required")
	}

	return &CouponResult{
		Code:        coupon.Code,
		PercentOff:  coupon.PercentOff,
		MinSubtotal: coupon.MinimumSubtotal(),
	}, nil
}

// ResolveForCheckout returns the discount percentage to apply at checkout, or
// nil when the code is empty, unknown, inactive or outside its window. The
// minimum subtotal is not enforced here.
func (s *CouponService) ResolveForCheckout(ctx context.Context, code string) (*float64, error) {
	code = models.NormalizeCouponCode(code)
	if code == "" {
		return nil, nil
	}

	var coupon models.Coupon
	err := s.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.PersistenceError("failed to load coupon", err)
	}

	if !coupon.WithinWindow(s.now()) {
		return nil, nil
	}

	percentOff := coupon.PercentOff
	return &percentOff, nil
}

func (s *CouponService) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	var coupon models.Coupon
	err := db.Where("code = ? AND active = ?", code, true).
		Where("starts_at IS NOT NULL AND ends_at IS NOT NULL").
		Where("starts_at <= ? AND ends_at >= ?", now, now).
		First(&coupon).Error
	if err == nil {
		return &coupon, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.PersistenceError("failed to load coupon", err)
	}

	err = db.Where("code = ? AND active = ?", code, true).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.PersistenceError("failed to load coupon", err)
	}

	if !coupon.WithinWindow(now) {
		logrus.WithField("code", code).Debug("Coupon found outside its validity window")
		return nil, nil
	}
	return &coupon, nil
}

// Admin operations

func (s *CouponService) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, utils.PersistenceError("failed to list coupons", err)
	}
	return coupons, nil
}

func (s *CouponService) CreateCoupon(ctx context.Context, req *CreateCouponRequest) (*models.Coupon, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return nil, utils.ValidationError("ends_at must be after starts_at")
	}

	coupon := &models.Coupon{
		Code:        models.NormalizeCouponCode(req.Code),
		PercentOff:  req.PercentOff,
		MinSubtotal: req.MinSubtotal,
		Active:      true,
		StartsAt:    utcPtr(req.StartsAt),
		EndsAt:      utcPtr(req.EndsAt),
	}
	if req.Active != nil {
		coupon.Active = *req.Active
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&models.Coupon{}).Where("code = ?", coupon.Code).Count(&existing).Error; err != nil {
		return nil, utils.PersistenceError("failed to check coupon code", err)
	}
	if existing > 0 {
		return nil, utils.ValidationError("coupon code already exists")
	}

	// Select every column so a false active is written instead of the
	// column default.
	if err := db.Select("*").Create(coupon).Error; err != nil {
		return nil, utils.PersistenceError("failed to create coupon", err)
	}

	logrus.WithFields(logrus.Fields{
		"code":        coupon.Code,
		"percent_off": coupon.PercentOff,
	}).Info("Coupon created")
	return coupon, nil
}

// SetActive flips a coupon on or off.
func (s *CouponService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	db := s.db.WithContext(ctx)

	var coupon models.Coupon
	if err := db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Coupon")
		}
		return nil, utils.PersistenceError("failed to load coupon", err)
	}

	if err := db.Model(&coupon).Update("active", active).Error; err != nil {
		return nil, utils.PersistenceError("failed to update coupon", err)
	}
	coupon.Active = active
	return &coupon, nil
}

func (s *CouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if result.Error != nil {
		return utils.PersistenceError("failed to delete coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.NotFoundError("Coupon")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// validationMessage flattens validator errors into one client facing line.
func validationMessage(err error) string {
	details := utils.GetValidationErrors(err)
	if len(details) == 0 {
		return err.Error()
	}
	messages := make([]string, 0, len(details))
	for _, d := range details {
		messages = append(messages, d.Message)
	}
	return strings.Join(messages, "; ")
}

func couponNotFound() *utils.AppError {
	return &utils.AppError{Kind: utils.KindNotFound, Message: "Invalid or inactive coupon"}
}
