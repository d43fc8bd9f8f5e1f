package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/database/dbtest"
	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/utils"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestCouponService(t *testing.T) (*CouponService, *gorm.DB) {
	db := dbtest.Open(t)
	svc := NewCouponService(db)
	svc.now = func() time.Time { return fixedNow }
	return svc, db
}

func seedCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) models.Coupon {
	t.Helper()
	require.NoError(t, db.Select("*").Create(&coupon).Error)
	return coupon
}

func timePtr(t time.Time) *time.Time { return &t }

func TestValidateCouponWindowed(t *testing.T) {
	svc, db := newTestCouponService(t)
	seedCoupon(t, db, models.Coupon{
		Code: "SAVE10", PercentOff: 10, Active: true,
		StartsAt: timePtr(fixedNow.Add(-24 * time.Hour)),
		EndsAt:   timePtr(fixedNow.Add(24 * time.Hour)),
	})

	result, err := svc.ValidateCoupon(context.Background(), " save10 ", 50)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", result.Code)
	assert.Equal(t, 10.0, result.PercentOff)
	assert.Zero(t, result.MinSubtotal)
}

func TestValidateCouponFallbackWithoutWindow(t *testing.T) {
	svc, db := newTestCouponService(t)
	seedCoupon(t, db, models.Coupon{Code: "FOREVER", PercentOff: 5, Active: true})

	result, err := svc.ValidateCoupon(context.Background(), "forever", 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.PercentOff)
}

func TestValidateCouponStartOnly(t *testing.T) {
	svc, db := newTestCouponService(t)
	seedCoupon(t, db, models.Coupon{Code: "STARTED", PercentOff: 20, Active: true, StartsAt: timePtr(fixedNow.Add(-time.Hour))})
	seedCoupon(t, db, models.Coupon{Code: "UPCOMING", PercentOff: 20, Active: true, StartsAt: timePtr(fixedNow.Add(time.Hour))})

	_, err := svc.ValidateCoupon(context.Background(), "STARTED", 10)
	assert.NoError(t, err)

	_, err = svc.ValidateCoupon(context.Background(), "UPCOMING", 10)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestValidateCouponExpiredNeverSucceeds(t *testing.T) {
	svc, db := newTestCouponService(t)
	seedCoupon(t, db, models.Coupon{
		Code: "OLD", PercentOff: 50, Active: true,
		StartsAt: timePtr(fixedNow.Add(-48 * time.Hour)),
		EndsAt:   timePtr(fixedNow.Add(-24 * time.Hour)),
	})

	_, err := svc.ValidateCoupon(context.Background(), "OLD", 100)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestValidateCouponInactive(t *testing.T) {
	svc, db := newTestCouponService(t)
	seedCoupon(t, db, models.Coupon{Code: "OFF", PercentOff: 10, Active: false})

	_, err := svc.ValidateCoupon(context.Background(), "OFF", 100)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestValidateCouponMissingCode(t *testing.T) {
	svc, _ := newTestCouponService(t)

	_, err := svc.ValidateCoupon(context.Background(), "   ", 100)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestValidateCouponUnknown(t *testing.T) {
	svc, _ := newTestCouponService(t)

	_, err := svc.ValidateCoupon(context.Background(), "NOPE", 100)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestValidateCouponMinimumSubtotal(t *testing.T) {
	svc, db := newTestCouponService(t)
	floor := 50.0
	seedCoupon(t, db, models.Coupon{Code: "BIG", PercentOff: 15, Active: true, MinSubtotal: &floor})

	_, err := svc.ValidateCoupon(context.Background(), "BIG", 49.99)
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
	assert.Contains(t, err.Error(), "$50.00")

	result, err := svc.ValidateCoupon(context.Background(), "BIG", 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.MinSubtotal)
}

func TestValidateCouponZeroMinimumIsNoFloor(t *testing.T) {
	svc, db := newTestCouponService(t)
	zero := 0.0
	seedCoupon(t, db, models.Coupon{Code: "ZERO", PercentOff: 10, Active: true, MinSubtotal: &zero})

	_, err := svc.ValidateCoupon(context.Background(), "ZERO", 0)
	assert.NoError(t, err)
}

func TestResolveForCheckout(t *testing.T) {
	svc, db := newTestCouponService(t)
	floor := 1000.0
	seedCoupon(t, db, models.Coupon{Code: "CHECKOUT", PercentOff: 25, Active: true, MinSubtotal: &floor})
	seedCoupon(t, db, models.Coupon{Code: "EXPIRED", PercentOff: 25, Active: true, EndsAt: timePtr(fixedNow.Add(-time.Minute))})

	ctx := context.Background()

	percentOff, err := svc.ResolveForCheckout(ctx, "checkout")
	require.NoError(t, err)
	require.NotNil(t, percentOff)
	assert.Equal(t, 25.0, *percentOff)

	for _, code := range []string{"", "EXPIRED", "UNKNOWN"} {
		percentOff, err = svc.ResolveForCheckout(ctx, code)
		assert.NoError(t, err)
		assert.Nil(t, percentOff, code)
	}
}

func TestCreateCoupon(t *testing.T) {
	svc, _ := newTestCouponService(t)
	ctx := context.Background()
	inactive := false

	coupon, err := svc.CreateCoupon(ctx, &CreateCouponRequest{Code: " spring25 ", PercentOff: 25, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "SPRING25", coupon.Code)
	assert.False(t, coupon.Active)

	coupons, err := svc.ListCoupons(ctx)
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.False(t, coupons[0].Active)

	_, err = svc.ValidateCoupon(ctx, "SPRING25", 100)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	percentOff, err := svc.ResolveForCheckout(ctx, "SPRING25")
	require.NoError(t, err)
	assert.Nil(t, percentOff)

	_, err = svc.CreateCoupon(ctx, &CreateCouponRequest{Code: "SPRING25", PercentOff: 10})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestCreateCouponRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestCouponService(t)
	ctx := context.Background()

	cases := []CreateCouponRequest{
		{Code: "OK10", PercentOff: 0},
		{Code: "OK10", PercentOff: 101},
		{Code: "x", PercentOff: 10},
		{Code: "HAS SPACE", PercentOff: 10},
		{Code: "WINDOW", PercentOff: 10, StartsAt: timePtr(fixedNow), EndsAt: timePtr(fixedNow.Add(-time.Hour))},
	}
	for _, req := range cases {
		req := req
		_, err := svc.CreateCoupon(ctx, &req)
		assert.True(t, utils.IsKind(err, utils.KindValidation), "%+v", req)
	}
}

func TestSetActiveAndDelete(t *testing.T) {
	svc, db := newTestCouponService(t)
	ctx := context.Background()
	coupon := seedCoupon(t, db, models.Coupon{Code: "TOGGLE", PercentOff: 10, Active: true})

	updated, err := svc.SetActive(ctx, coupon.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	_, err = svc.ValidateCoupon(ctx, "TOGGLE", 10)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	require.NoError(t, svc.DeleteCoupon(ctx, coupon.ID))
	assert.True(t, utils.IsKind(svc.DeleteCoupon(ctx, coupon.ID), utils.KindNotFound))

	_, err = svc.SetActive(ctx, uuid.New(), true)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
