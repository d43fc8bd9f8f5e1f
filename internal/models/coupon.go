// internal/models/coupon.go
package models

import (
	"strings"
	"time"
)

type Coupon struct {
	BaseModel
	Code        string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	PercentOff  float64    `json:"percent_off" gorm:"type:decimal(5,2);not null"`
	MinSubtotal *float64   `json:"min_subtotal" gorm:"type:decimal(10,2)"`
	Active      bool       `json:"active" gorm:"not null;default:true;index"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// NormalizeCouponCode is the canonical form codes are stored and looked up in.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// WithinWindow treats a missing bound as unbounded on that side.
func (c *Coupon) WithinWindow(now time.Time) bool {
	if c.StartsAt != nil && c.StartsAt.After(now) {
		return false
	}
	if c.EndsAt != nil && c.EndsAt.Before(now) {
		return false
	}
	return true
}

// MinimumSubtotal returns the floor, zero meaning none.
func (c *Coupon) MinimumSubtotal() float64 {
	if c.MinSubtotal == nil {
		return 0
	}
	return *c.MinSubtotal
}
