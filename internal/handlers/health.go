// internal/handlers/health.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/shophub-backend/internal/config"
	"github.com/javajoker/shophub-backend/internal/database"
)

const version = "1.0.0"

type HealthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewHealthHandler(db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, h.db); err != nil {
		logrus.WithError(err).Warn("Health check database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"version":  version,
			"database": "unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  version,
		"database": "ok",
	})
}

// GET /health/env reports which settings are configured, never their values.
func (h *HealthHandler) Env(c *gin.Context) {
	present := func(v string) bool { return v != "" }

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"env": gin.H{
			"SITE_URL":               present(h.cfg.Site.URL),
			"AUTH_JWT_SECRET":        present(h.cfg.Auth.JWTSecret),
			"STRIPE_PUBLISHABLE_KEY": present(h.cfg.Payment.StripePublishableKey),
			"STRIPE_SECRET_KEY":      present(h.cfg.Payment.StripeSecretKey),
			"STRIPE_WEBHOOK_SECRET":  present(h.cfg.Payment.StripeWebhookSecret),
			"SHIPPING_PRICE_ID":      present(h.cfg.Payment.ShippingRateID),
			"ADMIN_EMAILS":           present(h.cfg.Admin.Emails),
			"EMAIL_API_KEY":          present(h.cfg.Email.APIKey),
			"EMAIL_FROM":             present(h.cfg.Email.From),
			"AWS_S3_BUCKET":          present(h.cfg.AWS.S3Bucket) && present(h.cfg.AWS.AccessKeyID),
			"KAFKA_BROKERS":          len(h.cfg.Kafka.Brokers) > 0,
			"ENVIRONMENT":            h.cfg.Environment,
		},
	})
}
