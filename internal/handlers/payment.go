// internal/handlers/payment.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/i18n"
	"github.com/javajoker/shophub-backend/internal/services"
	"github.com/javajoker/shophub-backend/internal/utils"
)

// Stripe caps event payloads well below this.
const maxWebhookBodyBytes = 65536

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /stripe/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.CreateCheckoutSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.paymentService.CreateCheckoutSession(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// POST /stripe/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req services.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), actor, &req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// POST /stripe/webhook
func (h *PaymentHandler) Webhook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		logrus.WithError(err).Warn("Failed to read webhook body")
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWebhookInvalid), nil)
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		if utils.IsKind(err, utils.KindValidation) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyWebhookInvalid), nil)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
