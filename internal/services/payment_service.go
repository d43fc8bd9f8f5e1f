// internal/services/payment_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/metrics"
	"github.com/javajoker/shophub-backend/internal/models"
	"github.com/javajoker/shophub-backend/internal/utils"
)

type PaymentService struct {
	gateway  PaymentGateway
	products *ProductService
	coupons  *CouponService
	orders   *OrderService
	siteURL  string
}

type CheckoutItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1,lte=999"`
}

type CreateCheckoutSessionRequest struct {
	Items      []CheckoutItem `json:"items"`
	OrderID    string         `json:"orderId"`
	CouponCode string         `json:"couponCode,omitempty"`
	SuccessURL string         `json:"successUrl,omitempty" validate:"omitempty,url"`
	CancelURL  string         `json:"cancelUrl,omitempty" validate:"omitempty,url"`
}

type CreatePaymentIntentRequest struct {
	Amount   float64           `json:"amount" validate:"required,gt=0"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func NewPaymentService(gateway PaymentGateway, products *ProductService, coupons *CouponService, orders *OrderService, siteURL string) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		products: products,
		coupons:  coupons,
		orders:   orders,
		siteURL:  siteURL,
	}
}

// CreateCheckoutSession opens a hosted checkout session for one of the
// caller's pending orders. Line items are priced from the unit prices stored
// on the order, the request cart must match the order, and the coupon is
// applied if it is currently valid.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, actor Actor, req *CreateCheckoutSessionRequest) (*CheckoutSessionResult, error) {
	if len(req.Items) == 0 {
		return nil, utils.ValidationError("No items provided")
	}
	if req.OrderID == "" {
		return nil, utils.ValidationError("orderId is required")
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, utils.ValidationError("orderId is invalid")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError(validationMessage(err))
	}
	for _, item := range req.Items {
		if err := utils.ValidateStruct(item); err != nil {
			return nil, utils.ValidationError(validationMessage(err))
		}
	}
	if actor.UserID == uuid.Nil {
		return nil, utils.AuthenticationError("Unauthorized")
	}

	order, err := s.orders.PendingOrderForCheckout(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if !cartMatchesOrder(req.Items, order.Items) {
		return nil, utils.ValidationError("Cart does not match order")
	}

	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	byID, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, utils.ExternalServiceError("Failed to fetch products", err)
	}

	percentOff, err := s.coupons.ResolveForCheckout(ctx, req.CouponCode)
	if err != nil {
		return nil, utils.ExternalServiceError("Failed to resolve coupon", err)
	}

	lineItems := make([]CheckoutLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, utils.ValidationError("Invalid product in cart")
		}
		lineItems = append(lineItems, CheckoutLineItem{
			Name:       product.Name,
			ImageURL:   product.ImageURL,
			UnitAmount: DiscountedCents(ToCents(item.Price), percentOff),
			Quantity:   int64(item.Quantity),
		})
	}

	input := &CheckoutSessionInput{
		LineItems:  lineItems,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Metadata: map[string]string{
			"userId":  actor.UserID.String(),
			"orderId": order.ID.String(),
		},
	}
	if input.SuccessURL == "" {
		input.SuccessURL = fmt.Sprintf("%s/checkout/success?orderId=%s", s.siteURL, url.QueryEscape(order.ID.String()))
	}
	if input.CancelURL == "" {
		input.CancelURL = s.siteURL + "/checkout"
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, input)
	if err != nil {
		return nil, utils.ExternalServiceError("Failed to create checkout session", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"user_id":    actor.UserID,
		"session_id": session.ID,
		"discounted": percentOff != nil,
	}).Info("Checkout session created")
	return session, nil
}

// cartMatchesOrder reports whether the requested quantities per product equal
// the quantities stored on the order.
func cartMatchesOrder(cart []CheckoutItem, stored []models.OrderItem) bool {
	want := make(map[uuid.UUID]int, len(stored))
	for _, item := range stored {
		want[item.ProductID] += item.Quantity
	}
	got := make(map[uuid.UUID]int, len(cart))
	for _, item := range cart {
		got[item.ProductID] += item.Quantity
	}
	if len(want) != len(got) {
		return false
	}
	for id, quantity := range want {
		if got[id] != quantity {
			return false
		}
	}
	return true
}

// CreatePaymentIntent is the embedded card form alternative to hosted checkout.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, actor Actor, req *CreatePaymentIntentRequest) (*PaymentIntentResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.ValidationError("Invalid amount")
	}
	if actor.UserID == uuid.Nil {
		return nil, utils.AuthenticationError("Unauthorized")
	}

	metadata := map[string]string{}
	for key, value := range req.Metadata {
		metadata[key] = value
	}
	metadata["userId"] = actor.UserID.String()

	intent, err := s.gateway.CreatePaymentIntent(ctx, ToCents(req.Amount), metadata)
	if err != nil {
		return nil, utils.ExternalServiceError("Failed to create payment intent", err)
	}
	return intent, nil
}

// HandleWebhook verifies and applies a payment provider event. Events for
// unknown types, without an order id, or for orders no longer pending are
// acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, ErrInvalidWebhook) {
			logrus.WithError(err).Warn("Webhook signature verification failed")
			metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
			return utils.ValidationError("Webhook signature verification failed")
		}
		return utils.ExternalServiceError("Webhook processing failed", err)
	}

	entry := logrus.WithFields(logrus.Fields{"event_id": event.ID, "type": event.Type})

	var apply func(context.Context, uuid.UUID) (bool, error)
	switch event.Type {
	case EventCheckoutCompleted:
		apply = s.orders.MarkPaid
	case EventCheckoutExpired:
		apply = s.orders.MarkFailed
	default:
		entry.Info("Unhandled event type")
		metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}

	rawOrderID := event.Metadata["orderId"]
	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		entry.WithField("order_id", rawOrderID).Warn("Checkout event without a usable order id")
		metrics.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		return nil
	}

	applied, err := apply(ctx, orderID)
	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.Type, "error").Inc()
		return err
	}

	outcome := "applied"
	if !applied {
		outcome = "ignored"
	}
	metrics.WebhookEvents.WithLabelValues(event.Type, outcome).Inc()
	entry.WithFields(logrus.Fields{"order_id": orderID, "outcome": outcome}).Info("Webhook processed")
	return nil
}
