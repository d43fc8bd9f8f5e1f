// internal/services/stripe_gateway.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/javajoker/shophub-backend/internal/config"
)

var ErrPaymentNotConfigured = errors.New("STRIPE_SECRET_KEY is not set")

// ErrInvalidWebhook is returned when a webhook payload fails signature verification.
var ErrInvalidWebhook = errors.New("webhook signature verification failed")

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

type CheckoutLineItem struct {
	Name       string
	ImageURL   *string
	UnitAmount int64 // minor units
	Quantity   int64
}

type CheckoutSessionInput struct {
	LineItems  []CheckoutLineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSessionResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// WebhookEvent is the verified subset of a Stripe event the order lifecycle needs.
type WebhookEvent struct {
	ID       string
	Type     string
	Metadata map[string]string
}

// PaymentGateway is the hosted payment provider.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, input *CheckoutSessionInput) (*CheckoutSessionResult, error)
	CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*PaymentIntentResult, error)
	ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
}

// StripeGateway creates its API client on first use and reuses it afterwards.
type StripeGateway struct {
	config config.PaymentConfig

	once   sync.Once
	client *client.API
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	return &StripeGateway{config: cfg}
}

func (g *StripeGateway) api() (*client.API, error) {
	if g.config.StripeSecretKey == "" {
		return nil, ErrPaymentNotConfigured
	}
	g.once.Do(func() {
		g.client = client.New(g.config.StripeSecretKey, nil)
	})
	return g.client, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input *CheckoutSessionInput) (*CheckoutSessionResult, error) {
	sc, err := g.api()
	if err != nil {
		return nil, err
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.ImageURL != nil && *item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{*item.ImageURL})
		}

		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.config.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		},
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(g.config.AllowedCountries),
		},
	}
	if g.config.ShippingRateID != "" {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(g.config.ShippingRateID)},
		}
	}
	for key, value := range input.Metadata {
		params.AddMetadata(key, value)
	}
	params.Context = ctx

	session, err := sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSessionResult{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*PaymentIntentResult, error) {
	sc, err := g.api()
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(g.config.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}
	params.Context = ctx

	pi, err := sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResult{ClientSecret: pi.ClientSecret, PaymentIntentID: pi.ID}, nil
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes checkout
// session metadata. Other event types are returned without metadata.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	// Only ids, type and session metadata are read, which are stable across
	// API versions, so the endpoint may run a newer version than the SDK pins.
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.StripeWebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	parsed := &WebhookEvent{ID: event.ID, Type: string(event.Type)}

	switch parsed.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		parsed.Metadata = session.Metadata
	}

	return parsed, nil
}
