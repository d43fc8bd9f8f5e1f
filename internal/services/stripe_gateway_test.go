package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"github.com/javajoker/shophub-backend/internal/config"
)

const testWebhookSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way Stripe does.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutEventPayload(eventType, orderID string) []byte {
	return []byte(fmt.Sprintf(`{
  "id": "evt_test",
  "object": "event",
  "api_version": %q,
  "type": %q,
  "data": {"object": {"id": "cs_test", "object": "checkout.session", "metadata": {"orderId": %q, "userId": "u1"}}}
}`, stripe.APIVersion, eventType, orderID))
}

func TestParseWebhookEventCompleted(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{StripeWebhookSecret: testWebhookSecret})
	payload := checkoutEventPayload(EventCheckoutCompleted, "order-1")

	event, err := gateway.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_test", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "order-1", event.Metadata["orderId"])
}

func TestParseWebhookEventAcceptsOtherAPIVersion(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{StripeWebhookSecret: testWebhookSecret})
	payload := []byte(`{
  "id": "evt_newer",
  "object": "event",
  "api_version": "2024-06-20",
  "type": "checkout.session.completed",
  "data": {"object": {"id": "cs_test", "object": "checkout.session", "metadata": {"orderId": "order-9"}}}
}`)

	event, err := gateway.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "order-9", event.Metadata["orderId"])
}

func TestParseWebhookEventOtherType(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{StripeWebhookSecret: testWebhookSecret})
	payload := []byte(fmt.Sprintf(`{"id":"evt_2","object":"event","api_version":%q,"type":"invoice.paid","data":{"object":{"id":"in_1","object":"invoice"}}}`, stripe.APIVersion))

	event, err := gateway.ParseWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "invoice.paid", event.Type)
	assert.Nil(t, event.Metadata)
}

func TestParseWebhookEventRejectsBadSignatures(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{StripeWebhookSecret: testWebhookSecret})
	payload := checkoutEventPayload(EventCheckoutExpired, "order-1")

	cases := map[string]string{
		"wrong secret": signPayload(payload, "whsec_other", time.Now()),
		"stale":        signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)),
		"missing":      "",
		"garbage":      "not-a-signature",
	}
	for name, header := range cases {
		_, err := gateway.ParseWebhookEvent(payload, header)
		assert.ErrorIs(t, err, ErrInvalidWebhook, name)
	}

	tampered := checkoutEventPayload(EventCheckoutExpired, "order-2")
	_, err := gateway.ParseWebhookEvent(tampered, signPayload(payload, testWebhookSecret, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidWebhook)
}

func TestStripeGatewayRequiresSecretKey(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{})

	_, err := gateway.CreateCheckoutSession(context.Background(), &CheckoutSessionInput{})
	assert.ErrorIs(t, err, ErrPaymentNotConfigured)

	_, err = gateway.CreatePaymentIntent(context.Background(), 100, nil)
	assert.ErrorIs(t, err, ErrPaymentNotConfigured)
}

func TestStripeGatewayReusesClient(t *testing.T) {
	gateway := NewStripeGateway(config.PaymentConfig{StripeSecretKey: "sk_test_123"})

	first, err := gateway.api()
	require.NoError(t, err)
	second, err := gateway.api()
	require.NoError(t, err)
	assert.Same(t, first, second)
}
