package services

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shophub-backend/internal/config"
	"github.com/javajoker/shophub-backend/internal/models"
)

type sentEmail struct {
	To, Subject, HTML string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *fakeMailer) Sent() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentEmail(nil), m.sent...)
}

func sampleOrder() *models.Order {
	order := &models.Order{
		UserID: uuid.New(),
		Total:  42.39,
		Status: models.OrderStatusPaid,
		Email:  "buyer@example.com",
		Items: []models.OrderItem{
			{Quantity: 2, Price: 10, Product: &models.Product{Name: "Mug <Large>"}},
			{Quantity: 1, Price: 10},
		},
	}
	order.ID = uuid.MustParse("3f2a9c1e-0000-4000-8000-000000000000")
	order.CreatedAt = time.Date(2026, 6, 1, 15, 4, 0, 0, time.UTC)
	return order
}

func TestBuildOrderConfirmation(t *testing.T) {
	svc := NewNotificationServiceWithMailer(config.EmailConfig{}, &fakeMailer{})

	msg, err := svc.BuildOrderConfirmation(sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Equal(t, "Order Confirmation #3f2a9c1e", msg.Subject)
	assert.Contains(t, msg.HTML, "Mug &lt;Large&gt; &times; 2 &ndash; $20.00")
	assert.Contains(t, msg.HTML, "Item &times; 1 &ndash; $10.00")
	assert.Contains(t, msg.HTML, "Total: $42.39")
	assert.Contains(t, msg.HTML, "Jun 1, 2026 3:04 PM UTC")
}

func TestBuildShipmentNotice(t *testing.T) {
	svc := NewNotificationServiceWithMailer(config.EmailConfig{}, &fakeMailer{})
	order := sampleOrder()

	msg, err := svc.BuildShipmentNotice(order)
	require.NoError(t, err)
	assert.Equal(t, "Your order #3f2a9c1e has shipped!", msg.Subject)
	assert.Contains(t, msg.HTML, "has shipped")
	assert.NotContains(t, msg.HTML, "Tracking Number")

	shippedAt := time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC)
	tracking := "1Z999"
	order.ShippedAt = &shippedAt
	order.TrackingNumber = &tracking

	msg, err = svc.BuildShipmentNotice(order)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "shipped on Jun 2, 2026 9:30 AM UTC")
	assert.Contains(t, msg.HTML, "Tracking Number: <strong>1Z999</strong>")
}

func TestSendSkipsMissingRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationServiceWithMailer(config.EmailConfig{}, mailer)
	order := sampleOrder()
	order.Email = ""

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), order))
	assert.Empty(t, mailer.Sent())
}

func TestSendWrapsMailerError(t *testing.T) {
	cause := errors.New("relay refused")
	svc := NewNotificationServiceWithMailer(config.EmailConfig{}, &fakeMailer{err: cause})

	err := svc.SendShipmentNotice(context.Background(), sampleOrder())
	assert.ErrorIs(t, err, cause)
}

func TestSMTPMailerComposesMessage(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{
		APIKey: "re_test", From: "ShopHub <noreply@shop.test>",
		SMTPHost: "smtp.resend.com", SMTPPort: "587", SMTPUser: "resend",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, mailer.Send(context.Background(), "buyer@example.com", "Hello", "<p>Hi</p>"))
	assert.Equal(t, "smtp.resend.com:587", gotAddr)
	assert.Equal(t, "noreply@shop.test", gotFrom)
	assert.Equal(t, []string{"buyer@example.com"}, gotTo)

	raw := string(gotMsg)
	assert.True(t, strings.HasPrefix(raw, "From: ShopHub <noreply@shop.test>\r\n"))
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.Contains(t, raw, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>Hi</p>"))
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{SMTPHost: "localhost", SMTPPort: "25"})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mailer.Send(ctx, "a@b.c", "s", "b"), context.Canceled)
}

func TestEnvelopeAddress(t *testing.T) {
	for header, want := range map[string]string{
		"ShopHub <noreply@shop.test>":            "noreply@shop.test",
		" plain@shop.test ":                      "plain@shop.test",
		`"Shop <Hub>" <noreply@shop.test>`:       "noreply@shop.test",
		"=?UTF-8?Q?Caf=C3=A9?= <cafe@shop.test>": "cafe@shop.test",
	} {
		got, err := envelopeAddress(header)
		require.NoError(t, err, header)
		assert.Equal(t, want, got, header)
	}

	for _, header := range []string{"", "ShopHub", "ShopHub <noreply@shop.test", "a@b.c\r\nBcc: x@y.z"} {
		_, err := envelopeAddress(header)
		assert.Error(t, err, header)
	}
}

func TestSMTPMailerRejectsBadAddresses(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{From: "ShopHub <noreply@shop.test>", SMTPHost: "localhost", SMTPPort: "25"})
	mailer.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	assert.Error(t, mailer.Send(context.Background(), "buyer@example.com\r\nBcc: all@example.com", "s", "b"))

	mailer.from = "not an address"
	assert.Error(t, mailer.Send(context.Background(), "buyer@example.com", "s", "b"))
}
