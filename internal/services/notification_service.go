// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/shophub-backend/internal/config"
	"github.com/javajoker/shophub-backend/internal/models"
)

// Mailer delivers one rendered HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type NotificationService struct {
	mailer Mailer
	config config.EmailConfig
}

type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

// NewNotificationService picks the SMTP relay when an API key is configured
// and a log-only mailer otherwise.
func NewNotificationService(cfg config.EmailConfig) *NotificationService {
	var mailer Mailer = logMailer{}
	if cfg.APIKey != "" {
		mailer = NewSMTPMailer(cfg)
	} else {
		logrus.Warn("EMAIL_API_KEY is not set. Emails will be skipped.")
	}
	return &NotificationService{mailer: mailer, config: cfg}
}

func NewNotificationServiceWithMailer(cfg config.EmailConfig, mailer Mailer) *NotificationService {
	return &NotificationService{mailer: mailer, config: cfg}
}

var confirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<div style="font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; color:#0f172a">
  <h2>Thanks for your purchase!</h2>
  <p>Your order <strong>#{{.ShortID}}</strong> was placed on {{.PlacedAt}}.</p>
  <h3>Items</h3>
  <ul>{{range .Items}}<li>{{.Name}} &times; {{.Quantity}} &ndash; {{.LineTotal}}</li>{{end}}</ul>
  <p style="margin-top:12px; font-weight:600;">Total: {{.Total}}</p>
  <p style="margin-top:16px;">You can view your order details at any time from your account.</p>
</div>`))

var shipmentTemplate = template.Must(template.New("order_shipped").Parse(`
<div style="font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; color:#0f172a">
  <h2>Your order is on the way</h2>
  <p>Order <strong>#{{.ShortID}}</strong> {{if .ShippedAt}}shipped on {{.ShippedAt}}{{else}}has shipped{{end}}.</p>
  {{if .TrackingNumber}}<p>Tracking Number: <strong>{{.TrackingNumber}}</strong></p>{{end}}
  <p>You can track your package using your carrier's tracking tool.</p>
</div>`))

type emailLine struct {
	Name      string
	Quantity  int
	LineTotal string
}

// BuildOrderConfirmation renders the confirmation for an order loaded with
// its items and their products.
func (s *NotificationService) BuildOrderConfirmation(order *models.Order) (*EmailMessage, error) {
	lines := make([]emailLine, 0, len(order.Items))
	for _, item := range order.Items {
		name := "Item"
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		lines = append(lines, emailLine{
			Name:      name,
			Quantity:  item.Quantity,
			LineTotal: FormatMoney(item.Price * float64(item.Quantity)),
		})
	}

	body, err := render(confirmationTemplate, map[string]interface{}{
		"ShortID":  order.ShortID(),
		"PlacedAt": formatEmailTime(order.CreatedAt),
		"Items":    lines,
		"Total":    FormatMoney(order.Total),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return &EmailMessage{
		To:      order.Email,
		Subject: "Order Confirmation #" + order.ShortID(),
		HTML:    body,
	}, nil
}

func (s *NotificationService) BuildShipmentNotice(order *models.Order) (*EmailMessage, error) {
	data := map[string]interface{}{
		"ShortID":        order.ShortID(),
		"ShippedAt":      "",
		"TrackingNumber": "",
	}
	if order.ShippedAt != nil {
		data["ShippedAt"] = formatEmailTime(*order.ShippedAt)
	}
	if order.TrackingNumber != nil {
		data["TrackingNumber"] = *order.TrackingNumber
	}

	body, err := render(shipmentTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return &EmailMessage{
		To:      order.Email,
		Subject: fmt.Sprintf("Your order #%s has shipped!", order.ShortID()),
		HTML:    body,
	}, nil
}

func (s *NotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	msg, err := s.BuildOrderConfirmation(order)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func (s *NotificationService) SendShipmentNotice(ctx context.Context, order *models.Order) error {
	msg, err := s.BuildShipmentNotice(order)
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

func (s *NotificationService) deliver(ctx context.Context, msg *EmailMessage) error {
	if msg.To == "" {
		logrus.WithField("subject", msg.Subject).Debug("Skipping email without recipient")
		return nil
	}
	if err := s.mailer.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
		return fmt.Errorf("failed to send %q: %w", msg.Subject, err)
	}
	return nil
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatEmailTime(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006 3:04 PM MST")
}

// SMTPMailer relays through the email provider's SMTP endpoint, which
// authenticates with the provider API key as the password.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.From,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.APIKey, cfg.SMTPHost),
		send: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := envelopeAddress(m.from)
	if err != nil {
		return fmt.Errorf("invalid sender address %q: %w", m.from, err)
	}
	rcpt, err := envelopeAddress(to)
	if err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	return m.send(m.addr, m.auth, from, []string{rcpt}, buildMIMEMessage(m.from, rcpt, subject, html))
}

func buildMIMEMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html)
	return []byte(b.String())
}

// envelopeAddress returns the bare address of an RFC 5322 address such as
// "ShopHub <noreply@shop.test>".
func envelopeAddress(address string) (string, error) {
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return "", err
	}
	return parsed.Address, nil
}

type logMailer struct{}

func (logMailer) Send(_ context.Context, to, subject, _ string) error {
	logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email skipped (provider not configured)")
	return nil
}
