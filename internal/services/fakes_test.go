package services

import (
	"context"
	"sync"

	"github.com/javajoker/shophub-backend/internal/dispatch"
)

// inlineJobs runs submitted jobs synchronously so tests can assert on their effects.
type inlineJobs struct {
	mu     sync.Mutex
	names  []string
	errors []error
}

func (j *inlineJobs) Submit(job dispatch.Job) bool {
	err := job.Run(context.Background())
	j.mu.Lock()
	defer j.mu.Unlock()
	j.names = append(j.names, job.Name)
	j.errors = append(j.errors, err)
	return true
}

func (j *inlineJobs) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.names...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OrderEvent(nil), p.events...)
}

type fakeGateway struct {
	sessionInput *CheckoutSessionInput
	sessionErr   error

	intentAmount   int64
	intentMetadata map[string]string

	event    *WebhookEvent
	eventErr error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, input *CheckoutSessionInput) (*CheckoutSessionResult, error) {
	g.sessionInput = input
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	return &CheckoutSessionResult{ID: "cs_test_123", URL: "https://checkout.stripe.com/c/pay/cs_test_123"}, nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount int64, metadata map[string]string) (*PaymentIntentResult, error) {
	g.intentAmount = amount
	g.intentMetadata = metadata
	return &PaymentIntentResult{ClientSecret: "pi_secret", PaymentIntentID: "pi_123"}, nil
}

func (g *fakeGateway) ParseWebhookEvent(_ []byte, _ string) (*WebhookEvent, error) {
	if g.eventErr != nil {
		return nil, g.eventErr
	}
	return g.event, nil
}
