// Package events publishes site activity (finished demo scans, created
// checkout sessions) to an event bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fixxer/models"

	"github.com/nats-io/nats.go"
)

const (
	SubjectScanCompleted   = "fixxer.scan.completed"
	SubjectCheckoutCreated = "fixxer.checkout.created"
)

type ScanCompleted struct {
	JobID        string    `json:"job_id"`
	Files        int       `json:"files"`
	OverallScore int       `json:"overall_score"`
	Issues       int       `json:"issues"`
	CompletedAt  time.Time `json:"completed_at"`
}

type CheckoutCreated struct {
	PlanName      string    `json:"plan_name"`
	BillingPeriod string    `json:"billing_period"`
	PriceID       string    `json:"price_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Publisher announces site activity. Implementations never fail the
// caller; delivery problems are logged.
type Publisher interface {
	ScanCompleted(ctx context.Context, e ScanCompleted)
	CheckoutCreated(ctx context.Context, s *models.CheckoutSession)
	Close()
}

// NATSPublisher publishes events to NATS.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher fails when the first connect does. Later drops are
// retried in the background.
func NewNATSPublisher(natsURL string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("fixxer"),
		nats.Timeout(2*time.Second),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	logger.Info("connected to NATS", "url", natsURL)
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) ScanCompleted(_ context.Context, e ScanCompleted) {
	p.publish(SubjectScanCompleted, e)
}

// CheckoutCreated publishes the plan choice. The session id stays out of
// the event.
func (p *NATSPublisher) CheckoutCreated(_ context.Context, s *models.CheckoutSession) {
	p.publish(SubjectCheckoutCreated, CheckoutCreated{
		PlanName:      s.PlanName,
		BillingPeriod: s.BillingPeriod,
		PriceID:       s.PriceID,
		CreatedAt:     time.Now().UTC(),
	})
}

func (p *NATSPublisher) publish(subject string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("failed to encode event", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Error("failed to publish event", "subject", subject, "error", err)
		return
	}
	p.logger.Debug("published event", "subject", subject)
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.logger.Info("disconnected from NATS")
	}
}

// IsConnected backs the health check.
func (p *NATSPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Nop drops every event.
type Nop struct{}

func (Nop) ScanCompleted(context.Context, ScanCompleted) {}

func (Nop) CheckoutCreated(context.Context, *models.CheckoutSession) {}

func (Nop) Close() {}

// Recorder keeps events in memory.
type Recorder struct {
	mu        sync.Mutex
	scans     []ScanCompleted
	checkouts []CheckoutCreated
}

func (r *Recorder) ScanCompleted(_ context.Context, e ScanCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans = append(r.scans, e)
}

func (r *Recorder) CheckoutCreated(_ context.Context, s *models.CheckoutSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts = append(r.checkouts, CheckoutCreated{
		PlanName:      s.PlanName,
		BillingPeriod: s.BillingPeriod,
		PriceID:       s.PriceID,
	})
}

func (r *Recorder) Scans() []ScanCompleted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScanCompleted(nil), r.scans...)
}

func (r *Recorder) Checkouts() []CheckoutCreated {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]CheckoutCreated(nil), r.checkouts...)
}

func (r *Recorder) Close() {}
