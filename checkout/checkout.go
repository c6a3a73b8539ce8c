// Package checkout turns a plan selection into a hosted payment page.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fixxer/models"
	"fixxer/pricing"
)

// SessionCreator opens hosted checkout sessions with the payment provider
// and reports whether one has been paid.
type SessionCreator interface {
	CreateSession(ctx context.Context, priceID, planName string) (Session, error)
	Paid(ctx context.Context, sessionID string) (bool, error)
}

// Recorder keeps a ledger of created sessions.
type Recorder interface {
	Record(ctx context.Context, s *models.CheckoutSession) error
	MarkCompleted(ctx context.Context, sessionID string) error
}

// Notifier is told about every created session.
type Notifier interface {
	CheckoutCreated(ctx context.Context, s *models.CheckoutSession)
}

type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

type Request struct {
	PlanName      string         `json:"planName" binding:"required"`
	BillingPeriod pricing.Period `json:"billingPeriod"`
	PriceID       string         `json:"priceId"`
}

type Service struct {
	prices   PriceTable
	creator  SessionCreator
	recorder Recorder
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(prices PriceTable, creator SessionCreator, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		prices:   prices,
		creator:  creator,
		recorder: NopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prices exposes the table the service resolves against.
func (s *Service) Prices() PriceTable {
	return s.prices
}

// Checkout resolves the plan's price and creates a hosted session. A plan
// without a configured price fails before the provider is contacted. A
// client-supplied PriceID must match the table. No retries.
func (s *Service) Checkout(ctx context.Context, req Request) (Session, error) {
	period := req.BillingPeriod
	if period == "" {
		period = s.periodFor(req.PlanName, req.PriceID)
	}

	priceID, err := s.prices.Resolve(req.PlanName, period)
	if err != nil {
		s.logger.Warn("checkout halted", "plan", req.PlanName, "period", period, "error", err)
		return Session{}, err
	}
	if req.PriceID != "" && req.PriceID != priceID {
		s.logger.Warn("checkout price mismatch", "plan", req.PlanName, "period", period)
		return Session{}, fmt.Errorf("%s: %w", Key(req.PlanName, period), ErrPriceNotConfigured)
	}
	if s.creator == nil {
		return Session{}, ErrProviderDisabled
	}

	session, err := s.creator.CreateSession(ctx, priceID, req.PlanName)
	if errors.Is(err, ErrProviderDisabled) {
		s.logger.Error("checkout attempted without payment provider", "plan", req.PlanName)
		return Session{}, err
	}
	if err != nil {
		s.logger.Error("checkout session failed", "plan", req.PlanName, "error", err)
		return Session{}, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}
	if strings.TrimSpace(session.URL) == "" {
		s.logger.Error("checkout session without url", "plan", req.PlanName)
		return Session{}, ErrRedirectFailed
	}

	record := &models.CheckoutSession{
		SessionID:     session.ID,
		PlanName:      req.PlanName,
		BillingPeriod: string(period),
		PriceID:       priceID,
		Status:        models.CheckoutStatusCreated,
	}
	if err := s.recorder.Record(ctx, record); err != nil {
		// The visitor can still pay; the ledger entry is best effort.
		s.logger.Error("failed to record checkout session", "error", err)
	}
	if s.notifier != nil {
		s.notifier.CheckoutCreated(ctx, record)
	}

	s.logger.Info("checkout session created", "plan", req.PlanName, "period", period)
	return session, nil
}

// periodFor infers the billing period from a raw price id, defaulting to monthly.
func (s *Service) periodFor(planName, priceID string) pricing.Period {
	if priceID != "" && s.prices[Key(planName, pricing.Monthly)] != priceID &&
		s.prices[Key(planName, pricing.Yearly)] == priceID {
		return pricing.Yearly
	}
	return pricing.Monthly
}

// Complete marks a session as paid after the provider redirects back. The
// ledger is only touched once the provider confirms the payment.
func (s *Service) Complete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if s.creator == nil {
		return ErrProviderDisabled
	}

	paid, err := s.creator.Paid(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionLookup, err)
	}
	if !paid {
		return ErrNotPaid
	}
	return s.recorder.MarkCompleted(ctx, sessionID)
}

// NopRecorder discards ledger writes.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *models.CheckoutSession) error { return nil }

func (NopRecorder) MarkCompleted(context.Context, string) error { return nil }
