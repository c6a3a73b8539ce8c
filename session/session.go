// Package session keeps each visitor's view state between page loads.
// Sessions are short-lived; nothing in them outlives SESSION_TTL.
package session

import (
	"context"
	"errors"

	"fixxer/dashboard"
	"fixxer/pricing"
	"fixxer/upload"
	"fixxer/view"

	"github.com/google/uuid"
)

// CookieName carries the session id.
const CookieName = "fixxer_session"

var (
	ErrNotFound = errors.New("session not found")
	ErrCorrupt  = errors.New("session data corrupt")
)

type Session struct {
	ID        string             `json:"id"`
	Router    view.Router        `json:"router"`
	Files     []upload.File      `json:"files,omitempty"`
	Rejected  []upload.Rejection `json:"rejected,omitempty"`
	JobID     string             `json:"job_id,omitempty"`
	Dashboard dashboard.State    `json:"dashboard"`
	Billing   pricing.Period     `json:"billing,omitempty"`
	OpenFAQ   int                `json:"open_faq"`
}

func New() *Session {
	return &Session{
		ID:      uuid.NewString(),
		Billing: pricing.Monthly,
		OpenFAQ: -1,
	}
}

// Scanning reports whether a simulated scan is in flight.
func (s *Session) Scanning() bool {
	return s.JobID != ""
}

// Back leaves the dashboard and forgets the result and its UI state.
func (s *Session) Back() {
	s.Router.Back()
	s.Dashboard = dashboard.State{}
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
