// Package view holds the page-level state machine that decides whether a
// visitor sees the marketing home page or the scan dashboard.
package view

import "fixxer/models"

type Kind string

const (
	Home      Kind = "home"
	Dashboard Kind = "dashboard"
)

// Router is a value object; the zero value is on the home view.
type Router struct {
	Active Kind               `json:"view"`
	Scan   *models.ScanResult `json:"result,omitempty"`
}

// Current returns the active view.
func (r *Router) Current() Kind {
	if r.Active == "" {
		return Home
	}
	return r.Active
}

// Result returns the stored scan result, or nil on the home view.
func (r *Router) Result() *models.ScanResult {
	return r.Scan
}

// Complete switches to the dashboard and replaces any previous result.
func (r *Router) Complete(result models.ScanResult) {
	r.Scan = &result
	r.Active = Dashboard
}

// Back returns to the home view and discards the result.
func (r *Router) Back() {
	r.Active = Home
	r.Scan = nil
}
