package checkout

import "errors"

// Checkout failures. Each one maps to a blocking alert for the visitor.
var (
	ErrPriceNotConfigured = errors.New("price not configured")
	ErrProviderDisabled   = errors.New("payment provider not configured")
	ErrSessionFailed      = errors.New("failed to create checkout session")
	ErrRedirectFailed     = errors.New("checkout session has no redirect url")
	ErrSessionLookup      = errors.New("failed to look up checkout session")
	ErrNotPaid            = errors.New("checkout session not paid")
)

// Alert messages shown to the visitor.
const (
	AlertPriceNotConfigured = "Price not configured for this plan. Please contact support."
	AlertSessionFailed      = "Error creating checkout session. Please try again."
	AlertRedirectFailed     = "Error redirecting to checkout. Please try again."
	AlertGeneric            = "An error occurred. Please try again."
)

// AlertFor returns the visitor-facing message for a checkout error.
func AlertFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPriceNotConfigured):
		return AlertPriceNotConfigured
	case errors.Is(err, ErrSessionFailed), errors.Is(err, ErrProviderDisabled):
		return AlertSessionFailed
	case errors.Is(err, ErrRedirectFailed):
		return AlertRedirectFailed
	default:
		return AlertGeneric
	}
}
