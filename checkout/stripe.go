package checkout

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeCreator opens subscription checkout sessions on Stripe's hosted page.
type StripeCreator struct {
	client     *session.Client
	successURL string
	cancelURL  string
}

// NewStripeCreator returns nil when secretKey is empty. A nil creator
// reports ErrProviderDisabled.
func NewStripeCreator(secretKey, baseURL string) *StripeCreator {
	if secretKey == "" {
		return nil
	}
	base := strings.TrimRight(baseURL, "/")
	return &StripeCreator{
		client: &session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
		successURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  base + "/#pricing",
	}
}

func (c *StripeCreator) CreateSession(ctx context.Context, priceID, planName string) (Session, error) {
	if c == nil {
		return Session{}, ErrProviderDisabled
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
		Metadata: map[string]string{
			"plan": planName,
		},
	}
	params.Context = ctx

	s, err := c.client.New(params)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}

// Paid reports whether the session finished with a settled payment.
func (c *StripeCreator) Paid(ctx context.Context, sessionID string) (bool, error) {
	if c == nil {
		return false, ErrProviderDisabled
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.client.Get(sessionID, params)
	if err != nil {
		return false, err
	}
	if s.Status != stripe.CheckoutSessionStatusComplete {
		return false, nil
	}
	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired, nil
}
