package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CheckoutStatusCreated   = "created"
	CheckoutStatusCompleted = "completed"
)

// CheckoutSession records a hosted checkout session created for a plan.
type CheckoutSession struct {
	SessionID     string     `gorm:"uniqueIndex;size:255" json:"session_id"`
	PlanName      string     `json:"plan_name"`
	BillingPeriod string     `json:"billing_period"`
	PriceID       string     `json:"price_id"`
	Status        string     `gorm:"index" json:"status"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	gorm.Model
}
