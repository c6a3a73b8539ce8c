package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"fixxer/checkout"
	"fixxer/content"
	"fixxer/pricing"

	"github.com/gin-gonic/gin"
)

type checkoutForm struct {
	Plan    string `form:"plan" binding:"required"`
	Billing string `form:"billing"`
}

type PlanPrice struct {
	Plan        string `json:"plan"`
	Amount      int    `json:"amount"`
	Price       string `json:"price"`
	PeriodLabel string `json:"periodLabel,omitempty"`
	Savings     string `json:"savings,omitempty"`
	Popular     bool   `json:"popular"`
	Action      string `json:"action"`
	Configured  bool   `json:"configured"`
}

// CheckoutHandler sends visitors to the payment provider's hosted page.
type CheckoutHandler struct {
	Service        *checkout.Service
	Site           *content.Site
	PublishableKey string
	Logger         *slog.Logger
}

func NewCheckoutHandler(d Deps) *CheckoutHandler {
	return &CheckoutHandler{
		Service:        d.Checkout,
		Site:           d.Site,
		PublishableKey: d.PublishableKey,
		Logger:         d.Logger,
	}
}

func (h *CheckoutHandler) layout() Layout {
	return Layout{Site: h.Site, PublishableKey: h.PublishableKey}
}

func statusFor(err error) int {
	if errors.Is(err, checkout.ErrPriceNotConfigured) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Checkout handles the pricing form and redirects to the hosted page.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var form checkoutForm
	if err := c.ShouldBind(&form); err != nil {
		showAlert(c, h.layout(), http.StatusBadRequest, checkout.AlertGeneric, "/#pricing")
		return
	}

	period, err := pricing.ParsePeriod(form.Billing)
	if err != nil {
		showAlert(c, h.layout(), http.StatusBadRequest, checkout.AlertGeneric, "/#pricing")
		return
	}

	if plan, err := h.Site.Plan(form.Plan); err == nil && plan.Action == content.ActionContact {
		showAlert(c, h.layout(), http.StatusOK, plan.ContactMessage, "/#pricing")
		return
	}

	session, err := h.Service.Checkout(c.Request.Context(), checkout.Request{
		PlanName:      form.Plan,
		BillingPeriod: period,
	})
	if err != nil {
		showAlert(c, h.layout(), statusFor(err), checkout.AlertFor(err), "/#pricing")
		return
	}

	seeOther(c, session.URL)
}

// CheckoutJSON creates a session and returns its id and hosted URL.
func (h *CheckoutHandler) CheckoutJSON(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.Service.Checkout(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": checkout.AlertFor(err)})
		return
	}

	c.JSON(http.StatusOK, session)
}

// Prices lists every plan as displayed for ?billing=.
func (h *CheckoutHandler) Prices(c *gin.Context) {
	period, err := pricing.ParsePeriod(c.Query("billing"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table := h.Service.Prices()
	plans := make([]PlanPrice, 0, len(h.Site.Plans))
	for _, card := range pricing.Cards(h.Site.Plans, period) {
		_, resolveErr := table.Resolve(card.Name, period)
		plans = append(plans, PlanPrice{
			Plan:        card.Name,
			Amount:      pricing.Amount(card.MonthlyPrice, period),
			Price:       card.Price,
			PeriodLabel: card.PeriodLabel,
			Savings:     card.Savings,
			Popular:     card.Popular,
			Action:      card.Action,
			Configured:  resolveErr == nil,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"billing": period,
		"plans":   plans,
	})
}
