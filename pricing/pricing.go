// Package pricing computes what the pricing section shows for a billing period.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"fixxer/content"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Period string

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// YearlyDiscountPercent is taken off twelve monthly payments.
const YearlyDiscountPercent = 20

var ErrInvalidPeriod = errors.New("invalid billing period: must be monthly or yearly")

var printer = message.NewPrinter(language.English)

// ParsePeriod accepts "monthly" or "yearly" in any case. An empty string
// means monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "", Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidPeriod)
	}
}

// Toggle flips between monthly and yearly.
func (p Period) Toggle() Period {
	if p == Yearly {
		return Monthly
	}
	return Yearly
}

// Amount is the whole-dollar price charged per period. Yearly rounds down.
func Amount(monthly int, p Period) int {
	if p != Yearly || monthly <= 0 {
		return monthly
	}
	return monthly * 12 * (100 - YearlyDiscountPercent) / 100
}

// YearlySavingsCents is the discount on twelve monthly payments, in cents.
// It is not the gap to the floored yearly price: 29/month saves 69.60.
func YearlySavingsCents(monthly int) int {
	if monthly <= 0 {
		return 0
	}
	return monthly * 12 * YearlyDiscountPercent
}

// FormatUSD renders whole dollars with thousands separators.
func FormatUSD(dollars int) string {
	return printer.Sprintf("$%d", dollars)
}

// FormatCents renders an amount in cents the way the pricing copy does:
// no fraction for whole dollars and no trailing zero otherwise.
func FormatCents(cents int) string {
	dollars, rem := cents/100, cents%100
	switch {
	case rem == 0:
		return FormatUSD(dollars)
	case rem%10 == 0:
		return printer.Sprintf("$%d.%d", dollars, rem/10)
	default:
		return printer.Sprintf("$%d.%02d", dollars, rem)
	}
}

// PeriodLabel is the caption under a paid plan's price.
func PeriodLabel(plan content.Plan, p Period) string {
	if p == Yearly {
		return "per year"
	}
	return plan.Period
}

// Card is a plan as rendered for one billing period.
type Card struct {
	content.Plan
	Price       string
	PeriodLabel string
	Savings     string
	Billing     Period
}

// Cards renders every plan for period p.
func Cards(plans []content.Plan, p Period) []Card {
	cards := make([]Card, 0, len(plans))
	for _, plan := range plans {
		card := Card{
			Plan:    plan,
			Price:   FormatUSD(Amount(plan.MonthlyPrice, p)),
			Billing: p,
		}
		if !plan.Free() {
			card.PeriodLabel = PeriodLabel(plan, p)
			if p == Yearly {
				card.Savings = FormatCents(YearlySavingsCents(plan.MonthlyPrice))
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// ToggleFAQ opens index, or closes it when it is already open. -1 means
// every answer is closed.
func ToggleFAQ(open, index int) int {
	if open == index {
		return -1
	}
	return index
}
