package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"fixxer/checkout"
	"fixxer/config"
	"fixxer/pricing"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// NewPricesCmd creates the prices command.
func NewPricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show plan prices and their checkout configuration",
		Long: `Print every plan as the pricing section shows it for a billing period,
together with the payment provider price it resolves to.

Examples:
  fixxer prices
  fixxer prices --billing yearly`,
		Args: cobra.NoArgs,
		RunE: runPricesCmd,
	}

	cmd.Flags().StringP("billing", "b", string(pricing.Monthly), "Billing period (monthly or yearly)")

	return cmd
}

func runPricesCmd(cmd *cobra.Command, _ []string) error {
	raw, err := cmd.Flags().GetString("billing")
	if err != nil {
		return err
	}
	period, err := pricing.ParsePeriod(raw)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	site, err := loadSite(cfg.ContentFile)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(site.Plans))
	for _, card := range pricing.Cards(site.Plans, period) {
		priceID, err := cfg.Prices.Resolve(card.Name, period)
		if err != nil {
			priceID = "not configured"
		}
		rows = append(rows, []string{
			card.Name,
			card.Price,
			card.PeriodLabel,
			card.Savings,
			"`" + checkout.Key(card.Name, period) + "`",
			priceID,
		})
	}

	md := markdown.NewMarkdown(cmd.OutOrStdout())
	md.H2("Plans (" + string(period) + ")")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Plan", "Price", "Period", "Savings", "Key", "Price ID"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText("Checkout enabled: " + strconv.FormatBool(cfg.CheckoutEnabled()))
	if keys := cfg.Prices.Configured(); len(keys) > 0 {
		md.PlainText("Configured prices: " + strings.Join(keys, ", "))
	} else {
		md.PlainText("Configured prices: none")
	}
	return md.Build()
}
