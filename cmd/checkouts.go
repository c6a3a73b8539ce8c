package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"fixxer/config"
	"fixxer/logging"
	"fixxer/models"
	"fixxer/store"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("DATABASE_DSN is not set")

// NewCheckoutsCmd creates the checkouts command.
func NewCheckoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkouts",
		Short: "List recent checkout sessions from the ledger",
		Long: `List the most recent hosted checkout sessions recorded in the MySQL ledger.
Requires DATABASE_DSN.`,
		Args: cobra.NoArgs,
		RunE: runCheckoutsCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")

	return cmd
}

func runCheckoutsCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.DatabaseDSN == "" {
		return errNoDatabase
	}

	logger := logging.New(os.Stderr, getVerboseFlag(cmd))
	db, err := store.Open(cfg.DatabaseDSN, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	sessions, err := store.NewCheckoutRepository(db).Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return writeCheckouts(cmd.OutOrStdout(), sessions)
}

func writeCheckouts(w io.Writer, sessions []models.CheckoutSession) error {
	md := markdown.NewMarkdown(w)
	md.H2(fmt.Sprintf("Checkout sessions (%d)", len(sessions)))
	md.PlainText("")
	if len(sessions) == 0 {
		md.PlainText("No checkout sessions recorded yet.")
		return md.Build()
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		completed := "-"
		if s.CompletedAt != nil {
			completed = s.CompletedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.PlanName,
			s.BillingPeriod,
			s.Status,
			completed,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Created", "Plan", "Billing", "Status", "Completed"},
		Rows:   rows,
	})
	return md.Build()
}
