package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fixxer/checkout"
	"fixxer/config"
	"fixxer/content"
	"fixxer/events"
	"fixxer/handlers"
	"fixxer/logging"
	"fixxer/scan"
	"fixxer/session"
	"fixxer/store"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Serve the marketing site, the scan demo and the checkout endpoints.

Optional backends are enabled by their environment variables:
  DATABASE_DSN  MySQL checkout ledger
  REDIS_ADDR    shared session store (in-memory otherwise)
  NATS_URL      scan and checkout events`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	verbose := cfg.Verbose || getVerboseFlag(cmd)
	logger := newLogger(cfg.LogFormat, verbose)
	slog.SetDefault(logger)
	if cfg.EnvFile != "" {
		logger.Info("loaded config file", "path", cfg.EnvFile)
	} else {
		logger.Info("no .env file found, using environment variables")
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, closeAll, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	router, err := handlers.NewRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			"addr", srv.Addr,
			"checkout_enabled", cfg.CheckoutEnabled(),
			"prices", cfg.Prices.Configured(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("received shutdown signal, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(format string, verbose bool) *slog.Logger {
	if format == config.LogFormatJSON {
		return logging.NewJSON(os.Stderr, verbose)
	}
	return logging.New(os.Stderr, verbose)
}

// buildDeps wires the optional backends. The returned func releases them.
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (handlers.Deps, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (handlers.Deps, func(), error) {
		closeAll()
		return handlers.Deps{}, func() {}, err
	}

	site, err := loadSite(cfg.ContentFile)
	if err != nil {
		return fail(err)
	}

	var sessions session.Store
	if cfg.RedisAddr != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL, logger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = rs.Close() })
		sessions = rs
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Info("using in-memory session store")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.NatsURL != "" {
		np, err := events.NewNATSPublisher(cfg.NatsURL, logger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, np.Close)
		publisher = np
	}

	opts := []checkout.Option{checkout.WithNotifier(publisher)}
	if cfg.DatabaseDSN != "" {
		db, err := store.Open(cfg.DatabaseDSN, logger)
		if err != nil {
			return fail(err)
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		opts = append(opts, checkout.WithRecorder(store.NewCheckoutRepository(db)))
	}

	var creator checkout.SessionCreator
	if sc := checkout.NewStripeCreator(cfg.StripeSecretKey, cfg.BaseURL); sc != nil {
		creator = sc
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	sim := scan.NewSimulator(logger)
	sim.MinDelay = cfg.ScanMinDelay
	sim.Jitter = cfg.ScanJitter
	sim.SettleDelay = cfg.ScanSettleDelay

	return handlers.Deps{
		Site:           site,
		Sessions:       sessions,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  strings.HasPrefix(cfg.BaseURL, "https://"),
		Simulator:      sim,
		Jobs:           scan.NewRegistry(cfg.SessionTTL),
		Checkout:       checkout.NewService(cfg.Prices, creator, logger, opts...),
		Events:         publisher,
		PublishableKey: cfg.StripePublishableKey,
		Logger:         logger,
	}, closeAll, nil
}

func loadSite(path string) (*content.Site, error) {
	if path == "" {
		return content.Default()
	}
	return content.LoadFile(path)
}
