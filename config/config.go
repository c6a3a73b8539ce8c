package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"fixxer/checkout"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Port    int
	BaseURL string

	// Payment provider
	StripePublishableKey string
	StripeSecretKey      string
	Prices               checkout.PriceTable

	// Optional backends
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NatsURL       string

	// Sessions and scan simulation
	SessionTTL      time.Duration
	ScanMinDelay    time.Duration
	ScanJitter      time.Duration
	ScanSettleDelay time.Duration

	ContentFile string
	Verbose     bool
	LogFormat   string

	// EnvFile is the .env file Load read, if any.
	EnvFile string
}

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Load reads .env (when present) and the process environment. The file
// it read is reported in EnvFile.
func Load() (*Config, error) {
	envPaths := []string{
		".env",
		"../.env",
		"/app/.env", // Docker
	}

	loaded := ""
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			loaded = path
			break
		}
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

// FromEnv builds a Config from a lookup function and validates it.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		BaseURL:              get("BASE_URL", "http://localhost:8585"),
		StripePublishableKey: getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeSecretKey:      getenv("STRIPE_SECRET_KEY"),
		Prices: checkout.PriceTable{
			"pro_monthly":  getenv("STRIPE_PRICE_PRO_MONTHLY"),
			"pro_yearly":   getenv("STRIPE_PRICE_PRO_YEARLY"),
			"team_monthly": getenv("STRIPE_PRICE_TEAM_MONTHLY"),
			"team_yearly":  getenv("STRIPE_PRICE_TEAM_YEARLY"),
		},
		DatabaseDSN:   getenv("DATABASE_DSN"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		NatsURL:       getenv("NATS_URL"),
		ContentFile:   getenv("CONTENT_FILE"),
		Verbose:       get("VERBOSE", "false") == "true",
		LogFormat:     strings.ToLower(get("LOG_FORMAT", LogFormatText)),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(get("PORT", "8585")); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(get("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"SESSION_TTL", "30m", &cfg.SessionTTL},
		{"SCAN_MIN_DELAY", "1s", &cfg.ScanMinDelay},
		{"SCAN_JITTER", "2s", &cfg.ScanJitter},
		{"SCAN_SETTLE_DELAY", "1s", &cfg.ScanSettleDelay},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(get(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.SessionTTL < time.Minute {
		return ErrInvalidSessionTTL
	}
	if c.ScanMinDelay < 0 || c.ScanJitter < 0 || c.ScanSettleDelay < 0 {
		return ErrInvalidScanDelay
	}
	if c.StripeSecretKey != "" && c.StripePublishableKey == "" {
		return ErrSecretWithoutKey
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// CheckoutEnabled reports whether hosted checkout can be used.
func (c *Config) CheckoutEnabled() bool {
	return c.StripeSecretKey != ""
}
