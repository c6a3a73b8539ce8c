package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	ErrInvalidPort       = errors.New("invalid PORT: must be between 1 and 65535")
	ErrInvalidBaseURL    = errors.New("invalid BASE_URL: must be an absolute http(s) url")
	ErrInvalidSessionTTL = errors.New("invalid SESSION_TTL: must be at least 1 minute")
	ErrInvalidScanDelay  = errors.New("invalid scan delay: must be non-negative")
	ErrSecretWithoutKey  = errors.New("STRIPE_SECRET_KEY is set but STRIPE_PUBLISHABLE_KEY is empty")
	ErrInvalidLogFormat  = errors.New("invalid LOG_FORMAT: must be text or json")
)
