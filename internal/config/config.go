// Package config loads and validates application configuration from environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PayU holds the payment gateway credentials and environment selection.
type PayU struct {
	// Environment selects the gateway host: "sandbox" or "production".
	Environment string

	// PosID is the merchant point-of-sale identifier sent with every order.
	PosID string

	// ClientID / ClientSecret are the OAuth client-credentials pair.
	ClientID     string
	ClientSecret string

	// WebhookSecret is the shared key used to verify the OpenPayU-Signature
	// header on inbound notifications.
	WebhookSecret string
}

// Config holds all configuration values for the API server and the sweeper.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// SiteURL is the public base URL of this service, used to build the
	// gateway notify/continue callback URLs. Required.
	SiteURL string

	// FieldEncryptionKey is the 32-byte key (base64, FIELD_ENCRYPTION_KEY)
	// for encrypting sensitive record fields at rest. Required.
	FieldEncryptionKey []byte

	// JWTSigningKey signs and verifies staff bearer tokens (HS256). Required.
	JWTSigningKey string

	// RetentionDays is the grace period after a trip's end date before its
	// sensitive records are purged. Defaults to 30.
	RetentionDays int

	// IntentExpiryDays is how long a payment intent may sit non-terminal
	// before the expiry sweep resolves it. Defaults to 7.
	IntentExpiryDays int

	// PayU is the payment gateway configuration. All fields required.
	PayU PayU
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set or invalid.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		PayU: PayU{
			Environment: getEnv("PAYU_ENV", "sandbox"),
		},
	}

	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg.DatabaseURL = required("DATABASE_URL")
	cfg.SiteURL = strings.TrimRight(required("SITE_URL"), "/")
	cfg.JWTSigningKey = required("JWT_SIGNING_KEY")
	cfg.PayU.PosID = required("PAYU_POS_ID")
	cfg.PayU.ClientID = required("PAYU_CLIENT_ID")
	cfg.PayU.ClientSecret = required("PAYU_CLIENT_SECRET")
	cfg.PayU.WebhookSecret = required("PAYU_WEBHOOK_SECRET")

	keyB64 := required("FIELD_ENCRYPTION_KEY")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	key, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return Config{}, fmt.Errorf("FIELD_ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(key) != 32 {
		return Config{}, fmt.Errorf("FIELD_ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	cfg.FieldEncryptionKey = key

	if cfg.PayU.Environment != "sandbox" && cfg.PayU.Environment != "production" {
		return Config{}, fmt.Errorf("PAYU_ENV must be sandbox or production, got %q", cfg.PayU.Environment)
	}

	cfg.RetentionDays, err = getEnvInt("RETENTION_DAYS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.IntentExpiryDays, err = getEnvInt("INTENT_EXPIRY_DAYS", 7)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt parses an integer environment variable with a fallback.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
