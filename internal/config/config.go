// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database. Optional: when unset, the server falls back to the
	// in-memory product registry.
	DatabaseURL string `koanf:"database_url"`

	// Redis (channel cache, rate limiting)
	RedisURL string `koanf:"redis_url"`

	// JWT Authentication. JWTSecretPrevious supports zero-downtime secret
	// rotation: new tokens are signed with JWTSecret while tokens signed
	// with the previous secret keep validating during the rotation window.
	JWTSecret         string `koanf:"jwt_secret"`
	JWTSecretPrevious string `koanf:"jwt_secret_previous"`

	// Ledger connection. LedgerMode selects the backing client:
	// "hedera" talks to the real network, "memory" runs an in-process fake.
	LedgerMode       string `koanf:"ledger_mode"`
	HederaNetwork    string `koanf:"hedera_network"`
	HederaAccountID  string `koanf:"hedera_account_id"`
	HederaPrivateKey string `koanf:"hedera_private_key"`
	HederaTopicID    string `koanf:"hedera_topic_id"` // optional pre-provisioned log channel
	HederaTokenID    string `koanf:"hedera_token_id"` // optional pre-provisioned NFT collection

	// Certificate minting
	MintThreshold float64 `koanf:"mint_threshold"` // minimum authenticity score for NFT minting

	// R2 (Cloudflare Object Storage) for certificate metadata archival
	R2BucketName      string `koanf:"r2_bucket_name"`
	R2AccessKeyID     string `koanf:"r2_access_key_id"`
	R2SecretAccessKey string `koanf:"r2_secret_access_key"`
	R2Endpoint        string `koanf:"r2_endpoint"`

	// Tracing
	TracingEnabled  bool   `koanf:"tracing_enabled"`
	TracingEndpoint string `koanf:"tracing_endpoint"`

	// CORS
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// Configuration validation errors.
var (
	ErrMissingJWTSecret         = errors.New("JWT_SECRET is required")
	ErrInvalidLedgerMode        = errors.New("LEDGER_MODE must be \"hedera\" or \"memory\"")
	ErrInvalidHederaNetwork     = errors.New("HEDERA_NETWORK must be mainnet, testnet, or previewnet")
	ErrMissingHederaAccountID   = errors.New("HEDERA_ACCOUNT_ID is required when LEDGER_MODE is hedera")
	ErrMissingHederaPrivateKey  = errors.New("HEDERA_PRIVATE_KEY is required when LEDGER_MODE is hedera")
	ErrInvalidMintThreshold     = errors.New("MINT_THRESHOLD must be between 0 and 1")
	ErrMissingR2BucketName      = errors.New("R2_BUCKET_NAME is required")
	ErrMissingR2AccessKeyID     = errors.New("R2_ACCESS_KEY_ID is required")
	ErrMissingR2SecretAccessKey = errors.New("R2_SECRET_ACCESS_KEY is required")
	ErrMissingR2Endpoint        = errors.New("R2_ENDPOINT is required")
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
)

// Ledger modes.
const (
	LedgerModeHedera = "hedera"
	LedgerModeMemory = "memory"
)

// Default values for non-secret configuration.
const (
	DefaultPort          = 8080
	DefaultEnv           = "development"
	DefaultLedgerMode    = LedgerModeMemory
	DefaultHederaNetwork = "testnet"
	DefaultMintThreshold = 0.7
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try AFRICHAIN_PORT first, then PORT for compatibility with PaaS defaults
	port, portErr := getEnvIntOrDefaultMulti([]string{"AFRICHAIN_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	mintThreshold, thresholdErr := getEnvFloatOrDefault("MINT_THRESHOLD", k.Float64("mint_threshold"), DefaultMintThreshold)
	if thresholdErr != nil {
		loadErrs = append(loadErrs, thresholdErr)
	}

	tracingEnabled := false
	if k.Exists("tracing_enabled") {
		tracingEnabled = k.Bool("tracing_enabled")
	}
	if val := os.Getenv("TRACING_ENABLED"); val != "" {
		// Env var takes precedence over file config
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			tracingEnabled = true
		case "false", "0", "no", "off":
			tracingEnabled = false
		}
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:              port,
		Env:               getEnvOrDefaultMulti([]string{"AFRICHAIN_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:       getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:          getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		JWTSecret:         getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTSecretPrevious: getEnvOrKoanf("JWT_SECRET_PREVIOUS", k, "jwt_secret_previous"),
		LedgerMode:        getEnvOrDefault("LEDGER_MODE", k.String("ledger_mode"), DefaultLedgerMode),
		HederaNetwork:     getEnvOrDefault("HEDERA_NETWORK", k.String("hedera_network"), DefaultHederaNetwork),
		HederaAccountID:   getEnvOrKoanf("HEDERA_ACCOUNT_ID", k, "hedera_account_id"),
		HederaPrivateKey:  getEnvOrKoanf("HEDERA_PRIVATE_KEY", k, "hedera_private_key"),
		HederaTopicID:     getEnvOrKoanf("HEDERA_TOPIC_ID", k, "hedera_topic_id"),
		HederaTokenID:     getEnvOrKoanf("HEDERA_TOKEN_ID", k, "hedera_token_id"),
		MintThreshold:     mintThreshold,
		R2BucketName:      getEnvOrKoanf("R2_BUCKET_NAME", k, "r2_bucket_name"),
		R2AccessKeyID:     getEnvOrKoanf("R2_ACCESS_KEY_ID", k, "r2_access_key_id"),
		R2SecretAccessKey: getEnvOrKoanf("R2_SECRET_ACCESS_KEY", k, "r2_secret_access_key"),
		R2Endpoint:        getEnvOrKoanf("R2_ENDPOINT", k, "r2_endpoint"),
		TracingEnabled:    tracingEnabled,
		TracingEndpoint:   getEnvOrKoanf("TRACING_ENDPOINT", k, "tracing_endpoint"),
		AllowedOrigins:    getOrigins(k),
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getOrigins parses ALLOWED_ORIGINS as a comma-separated list, falling back
// to the config file and then to the development default.
func getOrigins(k *koanf.Koanf) []string {
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		parts := strings.Split(val, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		return origins
	}
	if origins := k.Strings("allowed_origins"); len(origins) > 0 {
		return origins
	}
	return []string{"http://localhost:3000"}
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefault returns the environment variable value if set, otherwise the koanf value, or default.
func getEnvOrDefault(envKey string, koanfVal string, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set, otherwise the koanf value, or default.
// Returns an error if the environment variable is set but cannot be parsed as a float.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}

	switch c.LedgerMode {
	case LedgerModeMemory:
		// No credentials needed for the in-memory ledger.
	case LedgerModeHedera:
		if c.HederaAccountID == "" {
			errs = append(errs, ErrMissingHederaAccountID)
		}
		if c.HederaPrivateKey == "" {
			errs = append(errs, ErrMissingHederaPrivateKey)
		}
	default:
		errs = append(errs, ErrInvalidLedgerMode)
	}

	switch c.HederaNetwork {
	case "mainnet", "testnet", "previewnet":
	default:
		errs = append(errs, ErrInvalidHederaNetwork)
	}

	if c.MintThreshold < 0 || c.MintThreshold > 1 {
		errs = append(errs, ErrInvalidMintThreshold)
	}

	// R2 configuration is optional. Only validate fields if any R2 value is set.
	if c.R2BucketName != "" || c.R2AccessKeyID != "" || c.R2SecretAccessKey != "" || c.R2Endpoint != "" {
		if c.R2BucketName == "" {
			errs = append(errs, ErrMissingR2BucketName)
		}
		if c.R2AccessKeyID == "" {
			errs = append(errs, ErrMissingR2AccessKeyID)
		}
		if c.R2SecretAccessKey == "" {
			errs = append(errs, ErrMissingR2SecretAccessKey)
		}
		if c.R2Endpoint == "" {
			errs = append(errs, ErrMissingR2Endpoint)
		}
	}

	return errs
}

// GetJWTSecrets returns the current and previous JWT signing secrets.
// The previous secret is empty when no rotation is in progress.
func (c *Config) GetJWTSecrets() (current, previous string) {
	return c.JWTSecret, c.JWTSecretPrevious
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                 fmt.Sprintf("%d", c.Port),
		"env":                  c.Env,
		"database_url":         maskConnectionURL(c.DatabaseURL),
		"redis_url":            maskConnectionURL(c.RedisURL),
		"jwt_secret":           maskSecret(c.JWTSecret),
		"jwt_secret_previous":  maskSecret(c.JWTSecretPrevious),
		"ledger_mode":          c.LedgerMode,
		"hedera_network":       c.HederaNetwork,
		"hedera_account_id":    c.HederaAccountID,
		"hedera_private_key":   maskSecret(c.HederaPrivateKey),
		"hedera_topic_id":      c.HederaTopicID,
		"hedera_token_id":      c.HederaTokenID,
		"mint_threshold":       fmt.Sprintf("%.2f", c.MintThreshold),
		"r2_bucket_name":       c.R2BucketName,
		"r2_access_key_id":     maskSecret(c.R2AccessKeyID),
		"r2_secret_access_key": maskSecret(c.R2SecretAccessKey),
		"r2_endpoint":          c.R2Endpoint,
		"tracing_enabled":      fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_endpoint":     c.TracingEndpoint,
	}
}

// maskSecret masks a secret value, showing only the first 4 characters followed by ****
// If the secret is shorter than 8 characters, it's fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskConnectionURL masks the password in a connection URL.
// Supports postgres://, postgresql://, and redis:// schemes.
func maskConnectionURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	// Look for password pattern: user:password@host
	// Simple approach: find :// and then mask between : and @
	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	// Reconstruct URL with masked password
	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
