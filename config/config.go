// Package config loads the process configuration once at startup.
//
// Values come from defaults, an optional .env file and the environment, in
// increasing order of precedence. The resulting Config is passed by value to
// every module; nothing else reads the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime settings.
type Config struct {
	HTTPPort      int    `mapstructure:"HTTP_PORT"`
	APIURL        string `mapstructure:"API_URL"`
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`

	DBDriver string `mapstructure:"DB_DRIVER"`
	DBURL    string `mapstructure:"DB_URL"`
	DBDebug  bool   `mapstructure:"DB_DEBUG"`

	TokenSecret string        `mapstructure:"TOKEN_SECRET"`
	TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`
	TokenIssuer string        `mapstructure:"TOKEN_ISSUER"`
	PwdSalt     int           `mapstructure:"PWD_SALT"`

	RedisAddr   string        `mapstructure:"REDIS_ADDR"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`
	CachePrefix string        `mapstructure:"CACHE_PREFIX"`

	StoragePath   string `mapstructure:"STORAGE_PATH"`
	UploadBucket  string `mapstructure:"UPLOAD_BUCKET"`
	MaxUploadSize int    `mapstructure:"MAX_UPLOAD_SIZE"`

	StripeSecretKey    string `mapstructure:"STRIPE_SECRET_KEY"`
	CheckoutCurrency   string `mapstructure:"CHECKOUT_CURRENCY"`
	CheckoutSuccessURL string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL  string `mapstructure:"CHECKOUT_CANCEL_URL"`

	AccessPolicyFile string        `mapstructure:"ACCESS_POLICY_FILE"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var defaults = map[string]any{
	"HTTP_PORT":       3000,
	"API_URL":         "/api/v1",
	"PUBLIC_BASE_URL": "http://localhost:3000",

	"DB_DRIVER": "sqlite",
	"DB_URL":    "eshop.db",
	"DB_DEBUG":  false,

	"TOKEN_SECRET": "change-me",
	"TOKEN_TTL":    24 * time.Hour,
	"TOKEN_ISSUER": "eshop-backend",
	"PWD_SALT":     10,

	"REDIS_ADDR":   "",
	"CACHE_TTL":    5 * time.Minute,
	"CACHE_PREFIX": "eshop:",

	"STORAGE_PATH":    "/tmp/eshop-backend",
	"UPLOAD_BUCKET":   "uploads",
	"MAX_UPLOAD_SIZE": 10 * 1024 * 1024,

	"STRIPE_SECRET_KEY":    "",
	"CHECKOUT_CURRENCY":    "inr",
	"CHECKOUT_SUCCESS_URL": "http://localhost:4200/thankyou",
	"CHECKOUT_CANCEL_URL":  "http://localhost:4200/error",

	"ACCESS_POLICY_FILE": "",
	"REQUEST_TIMEOUT":    15 * time.Second,
	"SHUTDOWN_TIMEOUT":   30 * time.Second,
}

// Load reads configuration from the given .env file (missing files are
// ignored) and the process environment.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.APIURL = "/" + strings.Trim(cfg.APIURL, "/")
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBURL == "" {
		return errors.New("DB_URL is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTPPort)
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if c.PwdSalt < bcrypt.MinCost || c.PwdSalt > bcrypt.MaxCost {
		return fmt.Errorf("PWD_SALT must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	for name, d := range map[string]time.Duration{
		"TOKEN_TTL":        c.TokenTTL,
		"CACHE_TTL":        c.CacheTTL,
		"REQUEST_TIMEOUT":  c.RequestTimeout,
		"SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	}
	return nil
}

// CacheEnabled reports whether a Redis address was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
