package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultTimeout = 30 * time.Second

// Config holds application configuration
type Config struct {
	ServiceName     string
	OTELEndpoint    string
	MetricsExporter string
	Port            string

	PublicKey  string
	SecretKey  string
	Production bool
	// BaseURL overrides the gateway host selected by Production
	BaseURL string
	Timeout time.Duration
	// StrictPayments makes pay and status calls fail on non-2xx gateway responses
	StrictPayments bool

	SuccessURL string
	FailureURL string
	CancelURL  string
}

var ErrMissingPublicKey = errors.New("missing PAYMAYA_PUBLIC_KEY")
var ErrMissingSecretKey = errors.New("missing PAYMAYA_SECRET_KEY")

// Load loads configuration from environment variables, reading a .env file first
// when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:     "paymaya-payments",
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		MetricsExporter: getEnv("METRICS_EXPORTER", "otlp"),
		Port:            getEnv("PORT", "8081"),

		PublicKey:      os.Getenv("PAYMAYA_PUBLIC_KEY"),
		SecretKey:      os.Getenv("PAYMAYA_SECRET_KEY"),
		Production:     getBool("PAYMAYA_PRODUCTION", false),
		BaseURL:        os.Getenv("PAYMAYA_BASE_URL"),
		Timeout:        getDuration("PAYMAYA_TIMEOUT", DefaultTimeout),
		StrictPayments: getBool("PAYMAYA_STRICT_PAYMENTS", false),

		SuccessURL: os.Getenv("PAYMAYA_SUCCESS_URL"),
		FailureURL: os.Getenv("PAYMAYA_FAILURE_URL"),
		CancelURL:  os.Getenv("PAYMAYA_CANCEL_URL"),
	}
}

// Validate reports the first missing credential
func (c *Config) Validate() error {
	if c.PublicKey == "" {
		return ErrMissingPublicKey
	}
	if c.SecretKey == "" {
		return ErrMissingSecretKey
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}
