package gateway

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paymaya-payments/models"
	"paymaya-payments/monitoring"
)

// DefaultTimeout bounds every gateway call unless overridden
const DefaultTimeout = 30 * time.Second

type options struct {
	httpClient     *http.Client
	timeout        time.Duration
	baseURL        string
	logger         *zap.Logger
	tracer         trace.Tracer
	metrics        *monitoring.GatewayMetrics
	strictPayments bool
	redirectURLs   *models.RedirectURLs
}

// Option configures a Client
type Option func(*options)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client. Ignored with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithBaseURL points the client at another host than the environment's
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func WithMetrics(m *monitoring.GatewayMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithStrictPayments makes Pay and PaymentStatus return a *GatewayError for
// non-2xx responses. The raw body is returned either way.
func WithStrictPayments(strict bool) Option {
	return func(o *options) {
		o.strictPayments = strict
	}
}

func WithRedirectURLs(urls *models.RedirectURLs) Option {
	return func(o *options) {
		o.redirectURLs = urls
	}
}
