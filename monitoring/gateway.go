package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "paymaya-payments/gateway"

// GatewayMetrics are the instruments recorded around every gateway call
type GatewayMetrics struct {
	requests      metric.Int64Counter
	duration      metric.Float64Histogram
	paymentAmount metric.Float64Histogram
}

// NewGatewayMetrics creates the gateway instruments on meter. A nil meter uses the
// global provider, which is a no-op until InitMeter runs.
func NewGatewayMetrics(meter metric.Meter) (*GatewayMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	requests, err := meter.Int64Counter(
		"gateway_requests_total",
		metric.WithDescription("Total number of payment gateway calls"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"gateway_request_duration_seconds",
		metric.WithDescription("Duration of payment gateway calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	paymentAmount, err := meter.Float64Histogram(
		"payment_amount",
		metric.WithDescription("Amounts submitted for payment"),
	)
	if err != nil {
		return nil, err
	}

	return &GatewayMetrics{
		requests:      requests,
		duration:      duration,
		paymentAmount: paymentAmount,
	}, nil
}

// RecordCall records one gateway call. status is "success", "failed" or "error".
func (m *GatewayMetrics) RecordCall(ctx context.Context, operation, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
	m.duration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		),
	)
}

// RecordPaymentAmount records the amount of a submitted payment
func (m *GatewayMetrics) RecordPaymentAmount(ctx context.Context, amount float64, currency string) {
	if m == nil {
		return
	}
	m.paymentAmount.Record(ctx, amount,
		metric.WithAttributes(
			attribute.String("currency", currency),
		),
	)
}
