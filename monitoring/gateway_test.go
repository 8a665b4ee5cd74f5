package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGatewayMetricsRecordCall(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewGatewayMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCall(ctx, "tokenize", "success", 120*time.Millisecond)
	m.RecordCall(ctx, "tokenize", "failed", 80*time.Millisecond)
	m.RecordPaymentAmount(ctx, 100, "PHP")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Metrics{}
	for _, mt := range rm.ScopeMetrics[0].Metrics {
		names[mt.Name] = mt
	}
	require.Contains(t, names, "gateway_requests_total")
	require.Contains(t, names, "gateway_request_duration_seconds")
	require.Contains(t, names, "payment_amount")

	sum, ok := names["gateway_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 2)
}

func TestGatewayMetricsNilSafe(t *testing.T) {
	var m *GatewayMetrics
	require.NotPanics(t, func() {
		m.RecordCall(context.Background(), "pay", "error", time.Second)
		m.RecordPaymentAmount(context.Background(), 1, "PHP")
	})
}

func TestNewGatewayMetricsGlobalMeter(t *testing.T) {
	m, err := NewGatewayMetrics(nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}
