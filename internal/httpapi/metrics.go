package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/workflowd/internal/httpapi"

// Metrics holds HTTP and task-transition metrics, recorded through the
// OTel metric API and exported in Prometheus format on /metrics.
type Metrics struct {
	logger        *zap.Logger
	requestsTotal metric.Int64Counter
	requestDur    metric.Float64Histogram
	transitions   metric.Int64Counter
}

// NewMetrics creates metrics backed by a Prometheus exporter registered
// on registry.
func NewMetrics(registry *prometheus.Registry, logger *zap.Logger) (*Metrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(instrumentationName)

	m := &Metrics{logger: logger}

	m.requestsTotal, err = meter.Int64Counter(
		"workflowd.http.requests_total",
		metric.WithDescription("Total HTTP requests labeled by method, endpoint, and status code."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn("failed to create requests counter", zap.Error(err))
	}

	m.requestDur, err = meter.Float64Histogram(
		"workflowd.http.request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds, labeled by method, endpoint, and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0),
	)
	if err != nil {
		logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.transitions, err = meter.Int64Counter(
		"workflowd.tasks.transitions_total",
		metric.WithDescription("Task lifecycle transitions labeled by outcome (started, completed, failed)."),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		logger.Warn("failed to create transitions counter", zap.Error(err))
	}

	return m, nil
}

// RecordRequest records one HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, endpoint string, status int, dur time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	)
	if m.requestsTotal != nil {
		m.requestsTotal.Add(ctx, 1, attrs)
	}
	if m.requestDur != nil {
		m.requestDur.Record(ctx, dur.Seconds(), attrs)
	}
}

// RecordTransition records one task lifecycle transition.
func (m *Metrics) RecordTransition(ctx context.Context, outcome string) {
	if m.transitions == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
