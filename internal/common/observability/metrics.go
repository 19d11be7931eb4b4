package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"maglinc-site/internal/common/logger"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	recordCounter      otelmetric.Int64Counter
}

// New registers an OpenTelemetry meter exported through the default
// Prometheus registry. On exporter failure it returns an Observability whose
// Record methods are no-ops.
func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{
			"error": err,
		})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"inquiries.submitted",
		otelmetric.WithDescription("Number of inquiry submissions"),
	)

	submissionDuration, _ := meter.Float64Histogram(
		"inquiries.duration",
		otelmetric.WithDescription("Inquiry submission duration"),
		otelmetric.WithUnit("ms"),
	)

	recordCounter, _ := meter.Int64Counter(
		"status.records",
		otelmetric.WithDescription("Number of status records stored"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
		recordCounter:      recordCounter,
	}
}

func (o *Observability) RecordSubmission(ctx context.Context, outcome string) {
	if o == nil || o.submissionCounter == nil {
		return
	}
	o.submissionCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordSubmissionDuration(ctx context.Context, duration time.Duration, outcome string) {
	if o == nil || o.submissionDuration == nil {
		return
	}
	o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordStatusRecord(ctx context.Context, store string) {
	if o == nil || o.recordCounter == nil {
		return
	}
	o.recordCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("store", store),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
