package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "fluxd"

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled           bool
	OTLPEndpoint      string
	PrometheusEnabled bool
	SampleRate        float64
	ChainID           string
}

// Telemetry manages OpenTelemetry tracing and metrics
type Telemetry struct {
	tracer       *trace.TracerProvider
	meter        metric.Meter
	config       TelemetryConfig
	shutdownFunc func(context.Context) error
}

// InitTelemetry initializes OpenTelemetry tracing and metrics
func InitTelemetry(cfg TelemetryConfig) (*Telemetry, error) {
	if !cfg.Enabled {
		return &Telemetry{config: cfg}, nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("chain.id", cfg.ChainID),
		),
	)
	if err != nil {
		return nil, err
	}

	tel := &Telemetry{config: cfg}

	if cfg.OTLPEndpoint != "" {
		if err := tel.initTracing(res); err != nil {
			return nil, err
		}
	}

	if err := tel.initMetrics(res); err != nil {
		return nil, err
	}

	return tel, nil
}

// initTracing sets up OTLP/HTTP tracing
func (t *Telemetry) initTracing(res *resource.Resource) error {
	if _, err := url.Parse(t.config.OTLPEndpoint); err != nil {
		return fmt.Errorf("invalid otlp endpoint: %w", err)
	}

	endpoint := strings.TrimPrefix(t.config.OTLPEndpoint, "http://")
	exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(
			trace.TraceIDRatioBased(t.config.SampleRate),
		)),
	)

	otel.SetTracerProvider(tp)
	t.tracer = tp
	t.shutdownFunc = tp.Shutdown

	return nil
}

// initMetrics sets up the Prometheus exporter. Instruments land in the
// default Prometheus registry next to the keeper metrics.
func (t *Telemetry) initMetrics(res *resource.Resource) error {
	if !t.config.PrometheusEnabled {
		return nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return err
	}

	provider := metricsdk.NewMeterProvider(
		metricsdk.WithResource(res),
		metricsdk.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)
	t.meter = provider.Meter(serviceName)

	return nil
}

// Meter returns the telemetry meter, or the global one when metrics are off.
func (t *Telemetry) Meter() metric.Meter {
	if t.meter != nil {
		return t.meter
	}
	return otel.Meter(serviceName)
}

// Shutdown gracefully shuts down telemetry
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.shutdownFunc != nil {
		return t.shutdownFunc(ctx)
	}
	return nil
}

// TelemetryMiddleware records per operation metrics of the application.
type TelemetryMiddleware struct {
	opCounter   metric.Int64Counter
	opDuration  metric.Float64Histogram
	blockHeight metric.Int64Gauge
}

// NewTelemetryMiddleware creates a new telemetry middleware
func NewTelemetryMiddleware(meter metric.Meter) (*TelemetryMiddleware, error) {
	opCounter, err := meter.Int64Counter(
		"fluxd.operation.total",
		metric.WithDescription("Total number of executed operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	opDuration, err := meter.Float64Histogram(
		"fluxd.operation.processing_time",
		metric.WithDescription("Operation processing time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	blockHeight, err := meter.Int64Gauge(
		"fluxd.block.height",
		metric.WithDescription("Last committed height"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, err
	}

	return &TelemetryMiddleware{
		opCounter:   opCounter,
		opDuration:  opDuration,
		blockHeight: blockHeight,
	}, nil
}

// RecordOperation records the outcome of one operation
func (tm *TelemetryMiddleware) RecordOperation(
	ctx context.Context,
	operation string,
	duration time.Duration,
	success bool,
) {
	status := "success"
	if !success {
		status = "failed"
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("status", status),
	}

	tm.opCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	tm.opDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordBlockHeight records the current block height
func (tm *TelemetryMiddleware) RecordBlockHeight(ctx context.Context, height int64) {
	tm.blockHeight.Record(ctx, height)
}

// TraceOperation creates a traced context for an application operation
func TraceOperation(ctx context.Context, operation string) (context.Context, func()) {
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "fluxd.execute")
	span.SetAttributes(attribute.String("operation", operation))
	return ctx, func() { span.End() }
}
