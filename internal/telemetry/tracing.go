// Package telemetry provides OpenTelemetry tracing for docindex.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for all docindex spans.
const TracerName = "github.com/custodia-labs/docindex"

// Config configures OpenTelemetry tracing.
type Config struct {
	// ServiceName is the name of the service (default: "docindex").
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
}

// DefaultConfig returns a tracing configuration with export disabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "docindex",
		ServiceVersion: "dev",
		SampleRate:     1.0,
	}
}

// Provider wraps the OpenTelemetry tracer provider.
type Provider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Init initialises OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func Init(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.OTLPEndpoint == "" {
		return &Provider{tracer: otel.Tracer(TracerName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Sampler maps a sampling ratio to an SDK sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes pending spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Span kinds recorded in the docindex.span.kind attribute.
const (
	SpanKindIndex  = "index"
	SpanKindSearch = "search"
	SpanKindEmbed  = "embed"
	SpanKindStore  = "store"
	SpanKindTool   = "tool"
)

// StartIndexSpan starts a span for indexing one document.
func StartIndexSpan(ctx context.Context, filename string, contentLen int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "index.document",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("docindex.span.kind", SpanKindIndex),
			attribute.String("document.filename", filename),
			attribute.Int("document.content_length", contentLen),
		),
	)
}

// StartSearchSpan starts a span for a similarity search.
func StartSearchSpan(ctx context.Context, topK int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "index.search",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("docindex.span.kind", SpanKindSearch),
			attribute.Int("search.top_k", topK),
		),
	)
}

// StartEmbedSpan starts a span for an embedding model call.
func StartEmbedSpan(ctx context.Context, model string, inputs int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "embedding.embed",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("docindex.span.kind", SpanKindEmbed),
			attribute.String("embedding.model", model),
			attribute.Int("embedding.inputs", inputs),
		),
	)
}

// StartStoreSpan starts a span for an index store operation.
func StartStoreSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "store."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("docindex.span.kind", SpanKindStore),
		),
	)
}

// StartToolSpan starts a span for an agent tool invocation.
func StartToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("docindex.span.kind", SpanKindTool),
			attribute.String("tool.name", tool),
		),
	)
}

// RecordCount records a result count on a span.
func RecordCount(span trace.Span, key string, n int) {
	span.SetAttributes(attribute.Int(key, n))
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
