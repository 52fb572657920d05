package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"genbot-api/internal/config"
)

const tracerName = "genbot-api"

// Setup installs the OTLP trace exporter when tracing is enabled. The
// returned shutdown function flushes pending spans.
func Setup(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.EnableTracing {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// GetTracer returns the tracer for the bot service.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartPipelineSpan starts a span covering one inbound message's pipeline run.
func StartPipelineSpan(ctx context.Context, userID, platformMessageID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "pipeline.process_inbound",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("message.user_id", userID),
			attribute.String("message.platform_id", platformMessageID),
		),
	)
}

// AddStepTransition records the dialog step change on a span.
func AddStepTransition(span trace.Span, fromStep, toStep string) {
	span.AddEvent("dialog.transition",
		trace.WithAttributes(
			attribute.String("step.from", fromStep),
			attribute.String("step.to", toStep),
		),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
