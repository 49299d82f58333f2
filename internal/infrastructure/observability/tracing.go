package observability

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"chat-server/internal/config"
)

const (
	tracerName = "chat-server"
)

// Setup installs the global tracer provider. When tracing is disabled it
// returns a no-op shutdown function so callers never have to branch.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (func(context.Context) error, error) {
	if !cfg.EnableTracing {
		log.Debug().Msg("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().Str("endpoint", cfg.OTLPEndpoint).Msg("tracing enabled")
	return provider.Shutdown, nil
}

// GetTracer returns the tracer for the chat server.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TurnAttributes returns common attributes for turn spans.
func TurnAttributes(chatID, streamID, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("chat.id", chatID),
		attribute.String("stream.id", streamID),
		attribute.String("chat.model", model),
	}
}

// ToolAttributes returns common attributes for tool call spans.
func ToolAttributes(toolName, callID string, step int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("tool.name", toolName),
		attribute.String("tool.call_id", callID),
		attribute.Int("tool.step", step),
	}
}

// StartTurnSpan starts a new span covering a full chat turn.
func StartTurnSpan(ctx context.Context, chatID, streamID, model string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(TurnAttributes(chatID, streamID, model)...),
	)
}

// StartToolSpan starts a new span for a single tool invocation.
func StartToolSpan(ctx context.Context, toolName, callID string, step int) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "tool."+toolName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(ToolAttributes(toolName, callID, step)...),
	)
}

// StartResumeSpan starts a new span for a stream resume attempt.
func StartResumeSpan(ctx context.Context, chatID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat.resume",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("chat.id", chatID)),
	)
}

// StartTitleSpan starts a new span for background title generation.
func StartTitleSpan(ctx context.Context, chatID string, taskID uint) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "chat.title",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.Int("task.id", int(taskID)),
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

// AddResumeOutcome records how a resume attempt concluded.
func AddResumeOutcome(span trace.Span, outcome string) {
	span.AddEvent("resume.outcome",
		trace.WithAttributes(attribute.String("resume.outcome", outcome)),
	)
}

// AddRetryEvent adds a retry event to a span.
func AddRetryEvent(span trace.Span, attempt int, reason string) {
	span.AddEvent("retry",
		trace.WithAttributes(
			attribute.Int("retry.attempt", attempt),
			attribute.String("retry.reason", reason),
		),
	)
}
