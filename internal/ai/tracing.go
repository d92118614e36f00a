package ai

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"itinerary/internal/modules/itinerary"
)

const tracerName = "itinerary/internal/ai"

type tracedProvider struct {
	Provider
	tracer trace.Tracer
}

// WithTracing wraps p so every Generate call runs inside an "ai.generate" span.
func WithTracing(p Provider) Provider {
	return &tracedProvider{Provider: p, tracer: otel.Tracer(tracerName)}
}

func (t *tracedProvider) Generate(ctx context.Context, prompt itinerary.Prompt, mode itinerary.Mode) (string, error) {
	ctx, span := t.tracer.Start(ctx, "ai.generate", trace.WithAttributes(
		attribute.String("ai.provider", t.Name()),
		attribute.String("ai.mode", string(mode)),
		attribute.Int("ai.prompt_bytes", len(prompt.System)+len(prompt.User)),
	))
	defer span.End()

	out, err := t.Provider.Generate(ctx, prompt, mode)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("ai.error_kind", string(itinerary.KindOf(err))))
		span.SetStatus(otelcodes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("ai.response_bytes", len(out)))
	return out, nil
}
