package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "planforge"

// StartGenerationSpan starts a span for one plan generation.
func StartGenerationSpan(ctx context.Context, variant, horizon string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "plan.generate",
		trace.WithAttributes(
			attribute.String("plan.variant", variant),
			attribute.String("plan.horizon", horizon),
		),
	)
}
