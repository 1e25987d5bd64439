package shared

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Observability bundles what modules need to log, trace and measure.
type Observability struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics ServiceMetrics
}
