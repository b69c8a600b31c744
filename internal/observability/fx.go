// Package observability bundles logging and metrics wiring.
package observability

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/smallbiznis/hydrolink/internal/observability/logger"
	"github.com/smallbiznis/hydrolink/internal/observability/metrics"
	"github.com/smallbiznis/hydrolink/internal/observability/tracing"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(
		metrics.NewConfig,
		metrics.NewRegistry,
		metrics.NewMeterProvider,
		metrics.NewHTTPMetrics,
		metrics.NewRefreshMetrics,
		tracing.NewConfig,
		tracing.NewProvider,
	),
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
