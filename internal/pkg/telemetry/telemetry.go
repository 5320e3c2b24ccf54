package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the core.
const TracerName = "github.com/samirrijal/placeroute"

// Span attribute keys.
const (
	AttrGeocodeProvider = attribute.Key("geocode.provider")
	AttrGeocodeQuery    = attribute.Key("geocode.query")
	AttrGeocodeOutcome  = attribute.Key("geocode.outcome")
	AttrGeocodeResults  = attribute.Key("geocode.results")
	AttrOptimizerPlaces = attribute.Key("optimizer.places")
	AttrOptimizerMode   = attribute.Key("optimizer.mode")
	AttrRouteMeters     = attribute.Key("route.total_meters")
)

// Config holds exporter settings.
type Config struct {
	Endpoint    string
	ServiceName string
	SampleRatio float64
	Insecure    bool
}

// InitTracer installs a global tracer provider exporting over OTLP/gRPC.
// With an empty endpoint the global no-op provider is left in place.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		slog.Info("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	slog.Info("tracing enabled", "endpoint", cfg.Endpoint, "ratio", cfg.SampleRatio)
	return tp.Shutdown, nil
}

// Tracer returns the tracer for the core packages.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
