package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/pkg/geospatial"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/metrics"
	"github.com/samirrijal/placeroute/internal/pkg/telemetry"
	"github.com/samirrijal/placeroute/internal/pkg/tsp"
)

// RouteOptimizer computes the visiting order that minimizes total
// great-circle distance. It holds no state between calls and never touches
// the registry.
type RouteOptimizer struct {
	mode tsp.Mode
}

// NewRouteOptimizer creates an optimizer for the given mode.
func NewRouteOptimizer(mode tsp.Mode) *RouteOptimizer {
	return &RouteOptimizer{mode: mode}
}

// Mode returns the route shape being minimized.
func (o *RouteOptimizer) Mode() tsp.Mode {
	return o.mode
}

// Optimize returns a permutation of the indices of places in visiting order.
func (o *RouteOptimizer) Optimize(ctx context.Context, places []domain.Place) ([]int, error) {
	n := len(places)
	if n <= 1 {
		return identity(n), nil
	}

	for i, p := range places {
		if !finite(p.Longitude) || !finite(p.Latitude) {
			return nil, fmt.Errorf("%w: place %d %q", domain.ErrNonFiniteCoordinate, i, p.Name)
		}
	}
	points := toPoints(places)

	_, span := telemetry.Tracer().Start(ctx, "RouteOptimizer.Optimize", trace.WithAttributes(
		telemetry.AttrOptimizerPlaces.Int(n),
		telemetry.AttrOptimizerMode.String(o.mode.String()),
	))
	defer span.End()

	start := time.Now()
	res, err := tsp.Solve(geospatial.DistanceMatrix(points), o.mode)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("solve route: %w", err)
	}
	elapsed := time.Since(start)

	metrics.OptimizeDuration.Observe(elapsed.Seconds())
	metrics.OptimizePlaces.Observe(float64(n))
	span.SetAttributes(telemetry.AttrRouteMeters.Float64(res.Cost))
	logging.FromContext(ctx).Debug("route optimized",
		"places", n, "mode", o.mode.String(), "meters", res.Cost, "duration", elapsed)

	return res.Order, nil
}

// Summarize lists the legs of places in their current order.
func (o *RouteOptimizer) Summarize(places []domain.Place) domain.RouteSummary {
	n := len(places)
	summary := domain.RouteSummary{
		Places: places,
		Legs:   []domain.RouteLeg{},
		Closed: o.mode == tsp.ClosedTour && n > 1,
	}
	if n < 2 {
		return summary
	}

	dist := geospatial.DistanceMatrix(toPoints(places))
	for i := 1; i < n; i++ {
		summary.Legs = append(summary.Legs, domain.RouteLeg{
			From: places[i-1], To: places[i], DistanceMeters: dist[i-1][i],
		})
	}
	if summary.Closed {
		summary.Legs = append(summary.Legs, domain.RouteLeg{
			From: places[n-1], To: places[0], DistanceMeters: dist[n-1][0],
		})
	}
	summary.TotalMeters = geospatial.PathLength(dist, identity(n), summary.Closed)
	return summary
}

func toPoints(places []domain.Place) []geospatial.Point {
	points := make([]geospatial.Point, len(places))
	for i, p := range places {
		points[i] = geospatial.Point{Lat: p.Latitude, Lon: p.Longitude}
	}
	return points
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
