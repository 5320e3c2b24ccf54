package usecases_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/usecases"
	"github.com/samirrijal/placeroute/internal/pkg/geospatial"
	"github.com/samirrijal/placeroute/internal/pkg/tsp"
)

func place(name string, lon, lat float64) domain.Place {
	return domain.Place{Name: name, Longitude: lon, Latitude: lat}
}

// rectangle lists the corners of a unit-degree square in a crossing order.
func rectangle() []domain.Place {
	return []domain.Place{
		place("A", 0, 0),
		place("C", 1, 1),
		place("B", 0, 1),
		place("D", 1, 0),
	}
}

func routeLength(places []domain.Place, order []int, closed bool) float64 {
	points := make([]geospatial.Point, len(places))
	for i, p := range places {
		points[i] = geospatial.Point{Lat: p.Latitude, Lon: p.Longitude}
	}
	return geospatial.PathLength(geospatial.DistanceMatrix(points), order, closed)
}

func bruteForceBest(places []domain.Place, closed bool) float64 {
	n := len(places)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := math.Inf(1)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			if l := routeLength(places, perm, closed); l < best {
				best = l
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			rec(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	rec(0)
	return best
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func TestRouteOptimizer_TrivialIdentity(t *testing.T) {
	o := usecases.NewRouteOptimizer(tsp.OpenPath)

	order, err := o.Optimize(context.Background(), nil)
	if err != nil || len(order) != 0 {
		t.Fatalf("expected empty identity, got %v, %v", order, err)
	}

	order, err = o.Optimize(context.Background(), []domain.Place{place("only", 10, 10)})
	if err != nil || !reflect.DeepEqual(order, []int{0}) {
		t.Fatalf("expected [0], got %v, %v", order, err)
	}
}

func TestRouteOptimizer_RectangleMatchesBruteForce(t *testing.T) {
	places := rectangle()

	for _, mode := range []tsp.Mode{tsp.OpenPath, tsp.ClosedTour} {
		o := usecases.NewRouteOptimizer(mode)
		order, err := o.Optimize(context.Background(), places)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", mode, err)
		}
		if !isPermutation(order, len(places)) {
			t.Fatalf("%s: not a permutation: %v", mode, order)
		}
		closed := mode == tsp.ClosedTour
		got := routeLength(places, order, closed)
		want := bruteForceBest(places, closed)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("%s: route length %f, brute force %f", mode, got, want)
		}
	}
}

func TestRouteOptimizer_Deterministic(t *testing.T) {
	places := []domain.Place{
		place("a", -2.93, 43.26), place("b", -2.93, 43.26), // duplicate point
		place("c", -3.00, 43.35), place("d", -2.70, 43.30),
		place("e", -2.85, 43.20), place("f", -2.95, 43.28),
	}
	o := usecases.NewRouteOptimizer(tsp.OpenPath)
	first, err := o.Optimize(context.Background(), places)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := o.Optimize(context.Background(), places)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: %v != %v", i, again, first)
		}
	}
}

func TestRouteOptimizer_NonFinite(t *testing.T) {
	o := usecases.NewRouteOptimizer(tsp.OpenPath)
	places := []domain.Place{place("a", 0, 0), place("bad", math.NaN(), 1)}

	_, err := o.Optimize(context.Background(), places)
	if !errors.Is(err, domain.ErrNonFiniteCoordinate) {
		t.Fatalf("expected ErrNonFiniteCoordinate, got %v", err)
	}
	if !math.IsNaN(places[1].Longitude) || places[0].Name != "a" {
		t.Error("input was modified")
	}
}

func TestRouteOptimizer_Summarize(t *testing.T) {
	places := []domain.Place{place("A", 0, 0), place("B", 0, 1), place("C", 1, 1)}

	open := usecases.NewRouteOptimizer(tsp.OpenPath).Summarize(places)
	if len(open.Legs) != 2 || open.Closed {
		t.Fatalf("expected 2 open legs, got %+v", open)
	}

	closed := usecases.NewRouteOptimizer(tsp.ClosedTour).Summarize(places)
	if len(closed.Legs) != 3 || !closed.Closed {
		t.Fatalf("expected 3 closed legs, got %+v", closed)
	}
	if closed.TotalMeters <= open.TotalMeters {
		t.Errorf("closed total %f should exceed open total %f", closed.TotalMeters, open.TotalMeters)
	}

	empty := usecases.NewRouteOptimizer(tsp.ClosedTour).Summarize(nil)
	if len(empty.Legs) != 0 || empty.TotalMeters != 0 || empty.Closed {
		t.Errorf("unexpected summary for empty list: %+v", empty)
	}
}

func TestRouteOptimizer_AntipodalPlaces(t *testing.T) {
	// Exact antipodes, where the haversine term rounds past 1.
	places := []domain.Place{
		place("south", -179.5, -88.5),
		place("north", 0.5, 88.5),
		place("equator", 0, 0),
	}

	for _, mode := range []tsp.Mode{tsp.OpenPath, tsp.ClosedTour} {
		o := usecases.NewRouteOptimizer(mode)
		order, err := o.Optimize(context.Background(), places)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", mode, err)
		}
		if !isPermutation(order, len(places)) {
			t.Fatalf("%s: not a permutation: %v", mode, order)
		}
	}

	summary := usecases.NewRouteOptimizer(tsp.OpenPath).Summarize(places[:2])
	halfCircumference := math.Pi * 6371.0 * 1000
	if len(summary.Legs) != 1 || math.Abs(summary.Legs[0].DistanceMeters-halfCircumference) > 1 {
		t.Errorf("expected one leg of half the circumference, got %+v", summary.Legs)
	}
}

func TestRouteOptimizer_SummarizeTotalIsSumOfLegs(t *testing.T) {
	places := []domain.Place{place("A", -2.93, 43.26), place("B", -3.00, 43.35), place("C", -2.70, 43.30)}

	for _, mode := range []tsp.Mode{tsp.OpenPath, tsp.ClosedTour} {
		summary := usecases.NewRouteOptimizer(mode).Summarize(places)
		sum := 0.0
		for _, l := range summary.Legs {
			sum += l.DistanceMeters
		}
		if math.Abs(sum-summary.TotalMeters) > 1e-6 {
			t.Errorf("%s: total %f, legs sum to %f", mode, summary.TotalMeters, sum)
		}
		want := routeLength(places, []int{0, 1, 2}, mode == tsp.ClosedTour)
		if math.Abs(want-summary.TotalMeters) > 1e-6 {
			t.Errorf("%s: total %f, want %f", mode, summary.TotalMeters, want)
		}
	}
}
