package main

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/core/usecases"
)

type stubProvider struct {
	calls atomic.Int32
}

func (s *stubProvider) Name() string    { return "stub" }
func (s *stubProvider) Available() bool { return true }
func (s *stubProvider) Query(ctx context.Context, text string) ports.GeocodeResult {
	s.calls.Add(1)
	if text == "nowhere" {
		return ports.GeocodeResult{Outcome: ports.OutcomeEmpty}
	}
	return ports.GeocodeResult{
		Outcome: ports.OutcomeFound,
		Candidates: []domain.GeocodeCandidate{
			{DisplayName: text + ", Bizkaia", Longitude: -2.9, Latitude: 43.2},
		},
	}
}

func TestReadRows(t *testing.T) {
	in := "\xef\xbb\xbfName,Longitude,Latitude,Query\n" +
		"Moyua,-2.935,43.263,\n" +
		",,,getxo\n" +
		"empty,,,\n" +
		"Arriaga,-2.9245,43.2587,arriaga theatre\n"

	rows, err := readRows(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d: %+v", len(rows), rows)
	}
	if !rows[0].hasCoords || rows[0].name != "Moyua" || rows[0].longitude != -2.935 {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].hasCoords || rows[1].query != "getxo" || rows[1].line != 3 {
		t.Errorf("unexpected query row %+v", rows[1])
	}
}

func TestReadRows_BadHeader(t *testing.T) {
	if _, err := readRows(strings.NewReader("name,longitude\nA,1\n")); err == nil {
		t.Error("expected error for header without latitude or query")
	}
}

func TestResolveRows_KeepsOrder(t *testing.T) {
	rows := []row{
		{line: 2, name: "Moyua", longitude: -2.935, latitude: 43.263, hasCoords: true},
		{line: 3, query: "getxo"},
		{line: 4, query: "nowhere"},
		{line: 5, name: "Home", query: "bilbao"},
	}
	provider := &stubProvider{}
	resolver := usecases.NewGeoResolver(nil, 0, provider)

	places := resolveRows(context.Background(), resolver, rows, 2)

	if len(places) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(places))
	}
	if places[0] == nil || places[0].Name != "Moyua" {
		t.Errorf("unexpected place 0: %+v", places[0])
	}
	if places[1] == nil || places[1].Name != "getxo, Bizkaia" {
		t.Errorf("unexpected place 1: %+v", places[1])
	}
	if places[2] != nil {
		t.Errorf("expected unresolved row to be nil, got %+v", places[2])
	}
	if places[3] == nil || places[3].Name != "Home" {
		t.Errorf("expected name column to win, got %+v", places[3])
	}
	if got := provider.calls.Load(); got != 3 {
		t.Errorf("expected 3 geocode calls, got %d", got)
	}
}
