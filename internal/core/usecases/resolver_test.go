package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/core/usecases"
)

var bilbao = domain.GeocodeCandidate{DisplayName: "Bilbao, Bizkaia", Longitude: -2.9253, Latitude: 43.2630}
var getxo = domain.GeocodeCandidate{DisplayName: "Getxo, Bizkaia", Longitude: -3.0064, Latitude: 43.3569}

func TestGeoResolver_UsesFirstAvailableProvider(t *testing.T) {
	keyed := &mockProvider{name: "amap", available: true, queryFn: found(bilbao)}
	open := &mockProvider{name: "nominatim", available: true, queryFn: found(getxo)}

	r := usecases.NewGeoResolver(nil, 0, keyed, open)
	got := r.Resolve(context.Background(), "bilbao")

	if len(got) != 1 || got[0] != bilbao {
		t.Fatalf("expected keyed provider result, got %+v", got)
	}
	if open.callCount() != 0 {
		t.Errorf("expected open provider untouched, got %d calls", open.callCount())
	}
}

func TestGeoResolver_NoFallbackOnEmpty(t *testing.T) {
	keyed := &mockProvider{name: "amap", available: true}
	open := &mockProvider{name: "nominatim", available: true, queryFn: found(getxo)}

	r := usecases.NewGeoResolver(nil, 0, keyed, open)
	got := r.Resolve(context.Background(), "nowhere")

	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if open.callCount() != 0 {
		t.Error("resolver must not fall back to the next provider")
	}
}

func TestGeoResolver_SkipsUnavailable(t *testing.T) {
	keyed := &mockProvider{name: "amap", available: false, queryFn: found(bilbao)}
	open := &mockProvider{name: "nominatim", available: true, queryFn: found(getxo)}

	r := usecases.NewGeoResolver(nil, 0, keyed, open)
	if p := r.Provider(); p == nil || p.Name() != "nominatim" {
		t.Fatalf("expected nominatim, got %v", p)
	}
	got := r.Resolve(context.Background(), "getxo")
	if len(got) != 1 || got[0] != getxo {
		t.Fatalf("expected open provider result, got %+v", got)
	}
	if keyed.callCount() != 0 {
		t.Error("unavailable provider was queried")
	}
}

func TestGeoResolver_PreservesProviderOrder(t *testing.T) {
	p := &mockProvider{name: "nominatim", available: true, queryFn: found(getxo, bilbao)}
	got := usecases.NewGeoResolver(nil, 0, p).Resolve(context.Background(), "bizkaia")
	if len(got) != 2 || got[0] != getxo || got[1] != bilbao {
		t.Fatalf("expected provider order, got %+v", got)
	}
}

func TestGeoResolver_BlankQuery(t *testing.T) {
	p := &mockProvider{name: "nominatim", available: true, queryFn: found(bilbao)}
	got := usecases.NewGeoResolver(nil, 0, p).Resolve(context.Background(), "   ")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if p.callCount() != 0 {
		t.Error("provider called for blank query")
	}
}

func TestGeoResolver_TransportFailureIsEmpty(t *testing.T) {
	p := &mockProvider{name: "nominatim", available: true, queryFn: transportFailure}
	got := usecases.NewGeoResolver(nil, 0, p).Resolve(context.Background(), "bilbao")
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
	if p.callCount() != 1 {
		t.Errorf("expected exactly one attempt, got %d", p.callCount())
	}
}

func TestGeoResolver_CachesFoundOnly(t *testing.T) {
	cache := newMockCache()
	p := &mockProvider{name: "nominatim", available: true, queryFn: found(bilbao)}
	r := usecases.NewGeoResolver(cache, 60, p)

	r.Resolve(context.Background(), "Bilbao")
	got := r.Resolve(context.Background(), "bilbao")

	if len(got) != 1 || got[0] != bilbao {
		t.Fatalf("expected cached result, got %+v", got)
	}
	if p.callCount() != 1 {
		t.Errorf("expected 1 provider call, got %d", p.callCount())
	}
	if _, ok := cache.data["geocode:nominatim:bilbao"]; !ok {
		t.Error("expected provider-scoped cache key")
	}

	empty := &mockProvider{name: "nominatim", available: true}
	cache2 := newMockCache()
	usecases.NewGeoResolver(cache2, 60, empty).Resolve(context.Background(), "nowhere")
	if cache2.sets != 0 {
		t.Error("empty result must not be cached")
	}
}

func TestGeoResolver_ResolveAsync(t *testing.T) {
	p := &mockProvider{name: "nominatim", available: true, queryFn: found(bilbao)}
	r := usecases.NewGeoResolver(nil, 0, p)

	done := r.ResolveAsync(context.Background(), "bilbao")

	select {
	case res := <-done:
		if res.Query != "bilbao" || res.Empty() {
			t.Fatalf("unexpected resolution %+v", res)
		}
		if res.ID == uuid.Nil {
			t.Error("expected resolution id")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolution not delivered")
	}

	if _, ok := <-done; ok {
		t.Error("expected channel closed after one resolution")
	}
}

func TestGeoResolver_ResolveAsyncIgnoresCancel(t *testing.T) {
	release := make(chan struct{})
	p := &mockProvider{name: "nominatim", available: true, queryFn: func(ctx context.Context, text string) ports.GeocodeResult {
		<-release
		if ctx.Err() != nil {
			return ports.GeocodeResult{Outcome: ports.OutcomeTransportFailure, Err: ctx.Err()}
		}
		return ports.GeocodeResult{Outcome: ports.OutcomeFound, Candidates: []domain.GeocodeCandidate{bilbao}}
	}}
	r := usecases.NewGeoResolver(nil, 0, p)

	ctx, cancel := context.WithCancel(context.Background())
	done := r.ResolveAsync(ctx, "bilbao")
	cancel()
	close(release)

	select {
	case res := <-done:
		if res.Empty() {
			t.Fatal("lookup was cancelled with the caller context")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolution not delivered")
	}
}
