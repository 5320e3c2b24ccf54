package usecases

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/metrics"
	"github.com/samirrijal/placeroute/internal/pkg/telemetry"
)

// Resolution is the completion message of an asynchronous lookup. An empty
// Candidates slice means nothing usable came back, whatever the reason.
type Resolution struct {
	ID         uuid.UUID
	Query      string
	Candidates []domain.GeocodeCandidate
}

// Empty reports whether the lookup produced no candidates.
func (r Resolution) Empty() bool {
	return len(r.Candidates) == 0
}

// GeoResolver turns free-text queries into candidates through an ordered
// provider chain. The first available provider is used exclusively; there
// is no fallback to the next one on failure and no merging.
type GeoResolver struct {
	providers []ports.GeocodeProvider
	cache     ports.CacheService
	cacheTTL  int
}

// NewGeoResolver creates a resolver. Providers are tried for availability in
// the given order, so keyed providers go first. cache may be nil.
func NewGeoResolver(cache ports.CacheService, cacheTTL int, providers ...ports.GeocodeProvider) *GeoResolver {
	return &GeoResolver{providers: providers, cache: cache, cacheTTL: cacheTTL}
}

// Provider returns the provider a call would use right now, or nil.
func (r *GeoResolver) Provider() ports.GeocodeProvider {
	for _, p := range r.providers {
		if p != nil && p.Available() {
			return p
		}
	}
	return nil
}

// Resolve looks query up and returns the candidates in provider order.
// Transport failures and malformed responses come back as an empty slice;
// the difference is only visible in logs, metrics and traces.
func (r *GeoResolver) Resolve(ctx context.Context, query string) []domain.GeocodeCandidate {
	log := logging.FromContext(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.GeocodeCandidate{}
	}

	provider := r.Provider()
	if provider == nil {
		log.Warn("geocode no provider available", "query", query)
		return []domain.GeocodeCandidate{}
	}
	name := provider.Name()

	ctx, span := telemetry.Tracer().Start(ctx, "GeoResolver.Resolve", trace.WithAttributes(
		telemetry.AttrGeocodeProvider.String(name),
		telemetry.AttrGeocodeQuery.String(query),
	))
	defer span.End()

	cacheKey := "geocode:" + name + ":" + strings.ToLower(query)
	if cached, ok := r.fromCache(ctx, cacheKey); ok {
		span.SetAttributes(telemetry.AttrGeocodeResults.Int(len(cached)))
		return cached
	}

	start := time.Now()
	res := provider.Query(ctx, query)
	elapsed := time.Since(start)

	metrics.GeocodeRequests.WithLabelValues(name, res.Outcome.String()).Inc()
	metrics.GeocodeDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	span.SetAttributes(telemetry.AttrGeocodeOutcome.String(res.Outcome.String()))

	switch res.Outcome {
	case ports.OutcomeFound:
		if len(res.Candidates) == 0 {
			log.Info("geocode empty", "provider", name, "query", query, "duration", elapsed)
			return []domain.GeocodeCandidate{}
		}
		log.Info("geocode found", "provider", name, "query", query, "results", len(res.Candidates), "duration", elapsed)
		span.SetAttributes(telemetry.AttrGeocodeResults.Int(len(res.Candidates)))
		r.toCache(ctx, cacheKey, res.Candidates)
		return res.Candidates
	case ports.OutcomeEmpty:
		log.Info("geocode empty", "provider", name, "query", query, "duration", elapsed)
	default:
		log.Warn("geocode transport failure", "provider", name, "query", query, "duration", elapsed, "error", res.Err)
		if res.Err != nil {
			span.RecordError(res.Err)
		}
		span.SetStatus(codes.Error, "transport failure")
	}
	return []domain.GeocodeCandidate{}
}

// ResolveAsync runs Resolve on its own goroutine and delivers exactly one
// Resolution on the returned channel. The lookup is detached from ctx
// cancellation; only its values (logger, trace) carry over.
func (r *GeoResolver) ResolveAsync(ctx context.Context, query string) <-chan Resolution {
	done := make(chan Resolution, 1)
	id := uuid.New()
	detached := context.WithoutCancel(ctx)

	go func() {
		defer close(done)
		candidates := r.Resolve(detached, query)
		done <- Resolution{ID: id, Query: query, Candidates: candidates}
	}()

	return done
}

func (r *GeoResolver) fromCache(ctx context.Context, key string) ([]domain.GeocodeCandidate, bool) {
	if r.cache == nil {
		return nil, false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
		return nil, false
	}
	var candidates []domain.GeocodeCandidate
	if err := json.Unmarshal(data, &candidates); err != nil || len(candidates) == 0 {
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("geocode").Inc()
	return candidates, true
}

// toCache stores found results only.
func (r *GeoResolver) toCache(ctx context.Context, key string, candidates []domain.GeocodeCandidate) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return
	}
	if data, err := json.Marshal(candidates); err == nil {
		_ = r.cache.Set(ctx, key, data, r.cacheTTL)
	}
}
