package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
)

const (
	// NominatimName identifies the open provider in logs, metrics and cache keys.
	NominatimName = "nominatim"

	nominatimLimit = 10
	maxBodyBytes   = 1 << 20
)

// nominatimResult is one entry of the /search JSON array. Coordinates come
// back as strings.
type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Nominatim queries an OpenStreetMap Nominatim instance. It needs no key and
// is always available.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// NewNominatim creates the open provider. ratePerSecond throttles outgoing
// requests; the public instance allows one per second.
func NewNominatim(baseURL, userAgent string, timeout time.Duration, ratePerSecond float64) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

func (n *Nominatim) Name() string    { return NominatimName }
func (n *Nominatim) Available() bool { return true }

// Query runs a free-form /search and maps the response onto candidates in
// the order the server returned them.
func (n *Nominatim) Query(ctx context.Context, text string) ports.GeocodeResult {
	if err := n.limiter.Wait(ctx); err != nil {
		return failure(fmt.Errorf("nominatim rate limit: %w", err))
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(nominatimLimit))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return failure(err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("nominatim_req", "query", text)
	resp, err := n.client.Do(req)
	if err != nil {
		return failure(fmt.Errorf("nominatim request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(fmt.Errorf("nominatim returned status %d", resp.StatusCode))
	}

	var results []nominatimResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&results); err != nil {
		return failure(fmt.Errorf("nominatim decode: %w", err))
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(results))
	for _, r := range results {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, domain.GeocodeCandidate{
			DisplayName: r.DisplayName,
			Longitude:   lon,
			Latitude:    lat,
		})
	}
	return collect(candidates)
}

func failure(err error) ports.GeocodeResult {
	return ports.GeocodeResult{Outcome: ports.OutcomeTransportFailure, Err: err}
}

func collect(candidates []domain.GeocodeCandidate) ports.GeocodeResult {
	if len(candidates) == 0 {
		return ports.GeocodeResult{Outcome: ports.OutcomeEmpty}
	}
	return ports.GeocodeResult{Outcome: ports.OutcomeFound, Candidates: candidates}
}
