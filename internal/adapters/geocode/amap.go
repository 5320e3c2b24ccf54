package geocode

import (
	"bytes"
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

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
)

// AMapName identifies the keyed provider.
const AMapName = "amap"

// flexString accepts a JSON string or the empty array AMap sends in place of
// missing text fields.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = flexString(v)
	return nil
}

// amapGeocodeResponse mirrors /v3/geocode/geo. status "1" means success;
// location is "lon,lat".
type amapGeocodeResponse struct {
	Status   string `json:"status"`
	Info     string `json:"info"`
	Infocode string `json:"infocode"`
	Count    string `json:"count"`
	Geocodes []struct {
		FormattedAddress flexString `json:"formatted_address"`
		Location         flexString `json:"location"`
	} `json:"geocodes"`
}

// AMap queries the AMap (Gaode) web service geocoder. It is only available
// when a key is configured.
type AMap struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewAMap creates the keyed provider.
func NewAMap(baseURL, key string, timeout time.Duration) *AMap {
	return &AMap{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *AMap) Name() string    { return AMapName }
func (a *AMap) Available() bool { return a.key != "" }

// Query geocodes a structured address.
func (a *AMap) Query(ctx context.Context, text string) ports.GeocodeResult {
	if a.key == "" {
		return failure(fmt.Errorf("amap: missing key"))
	}

	q := url.Values{}
	q.Set("key", a.key)
	q.Set("address", text)
	q.Set("output", "JSON")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v3/geocode/geo?"+q.Encode(), nil)
	if err != nil {
		return failure(err)
	}

	t0 := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return failure(fmt.Errorf("amap request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(fmt.Errorf("amap returned status %d", resp.StatusCode))
	}

	var r amapGeocodeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&r); err != nil {
		return failure(fmt.Errorf("amap decode: %w", err))
	}
	slog.Debug("amap_resp", "query", text, "status", r.Status, "infocode", r.Infocode,
		"count", r.Count, "duration_ms", time.Since(t0).Milliseconds())

	if r.Status != "1" {
		return failure(fmt.Errorf("amap error %s: %s", r.Infocode, r.Info))
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(r.Geocodes))
	for _, g := range r.Geocodes {
		lon, lat, ok := parseLocation(string(g.Location))
		if !ok {
			continue
		}
		name := string(g.FormattedAddress)
		if name == "" {
			name = text
		}
		candidates = append(candidates, domain.GeocodeCandidate{
			DisplayName: name,
			Longitude:   lon,
			Latitude:    lat,
		})
	}
	return collect(candidates)
}

// parseLocation splits an AMap "lon,lat" pair.
func parseLocation(loc string) (lon, lat float64, ok bool) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lon, lat, true
}
