package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/placeroute/internal/adapters/filestore"
	"github.com/samirrijal/placeroute/internal/adapters/geocode"
	"github.com/samirrijal/placeroute/internal/adapters/postgres"
	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/core/registry"
	"github.com/samirrijal/placeroute/internal/core/usecases"
	"github.com/samirrijal/placeroute/internal/pkg/config"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
)

// row is one CSV line. A row with coordinates is taken as is; a row with only
// a query is geocoded and the first candidate wins.
type row struct {
	line      int
	name      string
	query     string
	longitude float64
	latitude  float64
	hasCoords bool
}

// Usage: importer places.csv
//
// The CSV needs a header with any of: name, longitude, latitude, query.
// The resulting list replaces the configured store's list.
func main() {
	cfg, err := config.Load("placeroute-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if len(os.Args) < 2 {
		log.Fatal("usage: importer <places.csv>")
	}

	ctx := context.Background()

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := readRows(f)
	if err != nil {
		log.Fatalf("read %s: %v", os.Args[1], err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	timeout := time.Duration(cfg.Geocode.Timeout) * time.Second
	resolver := usecases.NewGeoResolver(nil, 0,
		geocode.NewAMap(cfg.Geocode.AMapURL, cfg.Geocode.AMapKey, timeout),
		geocode.NewNominatim(cfg.Geocode.NominatimURL, cfg.Geocode.UserAgent, timeout, cfg.Geocode.RatePerSecond),
	)

	places := resolveRows(ctx, resolver, rows, 4)

	reg := registry.New()
	for i, p := range places {
		if p == nil {
			continue
		}
		if _, err := reg.Insert(*p, registry.Append); err != nil {
			slog.Warn("skipping row", "line", rows[i].line, "error", err)
		}
	}

	if err := store.SaveRecords(ctx, reg.Serialize()); err != nil {
		log.Fatalf("save: %v", err)
	}
	slog.Info("import complete", "rows", len(rows), "places", reg.Len(), "store", cfg.Store.Backend)
}

func openStore(ctx context.Context, cfg *config.Config) (ports.PlaceStore, func(), error) {
	switch cfg.Store.Backend {
	case "file":
		return filestore.New(cfg.Store.Path), func() {}, nil
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewPlaceStore(db, cfg.Store.ListName), db.Close, nil
	}
	return nil, nil, fmt.Errorf("store backend %q cannot be imported into", cfg.Store.Backend)
}

// readRows parses the CSV. Lines that have neither coordinates nor a query
// are skipped with a warning.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	cols := indexColumns(header)
	_, hasQuery := cols["query"]
	_, hasLon := cols["longitude"]
	_, hasLat := cols["latitude"]
	if !hasQuery && !(hasLon && hasLat) {
		return nil, errors.New("header needs a query column or longitude and latitude columns")
	}

	var rows []row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("unreadable csv line", "line", line, "error", err)
			continue
		}

		rw := row{
			line:  line,
			name:  getField(record, cols, "name"),
			query: getField(record, cols, "query"),
		}
		lon, lonErr := strconv.ParseFloat(getField(record, cols, "longitude"), 64)
		lat, latErr := strconv.ParseFloat(getField(record, cols, "latitude"), 64)
		if lonErr == nil && latErr == nil {
			rw.longitude, rw.latitude, rw.hasCoords = lon, lat, true
		}

		if !rw.hasCoords && rw.query == "" {
			slog.Warn("skipping line without coordinates or query", "line", line)
			continue
		}
		rows = append(rows, rw)
	}
	return rows, nil
}

// resolveRows turns rows into places, keeping input order. Queries run on at
// most workers goroutines; a row that resolves to nothing yields nil.
func resolveRows(ctx context.Context, resolver *usecases.GeoResolver, rows []row, workers int) []*domain.Place {
	out := make([]*domain.Place, len(rows))

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, rw := range rows {
		if rw.hasCoords {
			name := rw.name
			if name == "" {
				name = rw.query
			}
			out[i] = &domain.Place{Name: name, Longitude: rw.longitude, Latitude: rw.latitude}
			continue
		}

		wg.Add(1)
		go func(i int, rw row) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			candidates := resolver.Resolve(ctx, rw.query)
			if len(candidates) == 0 {
				slog.Warn("no address match", "line", rw.line, "query", rw.query)
				return
			}
			p := candidates[0].Place()
			if rw.name != "" {
				p.Name = rw.name
			}
			out[i] = &p
		}(i, rw)
	}

	wg.Wait()
	return out
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
