package filestore

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/samirrijal/placeroute/internal/core/domain"
	"github.com/samirrijal/placeroute/internal/core/registry"
)

func TestPlaceStore_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewWithFs(fs, "/data/lists/places.txt")
	ctx := context.Background()

	records := []string{"Abando#-2.9253#43.2613", "Moyua#-2.9355#43.263"}
	if err := store.SaveRecords(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := afero.ReadFile(fs, "/data/lists/places.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "Abando#-2.9253#43.2613\nMoyua#-2.9355#43.263\n" {
		t.Errorf("unexpected file content %q", raw)
	}
	if ok, _ := afero.Exists(fs, "/data/lists/places.txt.tmp"); ok {
		t.Error("temp file left behind")
	}

	got, err := store.LoadRecords(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := registry.New()
	if n := reg.Load(got); n != 2 {
		t.Fatalf("expected 2 places, got %d", n)
	}
	if reg.Places()[1].Name != "Moyua" {
		t.Errorf("unexpected order %+v", reg.Places())
	}
}

func TestPlaceStore_EmptyList(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewWithFs(fs, "places.txt")

	if err := store.SaveRecords(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := afero.ReadFile(fs, "places.txt")
	if len(raw) != 0 {
		t.Errorf("expected empty file, got %q", raw)
	}
	got, err := store.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %v", got)
	}
}

func TestPlaceStore_BlankAndCRLFLines(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "places.txt", []byte("A#1#2\r\n\r\n   \nbad line\nB#3#4"), 0o644)
	store := NewWithFs(fs, "places.txt")

	got, err := store.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	reg := registry.New()
	reg.Load(got)
	places := reg.Places()
	if len(places) != 2 || places[0].Name != "A" || places[1].Name != "B" {
		t.Errorf("unexpected places %+v", places)
	}
}

func TestPlaceStore_Missing(t *testing.T) {
	store := NewWithFs(afero.NewMemMapFs(), "nope.txt")
	if _, err := store.LoadRecords(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceStore_ReadOnly(t *testing.T) {
	store := NewWithFs(afero.NewReadOnlyFs(afero.NewMemMapFs()), "places.txt")
	if err := store.SaveRecords(context.Background(), []string{"A#1#2"}); err == nil {
		t.Fatal("expected error on read-only filesystem")
	}
}
