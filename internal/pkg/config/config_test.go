package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLACEROUTE_GEOCODE_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "missing"))

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Optimizer.MaxPlaces != 16 {
		t.Errorf("expected max_places 16, got %d", cfg.Optimizer.MaxPlaces)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("expected file backend, got %s", cfg.Store.Backend)
	}
	if cfg.Geocode.AMapKey != "" {
		t.Errorf("expected no key, got %q", cfg.Geocode.AMapKey)
	}
	if cfg.Telemetry.ServiceName != "test" {
		t.Errorf("expected service name test, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_CredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("# geocoding\nAMAP_KEY=abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLACEROUTE_GEOCODE_CREDENTIALS_FILE", path)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geocode.AMapKey != "abc123" {
		t.Errorf("expected key from file, got %q", cfg.Geocode.AMapKey)
	}
}

func TestLoad_EnvKeyWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("AMAP_KEY=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLACEROUTE_GEOCODE_CREDENTIALS_FILE", path)
	t.Setenv("PLACEROUTE_GEOCODE_AMAP_KEY", "from-env")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Geocode.AMapKey != "from-env" {
		t.Errorf("expected env key, got %q", cfg.Geocode.AMapKey)
	}
}

func TestReadCredential_Missing(t *testing.T) {
	key, err := ReadCredential(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key, got %q", key)
	}
}

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Geocode:   GeocodeConfig{NominatimURL: "http://n", Timeout: 5, RatePerSecond: 1},
		Optimizer: OptimizerConfig{Mode: "open", MaxPlaces: 16},
		Store:     StoreConfig{Backend: "file", Path: "places.txt"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Optimizer.Mode = "greedy"
	cfg.Optimizer.MaxPlaces = 64
	cfg.Store.Backend = "s3"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "optimizer.mode", "optimizer.max_places", "store.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidate_PostgresNeedsDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Store = StoreConfig{Backend: "postgres", ListName: "default"}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "database.host") {
		t.Fatalf("expected database errors, got %v", err)
	}
}
