package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samirrijal/placeroute/internal/pkg/tsp"
)

// CredentialKey is the entry read from the credentials file for the keyed
// geocoding provider.
const CredentialKey = "AMAP_KEY"

// MaxOptimizePlaces bounds optimizer.max_places; the exact solver needs
// n·2ⁿ states.
const MaxOptimizePlaces = 20

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeocodeConfig struct {
	CredentialsFile string  `mapstructure:"credentials_file"`
	AMapKey         string  `mapstructure:"amap_key"`
	AMapURL         string  `mapstructure:"amap_url"`
	NominatimURL    string  `mapstructure:"nominatim_url"`
	UserAgent       string  `mapstructure:"user_agent"`
	Timeout         int     `mapstructure:"timeout"`
	RatePerSecond   float64 `mapstructure:"rate_per_second"`
	CacheTTL        int     `mapstructure:"cache_ttl"`
}

type OptimizerConfig struct {
	Mode      string `mapstructure:"mode"`
	MaxPlaces int    `mapstructure:"max_places"`
}

// StoreConfig selects where save/load keeps the place list.
// Backend is "file", "postgres" or "none".
type StoreConfig struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	ListName string `mapstructure:"list_name"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addr      string `mapstructure:"addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type TelemetryConfig struct {
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("geocode.credentials_file", "~/.placeroute/credentials")
	v.SetDefault("geocode.amap_key", "")
	v.SetDefault("geocode.amap_url", "https://restapi.amap.com")
	v.SetDefault("geocode.nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "placeroute")
	v.SetDefault("geocode.timeout", 10)
	v.SetDefault("geocode.rate_per_second", 1.0)
	v.SetDefault("geocode.cache_ttl", 86400)
	v.SetDefault("optimizer.mode", "open")
	v.SetDefault("optimizer.max_places", 16)
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "places.txt")
	v.SetDefault("store.list_name", "default")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "placeroute")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "placeroute")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.key_prefix", "placeroute:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("telemetry.insecure", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PLACEROUTE_GEOCODE_AMAP_KEY → geocode.amap_key
	v.SetEnvPrefix("PLACEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Geocode.AMapKey == "" {
		key, err := ReadCredential(cfg.Geocode.CredentialsFile)
		if err != nil {
			return nil, err
		}
		cfg.Geocode.AMapKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ReadCredential returns the keyed provider credential stored in a
// dotenv-style file. A missing file yields an empty key.
func ReadCredential(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", nil
		}
		path = filepath.Join(home, path[2:])
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read credentials %s: %w", path, err)
	}
	return strings.TrimSpace(env[CredentialKey]), nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Geocode.NominatimURL == "" {
		errs = append(errs, "geocode.nominatim_url is required")
	}
	if c.Geocode.AMapKey != "" && c.Geocode.AMapURL == "" {
		errs = append(errs, "geocode.amap_url is required when a key is configured")
	}
	if c.Geocode.Timeout <= 0 {
		errs = append(errs, "geocode.timeout must be positive")
	}
	if c.Geocode.RatePerSecond <= 0 {
		errs = append(errs, "geocode.rate_per_second must be positive")
	}
	if _, err := tsp.ParseMode(c.Optimizer.Mode); err != nil {
		errs = append(errs, fmt.Sprintf("optimizer.mode: %v", err))
	}
	if c.Optimizer.MaxPlaces < 1 || c.Optimizer.MaxPlaces > MaxOptimizePlaces {
		errs = append(errs, fmt.Sprintf("optimizer.max_places must be 1-%d, got %d", MaxOptimizePlaces, c.Optimizer.MaxPlaces))
	}

	switch c.Store.Backend {
	case "none":
	case "file":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the file backend")
		}
	case "postgres":
		if c.Store.ListName == "" {
			errs = append(errs, "store.list_name is required for the postgres backend")
		}
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.backend must be file, postgres or none, got %q", c.Store.Backend))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, "telemetry.sample_ratio must be within [0,1]")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
