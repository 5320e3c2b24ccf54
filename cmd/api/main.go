package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/placeroute/internal/adapters/filestore"
	"github.com/samirrijal/placeroute/internal/adapters/geocode"
	"github.com/samirrijal/placeroute/internal/adapters/http"
	natsadapter "github.com/samirrijal/placeroute/internal/adapters/nats"
	"github.com/samirrijal/placeroute/internal/adapters/postgres"
	"github.com/samirrijal/placeroute/internal/adapters/valkey"
	"github.com/samirrijal/placeroute/internal/core/ports"
	"github.com/samirrijal/placeroute/internal/core/registry"
	"github.com/samirrijal/placeroute/internal/core/usecases"
	"github.com/samirrijal/placeroute/internal/pkg/config"
	"github.com/samirrijal/placeroute/internal/pkg/logging"
	"github.com/samirrijal/placeroute/internal/pkg/telemetry"
	"github.com/samirrijal/placeroute/internal/pkg/tsp"
)

func main() {
	cfg, err := config.Load("placeroute-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		slog.Warn("telemetry init failed", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	deps := &http.Dependencies{}

	// Geocode cache
	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
		if err != nil {
			slog.Warn("valkey unavailable, geocode cache disabled", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			deps.Cache = vc
		}
	}

	// Providers in priority order: the keyed one first when a key is set.
	timeout := time.Duration(cfg.Geocode.Timeout) * time.Second
	resolver := usecases.NewGeoResolver(cache, cfg.Geocode.CacheTTL,
		geocode.NewAMap(cfg.Geocode.AMapURL, cfg.Geocode.AMapKey, timeout),
		geocode.NewNominatim(cfg.Geocode.NominatimURL, cfg.Geocode.UserAgent, timeout, cfg.Geocode.RatePerSecond),
	)
	if p := resolver.Provider(); p != nil {
		slog.Info("geocode provider selected", "provider", p.Name())
	}

	// Place store
	var store ports.PlaceStore
	switch cfg.Store.Backend {
	case "file":
		store = filestore.New(cfg.Store.Path)
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		go db.ReportPoolStats(ctx, 15*time.Second)
		store = postgres.NewPlaceStore(db, cfg.Store.ListName)
		deps.DB = db
	}

	// Host UI: JetStream when NATS is enabled, otherwise the in-process hub.
	var ui ports.HostUI
	var sub *natsadapter.Subscriber
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
		sub = natsadapter.NewSubscriber(pub.Conn())
		defer sub.Close()
		ui = pub
		deps.Feed = sub
		deps.NATS = pub.Conn()
	} else {
		hub := http.NewHub()
		ui = hub
		deps.Feed = hub
	}

	mode, _ := tsp.ParseMode(cfg.Optimizer.Mode)
	ctrl := usecases.NewController(
		registry.New(),
		resolver,
		usecases.NewRouteOptimizer(mode),
		store,
		ui,
		cfg.Optimizer.MaxPlaces,
	)
	deps.Controller = ctrl

	if sub != nil {
		if err := sub.SubscribeInput(ctx, ctrl.HandleInput); err != nil {
			log.Fatalf("nats input: %v", err)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "PlaceRoute API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3000, http://localhost:5173",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "store", cfg.Store.Backend, "nats", cfg.NATS.Enabled)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	// Let pending address lookups deliver their answers.
	ctrl.Wait()

	slog.Info("server stopped")
}
