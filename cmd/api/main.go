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

	"github.com/samirrijal/geokit/internal/adapters/http"
	natsadapter "github.com/samirrijal/geokit/internal/adapters/nats"
	"github.com/samirrijal/geokit/internal/adapters/postgres"
	"github.com/samirrijal/geokit/internal/adapters/valkey"
	"github.com/samirrijal/geokit/internal/core/ports"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/config"
	"github.com/samirrijal/geokit/internal/pkg/logging"
	"github.com/samirrijal/geokit/internal/pkg/metrics"
	"github.com/samirrijal/geokit/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geokit-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	profile, err := cfg.Profile()
	if err != nil {
		log.Fatalf("platform: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache (optional)
	var cache ports.CacheService
	vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.KeyPrefix)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	// NATS (optional)
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Use cases
	conversions := usecases.NewConversionService(cache, profile, usecases.ConversionOptions{
		MaxInputBytes:   cfg.Codec.MaxInputBytes,
		CacheTTLSeconds: cfg.Codec.CacheTTLSeconds,
		GeoJSONDigits:   cfg.Codec.GeoJSONDigits,
	})
	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db, profile), events, conversions)

	deps := &http.Dependencies{
		Conversions: conversions,
		Features:    features,
		DB:          db,
	}
	if vc != nil {
		deps.Cache = vc
	}
	if pub != nil {
		deps.NATS = pub.Conn()
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Codec.MaxInputBytes + 64*1024, // JSON envelope around the largest accepted geometry
		AppName:      "geokit API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Stat())
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "platform", profile.Name)
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

	slog.Info("server stopped")
}
