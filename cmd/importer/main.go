package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/geokit/internal/adapters/nats"
	"github.com/samirrijal/geokit/internal/adapters/postgres"
	"github.com/samirrijal/geokit/internal/core/ports"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/config"
	"github.com/samirrijal/geokit/internal/pkg/logging"
	"github.com/samirrijal/geokit/internal/workflows"
)

func main() {
	cfg, err := config.Load("geokit-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	profile, err := cfg.Profile()
	if err != nil {
		log.Fatalf("platform: %v", err)
	}

	db, err := postgres.New(context.Background(), cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	conversions := usecases.NewConversionService(nil, profile, usecases.ConversionOptions{
		MaxInputBytes: cfg.Codec.MaxInputBytes,
	})
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, feature events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}
	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db, profile), events, conversions)

	w := worker.New(c, workflows.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.ImportWorkflow)
	w.RegisterActivity(&workflows.ImportActivities{
		Features:    features,
		Conversions: conversions,
	})

	slog.Info("import worker started", "queue", workflows.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
