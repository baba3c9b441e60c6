package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	natsadapter "github.com/samirrijal/geokit/internal/adapters/nats"
	"github.com/samirrijal/geokit/internal/adapters/postgres"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/ports"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/pkg/config"
	"github.com/samirrijal/geokit/internal/pkg/featurecsv"
	"github.com/samirrijal/geokit/internal/pkg/logging"
)

// The ingestor stores geometries submitted on geo.ingest.>. Given a CSV path it loads that file
// once instead and exits.
func main() {
	cfg, err := config.Load("geokit-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	profile, err := cfg.Profile()
	if err != nil {
		log.Fatalf("platform: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats publisher unavailable, feature events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	conversions := usecases.NewConversionService(nil, profile, usecases.ConversionOptions{
		MaxInputBytes: cfg.Codec.MaxInputBytes,
		GeoJSONDigits: cfg.Codec.GeoJSONDigits,
	})
	features := usecases.NewFeatureService(postgres.NewFeatureRepo(db, profile), events, conversions)

	if len(os.Args) > 1 {
		if err := ingestFile(ctx, features, os.Args[1]); err != nil {
			log.Fatalf("ingest %s: %v", os.Args[1], err)
		}
		return
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeIngest(ctx, func(ctx context.Context, msg *domain.IngestMessage) error {
		f, err := features.Ingest(ctx, msg)
		if err != nil {
			if domain.IsInvalidInput(err) {
				slog.Warn("ingest rejected", "name", msg.Name, "error", err)
			} else {
				slog.Error("ingest failed", "name", msg.Name, "error", err)
			}
			return err
		}
		slog.Info("feature stored", "id", f.ID, "name", f.Name, "type", f.Geometry.Type().String())
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("ingestor listening", "subjects", natsadapter.IngestSubjects)
	<-ctx.Done()
	slog.Info("ingestor stopped")
}

// ingestFile stores every row of a CSV file, four at a time. Invalid rows are logged and
// skipped.
func ingestFile(ctx context.Context, features *usecases.FeatureService, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := featurecsv.NewReader(f)
	if err != nil {
		return err
	}

	var (
		wg               sync.WaitGroup
		stored, rejected atomic.Int64
		sem              = make(chan struct{}, 4)
		firstErr         error
		errOnce          sync.Once
	)
	for {
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			wg.Wait()
			return err
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(row featurecsv.Row) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := features.Ingest(ctx, &row.Message)
			switch {
			case err == nil:
				stored.Add(1)
			case domain.IsInvalidInput(err):
				rejected.Add(1)
				slog.Warn("row rejected", "line", row.Line, "name", row.Message.Name, "error", err)
			default:
				errOnce.Do(func() { firstErr = err })
				slog.Error("row failed", "line", row.Line, "error", err)
			}
		}(row)
	}
	wg.Wait()

	slog.Info("ingestion complete", "file", path, "stored", stored.Load(), "rejected", rejected.Load())
	return firstErr
}
