package natsadapter

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// StreamName holds both ingest requests and feature events.
	StreamName = "GEOKIT"

	IngestSubjects  = "geo.ingest.>"
	FeatureSubjects = "geo.features.>"

	ingestDurable = "geo-ingestor"
)

// Connect opens a NATS connection that keeps reconnecting, and its JetStream context.
func Connect(url string) (*nats.Conn, nats.JetStreamContext, error) {
	conn, err := nats.Connect(url,
		nats.Name("geokit"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}
	return conn, js, nil
}

// EnsureStream creates or updates the GEOKIT stream.
func EnsureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{IngestSubjects, FeatureSubjects},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}
