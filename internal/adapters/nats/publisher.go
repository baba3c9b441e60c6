package natsadapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, js, err := Connect(url)
	if err != nil {
		return nil, err
	}
	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, js: js}, nil
}

// PublishFeatureStored publishes to geo.features.<type>.
func (p *Publisher) PublishFeatureStored(ctx context.Context, event *domain.FeatureStored) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("geo.features."+strings.ToLower(event.Type), data, nats.Context(ctx))
	return err
}

// PublishIngest submits a geometry to the ingest stream, on geo.ingest.<family>.
func (p *Publisher) PublishIngest(ctx context.Context, msg *domain.IngestMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	family := strings.ToLower(msg.Family)
	if family == "" {
		family = "geometry"
	}
	_, err = p.js.Publish("geo.ingest."+family, data, nats.Context(ctx))
	return err
}

// Conn returns the underlying connection, shared by core NATS subscribers such as the
// websocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// IsConnected reports whether the connection is up.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
