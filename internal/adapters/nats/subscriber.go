package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and ensures the stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, js, err := Connect(url)
	if err != nil {
		return nil, err
	}
	if err := EnsureStream(js); err != nil {
		conn.Close()
		return nil, err
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeIngest delivers geo.ingest.> messages to handler. Messages that cannot be decoded,
// or that handler rejects as invalid input, are terminated; other failures are redelivered.
func (s *Subscriber) SubscribeIngest(ctx context.Context, handler func(ctx context.Context, msg *domain.IngestMessage) error) error {
	sub, err := s.js.Subscribe(IngestSubjects, func(msg *nats.Msg) {
		var in domain.IngestMessage
		if err := json.Unmarshal(msg.Data, &in); err != nil {
			slog.Warn("dropping undecodable ingest message", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &in); err != nil {
			if domain.IsInvalidInput(err) {
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(ingestDurable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// IsConnected reports whether the connection is up.
func (s *Subscriber) IsConnected() bool {
	return s.conn.IsConnected()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
