package natsadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// Subscriber implements ports.ChangeSubscriber using NATS JetStream.
// Messages published by the same source are acknowledged and skipped.
type Subscriber struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	source string
	subs   []*nats.Subscription
}

// NewSubscriber creates a subscriber on its own connection.
func NewSubscriber(url, source string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, source: source}, nil
}

// SubscribeChanges delivers new snippet events from other instances.
func (s *Subscriber) SubscribeChanges(ctx context.Context, handler func(ctx context.Context, ch domain.SnippetChange) error) error {
	sub, err := s.js.Subscribe(SubjectPrefix+">", func(msg *nats.Msg) {
		ch, err := decodeChange(msg.Subject, msg.Data)
		if err != nil {
			slog.Warn("dropping snippet event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if ch.Source == s.source {
			_ = msg.Ack()
			return
		}
		if err := handler(ctx, ch); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.DeliverNew(),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s>: %w", SubjectPrefix, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
