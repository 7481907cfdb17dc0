package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	source string
}

// NewPublisher connects to NATS, enables JetStream and ensures the event
// stream exists. source identifies this widget instance in every message.
func NewPublisher(url, source string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, source: source}, nil
}

// PublishLocationUpdated announces a confirmed coordinate change.
func (p *Publisher) PublishLocationUpdated(ctx context.Context, rec *domain.PointRecord) error {
	subject, data, err := locationUpdated(rec, p.source, time.Now())
	if err != nil {
		return err
	}
	return p.publish(ctx, SubjectLocationUpdated, subject, data)
}

// PublishSnippetDeleted announces a confirmed deletion.
func (p *Publisher) PublishSnippetDeleted(ctx context.Context, id string) error {
	subject, data, err := snippetDeleted(id, p.source, time.Now())
	if err != nil {
		return err
	}
	return p.publish(ctx, SubjectSnippetDeleted, subject, data)
}

func (p *Publisher) publish(ctx context.Context, label, subject string, data []byte) error {
	_, err := p.js.Publish(subject, data, nats.Context(ctx))
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultTransport
		err = fmt.Errorf("publish %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(label, result).Inc()
	return err
}

// Conn exposes the connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps retrying in the background.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("snippetmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
