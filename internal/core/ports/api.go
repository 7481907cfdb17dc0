package ports

import (
	"context"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// FeedSource reads the current set of point records.
type FeedSource interface {
	// FetchFeed returns every record, or only those inside bbox when it is
	// non-nil.
	FetchFeed(ctx context.Context, bbox *domain.Bounds) (*domain.Feed, error)
}

// SnippetWriter persists marker mutations.
type SnippetWriter interface {
	UpdateLocation(ctx context.Context, id string, at domain.LatLng) error
	Delete(ctx context.Context, id string) error
}

// SnippetAPI is the full remote contract used by the widget.
type SnippetAPI interface {
	FeedSource
	SnippetWriter
}

// EventPublisher publishes confirmed mutations to a message broker.
type EventPublisher interface {
	PublishLocationUpdated(ctx context.Context, rec *domain.PointRecord) error
	PublishSnippetDeleted(ctx context.Context, id string) error
}

// ChangeSubscriber delivers mutations made by other widget instances.
type ChangeSubscriber interface {
	SubscribeChanges(ctx context.Context, handler func(ctx context.Context, ch domain.SnippetChange) error) error
}

// SnippetStore persists snippets for the stub backend.
type SnippetStore interface {
	List(ctx context.Context, bbox *domain.Bounds) ([]domain.PointRecord, error)
	Get(ctx context.Context, id string) (*domain.PointRecord, error)
	UpdateLocation(ctx context.Context, id string, at domain.LatLng) error
	Delete(ctx context.Context, id string) error
}

// FeedCache stores encoded feed bodies for the stub backend.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
