package ports

import (
	"context"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// FeatureRepository persists named geometries.
type FeatureRepository interface {
	// Insert stores f and fills in its ID and CreatedAt.
	Insert(ctx context.Context, f *domain.Feature) error
	// GetByID returns domain.ErrNotFound when no feature has the id.
	GetByID(ctx context.Context, id string) (*domain.Feature, error)
	// Delete returns domain.ErrNotFound when no feature has the id.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*domain.Feature, error)
	Count(ctx context.Context) (int, error)
	// FindNearby returns geography features within radiusMeters of (lon, lat), nearest first,
	// with Distance set.
	FindNearby(ctx context.Context, lon, lat, radiusMeters float64, limit int) ([]*domain.Feature, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFeatureStored(ctx context.Context, event *domain.FeatureStored) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeIngest(ctx context.Context, handler func(ctx context.Context, msg *domain.IngestMessage) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
