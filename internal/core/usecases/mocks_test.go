package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// --- Mock FeatureRepository ---

type mockFeatureRepo struct {
	insertFn     func(ctx context.Context, f *domain.Feature) error
	getByIDFn    func(ctx context.Context, id string) (*domain.Feature, error)
	deleteFn     func(ctx context.Context, id string) error
	listFn       func(ctx context.Context, offset, limit int) ([]*domain.Feature, error)
	countFn      func(ctx context.Context) (int, error)
	findNearbyFn func(ctx context.Context, lon, lat, radius float64, limit int) ([]*domain.Feature, error)
}

func (m *mockFeatureRepo) Insert(ctx context.Context, f *domain.Feature) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, f)
	}
	f.ID = "feature-1"
	return nil
}

func (m *mockFeatureRepo) GetByID(ctx context.Context, id string) (*domain.Feature, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFeatureRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return domain.ErrNotFound
}

func (m *mockFeatureRepo) List(ctx context.Context, offset, limit int) ([]*domain.Feature, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockFeatureRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockFeatureRepo) FindNearby(ctx context.Context, lon, lat, radius float64, limit int) ([]*domain.Feature, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lon, lat, radius, limit)
	}
	return nil, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []*domain.FeatureStored
	err    error
}

func (m *mockPublisher) PublishFeatureStored(ctx context.Context, e *domain.FeatureStored) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
