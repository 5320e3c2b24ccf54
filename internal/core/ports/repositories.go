package ports

import "context"

// PlaceStore persists the serialized place list. Records are name#lon#lat
// lines in registry order.
type PlaceStore interface {
	LoadRecords(ctx context.Context) ([]string, error)
	SaveRecords(ctx context.Context, records []string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
