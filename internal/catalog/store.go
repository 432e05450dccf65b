package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store provides persistence for clinic catalogs.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new catalog store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

func (s *Store) key(clinicID string) string {
	return fmt.Sprintf("clinic:catalog:%s", clinicID)
}

// Get retrieves the clinic catalog, returning the seed default if none has
// been saved yet.
func (s *Store) Get(ctx context.Context, clinicID string) (*Catalog, error) {
	data, err := s.redis.Get(ctx, s.key(clinicID)).Bytes()
	if err == redis.Nil {
		return DefaultCatalog(clinicID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal: %w", err)
	}
	return &cat, nil
}

// Set saves the clinic catalog.
func (s *Store) Set(ctx context.Context, cat *Catalog) error {
	data, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("catalog: marshal: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(cat.ClinicID), data, 0).Err(); err != nil {
		return fmt.Errorf("catalog: set: %w", err)
	}
	return nil
}
