// Package redis persists per-service tile snapshots so a restarted
// process can warm its tile cache without a catalog round trip.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skymaps/tilefinder/internal/domain"
)

// DefaultSnapshotTTL is how long a tile snapshot stays valid (7 days).
// Catalogs change rarely; a stale snapshot only delays new tiles until
// the key expires and the next process falls back to the catalog query.
const DefaultSnapshotTTL = 7 * 24 * time.Hour

// Store handles Redis operations for tile snapshots
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveTiles stores the full tile set for a service as one snapshot
func (s *Store) SaveTiles(ctx context.Context, serviceName string, tiles []*domain.Tile) error {
	data, err := json.Marshal(tiles)
	if err != nil {
		return fmt.Errorf("failed to marshal tiles: %w", err)
	}

	key := TilesKey(serviceName)
	if err := s.client.Set(ctx, key, data, DefaultSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save tile snapshot: %w", err)
	}

	return nil
}

// GetTiles retrieves the tile snapshot for a service.
// A cache miss returns (nil, nil), not an error.
func (s *Store) GetTiles(ctx context.Context, serviceName string) ([]*domain.Tile, error) {
	key := TilesKey(serviceName)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tile snapshot: %w", err)
	}

	var tiles []*domain.Tile
	if err := json.Unmarshal(data, &tiles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tile snapshot: %w", err)
	}

	return tiles, nil
}

// DeleteTiles removes the tile snapshot for a service
func (s *Store) DeleteTiles(ctx context.Context, serviceName string) error {
	if err := s.client.Del(ctx, TilesKey(serviceName)).Err(); err != nil {
		return fmt.Errorf("failed to delete tile snapshot: %w", err)
	}
	return nil
}
