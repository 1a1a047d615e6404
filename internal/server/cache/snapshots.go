package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
)

// KV is the subset of Redis the cache types need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// SnapshotCache keeps immutable snapshots by short key. Entries never
// need invalidation; the TTL only bounds memory.
type SnapshotCache struct {
	kv  KV
	ttl time.Duration
}

func NewSnapshotCache(kv KV, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{kv: kv, ttl: ttl}
}

func snapshotKey(shortKey string) string { return "snapshot:" + shortKey }

// Get returns nil, nil on a miss.
func (c *SnapshotCache) Get(ctx context.Context, shortKey string) (*models.Snapshot, error) {
	b, err := c.kv.Get(ctx, snapshotKey(shortKey))
	if err != nil || b == nil {
		return nil, err
	}
	var s models.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &s, nil
}

func (c *SnapshotCache) Put(ctx context.Context, s *models.Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return c.kv.Set(ctx, snapshotKey(s.ShortKey), b, c.ttl)
}
