package services

import (
	"context"
	"crypto/sha512"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/server/repositories/repomanager"
)

const (
	minShortKeyLength = 5
	maxShortKeyLength = 9
)

// SnapshotCache is an optional read-through cache for snapshots.
type SnapshotCache interface {
	Get(ctx context.Context, shortKey string) (*models.Snapshot, error)
	Put(ctx context.Context, s *models.Snapshot) error
}

type SnapshotService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       SnapshotCache
	log         logging.Logger
}

// NewSnapshotService builds the service; cache may be nil.
func NewSnapshotService(db *sql.DB, m repomanager.RepositoryManager, cache SnapshotCache, log logging.Logger) *SnapshotService {
	return &SnapshotService{db: db, repomanager: m, cache: cache, log: log}
}

func Hash(data string) string {
	sum := sha512.Sum512([]byte(data))
	return hex.EncodeToString(sum[:])
}

// Create stores data under the shortest free prefix of its hash. A prefix
// already holding the same content is reused.
func (s *SnapshotService) Create(ctx context.Context, data string) (string, error) {
	hash := Hash(data)
	repo := s.repomanager.Snapshots(s.db)

	for n := minShortKeyLength; n <= maxShortKeyLength; n++ {
		key := hash[:n]

		err := repo.Insert(ctx, &models.Snapshot{ShortKey: key, Hash: hash, Data: data})
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return "", fmt.Errorf("error storing snapshot: %w", err)
		}

		existing, err := repo.GetHash(ctx, key)
		if err != nil {
			return "", fmt.Errorf("error resolving short key: %w", err)
		}
		if existing == hash {
			return key, nil
		}
		s.log.Debug(ctx, "short key collision", "key", key)
	}

	return "", common.ErrShortKeyExhausted
}

func (s *SnapshotService) Get(ctx context.Context, shortKey string) (*models.Snapshot, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, shortKey)
		if err != nil {
			s.log.Warn(ctx, "snapshot cache read failed", "key", shortKey, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	snap, err := s.repomanager.Snapshots(s.db).Get(ctx, shortKey)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, snap); err != nil {
			s.log.Warn(ctx, "snapshot cache write failed", "key", shortKey, "error", err)
		}
	}
	return snap, nil
}
