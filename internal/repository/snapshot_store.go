package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalScan/internal/domain/models"
	"SignalScan/pkg/cache"
)

const snapshotKey = "report:latest"

// CacheSnapshotStore keeps the latest RunReport as JSON in a cache backend.
type CacheSnapshotStore struct {
	c   cache.Service
	ttl time.Duration
}

func NewCacheSnapshotStore(c cache.Service, ttl time.Duration) *CacheSnapshotStore {
	return &CacheSnapshotStore{c: c, ttl: ttl}
}

func (s *CacheSnapshotStore) Put(ctx context.Context, r *models.RunReport) error {
	if err := s.c.Set(ctx, snapshotKey, r, s.ttl); err != nil {
		return fmt.Errorf("%w: put snapshot: %v", models.ErrIO, err)
	}
	return nil
}

func (s *CacheSnapshotStore) Latest(ctx context.Context) (*models.RunReport, error) {
	var r models.RunReport
	if err := s.c.Get(ctx, snapshotKey, &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, models.ErrNoReport
		}
		return nil, fmt.Errorf("%w: read snapshot: %v", models.ErrIO, err)
	}
	return &r, nil
}
