// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/internal/store"
	"github.com/khsolheim/tms-mobile-sync/models"
)

type cacheService struct {
	kv         store.KeyValueRepository
	logger     *logger.Logger
	defaultTTL time.Duration
	now        func() time.Time

	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

// NewCacheService constructs the durable cache over the given blob store.
// The persisted table is loaded once here; a missing blob starts an empty
// cache, a corrupt blob is logged and discarded rather than failing startup,
// since the cache is best-effort by contract.
func NewCacheService(kv store.KeyValueRepository, defaultTTL time.Duration, log *logger.Logger) CacheService {
	s := &cacheService{
		kv:         kv,
		logger:     log,
		defaultTTL: defaultTTL,
		now:        time.Now,
		entries:    make(map[string]models.CacheEntry),
	}
	s.load(context.Background())
	return s
}

func (s *cacheService) load(ctx context.Context) {
	blob, err := s.kv.Get(ctx, store.KeyOfflineCache)
	if errors.Is(err, store.ErrKeyNotFound) {
		return
	}
	if err != nil {
		s.logger.Err(err).Msg("load offline cache")
		return
	}

	var entries map[string]models.CacheEntry
	if err = json.Unmarshal(blob, &entries); err != nil {
		s.logger.Err(err).Msg("decode offline cache, starting empty")
		return
	}
	s.entries = entries
}

// persist rewrites the whole table after a mutation. Storage errors are
// logged and absorbed; the in-memory table stays authoritative until the
// next successful persist. Callers must hold s.mu.
func (s *cacheService) persist(ctx context.Context) {
	blob, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Err(err).Msg("encode offline cache")
		return
	}
	if err = s.kv.Put(ctx, store.KeyOfflineCache, blob); err != nil {
		s.logger.Err(err).Msg("persist offline cache")
	}
}

// Set implements [CacheService].
func (s *cacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}

	if ttl == 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	entry := models.CacheEntry{
		Key:      key,
		Value:    raw,
		StoredAt: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	s.persist(ctx)

	return nil
}

// Get implements [CacheService]. Expired entries are deleted as a side
// effect of the read.
func (s *cacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if entry.Expired(s.now()) {
		delete(s.entries, key)
		s.persist(ctx)
		return false, nil
	}

	if dest != nil {
		if err := json.Unmarshal(entry.Value, dest); err != nil {
			return false, fmt.Errorf("decode cache value for %q: %w", key, err)
		}
	}
	return true, nil
}

// Delete implements [CacheService].
func (s *cacheService) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	s.persist(ctx)
	return nil
}

// Clear implements [CacheService].
func (s *cacheService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]models.CacheEntry)
	s.persist(ctx)
	return nil
}
