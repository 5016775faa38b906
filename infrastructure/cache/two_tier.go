package cache

import (
	"context"
	"sync/atomic"
	"time"

	"viral-clips/domain/model"
	"viral-clips/domain/repository"
	"viral-clips/infrastructure/logger"
)

// TwoTierStore front-ends the hot in-process tier with a durable cold tier.
// It exclusively owns CacheEntry lifetime: writes go through both tiers with
// independent TTLs computed from one storedAt, cold hits are promoted into
// the hot tier, and cold-tier failures degrade to a miss instead of failing
// the request.
type TwoTierStore struct {
	hot     *HotCache
	cold    repository.IDiscoveryCache
	hotTTL  time.Duration
	coldTTL time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTwoTierStore wires the hot tier to a durable repository. cold may be
// nil, in which case the store runs memory-only.
func NewTwoTierStore(hot *HotCache, cold repository.IDiscoveryCache, hotTTL, coldTTL time.Duration) *TwoTierStore {
	return &TwoTierStore{
		hot:     hot,
		cold:    cold,
		hotTTL:  hotTTL,
		coldTTL: coldTTL,
		now:     time.Now,
	}
}

// Get checks hot then cold. A cold hit is written back into the hot tier
// before returning so the next read is local.
func (s *TwoTierStore) Get(ctx context.Context, fingerprint string) (*model.CacheEntry, model.CacheTier, bool) {
	if entry, ok := s.hot.Get(fingerprint); ok {
		s.hits.Add(1)
		return entry, model.TierHot, true
	}
	if s.cold != nil {
		entry, err := s.cold.Get(ctx, fingerprint)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier lookup failed, treating as miss")
		} else if entry != nil {
			s.promote(entry)
			s.hits.Add(1)
			return entry, model.TierCold, true
		}
	}
	s.misses.Add(1)
	return nil, "", false
}

// promote writes a cold-tier hit into the hot tier so the next read is
// local, with the hot TTL computed from the entry's storedAt.
func (s *TwoTierStore) promote(entry *model.CacheEntry) {
	promoted := *entry
	promoted.ExpiresAt = promoted.StoredAt.Add(s.hotTTL)
	s.hot.Set(&promoted)
}

// GetStale returns the freshest entry available for the fingerprint even if
// expired, preferring the hot tier's copy. Used for quota/outage fallback.
func (s *TwoTierStore) GetStale(ctx context.Context, fingerprint string) *model.CacheEntry {
	if entry, ok := s.hot.Get(fingerprint); ok {
		return entry
	}
	if s.cold == nil {
		return nil
	}
	entry, err := s.cold.GetStale(ctx, fingerprint)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Cold tier stale lookup failed")
		return nil
	}
	return entry
}

// Put writes the payload through both tiers. Each tier gets its own TTL
// computed from the same storedAt timestamp.
func (s *TwoTierStore) Put(ctx context.Context, fingerprint string, payload model.DiscoveryPayload, etag string) *model.CacheEntry {
	storedAt := s.now()
	hotEntry := &model.CacheEntry{
		Fingerprint: fingerprint,
		Payload:     payload,
		ETag:        etag,
		StoredAt:    storedAt,
		ExpiresAt:   storedAt.Add(s.hotTTL),
	}
	s.hot.Set(hotEntry)

	if s.cold != nil {
		coldEntry := *hotEntry
		coldEntry.ExpiresAt = storedAt.Add(s.coldTTL)
		if err := s.cold.Upsert(ctx, &coldEntry); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier write failed, entry kept hot only")
		}
	}
	return hotEntry
}

// Touch refreshes an entry's storedAt/expiresAt in both tiers without
// touching the payload. Used when the upstream answers "not modified".
func (s *TwoTierStore) Touch(ctx context.Context, entry *model.CacheEntry) {
	storedAt := s.now()
	refreshed := *entry
	refreshed.StoredAt = storedAt
	refreshed.ExpiresAt = storedAt.Add(s.hotTTL)
	s.hot.Set(&refreshed)

	if s.cold != nil {
		if err := s.cold.Touch(ctx, entry.Fingerprint, storedAt, storedAt.Add(s.coldTTL)); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier touch failed")
		}
	}
}

// Invalidate removes the fingerprint from both tiers immediately.
func (s *TwoTierStore) Invalidate(ctx context.Context, fingerprint string) {
	s.hot.Delete(fingerprint)
	if s.cold != nil {
		if err := s.cold.Delete(ctx, fingerprint); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier delete failed")
		}
	}
}

// Has reports whether the fingerprint resolves to a live entry in either
// tier. Cursor resolution uses this without promoting or counting stats.
func (s *TwoTierStore) Has(ctx context.Context, fingerprint string) bool {
	if _, ok := s.hot.Get(fingerprint); ok {
		return true
	}
	if s.cold == nil {
		return false
	}
	entry, err := s.cold.Get(ctx, fingerprint)
	return err == nil && entry != nil
}

// ClearAll empties both tiers, returning per-tier counts.
func (s *TwoTierStore) ClearAll(ctx context.Context) (hotCleared int, coldCleared int64, err error) {
	hotCleared = s.hot.Clear()
	if s.cold != nil {
		coldCleared, err = s.cold.Clear(ctx)
	}
	return hotCleared, coldCleared, err
}

// Sweep purges expired entries from both tiers.
func (s *TwoTierStore) Sweep(ctx context.Context) {
	purged := s.hot.PurgeExpired()
	var coldPurged int64
	if s.cold != nil {
		n, err := s.cold.PurgeExpired(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier purge failed")
		}
		coldPurged = n
	}
	if purged > 0 || coldPurged > 0 {
		logger.GetLogger().WithField("hot", purged).WithField("cold", coldPurged).Info("Swept expired cache entries")
	}
}

// Stats returns entry counts and the lifetime hit rate.
func (s *TwoTierStore) Stats(ctx context.Context) (hotEntries int, coldEntries int64, hitRate float64) {
	hotEntries = s.hot.Len()
	if s.cold != nil {
		n, err := s.cold.Count(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Cold tier count failed")
		} else {
			coldEntries = n
		}
	}
	hits, misses := s.hits.Load(), s.misses.Load()
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return hotEntries, coldEntries, hitRate
}
