package cache_test

import (
	"fmt"
	"testing"
	"time"

	"viral-clips/domain/model"
	"viral-clips/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotEntry(fingerprint string, ttl time.Duration) *model.CacheEntry {
	now := time.Now()
	return &model.CacheEntry{
		Fingerprint: fingerprint,
		Payload:     model.DiscoveryPayload{Videos: []model.VideoRecord{{ID: fingerprint + "-vid"}}},
		StoredAt:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

func TestHotCache_SetGet(t *testing.T) {
	c := cache.NewHotCache(4)
	c.Set(hotEntry("fp-1", time.Minute))

	entry, ok := c.Get("fp-1")
	require.True(t, ok)
	assert.Equal(t, "fp-1", entry.Fingerprint)

	_, ok = c.Get("fp-unknown")
	assert.False(t, ok)
}

func TestHotCache_ExpiredEntryDroppedOnRead(t *testing.T) {
	c := cache.NewHotCache(4)
	c.Set(hotEntry("fp-1", -time.Second))

	_, ok := c.Get("fp-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestHotCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.NewHotCache(3)
	for i := 1; i <= 3; i++ {
		c.Set(hotEntry(fmt.Sprintf("fp-%d", i), time.Minute))
	}

	// Refresh fp-1 so fp-2 becomes the eviction candidate.
	_, ok := c.Get("fp-1")
	require.True(t, ok)

	c.Set(hotEntry("fp-4", time.Minute))

	_, ok = c.Get("fp-2")
	assert.False(t, ok)
	for _, fp := range []string{"fp-1", "fp-3", "fp-4"} {
		_, ok = c.Get(fp)
		assert.True(t, ok, fp)
	}
}

func TestHotCache_PurgeExpired(t *testing.T) {
	c := cache.NewHotCache(8)
	c.Set(hotEntry("live", time.Minute))
	c.Set(hotEntry("dead-1", -time.Second))
	c.Set(hotEntry("dead-2", -time.Second))

	assert.Equal(t, 2, c.PurgeExpired())
	assert.Equal(t, 1, c.Len())
}

func TestHotCache_Clear(t *testing.T) {
	c := cache.NewHotCache(8)
	c.Set(hotEntry("fp-1", time.Minute))
	c.Set(hotEntry("fp-2", time.Minute))

	assert.Equal(t, 2, c.Clear())
	assert.Equal(t, 0, c.Len())
}
