package usecase

import (
	"testing"
	"time"

	"viral-clips/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(now time.Time) []model.VideoRecord {
	return []model.VideoRecord{
		{ID: "old-hit", Views: 1000000, Likes: 50000, Comments: 8000, PublishedAt: now.AddDate(-2, 0, 0)},
		{ID: "fresh-hit", Views: 900000, Likes: 48000, Comments: 7500, PublishedAt: now.Add(-48 * time.Hour)},
		{ID: "quiet", Views: 2000, Likes: 10, Comments: 1, PublishedAt: now.AddDate(0, -6, 0)},
	}
}

func TestRankByViralScore_Deterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := sampleRecords(now)

	first := RankByViralScore(records, now)
	second := RankByViralScore(records, now)
	assert.Equal(t, first, second)
}

func TestRankByViralScore_InputNotMutated(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := sampleRecords(now)
	original := make([]model.VideoRecord, len(records))
	copy(original, records)

	RankByViralScore(records, now)
	assert.Equal(t, original, records)
}

func TestRankByViralScore_Bounded(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []model.VideoRecord{
		{ID: "max", Views: 1 << 40, Likes: 1 << 40, Comments: 1 << 40, PublishedAt: now},
		{ID: "zero", PublishedAt: now.AddDate(-10, 0, 0)},
	}
	ranked := RankByViralScore(records, now)
	for _, r := range ranked {
		assert.GreaterOrEqual(t, r.ViralScore, 0.0)
		assert.LessOrEqual(t, r.ViralScore, 10.0)
	}
}

func TestRankByViralScore_RecencyBreaksEngagementParity(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []model.VideoRecord{
		{ID: "stale", Views: 100000, Likes: 5000, Comments: 500, PublishedAt: now.AddDate(-3, 0, 0)},
		{ID: "fresh", Views: 100000, Likes: 5000, Comments: 500, PublishedAt: now.Add(-24 * time.Hour)},
	}
	ranked := RankByViralScore(records, now)
	require.Len(t, ranked, 2)
	assert.Equal(t, "fresh", ranked[0].ID)
	assert.Greater(t, ranked[0].ViralScore, ranked[1].ViralScore)
}

func TestRankByViralScore_OrderedBestFirst(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ranked := RankByViralScore(sampleRecords(now), now)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].ViralScore, ranked[i].ViralScore)
	}
	assert.Equal(t, "quiet", ranked[len(ranked)-1].ID)
}

func TestRankByViralScore_TiesBreakByID(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	published := now.Add(-time.Hour)
	records := []model.VideoRecord{
		{ID: "bbb", Views: 100, Likes: 10, Comments: 1, PublishedAt: published},
		{ID: "aaa", Views: 100, Likes: 10, Comments: 1, PublishedAt: published},
	}
	ranked := RankByViralScore(records, now)
	assert.Equal(t, "aaa", ranked[0].ID)
	assert.Equal(t, "bbb", ranked[1].ID)
}

func TestRankByViralScore_Empty(t *testing.T) {
	assert.Nil(t, RankByViralScore(nil, time.Now()))
}
