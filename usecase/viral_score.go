package usecase

import (
	"math"
	"sort"
	"time"

	"viral-clips/domain/model"
)

// Viral score weighting. Each engagement metric is normalized against the
// result set's own maximum, so scores are dataset-relative and bounded
// rather than calibrated against a global constant.
const (
	weightViews    = 0.4
	weightLikes    = 0.3
	weightComments = 0.2
	weightRecency  = 0.1

	// recencyHalfLife controls how fast the recency component decays.
	recencyHalfLife = 30 * 24 * time.Hour

	maxViralScore = 10.0
)

// RankByViralScore scores every record relative to the set and returns them
// ordered best-first. It is a pure function of (records, now): the input
// slice is not mutated, and equal inputs always produce identical scores and
// order. Ties break by views, then upload recency, then ID.
func RankByViralScore(records []model.VideoRecord, now time.Time) []model.VideoRecord {
	if len(records) == 0 {
		return nil
	}

	var maxViews, maxLikes, maxComments int64
	for i := range records {
		if records[i].Views > maxViews {
			maxViews = records[i].Views
		}
		if records[i].Likes > maxLikes {
			maxLikes = records[i].Likes
		}
		if records[i].Comments > maxComments {
			maxComments = records[i].Comments
		}
	}

	ranked := make([]model.VideoRecord, len(records))
	copy(ranked, records)
	for i := range ranked {
		ranked[i].ViralScore = viralScore(&ranked[i], maxViews, maxLikes, maxComments, now)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.ViralScore != b.ViralScore {
			return a.ViralScore > b.ViralScore
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return ranked
}

func viralScore(r *model.VideoRecord, maxViews, maxLikes, maxComments int64, now time.Time) float64 {
	views := normalize(r.Views, maxViews)
	likes := normalize(r.Likes, maxLikes)
	comments := normalize(r.Comments, maxComments)

	// Engagement decays with age but never to zero: recent high-engagement
	// content outranks equally engaged old content, old content survives.
	age := now.Sub(r.PublishedAt)
	if age < 0 {
		age = 0
	}
	decay := math.Pow(0.5, age.Hours()/recencyHalfLife.Hours())
	engagement := views*weightViews + likes*weightLikes + comments*weightComments
	score := engagement*(0.5+0.5*decay) + weightRecency*decay

	score = math.Round(score*maxViralScore*100) / 100
	if score > maxViralScore {
		score = maxViralScore
	}
	return score
}

func normalize(v, max int64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}
