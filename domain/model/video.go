package model

import "time"

// LicenseCreativeCommons is the only license discovery is allowed to return.
// Items under any other license are dropped before they reach the cache.
const LicenseCreativeCommons = "CC BY"

// VideoRecord represents a discovered video with engagement metrics and its
// computed viral score. Records are immutable once built; a cache refresh
// produces a whole new payload.
type VideoRecord struct {
	ID              string    `json:"id" bson:"id"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	Channel         string    `json:"channel" bson:"channel"`
	ThumbnailURL    string    `json:"thumbnail" bson:"thumbnail"`
	Views           int64     `json:"views" bson:"views"`
	Likes           int64     `json:"likes" bson:"likes"`
	Comments        int64     `json:"comments" bson:"comments"`
	DurationSeconds int64     `json:"duration" bson:"duration"`
	PublishedAt     time.Time `json:"published_at" bson:"published_at"`
	License         string    `json:"license" bson:"license"`
	ViralScore      float64   `json:"viral_score" bson:"viral_score"`
}

// DiscoveryPayload is what a cache entry stores: the ranked records plus the
// upstream page tokens the result set was fetched with.
type DiscoveryPayload struct {
	Videos         []VideoRecord `json:"videos" bson:"videos"`
	NextPageToken  string        `json:"next_page_token,omitempty" bson:"next_page_token,omitempty"`
	PrevPageToken  string        `json:"prev_page_token,omitempty" bson:"prev_page_token,omitempty"`
	TotalAvailable int64         `json:"total_available" bson:"total_available"`
}

// CacheEntry is a cached discovery result keyed by fingerprint.
type CacheEntry struct {
	Fingerprint string           `json:"fingerprint" bson:"fingerprint"`
	Payload     DiscoveryPayload `json:"payload" bson:"payload"`
	ETag        string           `json:"etag,omitempty" bson:"etag,omitempty"`
	StoredAt    time.Time        `json:"stored_at" bson:"stored_at"`
	ExpiresAt   time.Time        `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// CacheTier names which tier served an entry.
type CacheTier string

const (
	TierHot  CacheTier = "memory"
	TierCold CacheTier = "persistent"
)

// QuotaUsage is the per-caller-bucket daily unit counter.
type QuotaUsage struct {
	CallerHash string `json:"caller_hash" bson:"caller_hash"`
	Date       string `json:"date" bson:"date"` // UTC yyyy-mm-dd
	Units      int64  `json:"units" bson:"units"`
}
