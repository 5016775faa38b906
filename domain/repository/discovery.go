package repository

import (
	"context"
	"time"

	"viral-clips/domain/dto"
	"viral-clips/domain/model"
)

// FetchResult is what a provider search returns: candidate records (already
// license-filtered, not yet ranked) plus paging metadata and the response
// ETag for later conditional fetches.
type FetchResult struct {
	Videos         []model.VideoRecord
	NextPageToken  string
	PrevPageToken  string
	TotalAvailable int64
	ETag           string
}

// IVideoProvider is the quota-aware upstream client.
type IVideoProvider interface {
	// Search runs the search + detail two-step for a discovery request.
	// etag, when non-empty, is sent as a conditional fetch; a "not
	// modified" upstream answer is returned as model.ErrNotModified.
	// callerID is the raw caller identity; the provider hashes it before
	// sending it upstream as quotaUser.
	Search(ctx context.Context, req *dto.SearchRequest, etag string, callerID string) (*FetchResult, error)
	// VideoByID fetches a single video through the batch path.
	VideoByID(ctx context.Context, videoID string, callerID string) (*model.VideoRecord, error)
}

// IDiscoveryCache is the durable cold tier, keyed by fingerprint.
type IDiscoveryCache interface {
	Get(ctx context.Context, fingerprint string) (*model.CacheEntry, error)
	// GetStale returns the entry even when expired; nil when absent.
	GetStale(ctx context.Context, fingerprint string) (*model.CacheEntry, error)
	Upsert(ctx context.Context, entry *model.CacheEntry) error
	// Touch bumps stored_at/expires_at without rewriting the payload
	// (conditional-fetch 304 path).
	Touch(ctx context.Context, fingerprint string, storedAt, expiresAt time.Time) error
	Delete(ctx context.Context, fingerprint string) error
	// Clear empties the tier and returns how many entries were removed.
	Clear(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	// PurgeExpired removes entries past their TTL (periodic sweep).
	PurgeExpired(ctx context.Context) (int64, error)
}

// IQuotaStore tracks per-caller daily quota units. Increments must be atomic
// under concurrent callers hitting the same bucket.
type IQuotaStore interface {
	Add(ctx context.Context, callerHash string, units int64) (int64, error)
	UsedToday(ctx context.Context, callerHash string) (int64, error)
	// TotalToday sums usage across all callers for the shared key.
	TotalToday(ctx context.Context) (int64, error)
	Reset(ctx context.Context, callerHash string) error
}
