package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viral-clips/domain/dto"
	"viral-clips/domain/model"
	"viral-clips/domain/repository"
	"viral-clips/infrastructure/cache"
	"viral-clips/infrastructure/logger"
	"viral-clips/infrastructure/pubsub"

	"golang.org/x/sync/singleflight"
)

// Defaults mirroring the public /discover contract.
const (
	defaultQuery      = "tutorial"
	defaultMinViews   = 1000
	defaultMaxResults = 50
	defaultSortBy     = "viewCount"

	// upstreamTimeout bounds a single upstream fetch so a slow provider
	// cannot hold a UI request indefinitely.
	upstreamTimeout = 10 * time.Second
)

var optimizationFeatures = []string{
	"In-memory caching (30 min TTL)",
	"Persistent caching (6 hour TTL)",
	"ETag conditional requests",
	"Batch video details fetching",
	"GZIP compression",
	"Per-user quota tracking",
}

// IDiscoveryUseCase defines the video discovery operations.
type IDiscoveryUseCase interface {
	Discover(ctx context.Context, req *dto.SearchRequest, callerID string) (*dto.DiscoverResponse, error)
	VideoDetails(ctx context.Context, videoID, callerID string) (*model.VideoRecord, error)
	CacheStats(ctx context.Context) (*dto.CacheStatsResponse, error)
	ClearCache(ctx context.Context) (*dto.ClearCacheResponse, error)
	Sweep(ctx context.Context)
}

// DiscoveryUseCase orchestrates the discovery flow: fingerprint, two-tier
// lookup, singleflight-coordinated quota-aware fetch, ranking, write-through
// and cursor translation.
type DiscoveryUseCase struct {
	provider repository.IVideoProvider
	store    *cache.TwoTierStore
	quota    repository.IQuotaStore
	events   pubsub.IDiscoveryEvents // optional
	group    singleflight.Group
	now      func() time.Time
}

// fetchOutcome is what one coordinated upstream fetch yields for every
// waiter sharing the fingerprint.
type fetchOutcome struct {
	entry *model.CacheEntry
	stale bool
}

// NewDiscoveryUseCase creates the discovery use case.
func NewDiscoveryUseCase(provider repository.IVideoProvider, store *cache.TwoTierStore, quota repository.IQuotaStore) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		provider: provider,
		store:    store,
		quota:    quota,
		now:      time.Now,
	}
}

// WithEvents enables discovery-refresh event publishing (fluent).
func (u *DiscoveryUseCase) WithEvents(events pubsub.IDiscoveryEvents) *DiscoveryUseCase {
	u.events = events
	return u
}

// Discover serves a discovery request, preferring cache over quota.
func (u *DiscoveryUseCase) Discover(ctx context.Context, req *dto.SearchRequest, callerID string) (*dto.DiscoverResponse, error) {
	normalized, err := u.normalize(ctx, req)
	if err != nil {
		return nil, err
	}
	fp := Fingerprint(normalized)

	if normalized.SkipCache {
		u.store.Invalidate(ctx, fp)
	} else if entry, tier, ok := u.store.Get(ctx, fp); ok {
		return u.respond(entry, fp, true, string(tier), false), nil
	}

	outcome, err := u.fetchOnce(ctx, fp, normalized, callerID)
	if err != nil {
		return nil, err
	}
	if outcome.stale {
		resp := u.respond(outcome.entry, fp, true, string(model.TierCold), true)
		resp.Message = "Upstream quota exhausted, serving last cached results"
		return resp, nil
	}
	return u.respond(outcome.entry, fp, false, "", false), nil
}

// fetchOnce collapses concurrent fetches for one fingerprint into a single
// upstream call. The wait is cancellation-aware: a leaving caller abandons
// its wait without cancelling the shared fetch, so remaining waiters and the
// cache write still complete.
func (u *DiscoveryUseCase) fetchOnce(ctx context.Context, fp string, req *dto.SearchRequest, callerID string) (*fetchOutcome, error) {
	ch := u.group.DoChan(fp, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upstreamTimeout)
		defer cancel()
		return u.fetch(fetchCtx, fp, req, callerID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*fetchOutcome), nil
	}
}

// fetch performs the actual upstream round trip for a fingerprint.
func (u *DiscoveryUseCase) fetch(ctx context.Context, fp string, req *dto.SearchRequest, callerID string) (*fetchOutcome, error) {
	stale := u.store.GetStale(ctx, fp)
	var etag string
	if stale != nil {
		etag = stale.ETag
	}

	result, err := u.provider.Search(ctx, req, etag, callerID)
	switch {
	case errors.Is(err, model.ErrNotModified):
		// Content unchanged upstream: bump freshness, keep the ranked
		// payload as-is. Does not count as a content fetch.
		u.store.Touch(ctx, stale)
		refreshed := *stale
		refreshed.StoredAt = u.now()
		return &fetchOutcome{entry: &refreshed}, nil

	case errors.Is(err, model.ErrQuotaExceeded), errors.Is(err, model.ErrUpstreamUnavailable):
		// Stale results beat an error page.
		if stale != nil {
			logger.GetLogger().
				WithField("fingerprint", fp).
				WithField("error", err).
				Warn("Upstream unavailable, serving stale cache entry")
			return &fetchOutcome{entry: stale, stale: true}, nil
		}
		return nil, err

	case err != nil:
		return nil, fmt.Errorf("discovery fetch failed: %w", err)
	}

	ranked := RankByViralScore(result.Videos, u.now())
	payload := model.DiscoveryPayload{
		Videos:         ranked,
		NextPageToken:  result.NextPageToken,
		PrevPageToken:  result.PrevPageToken,
		TotalAvailable: result.TotalAvailable,
	}
	entry := u.store.Put(ctx, fp, payload, result.ETag)

	if u.events != nil {
		u.events.PublishRefresh(ctx, pubsub.DiscoveryEvent{
			Fingerprint: fp,
			Query:       req.Query,
			VideoCount:  len(ranked),
			FetchedAt:   entry.StoredAt,
		})
	}
	return &fetchOutcome{entry: entry}, nil
}

// normalize fills defaults and translates an inbound cursor back to the
// upstream token it wraps. Returns model.ErrInvalidCursor when the cursor's
// base entry is gone, so the caller can restart pagination explicitly.
func (u *DiscoveryUseCase) normalize(ctx context.Context, req *dto.SearchRequest) (*dto.SearchRequest, error) {
	normalized := *req
	if NormalizeQuery(normalized.Query) == "" {
		normalized.Query = defaultQuery
	}
	if normalized.MinViews <= 0 {
		normalized.MinViews = defaultMinViews
	}
	if normalized.MaxResults <= 0 || normalized.MaxResults > defaultMaxResults {
		normalized.MaxResults = defaultMaxResults
	}
	if normalized.SortBy == "" {
		normalized.SortBy = defaultSortBy
	}

	if normalized.PageToken != "" {
		baseFp, upstreamToken, err := ResolveCursor(normalized.PageToken)
		if err != nil {
			return nil, err
		}
		if !u.store.Has(ctx, baseFp) {
			return nil, model.ErrInvalidCursor
		}
		normalized.PageToken = upstreamToken
	}
	return &normalized, nil
}

func (u *DiscoveryUseCase) respond(entry *model.CacheEntry, fp string, cached bool, cacheType string, staleServed bool) *dto.DiscoverResponse {
	total := len(entry.Payload.Videos)
	return &dto.DiscoverResponse{
		Videos:         entry.Payload.Videos,
		Total:          total,
		NextPageToken:  MintCursor(fp, entry.Payload.NextPageToken),
		PrevPageToken:  MintCursor(fp, entry.Payload.PrevPageToken),
		TotalAvailable: entry.Payload.TotalAvailable,
		Cached:         cached,
		CacheType:      cacheType,
		Stale:          staleServed,
		Optimized:      true,
		Message:        fmt.Sprintf("Found %d CC-BY videos", total),
	}
}

// VideoDetails fetches a single video through the batch-of-one path. It
// bypasses the fingerprint cache by design.
func (u *DiscoveryUseCase) VideoDetails(ctx context.Context, videoID, callerID string) (*model.VideoRecord, error) {
	if videoID == "" {
		return nil, fmt.Errorf("video ID is required")
	}
	video, err := u.provider.VideoByID(ctx, videoID, callerID)
	if err != nil {
		if errors.Is(err, model.ErrVideoNotFound) || errors.Is(err, model.ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get video details: %w", err)
	}
	return video, nil
}

// CacheStats reports tier sizes, the lifetime hit rate and today's quota use.
func (u *DiscoveryUseCase) CacheStats(ctx context.Context) (*dto.CacheStatsResponse, error) {
	hot, cold, hitRate := u.store.Stats(ctx)
	quotaUsed, err := u.quota.TotalToday(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Quota usage read failed for stats")
	}
	return &dto.CacheStatsResponse{
		HotEntries:     hot,
		ColdEntries:    cold,
		HitRate:        hitRate,
		QuotaUsedToday: quotaUsed,
		Features:       optimizationFeatures,
	}, nil
}

// ClearCache empties both tiers.
func (u *DiscoveryUseCase) ClearCache(ctx context.Context) (*dto.ClearCacheResponse, error) {
	hotCleared, coldCleared, err := u.store.ClearAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear cold tier: %w", err)
	}
	return &dto.ClearCacheResponse{
		Success:     true,
		HotCleared:  hotCleared,
		ColdCleared: coldCleared,
		Message:     fmt.Sprintf("Cleared %d memory and %d persistent cache entries", hotCleared, coldCleared),
	}, nil
}

// Sweep purges expired entries in both tiers. Memory hygiene only; TTL
// correctness is enforced lazily on read.
func (u *DiscoveryUseCase) Sweep(ctx context.Context) {
	u.store.Sweep(ctx)
}

var _ IDiscoveryUseCase = (*DiscoveryUseCase)(nil)
