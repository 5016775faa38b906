package dto

import "viral-clips/domain/model"

// SearchRequest represents a discovery query. It is created per call and
// discarded after the response.
type SearchRequest struct {
	Query      string `json:"query,omitempty"`
	MinViews   int64  `json:"min_views,omitempty"`
	MaxResults int64  `json:"max_results,omitempty"`
	SortBy     string `json:"sort_by,omitempty"` // viewCount, date, rating, relevance
	PageToken  string `json:"page_token,omitempty"`
	SkipCache  bool   `json:"skip_cache,omitempty"` // forced refresh; never part of the fingerprint
}

// DiscoverResponse is the /discover response envelope.
type DiscoverResponse struct {
	Videos         []model.VideoRecord `json:"videos"`
	Total          int                 `json:"total"`
	NextPageToken  string              `json:"next_page_token,omitempty"`
	PrevPageToken  string              `json:"prev_page_token,omitempty"`
	TotalAvailable int64               `json:"total_available"`
	Cached         bool                `json:"cached"`
	CacheType      string              `json:"cache_type,omitempty"`
	Stale          bool                `json:"stale,omitempty"`
	Optimized      bool                `json:"optimized"`
	Message        string              `json:"message,omitempty"`
}

// CacheStatsResponse is the /youtube/cache-stats response.
type CacheStatsResponse struct {
	HotEntries     int      `json:"hot_entries"`
	ColdEntries    int64    `json:"cold_entries"`
	HitRate        float64  `json:"hit_rate"`
	QuotaUsedToday int64    `json:"quota_used_today"`
	Features       []string `json:"optimization_features"`
}

// ClearCacheResponse is the /youtube/clear-cache confirmation.
type ClearCacheResponse struct {
	Success     bool   `json:"success"`
	HotCleared  int    `json:"hot_cleared"`
	ColdCleared int64  `json:"cold_cleared"`
	Message     string `json:"message"`
}

// ClipPreviewResponse is the embedded-player preview for a clip window.
type ClipPreviewResponse struct {
	VideoID    string `json:"video_id"`
	StartTime  int    `json:"start_time"`
	Duration   int    `json:"duration"`
	PreviewURL string `json:"preview_url"`
	Note       string `json:"note"`
}
