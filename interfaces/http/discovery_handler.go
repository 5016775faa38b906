package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"viral-clips/domain/dto"
	"viral-clips/domain/model"
	"viral-clips/interfaces/middleware"
	"viral-clips/usecase"

	"github.com/gin-gonic/gin"
)

// IDiscoveryHandler defines the HTTP handlers for the discovery surface.
type IDiscoveryHandler interface {
	Discover(ctx *gin.Context)
	GetVideoDetails(ctx *gin.Context)
	GetClipPreview(ctx *gin.Context)
	CacheStats(ctx *gin.Context)
	ClearCache(ctx *gin.Context)
}

// DiscoveryHandler implements the discovery HTTP handlers.
type DiscoveryHandler struct {
	discoveryUseCase usecase.IDiscoveryUseCase
}

// NewDiscoveryHandler creates a new discovery handler instance.
func NewDiscoveryHandler(discoveryUseCase usecase.IDiscoveryUseCase) IDiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// Discover handles GET /discover
func (h *DiscoveryHandler) Discover(ctx *gin.Context) {
	req := &dto.SearchRequest{}

	// Support both snake_case and camelCase query params from frontend
	req.Query = ctx.Query("query")
	if req.Query == "" {
		req.Query = ctx.Query("q")
	}
	minViewsRaw := ctx.Query("min_views")
	if minViewsRaw == "" {
		minViewsRaw = ctx.Query("minViews")
	}
	if minViewsRaw != "" {
		if val, err := strconv.ParseInt(minViewsRaw, 10, 64); err == nil {
			req.MinViews = val
		}
	}
	maxResultsRaw := ctx.Query("max_results")
	if maxResultsRaw == "" {
		maxResultsRaw = ctx.Query("maxResults")
	}
	if maxResultsRaw != "" {
		if val, err := strconv.ParseInt(maxResultsRaw, 10, 64); err == nil {
			req.MaxResults = val
		}
	}
	sortBy := ctx.Query("sort_by")
	if sortBy == "" {
		sortBy = ctx.Query("sortBy")
	}
	req.SortBy = sortBy
	pageToken := ctx.Query("page_token")
	if pageToken == "" {
		pageToken = ctx.Query("pageToken")
	}
	req.PageToken = pageToken
	req.SkipCache = ctx.Query("skip_cache") == "true" || ctx.Query("skipCache") == "true"

	response, err := h.discoveryUseCase.Discover(ctx.Request.Context(), req, middleware.CallerID(ctx))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// GetVideoDetails handles GET /videos/:videoId
func (h *DiscoveryHandler) GetVideoDetails(ctx *gin.Context) {
	videoID := ctx.Param("videoId")
	if videoID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Video ID is required",
		})
		return
	}

	video, err := h.discoveryUseCase.VideoDetails(ctx.Request.Context(), videoID, middleware.CallerID(ctx))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": video})
}

// GetClipPreview handles GET /clips/preview/:videoId
func (h *DiscoveryHandler) GetClipPreview(ctx *gin.Context) {
	videoID := ctx.Param("videoId")
	if videoID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "Video ID is required",
		})
		return
	}

	start := 0
	if val, err := strconv.Atoi(ctx.Query("start")); err == nil && val >= 0 {
		start = val
	}
	duration := 30
	if val, err := strconv.Atoi(ctx.Query("duration")); err == nil && val > 0 {
		duration = val
	}

	video, err := h.discoveryUseCase.VideoDetails(ctx.Request.Context(), videoID, middleware.CallerID(ctx))
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	if max := int(video.DurationSeconds); max > 0 && start+duration > max {
		if start >= max {
			start = 0
		}
		if start+duration > max {
			duration = max - start
		}
	}

	ctx.JSON(http.StatusOK, dto.ClipPreviewResponse{
		VideoID:   videoID,
		StartTime: start,
		Duration:  duration,
		PreviewURL: fmt.Sprintf("https://www.youtube.com/embed/%s?start=%d&end=%d&autoplay=1",
			videoID, start, start+duration),
		Note: "CC BY license requires attribution to the original creator",
	})
}

// CacheStats handles GET /youtube/cache-stats
func (h *DiscoveryHandler) CacheStats(ctx *gin.Context) {
	stats, err := h.discoveryUseCase.CacheStats(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ClearCache handles POST /youtube/clear-cache
func (h *DiscoveryHandler) ClearCache(ctx *gin.Context) {
	response, err := h.discoveryUseCase.ClearCache(ctx.Request.Context())
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// writeError maps the closed error set onto HTTP statuses. An invalid cursor
// is a distinct condition, not a server failure: the client must restart
// pagination from page one.
func (h *DiscoveryHandler) writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCursor):
		ctx.JSON(http.StatusGone, gin.H{
			"error":   "Page token expired or invalid",
			"restart": true,
			"message": "Cached results for this page token are gone. Restart from the first page.",
		})
	case errors.Is(err, model.ErrQuotaExceeded):
		ctx.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Daily API quota exhausted",
			"message": "Try again after the quota window resets.",
		})
	case errors.Is(err, model.ErrVideoNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error": "Video not found",
		})
	case errors.Is(err, model.ErrUpstreamUnavailable):
		ctx.JSON(http.StatusBadGateway, gin.H{
			"error":   "Upstream API unavailable",
			"message": err.Error(),
		})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Discovery request failed",
			"message": err.Error(),
		})
	}
}
