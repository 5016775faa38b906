package youtube

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"viral-clips/domain/dto"
	"viral-clips/domain/model"
	"viral-clips/domain/repository"
	"viral-clips/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Upstream-imposed ceiling on videos.list ID batches. Not a tunable.
const detailBatchSize = 50

// Approximate Data API unit costs per call.
const (
	searchCost = 100
	detailCost = 1
)

// Field projections: every request enumerates exactly the fields consumed.
// Requesting a full resource is a correctness bug, not a tuning matter.
const (
	searchFields = "items(id(videoId)),nextPageToken,prevPageToken,pageInfo,etag"
	videoFields  = "items(id,snippet(title,description,channelTitle,publishedAt,thumbnails(high(url),medium(url),default(url))),statistics(viewCount,likeCount,commentCount),contentDetails(duration),status(license)),etag"
)

// Config represents YouTube Data API credentials. API-key mode is enough
// for discovery; OAuth mode is kept for deployments with user credentials.
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIKey       string `json:"api_key"`
	DailyQuota   int64  `json:"daily_quota"`
}

// Client is the quota-aware upstream client. It owns every quota-usage
// update: calls are field-projected, transport-compressed (the generated
// client negotiates gzip), conditional when an ETag is known, batched at the
// protocol ceiling, and attributed per caller via a hashed quotaUser.
type Client struct {
	service    *youtube.Service
	quota      repository.IQuotaStore
	retry      RetryPolicy
	dailyQuota int64
	now        func() time.Time
}

// NewDiscoveryClient creates the client in API-key or OAuth mode depending
// on which credentials are present.
func NewDiscoveryClient(ctx context.Context, config *Config, quota repository.IQuotaStore) (*Client, error) {
	var service *youtube.Service
	var err error

	if (config.AccessToken == "" || config.RefreshToken == "") && config.APIKey != "" {
		service, err = youtube.NewService(ctx, option.WithAPIKey(config.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service with API key: %w", err)
		}
	} else {
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		httpClient := oauth2Config.Client(ctx, token)
		service, err = youtube.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube service: %w", err)
		}
	}

	dailyQuota := config.DailyQuota
	if dailyQuota <= 0 {
		dailyQuota = 10000
	}
	return &Client{
		service:    service,
		quota:      quota,
		retry:      DefaultRetryPolicy(),
		dailyQuota: dailyQuota,
		now:        time.Now,
	}, nil
}

// WithRetryPolicy overrides the default retry policy (fluent).
func (c *Client) WithRetryPolicy(p RetryPolicy) *Client {
	c.retry = p
	return c
}

// Search runs the two-step discovery fetch: a projected search for IDs, then
// batched detail lookups. A non-empty etag makes the search conditional;
// model.ErrNotModified is returned when the upstream content is unchanged.
func (c *Client) Search(ctx context.Context, req *dto.SearchRequest, etag string, callerID string) (*repository.FetchResult, error) {
	quotaUser := hashQuotaUser(callerID)
	if err := c.reserve(ctx, quotaUser, searchCost); err != nil {
		return nil, err
	}

	call := c.service.Search.List([]string{"id"}).
		Q(req.Query).
		Type("video").
		VideoLicense("creativeCommon").
		Order(req.SortBy).
		MaxResults(clampResults(req.MaxResults)).
		Fields(googleapi.Field(searchFields)).
		Context(ctx)
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}
	if etag != "" {
		call = call.IfNoneMatch(etag)
	}

	var searchResp *youtube.SearchListResponse
	err := c.retry.Do(ctx, func() error {
		var callErr error
		searchResp, callErr = call.Do(googleapi.QuotaUser(quotaUser))
		return classify(callErr)
	})
	if err != nil {
		return nil, err
	}

	result := &repository.FetchResult{
		NextPageToken: searchResp.NextPageToken,
		PrevPageToken: searchResp.PrevPageToken,
		ETag:          searchResp.Etag,
	}
	if searchResp.PageInfo != nil {
		result.TotalAvailable = searchResp.PageInfo.TotalResults
	}

	var videoIDs []string
	for _, item := range searchResp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			videoIDs = append(videoIDs, item.Id.VideoId)
		}
	}
	if len(videoIDs) == 0 {
		return result, nil
	}

	records, err := c.fetchDetails(ctx, videoIDs, quotaUser)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Views >= req.MinViews {
			result.Videos = append(result.Videos, records[i])
		}
	}
	return result, nil
}

// VideoByID fetches a single video through the batch path (batch of one).
func (c *Client) VideoByID(ctx context.Context, videoID string, callerID string) (*model.VideoRecord, error) {
	records, err := c.fetchDetails(ctx, []string{videoID}, hashQuotaUser(callerID))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, model.ErrVideoNotFound
	}
	return &records[0], nil
}

// fetchDetails resolves IDs to records in batches of at most 50 per call.
func (c *Client) fetchDetails(ctx context.Context, videoIDs []string, quotaUser string) ([]model.VideoRecord, error) {
	records := make([]model.VideoRecord, 0, len(videoIDs))
	for start := 0; start < len(videoIDs); start += detailBatchSize {
		end := start + detailBatchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		if err := c.reserve(ctx, quotaUser, detailCost); err != nil {
			return nil, err
		}

		call := c.service.Videos.List([]string{"snippet", "statistics", "contentDetails", "status"}).
			Id(videoIDs[start:end]...).
			Fields(googleapi.Field(videoFields)).
			Context(ctx)

		var resp *youtube.VideoListResponse
		err := c.retry.Do(ctx, func() error {
			var callErr error
			resp, callErr = call.Do(googleapi.QuotaUser(quotaUser))
			return classify(callErr)
		})
		if err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			if record, ok := c.parseVideo(item); ok {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

// parseVideo converts a raw API item into a VideoRecord at the ingestion
// boundary. Items under a non-open license are dropped here so a disallowed
// record is never constructed; malformed items are dropped the same way.
func (c *Client) parseVideo(item *youtube.Video) (model.VideoRecord, bool) {
	if item.Snippet == nil || item.Status == nil {
		logger.GetLogger().WithField("videoId", item.Id).Debug("Dropping malformed upstream item")
		return model.VideoRecord{}, false
	}
	if item.Status.License != "creativeCommon" {
		logger.GetLogger().
			WithField("videoId", item.Id).
			WithField("license", item.Status.License).
			Debug("Dropping item without open license")
		return model.VideoRecord{}, false
	}

	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		logger.GetLogger().WithField("videoId", item.Id).Debug("Dropping item with unparseable publish date")
		return model.VideoRecord{}, false
	}

	record := model.VideoRecord{
		ID:          item.Id,
		Title:       item.Snippet.Title,
		Description: truncate(item.Snippet.Description, 200),
		Channel:     item.Snippet.ChannelTitle,
		PublishedAt: publishedAt,
		License:     model.LicenseCreativeCommons,
	}
	if item.Statistics != nil {
		record.Views = int64(item.Statistics.ViewCount)
		record.Likes = int64(item.Statistics.LikeCount)
		record.Comments = int64(item.Statistics.CommentCount)
	}
	if item.ContentDetails != nil {
		record.DurationSeconds = parseISODuration(item.ContentDetails.Duration)
	}
	if t := item.Snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			record.ThumbnailURL = t.High.Url
		case t.Medium != nil:
			record.ThumbnailURL = t.Medium.Url
		case t.Default != nil:
			record.ThumbnailURL = t.Default.Url
		}
	}
	return record, true
}

// reserve checks the shared daily ceiling and records the units for the
// caller's bucket. Increments are atomic in the store.
func (c *Client) reserve(ctx context.Context, quotaUser string, units int64) error {
	used, err := c.quota.TotalToday(ctx)
	if err != nil {
		// Quota accounting must not take the upstream path down with it.
		logger.GetLogger().WithField("error", err).Warn("Quota store read failed, allowing call")
	} else if used+units > c.dailyQuota {
		return model.ErrQuotaExceeded
	}
	if _, err := c.quota.Add(ctx, quotaUser, units); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Quota store update failed")
	}
	return nil
}

// classify maps raw upstream failures onto the closed error set.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if googleapi.IsNotModified(err) {
		return model.ErrNotModified
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusForbidden && quotaReason(apiErr):
			return model.ErrQuotaExceeded
		case apiErr.Code == http.StatusNotFound:
			return model.ErrVideoNotFound
		}
	}
	return err
}

func quotaReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return true
		}
	}
	// A bare 403 from the Data API is almost always quota in key-only mode.
	return len(apiErr.Errors) == 0
}

// hashQuotaUser derives the upstream quotaUser from the caller's stable
// identity. The raw identity is never sent upstream; the parameter caps at
// 40 characters, which an md5 hex digest fits.
func hashQuotaUser(callerID string) string {
	if callerID == "" {
		callerID = "anonymous"
	}
	sum := md5.Sum([]byte(callerID))
	return hex.EncodeToString(sum[:])
}

func clampResults(n int64) int64 {
	if n <= 0 {
		return 25
	}
	if n > detailBatchSize {
		return detailBatchSize
	}
	return n
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var _ repository.IVideoProvider = (*Client)(nil)
