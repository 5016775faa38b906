package youtube

import (
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"viral-clips/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	ytapi "google.golang.org/api/youtube/v3"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"PT4M13S", 253},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"P1D", 0},
		{"garbage", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseISODuration(tc.input), tc.input)
	}
}

func TestClassify_QuotaReasons(t *testing.T) {
	quotaErr := &googleapi.Error{
		Code:   http.StatusForbidden,
		Errors: []googleapi.ErrorItem{{Reason: "quotaExceeded"}},
	}
	assert.ErrorIs(t, classify(quotaErr), model.ErrQuotaExceeded)

	bare403 := &googleapi.Error{Code: http.StatusForbidden}
	assert.ErrorIs(t, classify(bare403), model.ErrQuotaExceeded)

	forbidden := &googleapi.Error{
		Code:   http.StatusForbidden,
		Errors: []googleapi.ErrorItem{{Reason: "forbidden"}},
	}
	assert.NotErrorIs(t, classify(forbidden), model.ErrQuotaExceeded)
}

func TestClassify_NotFound(t *testing.T) {
	err := &googleapi.Error{Code: http.StatusNotFound}
	assert.ErrorIs(t, classify(err), model.ErrVideoNotFound)
}

func TestClassify_PassesThroughServerErrors(t *testing.T) {
	err := &googleapi.Error{Code: http.StatusInternalServerError}
	classified := classify(err)
	assert.NotErrorIs(t, classified, model.ErrQuotaExceeded)
	assert.NotErrorIs(t, classified, model.ErrVideoNotFound)
	assert.Error(t, classified)
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestHashQuotaUser(t *testing.T) {
	hashed := hashQuotaUser("203.0.113.7")
	assert.Len(t, hashed, 32)
	assert.NotContains(t, hashed, "203.0.113.7")
	assert.Equal(t, hashed, hashQuotaUser("203.0.113.7"))
	assert.NotEqual(t, hashed, hashQuotaUser("203.0.113.8"))
	assert.Equal(t, hashQuotaUser("anonymous"), hashQuotaUser(""))
}

func TestClampResults(t *testing.T) {
	assert.Equal(t, int64(25), clampResults(0))
	assert.Equal(t, int64(25), clampResults(-5))
	assert.Equal(t, int64(10), clampResults(10))
	assert.Equal(t, int64(50), clampResults(200))
}

func TestParseVideo_DropsNonOpenLicense(t *testing.T) {
	c := &Client{now: time.Now}
	item := &ytapi.Video{
		Id: "vid-a",
		Snippet: &ytapi.VideoSnippet{
			Title:       "Copyrighted clip",
			PublishedAt: "2026-07-01T10:00:00Z",
		},
		Status: &ytapi.VideoStatus{License: "youtube"},
	}
	_, ok := c.parseVideo(item)
	assert.False(t, ok)
}

func TestParseVideo_MapsOpenLicenseRecord(t *testing.T) {
	c := &Client{now: time.Now}
	item := &ytapi.Video{
		Id: "vid-a",
		Snippet: &ytapi.VideoSnippet{
			Title:        "Open clip",
			Description:  "short description",
			ChannelTitle: "Some Channel",
			PublishedAt:  "2026-07-01T10:00:00Z",
			Thumbnails: &ytapi.ThumbnailDetails{
				High: &ytapi.Thumbnail{Url: "https://img.example/high.jpg"},
			},
		},
		Statistics: &ytapi.VideoStatistics{
			ViewCount:    120000,
			LikeCount:    4500,
			CommentCount: 320,
		},
		ContentDetails: &ytapi.VideoContentDetails{Duration: "PT4M13S"},
		Status:         &ytapi.VideoStatus{License: "creativeCommon"},
	}

	record, ok := c.parseVideo(item)
	require.True(t, ok)
	assert.Equal(t, "vid-a", record.ID)
	assert.Equal(t, model.LicenseCreativeCommons, record.License)
	assert.Equal(t, int64(120000), record.Views)
	assert.Equal(t, int64(253), record.DurationSeconds)
	assert.Equal(t, "https://img.example/high.jpg", record.ThumbnailURL)
	assert.Equal(t, time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), record.PublishedAt.UTC())
}

func TestParseVideo_DropsMalformedItems(t *testing.T) {
	c := &Client{now: time.Now}

	_, ok := c.parseVideo(&ytapi.Video{Id: "no-snippet", Status: &ytapi.VideoStatus{License: "creativeCommon"}})
	assert.False(t, ok)

	_, ok = c.parseVideo(&ytapi.Video{
		Id: "bad-date",
		Snippet: &ytapi.VideoSnippet{
			Title:       "x",
			PublishedAt: "not-a-date",
		},
		Status: &ytapi.VideoStatus{License: "creativeCommon"},
	})
	assert.False(t, ok)
}

func TestParseVideo_TruncatesDescription(t *testing.T) {
	c := &Client{now: time.Now}
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	item := &ytapi.Video{
		Id: "vid-a",
		Snippet: &ytapi.VideoSnippet{
			Title:       "x",
			Description: string(long),
			PublishedAt: "2026-07-01T10:00:00Z",
		},
		Status: &ytapi.VideoStatus{License: "creativeCommon"},
	}
	record, ok := c.parseVideo(item)
	require.True(t, ok)
	assert.Len(t, record.Description, 200)
}

func TestParseVideo_TruncationKeepsValidUTF8(t *testing.T) {
	c := &Client{now: time.Now}
	item := &ytapi.Video{
		Id: "vid-a",
		Snippet: &ytapi.VideoSnippet{
			Title:       "x",
			Description: strings.Repeat("日本語の説明", 50),
			PublishedAt: "2026-07-01T10:00:00Z",
		},
		Status: &ytapi.VideoStatus{License: "creativeCommon"},
	}
	record, ok := c.parseVideo(item)
	require.True(t, ok)
	assert.LessOrEqual(t, len(record.Description), 200)
	assert.True(t, utf8.ValidString(record.Description))
}
