package usecase

import (
	"testing"

	"viral-clips/domain/dto"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_EquivalentRequestsCollapse(t *testing.T) {
	a := Fingerprint(&dto.SearchRequest{Query: "  Golang   Tutorial ", MinViews: 1000, MaxResults: 50, SortBy: "viewCount"})
	b := Fingerprint(&dto.SearchRequest{Query: "golang tutorial", MinViews: 1000, MaxResults: 50, SortBy: "viewCount"})
	assert.Equal(t, a, b)
}

func TestFingerprint_ParametersChangeKey(t *testing.T) {
	base := &dto.SearchRequest{Query: "golang", MinViews: 1000, MaxResults: 50, SortBy: "viewCount"}
	baseFp := Fingerprint(base)

	differentQuery := *base
	differentQuery.Query = "rust"
	assert.NotEqual(t, baseFp, Fingerprint(&differentQuery))

	differentViews := *base
	differentViews.MinViews = 5000
	assert.NotEqual(t, baseFp, Fingerprint(&differentViews))

	differentPage := *base
	differentPage.PageToken = "CAUQAA"
	assert.NotEqual(t, baseFp, Fingerprint(&differentPage))
}

func TestFingerprint_SkipCacheDoesNotChangeKey(t *testing.T) {
	normal := &dto.SearchRequest{Query: "golang", MinViews: 1000, MaxResults: 50, SortBy: "viewCount"}
	forced := *normal
	forced.SkipCache = true
	assert.Equal(t, Fingerprint(normal), Fingerprint(&forced))
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "golang tutorial", NormalizeQuery("  GoLang   TUTORIAL  "))
	assert.Equal(t, "", NormalizeQuery("   "))
}
