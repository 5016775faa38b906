package usecase

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"viral-clips/domain/dto"
)

// Fingerprint derives the stable cache key for a discovery request. The
// query is trimmed and casefolded before hashing so equivalent requests
// collapse to one key. SkipCache is deliberately excluded: a forced refresh
// must invalidate the same entry a normal request would hit.
func Fingerprint(req *dto.SearchRequest) string {
	canonical := fmt.Sprintf("discover:%s:%d:%d:%s:%s",
		NormalizeQuery(req.Query),
		req.MaxResults,
		req.MinViews,
		req.SortBy,
		req.PageToken,
	)
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// NormalizeQuery trims and casefolds a free-text query, collapsing inner
// whitespace runs.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
}
