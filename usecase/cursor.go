package usecase

import (
	"encoding/base64"
	"encoding/json"

	"viral-clips/domain/model"
)

// pageCursor binds an upstream page token to the fingerprint of the base
// query it was minted against. A cursor is only honored while that cache
// entry is still resolvable; after eviction the caller restarts from page
// one instead of silently replaying a token against stale state.
type pageCursor struct {
	Fingerprint string `json:"fp"`
	Token       string `json:"tok"`
}

// MintCursor wraps an upstream page token in an opaque cursor. Empty tokens
// produce an empty cursor so absent next/prev pages stay absent.
func MintCursor(fingerprint, upstreamToken string) string {
	if upstreamToken == "" {
		return ""
	}
	raw, _ := json.Marshal(pageCursor{Fingerprint: fingerprint, Token: upstreamToken})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ResolveCursor decodes a cursor back into its base-query fingerprint and
// upstream token. Malformed cursors are reported as model.ErrInvalidCursor;
// whether the fingerprint still resolves to a live entry is the caller's
// check.
func ResolveCursor(cursor string) (fingerprint, upstreamToken string, err error) {
	raw, decErr := base64.RawURLEncoding.DecodeString(cursor)
	if decErr != nil {
		return "", "", model.ErrInvalidCursor
	}
	var c pageCursor
	if jsonErr := json.Unmarshal(raw, &c); jsonErr != nil || c.Fingerprint == "" || c.Token == "" {
		return "", "", model.ErrInvalidCursor
	}
	return c.Fingerprint, c.Token, nil
}
