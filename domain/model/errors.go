package model

import "errors"

// Closed set of discovery error kinds. Handlers map these to HTTP statuses;
// the client decides retryability from them.
var (
	// ErrQuotaExceeded means the upstream daily quota is exhausted. Never
	// retried; callers prefer a stale cache entry over surfacing it.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")

	// ErrUpstreamUnavailable means retries against the upstream were
	// exhausted (network/5xx).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotModified signals a conditional fetch matched the stored ETag.
	// Not a failure: the caller bumps storedAt and keeps the payload.
	ErrNotModified = errors.New("upstream content not modified")

	// ErrInvalidCursor means a page token no longer resolves to a live
	// cache entry; the caller must restart pagination from page one.
	ErrInvalidCursor = errors.New("pagination cursor no longer valid")

	// ErrVideoNotFound is returned for single-video lookups that match
	// nothing upstream.
	ErrVideoNotFound = errors.New("video not found")
)
