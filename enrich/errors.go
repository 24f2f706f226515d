package enrich

import "errors"

// Error taxonomy. Errors returned by this package wrap one of these so
// callers can branch with errors.Is.
var (
	// ErrConfig: missing or invalid configuration. Raised before the browser starts.
	ErrConfig = errors.New("enrich: configuration")
	// ErrNavigation: a page load failed or timed out. Retried.
	ErrNavigation = errors.New("enrich: navigation")
	// ErrExtraction: the page loaded but the metric was not found. Retried.
	ErrExtraction = errors.New("enrich: extraction")
	// ErrSinkWrite: the result could not be persisted. Never retried.
	ErrSinkWrite = errors.New("enrich: sink write")
)
