// Package shared holds request decoding, JSON responses and request-context
// values used by both the API handlers and their middleware.
package shared
