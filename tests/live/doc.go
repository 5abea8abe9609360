// Package live runs the contract scenarios against a real task service.
//
// Run with: go test -tags=live ./tests/live/...
// The endpoint comes from TODO_API_BASE_URL (or .env); see config.Load. Requests are bounded
// only by the HTTP client timeouts (HTTP_TIMEOUT, HTTP_RESPONSE_HEADER_TIMEOUT).
package live
