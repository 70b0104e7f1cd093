// Package handler exposes the lending operations over HTTP.
//
// Device endpoints (POST /loans, POST /loans/return) are authenticated by API key and
// rate limited per client IP. The station listing is public. Admin endpoints under
// /admin require an admin bearer token. The mapping from outcomes and domain errors to
// HTTP status codes lives in status.go.
package handler
