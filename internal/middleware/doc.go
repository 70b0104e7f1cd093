// Package middleware holds the HTTP middlewares of the service: device API-key auth,
// admin bearer-token auth, per-IP rate limiting, request logging and panic recovery.
package middleware
