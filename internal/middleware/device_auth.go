package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// DeviceAPIKeyHeader carries the shared key of the station devices.
const DeviceAPIKeyHeader = "X-ESP32-API-Key"

// ErrNoDeviceKey is returned by NewDeviceKeyVerifier if neither a key nor a hash is given.
var ErrNoDeviceKey = errors.New("device api key or bcrypt hash must be configured")

// DeviceKeyVerifier checks device keys against a plain key, a bcrypt hash, or both.
type DeviceKeyVerifier struct {
	plainKey   []byte
	bcryptHash []byte
}

// NewDeviceKeyVerifier creates a DeviceKeyVerifier. The hash wins if both are given.
func NewDeviceKeyVerifier(plainKey string, bcryptHash string) (*DeviceKeyVerifier, error) {
	if plainKey == "" && bcryptHash == "" {
		return nil, ErrNoDeviceKey
	}

	return &DeviceKeyVerifier{plainKey: []byte(plainKey), bcryptHash: []byte(bcryptHash)}, nil
}

// Verify reports whether key is the configured device key.
func (v *DeviceKeyVerifier) Verify(key string) bool {
	if key == "" {
		return false
	}

	if len(v.bcryptHash) > 0 {
		return bcrypt.CompareHashAndPassword(v.bcryptHash, []byte(key)) == nil
	}

	return subtle.ConstantTimeCompare(v.plainKey, []byte(key)) == 1
}

// NewDeviceAuthMiddleware rejects requests without a valid DeviceAPIKeyHeader with 401.
func NewDeviceAuthMiddleware(verifier *DeviceKeyVerifier, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.Verify(r.Header.Get(DeviceAPIKeyHeader)) {
				logger.WarnContext(r.Context(), "device authentication failed",
					slog.String("remote_addr", clientIP(r)),
					slog.String("path", r.URL.Path),
				)
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "Invalid or missing API key.")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
