package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrcrpro/panaguas/internal/middleware"
)

var adminSecret = []byte("test-admin-secret")

func Test_DeviceAuth_PassesWithPlainKey(t *testing.T) {
	// arrange
	verifier, err := middleware.NewDeviceKeyVerifier("device-secret", "")
	require.NoError(t, err)
	handler := middleware.NewDeviceAuthMiddleware(verifier, discardLogger())(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/loans", nil)
	req.Header.Set(middleware.DeviceAPIKeyHeader, "device-secret")
	rec := httptest.NewRecorder()

	// act
	handler.ServeHTTP(rec, req)

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_DeviceAuth_PassesWithBcryptHash(t *testing.T) {
	// arrange
	hash, err := bcrypt.GenerateFromPassword([]byte("device-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	verifier, err := middleware.NewDeviceKeyVerifier("", string(hash))
	require.NoError(t, err)

	// act & assert
	assert.True(t, verifier.Verify("device-secret"))
	assert.False(t, verifier.Verify("wrong"))
	assert.False(t, verifier.Verify(""))
}

func Test_DeviceAuth_Unauthorized_WhenKeyMissingOrWrong(t *testing.T) {
	testCases := []struct {
		description string
		key         string
	}{
		{"missing", ""},
		{"wrong", "guess"},
	}

	verifier, err := middleware.NewDeviceKeyVerifier("device-secret", "")
	require.NoError(t, err)
	handler := middleware.NewDeviceAuthMiddleware(verifier, discardLogger())(okHandler())

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			req := httptest.NewRequest(http.MethodPost, "/loans", nil)
			if tc.key != "" {
				req.Header.Set(middleware.DeviceAPIKeyHeader, tc.key)
			}
			rec := httptest.NewRecorder()

			// act
			handler.ServeHTTP(rec, req)

			// assert
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"unauthenticated"`)
		})
	}
}

func Test_NewDeviceKeyVerifier_Error_WithoutKey(t *testing.T) {
	_, err := middleware.NewDeviceKeyVerifier("", "")

	assert.ErrorIs(t, err, middleware.ErrNoDeviceKey)
}

func Test_AdminAuth_PassesWithAdminToken(t *testing.T) {
	// arrange
	token, err := middleware.IssueAdminToken(adminSecret, "ops@campus", time.Hour, time.Now())
	require.NoError(t, err)

	var subject string
	handler := middleware.NewAdminAuthMiddleware(adminSecret, discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, _ = middleware.AdminSubjectFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	)
	req := httptest.NewRequest(http.MethodPost, "/admin/stations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	// act
	handler.ServeHTTP(rec, req)

	// assert
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ops@campus", subject)
}

func Test_AdminAuth_Rejects(t *testing.T) { //nolint:funlen
	expired, err := middleware.IssueAdminToken(adminSecret, "ops", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	otherSecret, err := middleware.IssueAdminToken([]byte("other"), "ops", time.Hour, time.Now())
	require.NoError(t, err)

	studentToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "student",
	}).SignedString(adminSecret)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, middleware.AdminClaims{Role: middleware.AdminRole}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		description    string
		authorization  string
		expectedStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + otherSecret, http.StatusUnauthorized},
		{"alg none", "Bearer " + noneToken, http.StatusUnauthorized},
		{"not admin", "Bearer " + studentToken, http.StatusForbidden},
	}

	handler := middleware.NewAdminAuthMiddleware(adminSecret, discardLogger())(okHandler())

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// arrange
			req := httptest.NewRequest(http.MethodGet, "/admin/users/u/loans", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			rec := httptest.NewRecorder()

			// act
			handler.ServeHTTP(rec, req)

			// assert
			assert.Equal(t, tc.expectedStatus, rec.Code)
		})
	}
}

func Test_RateLimiter_TooManyRequests_AfterBurstPerIP(t *testing.T) {
	// arrange
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{Rate: 0.5, Burst: 2}, discardLogger())
	defer limiter.Stop()
	handler := limiter.Middleware()(okHandler())

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/loans", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	// act
	first := send("10.0.0.1:1000")
	second := send("10.0.0.1:1001")
	third := send("10.0.0.1:1002")
	otherIP := send("10.0.0.2:1000")

	// assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "2", third.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, otherIP.Code)
	assert.Equal(t, 2, limiter.LimiterCount())
}

func Test_Recovery_ReturnsInternalServerError(t *testing.T) {
	// arrange
	handler := middleware.NewRecoveryMiddleware(discardLogger())(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }),
	)
	rec := httptest.NewRecorder()

	// act
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stations", nil))

	// assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func Test_Logging_PassesStatusThrough(t *testing.T) {
	// arrange
	handler := middleware.NewLoggingMiddleware(discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusConflict) }),
	)
	rec := httptest.NewRecorder()

	// act
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/loans", nil))

	// assert
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
