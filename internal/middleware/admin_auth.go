package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminRole is the role claim required on admin tokens.
const AdminRole = "admin"

type contextKey string

const ctxKeyAdminSubject contextKey = "admin_subject"

var (
	// ErrInvalidToken is returned by ParseAdminToken for malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotAdmin is returned by ParseAdminToken if the token lacks the admin role.
	ErrNotAdmin = errors.New("token does not grant the admin role")
)

// AdminClaims are the claims of an admin bearer token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// IssueAdminToken signs an HS256 admin token for subject valid for ttl.
func IssueAdminToken(secret []byte, subject string, ttl time.Duration, now time.Time) (string, error) {
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: AdminRole,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAdminToken validates an HS256 token and requires the admin role.
func ParseAdminToken(secret []byte, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Role != AdminRole {
		return nil, ErrNotAdmin
	}

	return claims, nil
}

// NewAdminAuthMiddleware requires an admin bearer token: 401 without a valid token, 403 without the admin role.
func NewAdminAuthMiddleware(secret []byte, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || tokenString == "" {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "Missing bearer token.")
				return
			}

			claims, err := ParseAdminToken(secret, tokenString)
			if errors.Is(err, ErrNotAdmin) {
				logger.WarnContext(r.Context(), "admin authorization failed", slog.String("path", r.URL.Path))
				WriteError(w, http.StatusForbidden, "forbidden", "Admin role required.")

				return
			}

			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "Invalid bearer token.")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdminSubject, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSubjectFromContext returns the subject of the admin token that authorized the request.
func AdminSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(ctxKeyAdminSubject).(string)

	return subject, ok
}
