package adapters

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func Test_IsSerializationFailure(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"pgx serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"pgx deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped pgx serialization failure", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), true},
		{"pq serialization failure", &pq.Error{Code: "40001"}, true},
		{"pq deadlock", &pq.Error{Code: "40P01"}, true},
		{"pgx unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"pq undefined table", &pq.Error{Code: "42P01"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsSerializationFailure(tc.err))
		})
	}
}
