package adapters

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsSerializationFailure reports whether err means the transaction was aborted in favor of a concurrent one,
// either by serializable snapshot isolation or by deadlock detection. Both pgx and lib/pq errors are recognized.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isSerializationFailureCode(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isSerializationFailureCode(string(pqErr.Code))
	}

	return false
}

func isSerializationFailureCode(code string) bool {
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}
