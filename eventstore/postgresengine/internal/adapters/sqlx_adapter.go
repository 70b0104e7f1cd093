package adapters

import (
	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB through the sql.DB it wraps.
type SQLXAdapter struct {
	*SQLAdapter
}

func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{SQLAdapter: NewSQLAdapter(db.DB)}
}
