// Package adapters hides the differences between pgx, database/sql and sqlx behind DBAdapter.
package adapters
