package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql and sqlx
)

// ErrEmptyDSN is returned when a pool is requested without a connection string.
var ErrEmptyDSN = errors.New("postgres DSN must not be empty")

// PoolSettings tunes a connection pool. Zero values are replaced by the defaults.
type PoolSettings struct {
	MaxConnections    int32
	MinConnections    int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// DefaultPoolSettings suit a single service instance with a handful of devices per station.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxConnections:    16,
		MinConnections:    2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectTimeout:    5 * time.Second,
	}
}

func (s PoolSettings) withDefaults() PoolSettings {
	d := DefaultPoolSettings()

	if s.MaxConnections <= 0 {
		s.MaxConnections = d.MaxConnections
	}
	if s.MinConnections <= 0 {
		s.MinConnections = d.MinConnections
	}
	if s.MaxConnLifetime <= 0 {
		s.MaxConnLifetime = d.MaxConnLifetime
	}
	if s.MaxConnIdleTime <= 0 {
		s.MaxConnIdleTime = d.MaxConnIdleTime
	}
	if s.HealthCheckPeriod <= 0 {
		s.HealthCheckPeriod = d.HealthCheckPeriod
	}
	if s.ConnectTimeout <= 0 {
		s.ConnectTimeout = d.ConnectTimeout
	}

	return s
}

// PGXPoolConfig parses dsn and applies settings.
func PGXPoolConfig(dsn string, settings PoolSettings) (*pgxpool.Config, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	settings = settings.withDefaults()
	dbConfig.MaxConns = settings.MaxConnections
	dbConfig.MinConns = min(settings.MinConnections, settings.MaxConnections)
	dbConfig.MaxConnLifetime = settings.MaxConnLifetime
	dbConfig.MaxConnIdleTime = settings.MaxConnIdleTime
	dbConfig.HealthCheckPeriod = settings.HealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = settings.ConnectTimeout

	return dbConfig, nil
}

// NewPGXPool creates a pgx pool and pings it.
func NewPGXPool(ctx context.Context, dsn string, settings PoolSettings) (*pgxpool.Pool, error) {
	dbConfig, err := PGXPoolConfig(dsn, settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// NewSQLDB opens a database/sql pool using lib/pq and pings it.
func NewSQLDB(ctx context.Context, dsn string, settings PoolSettings) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	applySQLPoolSettings(db, settings.withDefaults())

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewSQLX opens a sqlx pool using lib/pq and pings it.
func NewSQLX(ctx context.Context, dsn string, settings PoolSettings) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, err
	}

	applySQLPoolSettings(db.DB, settings.withDefaults())

	return db, nil
}

func applySQLPoolSettings(db *sql.DB, settings PoolSettings) {
	db.SetMaxOpenConns(int(settings.MaxConnections))
	db.SetMaxIdleConns(int(settings.MinConnections))
	db.SetConnMaxLifetime(settings.MaxConnLifetime)
	db.SetConnMaxIdleTime(settings.MaxConnIdleTime)
}
