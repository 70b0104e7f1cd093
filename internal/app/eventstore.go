package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/eventstore/memengine"
	"github.com/mrcrpro/panaguas/eventstore/postgresengine"
	"github.com/mrcrpro/panaguas/internal/config"
	shellconfig "github.com/mrcrpro/panaguas/lending/shared/shell/config"
)

// ErrUnknownDriver is returned for an EVENTSTORE_DRIVER value without an engine.
var ErrUnknownDriver = errors.New("unknown event store driver")

// EventStore is the contract every command and query handler is built on.
type EventStore interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error)
}

type openedStore struct {
	store  EventStore
	health func(ctx context.Context) error
	close  func() error
}

func openEventStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	metrics eventstore.MetricsCollector,
	tracing eventstore.TracingCollector,
) (openedStore, error) {

	if cfg.EventStoreDriver == config.DriverMemory {
		es, err := memengine.NewEventStore(memengine.WithLogger(logger))
		if err != nil {
			return openedStore{}, err
		}

		return openedStore{store: es, close: func() error { return nil }}, nil
	}

	if cfg.RunMigrations {
		if err := postgresengine.RunMigrations(cfg.DatabaseURL); err != nil {
			return openedStore{}, fmt.Errorf("running migrations: %w", err)
		}
	}

	options := []postgresengine.Option{
		postgresengine.WithLogger(logger),
		postgresengine.WithMetrics(metrics),
	}
	if tracing != nil {
		options = append(options, postgresengine.WithTracing(tracing))
	}

	settings := shellconfig.DefaultPoolSettings()

	switch cfg.EventStoreDriver {
	case config.DriverPGX:
		return openPGX(ctx, cfg, settings, options)

	case config.DriverSQL:
		db, err := shellconfig.NewSQLDB(ctx, cfg.DatabaseURL, settings)
		if err != nil {
			return openedStore{}, err
		}

		es, err := postgresengine.NewEventStoreFromSQLDB(db, options...)
		if err != nil {
			return openedStore{}, errors.Join(err, db.Close())
		}

		return openedStore{store: es, health: db.PingContext, close: db.Close}, nil

	case config.DriverSQLX:
		db, err := shellconfig.NewSQLX(ctx, cfg.DatabaseURL, settings)
		if err != nil {
			return openedStore{}, err
		}

		es, err := postgresengine.NewEventStoreFromSQLX(db, options...)
		if err != nil {
			return openedStore{}, errors.Join(err, db.Close())
		}

		return openedStore{store: es, health: db.PingContext, close: db.Close}, nil

	default:
		return openedStore{}, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.EventStoreDriver)
	}
}

func openPGX(
	ctx context.Context,
	cfg *config.Config,
	settings shellconfig.PoolSettings,
	options []postgresengine.Option,
) (openedStore, error) {

	pool, err := shellconfig.NewPGXPool(ctx, cfg.DatabaseURL, settings)
	if err != nil {
		return openedStore{}, err
	}

	if cfg.DatabaseReplicaURL == "" {
		es, esErr := postgresengine.NewEventStoreFromPGXPool(pool, options...)
		if esErr != nil {
			pool.Close()
			return openedStore{}, esErr
		}

		return openedStore{store: es, health: pool.Ping, close: closePools(pool)}, nil
	}

	replica, err := shellconfig.NewPGXPool(ctx, cfg.DatabaseReplicaURL, settings)
	if err != nil {
		pool.Close()
		return openedStore{}, fmt.Errorf("opening replica: %w", err)
	}

	es, err := postgresengine.NewEventStoreFromPGXPoolAndReplica(pool, replica, options...)
	if err != nil {
		pool.Close()
		replica.Close()

		return openedStore{}, err
	}

	return openedStore{store: es, health: pool.Ping, close: closePools(pool, replica)}, nil
}

func closePools(pools ...interface{ Close() }) func() error {
	return func() error {
		for _, p := range pools {
			p.Close()
		}

		return nil
	}
}
