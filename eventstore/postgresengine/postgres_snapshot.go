package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/mrcrpro/panaguas/eventstore"
)

const (
	logMsgSnapshotSaved      = "snapshot saved"
	logMsgSaveSnapshotFailed = "saving snapshot failed"
	logMsgLoadSnapshotFailed = "loading snapshot failed"

	logAttrProjectionType = "projection_type"
	logAttrSequenceNumber = "sequence_number"

	operationSaveSnapshot = "save_snapshot"
	operationLoadSnapshot = "load_snapshot"

	colProjectionType = "projection_type"
	colFilterHash     = "filter_hash"
	colSnapshotData   = "snapshot_data"
	colCreatedAt      = "created_at"
	excludedPrefix    = "excluded."
	snapshotConflict  = colProjectionType + ", " + colFilterHash
)

// SaveSnapshot upserts snapshot. An existing snapshot of the same projection with a higher
// sequence number is kept, so readers saving concurrently never move a projection backwards.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	sqlQuery, args, err := es.buildSaveSnapshotQuery(snapshot)
	if err != nil {
		return err
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery, args...)
	es.logQueryWithDuration(sqlQuery, operationSaveSnapshot, time.Since(start))

	if execErr != nil {
		es.logError(logMsgSaveSnapshotFailed, execErr, logAttrProjectionType, snapshot.ProjectionType)
		es.incrementCounter(ctx, metricDatabaseErrors, map[string]string{spanAttrOperation: operationSaveSnapshot})

		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	es.logOperation(
		logMsgSnapshotSaved,
		logAttrProjectionType, snapshot.ProjectionType,
		logAttrSequenceNumber, snapshot.SequenceNumber,
	)

	return nil
}

// LoadSnapshot returns the snapshot of the projection reading filter, or nil if none was saved yet.
// It reads from the primary unless ctx allows eventual consistency.
func (es *EventStore) LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error) {
	if projectionType == "" {
		return nil, eventstore.ErrEmptyProjectionType
	}

	filterHash := filter.Hash()

	sqlQuery, args, err := goqu.Dialect(dialectPostgres).
		From(es.snapshotTableName).
		Prepared(true).
		Select(colSequenceNumber, colSnapshotData, colCreatedAt).
		Where(goqu.C(colProjectionType).Eq(projectionType), goqu.C(colFilterHash).Eq(filterHash)).
		ToSQL()
	if err != nil {
		return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery, args...)
	es.logQueryWithDuration(sqlQuery, operationLoadSnapshot, time.Since(start))

	if queryErr != nil {
		es.logError(logMsgLoadSnapshotFailed, queryErr, logAttrProjectionType, projectionType)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, queryErr)
	}
	defer es.closeRows(rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, rowsErr)
		}

		return nil, nil
	}

	snapshot := eventstore.Snapshot{ProjectionType: projectionType, FilterHash: filterHash}
	var data []byte
	if scanErr := rows.Scan(&snapshot.SequenceNumber, &data, &snapshot.CreatedAt); scanErr != nil {
		es.logError(logMsgScanRowFailed, scanErr)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, scanErr)
	}
	snapshot.Data = data

	return &snapshot, nil
}

// buildSaveSnapshotQuery builds
//
//	INSERT INTO snapshots (...) VALUES (...)
//	ON CONFLICT (projection_type, filter_hash) DO UPDATE SET ...
//	WHERE snapshots.sequence_number <= excluded.sequence_number
func (es *EventStore) buildSaveSnapshotQuery(snapshot eventstore.Snapshot) (string, []any, error) {
	sqlQuery, args, err := goqu.Dialect(dialectPostgres).
		Insert(es.snapshotTableName).
		Prepared(true).
		Rows(goqu.Record{
			colProjectionType: snapshot.ProjectionType,
			colFilterHash:     snapshot.FilterHash,
			colSequenceNumber: int64(snapshot.SequenceNumber), //nolint:gosec
			colSnapshotData:   goqu.L(castJsonb, string(snapshot.Data)),
			colCreatedAt:      snapshot.CreatedAt,
		}).
		OnConflict(
			goqu.DoUpdate(snapshotConflict, goqu.Record{
				colSequenceNumber: goqu.I(excludedPrefix + colSequenceNumber),
				colSnapshotData:   goqu.I(excludedPrefix + colSnapshotData),
				colCreatedAt:      goqu.I(excludedPrefix + colCreatedAt),
			}).Where(goqu.I(es.snapshotTableName + "." + colSequenceNumber).Lte(goqu.I(excludedPrefix + colSequenceNumber))),
		).
		ToSQL()
	if err != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}
