package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName    = "events"
	defaultSnapshotTableName = "snapshots"

	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedEvents   = "expected_events"
	logAttrRowsAffected     = "rows_affected"
	logAttrExpectedSequence = "expected_sequence"

	operationQuery  = "query"
	operationAppend = "append"

	metricQueryDuration        = "eventstore_query_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsQueried        = "eventstore_events_queried_total"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "eventstore_database_errors_total"

	spanNameQuery     = "eventstore.query"
	spanNameAppend    = "eventstore.append"
	spanAttrOperation = "operation"
	spanAttrEventType = "event_type"
	spanAttrCount     = "event_count"
	spanAttrErrorType = "error_type"
	labelStatus       = "status"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "concurrency_conflict"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	dialectPostgres   = "postgres"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	payloadContains   = "payload @> ?::jsonb"
)

// EventStore is the PostgreSQL event store. It is safe for concurrent use.
type EventStore struct {
	db                adapters.DBAdapter
	eventTableName    string
	snapshotTableName string
	logger            eventstore.Logger
	metricsCollector  eventstore.MetricsCollector
	tracingCollector  eventstore.TracingCollector
}

type queryResultRow struct {
	eventType      string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	sequenceNumber eventstore.MaxSequenceNumberUint
}

// NewEventStoreFromPGXPool creates an EventStore on a pgx pool.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolAndReplica creates an EventStore that may serve eventually consistent reads from replica.
func NewEventStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEventStoreFromSQLDB creates an EventStore on a database/sql handle, e.g. opened with lib/pq.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates an EventStore on a sqlx handle.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
	es := &EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns the events matching filter ordered by sequence number,
// together with the MaxSequenceNumberUint of this "dynamic event stream" at query time.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	ctx, span := es.startSpan(ctx, spanNameQuery, map[string]string{spanAttrOperation: operationQuery})

	sqlQuery, args, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		es.logError(logMsgBuildSelectQueryFailed, buildQueryErr)
		es.finishSpan(span, statusError, map[string]string{spanAttrErrorType: "build_query"})

		return nil, 0, buildQueryErr
	}

	start := time.Now()
	eventStream, maxSequenceNumber, err := es.queryRows(ctx, sqlQuery, args)
	duration := time.Since(start)

	if err != nil {
		es.recordError(ctx, operationQuery, duration, metricQueryDuration)
		es.finishSpan(span, statusError, map[string]string{spanAttrErrorType: "database"})

		return nil, 0, err
	}

	es.recordDuration(ctx, metricQueryDuration, duration, operationQuery, statusSuccess)
	es.recordValue(ctx, metricEventsQueried, float64(len(eventStream)), operationQuery, statusSuccess)
	es.finishSpan(span, statusSuccess, map[string]string{spanAttrCount: strconv.Itoa(len(eventStream))})
	es.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return eventStream, maxSequenceNumber, nil
}

func (es *EventStore) queryRows(ctx context.Context, sqlQuery string, args []any) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery, args...)
	es.logQueryWithDuration(sqlQuery, operationQuery, time.Since(start))

	if queryErr != nil {
		es.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(rows)

	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		if err := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber); err != nil {
			es.logError(logMsgScanRowFailed, err)

			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if err != nil {
			es.logError(logMsgBuildStorableEventFailed, err, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, err)
		}
		event.SequenceNumber = result.sequenceNumber

		eventStream = append(eventStream, event)
		maxSequenceNumber = result.sequenceNumber
	}

	if err := rows.Err(); err != nil {
		es.logError(logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	return eventStream, maxSequenceNumber, nil
}

func (es *EventStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil && es.logger != nil {
		es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// Append atomically appends one or more events if the max sequence number of the stream selected by filter
// still equals expectedMaxSequenceNumber. filter must be the one used for the Query the decision was based on.
//
// One command should usually produce one event; the multi-event statement is heavier.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	ctx, span := es.startSpan(ctx, spanNameAppend, map[string]string{
		spanAttrOperation: operationAppend,
		spanAttrEventType: event.EventType,
		spanAttrCount:     strconv.Itoa(len(allEvents)),
	})

	sqlQuery, args, buildQueryErr := es.buildInsertQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		es.logError(logMsgBuildInsertQueryFailed, buildQueryErr, logAttrEventCount, len(allEvents))
		es.finishSpan(span, statusError, map[string]string{spanAttrErrorType: "build_query"})

		return buildQueryErr
	}

	start := time.Now()
	rowsAffected, execErr := es.executeAppend(ctx, sqlQuery, args)
	duration := time.Since(start)

	if execErr != nil {
		es.recordError(ctx, operationAppend, duration, metricAppendDuration)
		es.finishSpan(span, statusError, map[string]string{spanAttrErrorType: "database"})

		return execErr
	}

	if rowsAffected < int64(len(allEvents)) {
		es.logOperation(
			logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)
		es.recordDuration(ctx, metricAppendDuration, duration, operationAppend, statusConflict)
		es.incrementCounter(ctx, metricConcurrencyConflicts, map[string]string{spanAttrOperation: operationAppend})
		es.finishSpan(span, statusConflict, nil)

		return eventstore.ErrConcurrencyConflict
	}

	es.recordDuration(ctx, metricAppendDuration, duration, operationAppend, statusSuccess)
	es.recordValue(ctx, metricEventsAppended, float64(len(allEvents)), operationAppend, statusSuccess)
	es.finishSpan(span, statusSuccess, nil)
	es.logOperation(
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

func (es *EventStore) executeAppend(ctx context.Context, sqlQuery string, args []any) (int64, error) {
	start := time.Now()
	result, execErr := es.db.ExecSerializable(ctx, sqlQuery, args...)
	es.logQueryWithDuration(sqlQuery, operationAppend, time.Since(start))

	if adapters.IsSerializationFailure(execErr) {
		// A concurrent append on an overlapping stream committed first; nothing was inserted.
		return 0, nil
	}

	if execErr != nil {
		es.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		es.logError(logMsgRowsAffectedFailed, err)

		return 0, errors.Join(eventstore.ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Prepared(true).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	selectStmt, err := addWhereClause(filter, selectStmt)
	if err != nil {
		return "", nil, err
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// buildInsertQuery builds
//
//	WITH context AS (SELECT MAX(sequence_number) AS max_seq FROM events WHERE <filter>),
//	     vals AS (SELECT ... UNION ALL SELECT ...)
//	INSERT INTO events (...) SELECT vals.* FROM context, vals WHERE COALESCE(max_seq, 0) = <expected>
//
// which inserts nothing if the stream moved on since the Query. It runs in a SERIALIZABLE transaction,
// so two appends that both saw the expected max sequence number cannot both commit.
func (es *EventStore) buildInsertQuery(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, []any, error) {

	if len(events) == 0 {
		return "", nil, eventstore.ErrNoEventsToAppend
	}

	builder := goqu.Dialect(dialectPostgres)

	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq))

	cteStmt, err := addWhereClause(filter, cteStmt)
	if err != nil {
		return "", nil, err
	}

	var valuesStmt *goqu.SelectDataset
	for _, event := range events {
		eventStmt := builder.Select(
			goqu.L(castText, event.EventType).As(colEventType),
			goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
			goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
		)

		if valuesStmt == nil {
			valuesStmt = eventStmt
			continue
		}

		valuesStmt = valuesStmt.UnionAll(eventStmt)
	}

	insertStmt := builder.
		Insert(es.eventTableName).
		Prepared(true).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(int64(expectedMaxSequenceNumber)))), //nolint:gosec
		)

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// addWhereClause renders the filter items OR-ed together. Predicates are jsonb containment checks
// passed as bind parameters. A sequence number bound is AND-ed to the items.
func addWhereClause(filter eventstore.Filter, selectStmt *goqu.SelectDataset) (*goqu.SelectDataset, error) {
	if bound := filter.SequenceNumberHigherThan(); bound > 0 {
		selectStmt = selectStmt.Where(goqu.C(colSequenceNumber).Gt(int64(bound))) //nolint:gosec
	}

	if filter.IsEmpty() {
		return selectStmt, nil
	}

	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		itemExpressions := make([]goqu.Expression, 0, 2)

		if len(item.EventTypes()) > 0 {
			itemExpressions = append(itemExpressions, goqu.C(colEventType).In(item.EventTypes()))
		}

		if len(item.Predicates()) > 0 {
			predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))

			for _, predicate := range item.Predicates() {
				containment, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
				if err != nil {
					return nil, errors.Join(eventstore.ErrBuildingQueryFailed, err)
				}

				predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, containment))
			}

			var predicatesExpressionList exp.ExpressionList
			if item.AllPredicatesMustMatch() {
				predicatesExpressionList = goqu.And(predicateExpressions...)
			} else {
				predicatesExpressionList = goqu.Or(predicateExpressions...)
			}

			itemExpressions = append(itemExpressions, predicatesExpressionList)
		}

		itemsExpressions = append(itemsExpressions, goqu.And(itemExpressions...))
	}

	return selectStmt.Where(goqu.Or(itemsExpressions...)), nil
}

func (es *EventStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (es *EventStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es *EventStore) logError(message string, err error, args ...any) {
	if es.logger != nil {
		es.logger.Error(message, append([]any{logAttrError, err.Error()}, args...)...)
	}
}

func (es *EventStore) recordError(ctx context.Context, operation string, duration time.Duration, durationMetric string) {
	es.recordDuration(ctx, durationMetric, duration, operation, statusError)
	es.incrementCounter(ctx, metricDatabaseErrors, map[string]string{spanAttrOperation: operation})
}

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, operation, status string) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es *EventStore) recordValue(ctx context.Context, metric string, value float64, operation, status string) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

func (es *EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if es.metricsCollector == nil {
		return
	}

	if contextual, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

func (es *EventStore) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if es.tracingCollector == nil {
		return ctx, nil
	}

	return es.tracingCollector.StartSpan(ctx, name, attrs)
}

func (es *EventStore) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if es.tracingCollector == nil || span == nil {
		return
	}

	es.tracingCollector.FinishSpan(span, status, attrs)
}

// toMilliseconds converts d to milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
