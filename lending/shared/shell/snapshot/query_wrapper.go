package snapshot

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
	"github.com/mrcrpro/panaguas/lending/shared/shell"
)

const (
	// DefaultSettleWindow bounds how long an append may stay uncommitted after its events occurred.
	DefaultSettleWindow = time.Minute

	snapshotSaveTimeout = 5 * time.Second

	logMsgSnapshotLoadFailed   = "snapshot load failed, replaying all events"
	logMsgSnapshotDecodeFailed = "snapshot decode failed, replaying all events"
	logMsgSnapshotSaveFailed   = "snapshot save failed"

	logAttrProjectionType = "projection_type"
	logAttrSequenceNumber = "sequence_number"
	logAttrError          = "error"

	SnapshotHitsMetric   = "snapshot_hits_total"
	SnapshotMissesMetric = "snapshot_misses_total"
	SnapshotSavesMetric  = "snapshot_saves_total"
)

var (
	ErrNilEventStore          = errors.New("snapshot wrapper needs an event store")
	ErrNilProjectFunc         = errors.New("snapshot wrapper needs a project function")
	ErrNilFilterBuilder       = errors.New("snapshot wrapper needs a filter builder")
	ErrInvalidSettleWindow    = errors.New("settle window must not be negative")
	ErrIncrementalQueryFailed = errors.New("incremental query failed")
)

// SavesAndLoadsSnapshots is the snapshot side of the event store.
type SavesAndLoadsSnapshots interface {
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error)
}

// QueriesEventsAndHandlesSnapshots is what the QueryWrapper needs from the event store.
type QueriesEventsAndHandlesSnapshots interface {
	shell.QueriesEvents
	SavesAndLoadsSnapshots
}

// ProjectionFunc folds history onto base. With a zero base it must yield the full projection.
type ProjectionFunc[Q shell.Query, R shell.QueryResult] func(
	history core.DomainEvents,
	query Q,
	maxSequenceNumber eventstore.MaxSequenceNumberUint,
	base R,
) R

// FilterBuilderFunc returns the filter the projection reads. It must not depend on time.
type FilterBuilderFunc[Q shell.Query] func(query Q) eventstore.Filter

// QueryWrapper is a shell.QueryHandler that projects incrementally from a snapshot.
type QueryWrapper[Q shell.Query, R shell.QueryResult] struct {
	eventStore       QueriesEventsAndHandlesSnapshots
	projectionType   string
	projectFunc      ProjectionFunc[Q, R]
	filterBuilder    FilterBuilderFunc[Q]
	settleWindow     time.Duration
	now              func() time.Time
	metricsCollector shell.MetricsCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// NewQueryWrapper creates a QueryWrapper whose snapshots are keyed by projectionType and the filter hash.
func NewQueryWrapper[Q shell.Query, R shell.QueryResult](
	eventStore QueriesEventsAndHandlesSnapshots,
	projectionType string,
	projectFunc ProjectionFunc[Q, R],
	filterBuilder FilterBuilderFunc[Q],
	opts ...Option[Q, R],
) (*QueryWrapper[Q, R], error) {

	switch {
	case eventStore == nil:
		return nil, ErrNilEventStore
	case projectionType == "":
		return nil, eventstore.ErrEmptyProjectionType
	case projectFunc == nil:
		return nil, ErrNilProjectFunc
	case filterBuilder == nil:
		return nil, ErrNilFilterBuilder
	}

	w := &QueryWrapper[Q, R]{
		eventStore:     eventStore,
		projectionType: projectionType,
		projectFunc:    projectFunc,
		filterBuilder:  filterBuilder,
		settleWindow:   DefaultSettleWindow,
		now:            time.Now,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle runs Load -> Incremental Query -> Project settled prefix -> Save -> Project rest.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	filter := w.filterBuilder(query)
	base, from := w.restore(ctx, filter)

	storableEvents, maxSequenceNumber, err := w.eventStore.Query(ctx, filter.WithSequenceNumberHigherThan(from))
	if err != nil {
		return *new(R), errors.Join(ErrIncrementalQueryFailed, err)
	}

	history, err := shell.DomainEventsFrom(storableEvents)
	if err != nil {
		return *new(R), err
	}

	settled := w.settledPrefixLength(storableEvents)
	if settled > 0 {
		settledSequence := storableEvents[settled-1].SequenceNumber
		base = w.projectFunc(history[:settled], query, settledSequence, base)
		w.save(ctx, filter, settledSequence, base)
		from = settledSequence
	}

	if maxSequenceNumber < from {
		maxSequenceNumber = from
	}

	return w.projectFunc(history[settled:], query, maxSequenceNumber, base), nil
}

// restore returns the snapshotted projection and its sequence number, or a zero base to replay from.
func (w *QueryWrapper[Q, R]) restore(ctx context.Context, filter eventstore.Filter) (R, eventstore.MaxSequenceNumberUint) {
	var base R

	snapshot, err := w.eventStore.LoadSnapshot(ctx, w.projectionType, filter)
	if err != nil {
		w.logWarn(ctx, logMsgSnapshotLoadFailed, logAttrProjectionType, w.projectionType, logAttrError, err.Error())
		w.countMiss(ctx)

		return base, 0
	}

	if snapshot == nil {
		w.countMiss(ctx)

		return base, 0
	}

	if err = jsoniter.ConfigFastest.Unmarshal(snapshot.Data, &base); err != nil {
		w.logWarn(ctx, logMsgSnapshotDecodeFailed, logAttrProjectionType, w.projectionType, logAttrError, err.Error())
		w.countMiss(ctx)

		return *new(R), 0
	}

	shell.IncrementCounter(ctx, w.metricsCollector, SnapshotHitsMetric, w.labels())

	return base, snapshot.SequenceNumber
}

// settledPrefixLength counts the leading events that occurred before now minus the settle window.
func (w *QueryWrapper[Q, R]) settledPrefixLength(events eventstore.StorableEvents) int {
	cutoff := w.now().Add(-w.settleWindow)

	for i, event := range events {
		if !event.OccurredAt.Before(cutoff) {
			return i
		}
	}

	return len(events)
}

// save is best effort: a failed save only costs a longer replay next time.
func (w *QueryWrapper[Q, R]) save(
	parentCtx context.Context,
	filter eventstore.Filter,
	sequenceNumber eventstore.MaxSequenceNumberUint,
	projection R,
) {

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), snapshotSaveTimeout)
	defer cancel()

	if err := w.trySave(ctx, filter, sequenceNumber, projection); err != nil {
		w.logWarn(ctx, logMsgSnapshotSaveFailed,
			logAttrProjectionType, w.projectionType,
			logAttrSequenceNumber, sequenceNumber,
			logAttrError, err.Error(),
		)

		return
	}

	shell.IncrementCounter(ctx, w.metricsCollector, SnapshotSavesMetric, w.labels())
}

func (w *QueryWrapper[Q, R]) trySave(
	ctx context.Context,
	filter eventstore.Filter,
	sequenceNumber eventstore.MaxSequenceNumberUint,
	projection R,
) error {

	data, err := jsoniter.ConfigFastest.Marshal(projection)
	if err != nil {
		return err
	}

	snapshot, err := eventstore.BuildSnapshot(w.projectionType, filter, sequenceNumber, data)
	if err != nil {
		return err
	}

	return w.eventStore.SaveSnapshot(ctx, snapshot)
}

func (w *QueryWrapper[Q, R]) countMiss(ctx context.Context) {
	shell.IncrementCounter(ctx, w.metricsCollector, SnapshotMissesMetric, w.labels())
}

func (w *QueryWrapper[Q, R]) labels() map[string]string {
	return map[string]string{logAttrProjectionType: w.projectionType}
}

func (w *QueryWrapper[Q, R]) logWarn(ctx context.Context, msg string, args ...any) {
	if w.contextualLogger != nil {
		w.contextualLogger.WarnContext(ctx, msg, args...)
	} else if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
