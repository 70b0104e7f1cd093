package memengine

import (
	"context"
	"slices"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrcrpro/panaguas/eventstore"
)

const (
	logMsgQueryCompleted      = "eventstore operation: query completed"
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logMsgSnapshotSaved       = "eventstore operation: snapshot saved"
	logAttrEventCount         = "event_count"
	logAttrExpectedSequence   = "expected_sequence"
	logAttrActualSequence     = "actual_sequence"
	logAttrProjectionType     = "projection_type"
	logAttrSequenceNumber     = "sequence_number"
)

type snapshotKey struct {
	projectionType string
	filterHash     string
}

type storedEvent struct {
	sequenceNumber eventstore.MaxSequenceNumberUint
	event          eventstore.StorableEvent
	payload        map[string]any
}

// EventStore keeps events in process memory and mirrors the append semantics of the Postgres engine:
// an Append only succeeds if the max sequence number of the filtered stream still equals the expected one.
type EventStore struct {
	mu        sync.RWMutex
	events    []storedEvent
	snapshots map[snapshotKey]eventstore.Snapshot
	logger    eventstore.Logger
}

// Option configures an EventStore.
type Option func(*EventStore) error

// WithLogger sets a logger for operational messages.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// NewEventStore creates an empty EventStore.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{snapshots: make(map[snapshotKey]eventstore.Snapshot)}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query returns all events matching filter in sequence order and the max sequence number among them.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	result := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for _, stored := range es.events {
		if !matches(filter, stored) {
			continue
		}

		event := stored.event
		event.SequenceNumber = stored.sequenceNumber
		result = append(result, event)
		maxSequenceNumber = stored.sequenceNumber
	}

	es.logDebug(logMsgQueryCompleted, logAttrEventCount, len(result))

	return result, maxSequenceNumber, nil
}

// Append appends events atomically if the stream selected by filter is unchanged since the query.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	toStore := make([]storedEvent, 0, len(allEvents))
	for _, e := range allEvents {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(e.PayloadJSON, &payload); err != nil {
			return eventstore.ErrInvalidPayloadJSON
		}

		toStore = append(toStore, storedEvent{event: e, payload: payload})
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	actual := es.currentMaxSequenceNumber(filter)
	if actual != expectedMaxSequenceNumber {
		es.logDebug(logMsgConcurrencyConflict, logAttrExpectedSequence, expectedMaxSequenceNumber, logAttrActualSequence, actual)

		return eventstore.ErrConcurrencyConflict
	}

	next := eventstore.MaxSequenceNumberUint(len(es.events))
	for i := range toStore {
		next++
		toStore[i].sequenceNumber = next
		toStore[i].event.OccurredAt = toStore[i].event.OccurredAt.UTC().Truncate(time.Microsecond)
	}

	es.events = append(es.events, toStore...)
	es.logDebug(logMsgEventsAppended, logAttrEventCount, len(toStore))

	return nil
}

// SaveSnapshot stores snapshot unless a snapshot of the same projection with a higher sequence number exists.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := snapshot.Validate(); err != nil {
		return err
	}

	key := snapshotKey{projectionType: snapshot.ProjectionType, filterHash: snapshot.FilterHash}
	snapshot.Data = slices.Clone(snapshot.Data)

	es.mu.Lock()
	defer es.mu.Unlock()

	if existing, ok := es.snapshots[key]; ok && existing.SequenceNumber > snapshot.SequenceNumber {
		return nil
	}

	es.snapshots[key] = snapshot
	es.logDebug(logMsgSnapshotSaved, logAttrProjectionType, snapshot.ProjectionType, logAttrSequenceNumber, snapshot.SequenceNumber)

	return nil
}

// LoadSnapshot returns the stored snapshot of the projection reading filter, or nil if there is none.
func (es *EventStore) LoadSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) (*eventstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if projectionType == "" {
		return nil, eventstore.ErrEmptyProjectionType
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	snapshot, ok := es.snapshots[snapshotKey{projectionType: projectionType, filterHash: filter.Hash()}]
	if !ok {
		return nil, nil
	}

	snapshot.Data = slices.Clone(snapshot.Data)

	return &snapshot, nil
}

// Len returns the total number of stored events.
func (es *EventStore) Len() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.events)
}

func (es *EventStore) currentMaxSequenceNumber(filter eventstore.Filter) eventstore.MaxSequenceNumberUint {
	for i := len(es.events) - 1; i >= 0; i-- {
		if matches(filter, es.events[i]) {
			return es.events[i].sequenceNumber
		}
	}

	return 0
}

func (es *EventStore) logDebug(msg string, args ...any) {
	if es.logger != nil {
		es.logger.Debug(msg, args...)
	}
}

func matches(filter eventstore.Filter, stored storedEvent) bool {
	if stored.sequenceNumber <= filter.SequenceNumberHigherThan() {
		return false
	}

	if filter.IsEmpty() {
		return true
	}

	for _, item := range filter.Items() {
		if itemMatches(item, stored) {
			return true
		}
	}

	return false
}

func itemMatches(item eventstore.FilterItem, stored storedEvent) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), stored.event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	if item.AllPredicatesMustMatch() {
		for _, p := range item.Predicates() {
			if !predicateMatches(p, stored.payload) {
				return false
			}
		}

		return true
	}

	for _, p := range item.Predicates() {
		if predicateMatches(p, stored.payload) {
			return true
		}
	}

	return false
}

// predicateMatches mirrors the jsonb containment check payload @> {"key": "val"} for string values.
func predicateMatches(p eventstore.FilterPredicate, payload map[string]any) bool {
	val, ok := payload[p.Key()].(string)

	return ok && val == p.Val()
}
