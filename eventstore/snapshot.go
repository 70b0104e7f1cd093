package eventstore

import (
	"encoding/json"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrInvalidSnapshotJSON    = errors.New("snapshot json is not valid")
	ErrEmptyProjectionType    = errors.New("projection type must not be empty")
	ErrEmptyFilterHash        = errors.New("filter hash must not be empty")
	ErrSavingSnapshotFailed   = errors.New("saving snapshot failed")
	ErrLoadingSnapshotFailed  = errors.New("loading snapshot failed")
	ErrEmptySnapshotTableName = errors.New("snapshots table name must not be empty")
)

// Snapshot is a serialized projection together with the sequence number it was projected up to.
// A projection is identified by its type and the Hash of the filter it reads.
//
// Engines keep one Snapshot per projection and never replace it with one of a lower SequenceNumber,
// so concurrent readers saving in any order converge on the newest state.
type Snapshot struct {
	ProjectionType string
	FilterHash     string
	SequenceNumber MaxSequenceNumberUint
	Data           json.RawMessage
	CreatedAt      time.Time
}

// Validate checks the fields an engine needs to store the snapshot.
func (s Snapshot) Validate() error {
	if s.ProjectionType == "" {
		return ErrEmptyProjectionType
	}

	if s.FilterHash == "" {
		return ErrEmptyFilterHash
	}

	if !jsoniter.ConfigFastest.Valid(s.Data) {
		return ErrInvalidSnapshotJSON
	}

	return nil
}

// BuildSnapshot creates a validated Snapshot of data for the projection reading filter.
func BuildSnapshot(
	projectionType string,
	filter Filter,
	sequenceNumber MaxSequenceNumberUint,
	data json.RawMessage,
) (Snapshot, error) {

	snapshot := Snapshot{
		ProjectionType: projectionType,
		FilterHash:     filter.Hash(),
		SequenceNumber: sequenceNumber,
		Data:           data,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}
