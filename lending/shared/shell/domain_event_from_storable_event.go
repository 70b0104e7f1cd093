package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrcrpro/panaguas/eventstore"
	"github.com/mrcrpro/panaguas/lending/shared/core"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	payload := storableEvent.PayloadJSON

	switch storableEvent.EventType {
	case core.StationRegisteredEventType:
		return unmarshalAs[core.StationRegistered](payload)

	case core.StationStatusChangedEventType:
		return unmarshalAs[core.StationStatusChanged](payload)

	case core.StationStockAdjustedEventType:
		return unmarshalAs[core.StationStockAdjusted](payload)

	case core.ManagingStationFailedEventType:
		return unmarshalAs[core.ManagingStationFailed](payload)

	case core.UserRegisteredEventType:
		return unmarshalAs[core.UserRegistered](payload)

	case core.DonationTierChangedEventType:
		return unmarshalAs[core.DonationTierChanged](payload)

	case core.FinePaidEventType:
		return unmarshalAs[core.FinePaid](payload)

	case core.ManagingUserFailedEventType:
		return unmarshalAs[core.ManagingUserFailed](payload)

	case core.LoanOpenedEventType:
		return unmarshalAs[core.LoanOpened](payload)

	case core.LoanClosedEventType:
		return unmarshalAs[core.LoanClosed](payload)

	case core.RequestingLoanFailedEventType:
		return unmarshalAs[core.RequestingLoanFailed](payload)

	case core.ReturningLoanFailedEventType:
		return unmarshalAs[core.ReturningLoanFailed](payload)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalAs[E core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	var event E

	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
