package events

import (
	"time"
)

// SourceBackend identifies this service as the event source on the bus.
const SourceBackend = "okr.backend"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// EntityCreated is raised when a hierarchy entity is created
type EntityCreated struct {
	BaseEvent
	EntityType string `json:"entity_type"`
}

// NewEntityCreated creates an EntityCreated event
func NewEntityCreated(entityType, id string) EntityCreated {
	return EntityCreated{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   "entity.created",
			Timestamp:   time.Now().UTC(),
		},
		EntityType: entityType,
	}
}

// EntityDeleted is raised when a hierarchy entity is deleted
type EntityDeleted struct {
	BaseEvent
	EntityType string `json:"entity_type"`
}

// NewEntityDeleted creates an EntityDeleted event
func NewEntityDeleted(entityType, id string) EntityDeleted {
	return EntityDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   "entity.deleted",
			Timestamp:   time.Now().UTC(),
		},
		EntityType: entityType,
	}
}

// ValueRecomputed is raised after aggregate propagation rewrites a record's
// current value
type ValueRecomputed struct {
	BaseEvent
	EntityType   string  `json:"entity_type"`
	CurrentValue float64 `json:"current_value"`
}

// NewValueRecomputed creates a ValueRecomputed event
func NewValueRecomputed(entityType, id string, value float64) ValueRecomputed {
	return ValueRecomputed{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   "value.recomputed",
			Timestamp:   time.Now().UTC(),
		},
		EntityType:   entityType,
		CurrentValue: value,
	}
}
