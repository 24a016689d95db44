// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"hotelops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Tasks Domain Events
// =============================================================================

// TaskCreated is published when a new daily task is generated.
type TaskCreated struct {
	BaseEvent
	TaskID    uuid.UUID `json:"taskId"`
	HotelID   int64     `json:"hotelId"`
	TaskDate  time.Time `json:"taskDate"`
	TaskType  string    `json:"taskType"`
	RoomCount int       `json:"roomCount"`
}

func (e TaskCreated) EventName() string { return "tasks.task.created" }

// TaskDetailCompleted is published when a room's inspection is completed.
type TaskDetailCompleted struct {
	BaseEvent
	DetailID    uuid.UUID `json:"detailId"`
	TaskID      uuid.UUID `json:"taskId"`
	RoomID      int64     `json:"roomId"`
	CompletedBy uuid.UUID `json:"completedBy"`
	TaskStatus  string    `json:"taskStatus"`
}

func (e TaskDetailCompleted) EventName() string { return "tasks.detail.completed" }

// TaskDetailDNDMarked is published when a room is recorded as do-not-disturb.
type TaskDetailDNDMarked struct {
	BaseEvent
	DetailID  uuid.UUID `json:"detailId"`
	TaskID    uuid.UUID `json:"taskId"`
	HotelID   int64     `json:"hotelId"`
	RoomID    int64     `json:"roomId"`
	DNDCount  int       `json:"dndCount"`
	MinChecks int       `json:"minChecks"`
	CheckedBy uuid.UUID `json:"checkedBy"`
}

func (e TaskDetailDNDMarked) EventName() string { return "tasks.detail.dnd_marked" }

// ThresholdCrossed reports whether this particular check is the one that
// reached the advisory minimum.
func (e TaskDetailDNDMarked) ThresholdCrossed() bool { return e.DNDCount == e.MinChecks }

// TaskCompleted is published when every room in a task is completed.
type TaskCompleted struct {
	BaseEvent
	TaskID   uuid.UUID `json:"taskId"`
	HotelID  int64     `json:"hotelId"`
	TaskType string    `json:"taskType"`
}

func (e TaskCompleted) EventName() string { return "tasks.task.completed" }

// =============================================================================
// Occupancy Domain Events
// =============================================================================

// OccupancyBatchCreated is published after an occupancy upload lands.
type OccupancyBatchCreated struct {
	BaseEvent
	BatchID   uuid.UUID `json:"batchId"`
	HotelID   int64     `json:"hotelId"`
	FactCount int       `json:"factCount"`
}

func (e OccupancyBatchCreated) EventName() string { return "occupancy.batch.created" }

// OccupancyBatchRetracted is published after an upload is retracted and the
// task side has been reconciled.
type OccupancyBatchRetracted struct {
	BaseEvent
	BatchID            uuid.UUID `json:"batchId"`
	HotelID            int64     `json:"hotelId"`
	DeletedFacts       int       `json:"deletedFacts"`
	PreservedCompleted int       `json:"preservedCompleted"`
	DeletedDetails     int       `json:"deletedDetails"`
	DeletedEmptyTasks  int       `json:"deletedEmptyTasks"`
}

func (e OccupancyBatchRetracted) EventName() string { return "occupancy.batch.retracted" }

// =============================================================================
// Notification Domain Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler worker when a stored
// notification is ready for delivery.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
	HotelID  int64     `json:"hotelId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
