// Package notification turns task lifecycle events into durable front-desk
// notifications. Events are written to an outbox table first; a scheduler
// worker picks them up and delivers them, so notifications survive restarts.
package notification

import (
	"context"
	"time"

	"hotelops_backend/internal/events"
	"hotelops_backend/internal/notification/outbox"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notification kinds stored in the outbox.
const (
	KindTaskCompleted       = "task.completed"
	KindDNDThresholdReached = "dnd.threshold_reached"
	KindBatchRetracted      = "occupancy.batch_retracted"
)

// TaskCompletedPayload is stored for fully completed tasks.
type TaskCompletedPayload struct {
	TaskID   uuid.UUID `json:"taskId"`
	TaskType string    `json:"taskType"`
}

// DNDThresholdPayload is stored when a room reaches the advisory check count.
type DNDThresholdPayload struct {
	DetailID uuid.UUID `json:"detailId"`
	RoomID   int64     `json:"roomId"`
	DNDCount int       `json:"dndCount"`
}

// BatchRetractedPayload is stored when an occupancy upload is retracted.
type BatchRetractedPayload struct {
	BatchID            uuid.UUID `json:"batchId"`
	DeletedDetails     int       `json:"deletedDetails"`
	PreservedCompleted int       `json:"preservedCompleted"`
}

// Module wires task lifecycle events into the notification outbox.
type Module struct {
	repo *outbox.Repository
	log  *logger.Logger
}

// New creates the notification module.
func New(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{
		repo: outbox.New(pool),
		log:  log,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "notification"
}

// Repository exposes the outbox store for the scheduler dispatcher.
func (m *Module) Repository() *outbox.Repository {
	return m.repo
}

// RegisterHandlers subscribes the module to the domain events it persists.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.TaskCompleted{}.EventName(), events.HandlerFunc(m.onTaskCompleted))
	bus.Subscribe(events.TaskDetailDNDMarked{}.EventName(), events.HandlerFunc(m.onDNDMarked))
	bus.Subscribe(events.OccupancyBatchRetracted{}.EventName(), events.HandlerFunc(m.onBatchRetracted))
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), events.HandlerFunc(m.onOutboxDue))
}

func (m *Module) onTaskCompleted(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.TaskCompleted)
	if !ok {
		return nil
	}

	_, err := m.repo.Insert(ctx, outbox.InsertParams{
		HotelID: evt.HotelID,
		Kind:    KindTaskCompleted,
		Payload: TaskCompletedPayload{TaskID: evt.TaskID, TaskType: evt.TaskType},
		RunAt:   time.Now().UTC(),
	})
	return err
}

func (m *Module) onDNDMarked(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.TaskDetailDNDMarked)
	if !ok {
		return nil
	}
	// Only the check that crosses the advisory threshold is worth a
	// notification; later checks would just repeat it.
	if !evt.ThresholdCrossed() {
		return nil
	}

	_, err := m.repo.Insert(ctx, outbox.InsertParams{
		HotelID: evt.HotelID,
		Kind:    KindDNDThresholdReached,
		Payload: DNDThresholdPayload{DetailID: evt.DetailID, RoomID: evt.RoomID, DNDCount: evt.DNDCount},
		RunAt:   time.Now().UTC(),
	})
	return err
}

func (m *Module) onBatchRetracted(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.OccupancyBatchRetracted)
	if !ok {
		return nil
	}

	_, err := m.repo.Insert(ctx, outbox.InsertParams{
		HotelID: evt.HotelID,
		Kind:    KindBatchRetracted,
		Payload: BatchRetractedPayload{
			BatchID:            evt.BatchID,
			DeletedDetails:     evt.DeletedDetails,
			PreservedCompleted: evt.PreservedCompleted,
		},
		RunAt: time.Now().UTC(),
	})
	return err
}

// onOutboxDue delivers a claimed notification. Delivery is a structured log
// line for now; the front-desk display tails the log stream.
func (m *Module) onOutboxDue(ctx context.Context, event events.Event) error {
	evt, ok := event.(events.NotificationOutboxDue)
	if !ok {
		return nil
	}

	if err := m.repo.MarkProcessing(ctx, evt.OutboxID); err != nil {
		return err
	}

	rec, err := m.repo.GetByID(ctx, evt.OutboxID)
	if err != nil {
		_ = m.repo.MarkFailed(ctx, evt.OutboxID, err.Error())
		return err
	}

	m.log.TaskEvent("notification_delivered",
		"outbox_id", rec.ID.String(),
		"hotel_id", rec.HotelID,
		"kind", rec.Kind,
		"payload", string(rec.Payload),
	)
	return m.repo.MarkSucceeded(ctx, evt.OutboxID)
}
