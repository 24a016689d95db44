package service

import (
	"context"
	"time"

	"hotelops_backend/internal/events"
	"hotelops_backend/internal/tasks/domain"
	"hotelops_backend/internal/tasks/repository"
	"hotelops_backend/internal/tasks/transport"
	"hotelops_backend/platform/apperr"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// generationOrder fixes the sequence of a daily generation run.
var generationOrder = []domain.TaskType{
	domain.TaskTypeInHouse,
	domain.TaskTypeArrival,
	domain.TaskTypeDeparture,
}

// OccupancyReader provides the occupancy facts generation needs. Implemented
// by the occupancy module's service.
type OccupancyReader interface {
	ListFactsForGeneration(ctx context.Context, hotelID int64, date time.Time, taskType domain.TaskType) ([]domain.Fact, error)
}

// Store is the persistence surface the service depends on.
type Store interface {
	GetTaskByKey(ctx context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType) (*repository.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*repository.Task, error)
	CountDetails(ctx context.Context, taskID uuid.UUID) (int, error)
	CreateTaskWithDetails(ctx context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType, seeds []domain.DetailSeed) (*repository.Task, bool, error)
	CompleteDetail(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, note *string) (*repository.TaskDetail, error)
	MarkDND(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, note *string) (*repository.TaskDetail, error)
	Reconcile(ctx context.Context, factIDs []int64) (repository.ReconcileResult, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*repository.TaskDetail, error)
	ListTasks(ctx context.Context, hotelID int64, taskDate time.Time) ([]repository.Task, error)
	ListDetailsByStatus(ctx context.Context, hotelID int64, taskDate time.Time, statuses []domain.DetailStatus) ([]repository.DetailWithType, error)
	ListDNDDetails(ctx context.Context, hotelID int64, taskDate time.Time) ([]repository.DetailWithType, error)
	ListStatusLogs(ctx context.Context, detailID uuid.UUID) ([]repository.StatusChangeLog, error)
	ListDNDChecks(ctx context.Context, detailID uuid.UUID) ([]repository.DNDCheck, error)
	ListDNDChecksBatch(ctx context.Context, detailIDs []uuid.UUID) (map[uuid.UUID][]repository.DNDCheck, error)
	Summary(ctx context.Context, hotelID int64, taskDate time.Time) ([]repository.TypeSummary, error)
}

// Service provides business logic for task generation and lifecycle.
type Service struct {
	store     Store
	occupancy OccupancyReader
	eventBus  events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new tasks service. The occupancy reader is wired after
// construction because the two modules reference each other.
func New(store Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// SetOccupancyReader wires the occupancy fact source.
func (s *Service) SetOccupancyReader(reader OccupancyReader) {
	s.occupancy = reader
}

// Generate creates the task for one hotel, date and type if it does not exist
// yet. Calling it again for the same key is a no-op that reports the existing
// task.
func (s *Service) Generate(ctx context.Context, req transport.GenerateTaskRequest) (*transport.GenerateTaskResponse, error) {
	taskType, ok := domain.ParseTaskType(req.TaskType)
	if !ok {
		return nil, apperr.Validation("unknown task type")
	}
	taskDate, err := time.Parse(dateFormat, req.TaskDate)
	if err != nil {
		return nil, apperr.Validation("taskDate must be formatted as YYYY-MM-DD")
	}

	return s.generateOne(ctx, req.HotelID, taskDate, taskType)
}

// GenerateDaily runs generation for all three task types. Types that already
// exist or have no occupancy are skipped, never failed.
func (s *Service) GenerateDaily(ctx context.Context, req transport.GenerateDailyRequest) (*transport.GenerateDailyResponse, error) {
	taskDate, err := time.Parse(dateFormat, req.TaskDate)
	if err != nil {
		return nil, apperr.Validation("taskDate must be formatted as YYYY-MM-DD")
	}

	resp := &transport.GenerateDailyResponse{
		HotelID:  req.HotelID,
		TaskDate: req.TaskDate,
		Results:  make([]transport.GenerateTaskResponse, 0, len(generationOrder)),
	}
	for _, taskType := range generationOrder {
		result, err := s.generateOne(ctx, req.HotelID, taskDate, taskType)
		if err != nil {
			return nil, err
		}
		resp.Results = append(resp.Results, *result)
	}

	s.log.TaskEvent("daily_generation_finished",
		"hotel_id", req.HotelID,
		"task_date", req.TaskDate,
	)
	return resp, nil
}

func (s *Service) generateOne(ctx context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType) (*transport.GenerateTaskResponse, error) {
	existing, err := s.store.GetTaskByKey(ctx, hotelID, taskDate, taskType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		count, err := s.store.CountDetails(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		resp := taskToResponse(existing, count)
		return &transport.GenerateTaskResponse{Task: &resp, Created: false}, nil
	}

	facts, err := s.occupancy.ListFactsForGeneration(ctx, hotelID, taskDate, taskType)
	if err != nil {
		return nil, err
	}
	seeds := domain.BuildDetailSeeds(taskType, facts)
	if len(seeds) == 0 {
		// No occupancy for this type and date, nothing to generate.
		return &transport.GenerateTaskResponse{Created: false}, nil
	}

	task, created, err := s.store.CreateTaskWithDetails(ctx, hotelID, taskDate, taskType, seeds)
	if err != nil {
		return nil, err
	}

	count := len(seeds)
	if !created {
		if count, err = s.store.CountDetails(ctx, task.ID); err != nil {
			return nil, err
		}
	}

	if created {
		s.log.TaskEvent("task_generated",
			"task_id", task.ID.String(),
			"hotel_id", hotelID,
			"task_type", string(taskType),
			"room_count", count,
		)
		s.eventBus.Publish(ctx, events.TaskCreated{
			BaseEvent: events.NewBaseEvent(),
			TaskID:    task.ID,
			HotelID:   hotelID,
			TaskDate:  taskDate,
			TaskType:  string(taskType),
			RoomCount: count,
		})
	}

	resp := taskToResponse(task, count)
	return &transport.GenerateTaskResponse{Task: &resp, Created: created}, nil
}

// CompleteDetail marks one room inspection completed and re-derives the
// aggregate task status.
func (s *Service) CompleteDetail(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, req transport.CompleteDetailRequest) (*transport.DetailResponse, error) {
	detail, err := s.store.CompleteDetail(ctx, detailID, actorID, req.Note)
	if err != nil {
		return nil, err
	}

	task, err := s.store.GetTask(ctx, detail.TaskID)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, events.TaskDetailCompleted{
		BaseEvent:   events.NewBaseEvent(),
		DetailID:    detail.ID,
		TaskID:      detail.TaskID,
		RoomID:      detail.RoomID,
		CompletedBy: actorID,
		TaskStatus:  task.Status,
	})
	if task.Status == string(domain.TaskStatusCompleted) {
		s.eventBus.Publish(ctx, events.TaskCompleted{
			BaseEvent: events.NewBaseEvent(),
			TaskID:    task.ID,
			HotelID:   task.HotelID,
			TaskType:  task.TaskType,
		})
	}

	resp := detailToResponse(detail)
	return &resp, nil
}

// MarkDND records a do-not-disturb check on a room. The room stays workable
// and can be retried any number of times.
func (s *Service) MarkDND(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, req transport.MarkDNDRequest) (*transport.DetailResponse, error) {
	detail, err := s.store.MarkDND(ctx, detailID, actorID, req.Note)
	if err != nil {
		return nil, err
	}

	task, err := s.store.GetTask(ctx, detail.TaskID)
	if err != nil {
		return nil, err
	}

	s.eventBus.Publish(ctx, events.TaskDetailDNDMarked{
		BaseEvent: events.NewBaseEvent(),
		DetailID:  detail.ID,
		TaskID:    detail.TaskID,
		HotelID:   task.HotelID,
		RoomID:    detail.RoomID,
		DNDCount:  detail.DNDCount,
		MinChecks: domain.MinDNDChecks,
		CheckedBy: actorID,
	})

	resp := detailToResponse(detail)
	return &resp, nil
}

// ReconcileFacts reacts to occupancy fact deletion on the task side.
// Implements the occupancy module's reconciler dependency.
func (s *Service) ReconcileFacts(ctx context.Context, factIDs []int64) (repository.ReconcileResult, error) {
	result, err := s.store.Reconcile(ctx, factIDs)
	if err != nil {
		return result, err
	}

	s.log.TaskEvent("facts_reconciled",
		"fact_count", len(factIDs),
		"preserved_completed", result.PreservedCompleted,
		"deleted_details", result.DeletedDetails,
		"deleted_empty_tasks", result.DeletedEmptyTasks,
	)
	return result, nil
}

// Countdown reports the remaining time until a detail's scheduled arrival or
// departure.
func (s *Service) Countdown(ctx context.Context, detailID uuid.UUID) (*transport.CountdownResponse, error) {
	detail, err := s.store.GetDetail(ctx, detailID)
	if err != nil {
		return nil, err
	}
	if detail.ScheduledAt == nil {
		return nil, apperr.BadRequest("task detail has no scheduled time")
	}

	return &transport.CountdownResponse{
		DetailID:    detail.ID,
		RoomID:      detail.RoomID,
		ScheduledAt: *detail.ScheduledAt,
		Countdown:   domain.Countdown(*detail.ScheduledAt, s.now()),
	}, nil
}
