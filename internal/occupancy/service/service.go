package service

import (
	"context"
	"time"

	"hotelops_backend/internal/events"
	"hotelops_backend/internal/occupancy/repository"
	"hotelops_backend/internal/occupancy/transport"
	"hotelops_backend/platform/apperr"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
)

const dateFormat = "2006-01-02"

// ReconcileSummary reports how the task side reacted to fact deletion.
type ReconcileSummary struct {
	PreservedCompleted int
	DeletedDetails     int
	DeletedEmptyTasks  int
}

// TaskReconciler lets this module hand fact deletions to the tasks module
// without importing it. Implemented via an adapter in the composition root.
type TaskReconciler interface {
	ReconcileForFacts(ctx context.Context, factIDs []int64) (ReconcileSummary, error)
}

// Store is the persistence surface the service depends on.
type Store interface {
	CreateBatch(ctx context.Context, batch *repository.Batch, seeds []repository.FactSeed) error
	GetBatch(ctx context.Context, id uuid.UUID) (*repository.Batch, error)
	ListBatches(ctx context.Context, hotelID int64) ([]repository.Batch, error)
	ListFactIDs(ctx context.Context, batchID uuid.UUID) ([]int64, error)
	DeleteBatch(ctx context.Context, batchID uuid.UUID) (int, error)
	ListInHouse(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error)
	ListArrivals(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error)
	ListDepartures(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error)
	ListHotelIDsWithFacts(ctx context.Context, date time.Time) ([]int64, error)
}

// Service provides business logic for occupancy uploads.
type Service struct {
	store      Store
	reconciler TaskReconciler
	eventBus   events.Bus
	log        *logger.Logger
}

// New creates a new occupancy service. The task reconciler is wired after
// construction because the two modules reference each other.
func New(store Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		eventBus: eventBus,
		log:      log,
	}
}

// SetTaskReconciler wires the task-side reaction to fact deletion.
func (s *Service) SetTaskReconciler(reconciler TaskReconciler) {
	s.reconciler = reconciler
}

// CreateBatch stores one occupancy upload as a batch of facts.
func (s *Service) CreateBatch(ctx context.Context, actorID uuid.UUID, req transport.CreateBatchRequest) (*transport.BatchResponse, error) {
	seeds := make([]repository.FactSeed, 0, len(req.Rows))
	for _, row := range req.Rows {
		checkIn, err := time.Parse(dateFormat, row.CheckInDate)
		if err != nil {
			return nil, apperr.Validation("checkInDate must be formatted as YYYY-MM-DD")
		}
		checkOut, err := time.Parse(dateFormat, row.CheckOutDate)
		if err != nil {
			return nil, apperr.Validation("checkOutDate must be formatted as YYYY-MM-DD")
		}
		if checkOut.Before(checkIn) {
			return nil, apperr.Validation("checkOutDate must not precede checkInDate")
		}

		seeds = append(seeds, repository.FactSeed{
			RoomID:       row.RoomID,
			GuestName:    row.GuestName,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			ArrivalAt:    row.ArrivalAt,
			DepartureAt:  row.DepartureAt,
		})
	}

	batch := &repository.Batch{
		ID:         uuid.New(),
		HotelID:    req.HotelID,
		FileName:   req.FileName,
		UploadedBy: actorID,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateBatch(ctx, batch, seeds); err != nil {
		return nil, err
	}

	s.log.TaskEvent("occupancy_batch_created",
		"batch_id", batch.ID.String(),
		"hotel_id", batch.HotelID,
		"fact_count", len(seeds),
	)
	s.eventBus.Publish(ctx, events.OccupancyBatchCreated{
		BaseEvent: events.NewBaseEvent(),
		BatchID:   batch.ID,
		HotelID:   batch.HotelID,
		FactCount: len(seeds),
	})

	batch.FactCount = len(seeds)
	resp := batchToResponse(batch)
	return &resp, nil
}

// GetBatch retrieves one batch.
func (s *Service) GetBatch(ctx context.Context, batchID uuid.UUID) (*transport.BatchResponse, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	resp := batchToResponse(batch)
	return &resp, nil
}

// ListBatches lists a hotel's uploads, newest first.
func (s *Service) ListBatches(ctx context.Context, hotelID int64) ([]transport.BatchResponse, error) {
	batches, err := s.store.ListBatches(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	items := make([]transport.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, batchToResponse(&batches[i]))
	}
	return items, nil
}

// RetractBatch removes an upload. The task side reconciles first so completed
// work survives with its history before the facts disappear.
//
// Reconciliation and fact deletion commit in separate transactions. If the
// deletion fails after reconciliation committed, the retraction can be
// retried: the second reconcile pass finds no details still referencing the
// facts and the deletion runs again.
func (s *Service) RetractBatch(ctx context.Context, batchID uuid.UUID) (*transport.RetractBatchResponse, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	factIDs, err := s.store.ListFactIDs(ctx, batchID)
	if err != nil {
		return nil, err
	}

	summary, err := s.reconciler.ReconcileForFacts(ctx, factIDs)
	if err != nil {
		return nil, err
	}

	deletedFacts, err := s.store.DeleteBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	s.log.TaskEvent("occupancy_batch_retracted",
		"batch_id", batchID.String(),
		"hotel_id", batch.HotelID,
		"deleted_facts", deletedFacts,
		"preserved_completed", summary.PreservedCompleted,
	)
	s.eventBus.Publish(ctx, events.OccupancyBatchRetracted{
		BaseEvent:          events.NewBaseEvent(),
		BatchID:            batchID,
		HotelID:            batch.HotelID,
		DeletedFacts:       deletedFacts,
		PreservedCompleted: summary.PreservedCompleted,
		DeletedDetails:     summary.DeletedDetails,
		DeletedEmptyTasks:  summary.DeletedEmptyTasks,
	})

	return &transport.RetractBatchResponse{
		BatchID:            batchID,
		DeletedFacts:       deletedFacts,
		PreservedCompleted: summary.PreservedCompleted,
		DeletedDetails:     summary.DeletedDetails,
		DeletedEmptyTasks:  summary.DeletedEmptyTasks,
	}, nil
}

// ListInHouse returns facts for rooms occupied on the date.
func (s *Service) ListInHouse(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error) {
	return s.store.ListInHouse(ctx, hotelID, date)
}

// ListArrivals returns facts for rooms checking in on the date.
func (s *Service) ListArrivals(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error) {
	return s.store.ListArrivals(ctx, hotelID, date)
}

// ListDepartures returns facts for rooms checking out on the date.
func (s *Service) ListDepartures(ctx context.Context, hotelID int64, date time.Time) ([]repository.Fact, error) {
	return s.store.ListDepartures(ctx, hotelID, date)
}

// ListHotelIDsWithFacts returns hotels with occupancy covering the date.
func (s *Service) ListHotelIDsWithFacts(ctx context.Context, date time.Time) ([]int64, error) {
	return s.store.ListHotelIDsWithFacts(ctx, date)
}

func batchToResponse(batch *repository.Batch) transport.BatchResponse {
	return transport.BatchResponse{
		ID:         batch.ID,
		HotelID:    batch.HotelID,
		FileName:   batch.FileName,
		UploadedBy: batch.UploadedBy,
		FactCount:  batch.FactCount,
		CreatedAt:  batch.CreatedAt,
	}
}
