package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelops_backend/internal/events"
	"hotelops_backend/internal/occupancy/repository"
	"hotelops_backend/internal/occupancy/transport"
	"hotelops_backend/platform/apperr"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	Store

	batch     *repository.Batch
	factIDs   []int64
	deleteErr error

	created      *repository.Batch
	createdSeeds []repository.FactSeed
	calls        []string
}

func (f *fakeStore) CreateBatch(_ context.Context, batch *repository.Batch, seeds []repository.FactSeed) error {
	f.created = batch
	f.createdSeeds = seeds
	return nil
}

func (f *fakeStore) GetBatch(_ context.Context, id uuid.UUID) (*repository.Batch, error) {
	if f.batch == nil || f.batch.ID != id {
		return nil, apperr.NotFound("occupancy batch not found")
	}
	return f.batch, nil
}

func (f *fakeStore) ListFactIDs(_ context.Context, _ uuid.UUID) ([]int64, error) {
	f.calls = append(f.calls, "ListFactIDs")
	return f.factIDs, nil
}

func (f *fakeStore) DeleteBatch(_ context.Context, _ uuid.UUID) (int, error) {
	f.calls = append(f.calls, "DeleteBatch")
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return len(f.factIDs), nil
}

type fakeReconciler struct {
	calls   *[]string
	summary ReconcileSummary
	gotIDs  []int64
	err     error
}

func (f *fakeReconciler) ReconcileForFacts(_ context.Context, factIDs []int64) (ReconcileSummary, error) {
	*f.calls = append(*f.calls, "ReconcileForFacts")
	f.gotIDs = factIDs
	return f.summary, f.err
}

type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func TestCreateBatchRejectsReversedStayWindow(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, &fakeBus{}, logger.New("test"))

	_, err := svc.CreateBatch(context.Background(), uuid.New(), transport.CreateBatchRequest{
		HotelID: 7,
		Rows: []transport.OccupancyRowRequest{
			{RoomID: 101, CheckInDate: "2026-09-03", CheckOutDate: "2026-09-01"},
		},
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.created != nil {
		t.Error("batch must not be stored when validation fails")
	}
}

func TestCreateBatchStoresFactsAndPublishes(t *testing.T) {
	store := &fakeStore{}
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))
	arrival := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

	resp, err := svc.CreateBatch(context.Background(), uuid.New(), transport.CreateBatchRequest{
		HotelID: 7,
		Rows: []transport.OccupancyRowRequest{
			{RoomID: 101, CheckInDate: "2026-09-01", CheckOutDate: "2026-09-04", ArrivalAt: &arrival},
			{RoomID: 102, CheckInDate: "2026-08-30", CheckOutDate: "2026-09-01"},
		},
	})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	if resp.FactCount != 2 {
		t.Errorf("expected 2 facts, got %d", resp.FactCount)
	}
	if len(store.createdSeeds) != 2 || store.createdSeeds[0].ArrivalAt == nil {
		t.Errorf("unexpected seeds: %+v", store.createdSeeds)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "occupancy.batch.created" {
		t.Errorf("expected batch created event, got %v", bus.published)
	}
}

func TestRetractBatchReconcilesBeforeDeleting(t *testing.T) {
	batchID := uuid.New()
	store := &fakeStore{
		batch:   &repository.Batch{ID: batchID, HotelID: 7, UploadedBy: uuid.New()},
		factIDs: []int64{11, 12, 13},
	}
	reconciler := &fakeReconciler{
		calls:   &store.calls,
		summary: ReconcileSummary{PreservedCompleted: 2, DeletedDetails: 1},
	}
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))
	svc.SetTaskReconciler(reconciler)

	resp, err := svc.RetractBatch(context.Background(), batchID)
	if err != nil {
		t.Fatalf("RetractBatch: %v", err)
	}

	want := []string{"ListFactIDs", "ReconcileForFacts", "DeleteBatch"}
	if len(store.calls) != len(want) {
		t.Fatalf("call order %v, want %v", store.calls, want)
	}
	for i := range want {
		if store.calls[i] != want[i] {
			t.Fatalf("call order %v, want %v", store.calls, want)
		}
	}
	if len(reconciler.gotIDs) != 3 {
		t.Errorf("expected 3 fact IDs passed to reconciler, got %v", reconciler.gotIDs)
	}
	if resp.DeletedFacts != 3 || resp.PreservedCompleted != 2 || resp.DeletedDetails != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != "occupancy.batch.retracted" {
		t.Errorf("expected batch retracted event, got %v", bus.published)
	}
}

func TestRetractBatchCanBeRetriedAfterDeleteFailure(t *testing.T) {
	batchID := uuid.New()
	store := &fakeStore{
		batch:     &repository.Batch{ID: batchID, HotelID: 7, UploadedBy: uuid.New()},
		factIDs:   []int64{11, 12},
		deleteErr: apperr.Internal("delete failed"),
	}
	reconciler := &fakeReconciler{
		calls:   &store.calls,
		summary: ReconcileSummary{PreservedCompleted: 1, DeletedDetails: 1},
	}
	svc := New(store, &fakeBus{}, logger.New("test"))
	svc.SetTaskReconciler(reconciler)

	if _, err := svc.RetractBatch(context.Background(), batchID); err == nil {
		t.Fatal("expected error when fact deletion fails")
	}

	// Reconciliation already committed; a retry reconciles again (now a
	// no-op on the task side) and the deletion goes through.
	store.deleteErr = nil
	reconciler.summary = ReconcileSummary{}
	resp, err := svc.RetractBatch(context.Background(), batchID)
	if err != nil {
		t.Fatalf("RetractBatch retry: %v", err)
	}
	if resp.DeletedFacts != 2 || resp.PreservedCompleted != 0 || resp.DeletedDetails != 0 {
		t.Errorf("unexpected retry response: %+v", resp)
	}

	want := []string{"ListFactIDs", "ReconcileForFacts", "DeleteBatch", "ListFactIDs", "ReconcileForFacts", "DeleteBatch"}
	if len(store.calls) != len(want) {
		t.Fatalf("call order %v, want %v", store.calls, want)
	}
}

func TestRetractBatchAbortsWhenReconcileFails(t *testing.T) {
	batchID := uuid.New()
	store := &fakeStore{
		batch:   &repository.Batch{ID: batchID, HotelID: 7, UploadedBy: uuid.New()},
		factIDs: []int64{11},
	}
	reconciler := &fakeReconciler{
		calls: &store.calls,
		err:   apperr.Internal("reconcile failed"),
	}
	svc := New(store, &fakeBus{}, logger.New("test"))
	svc.SetTaskReconciler(reconciler)

	_, err := svc.RetractBatch(context.Background(), batchID)
	if err == nil {
		t.Fatal("expected error when reconcile fails")
	}
	for _, call := range store.calls {
		if call == "DeleteBatch" {
			t.Fatal("facts must not be deleted when reconcile fails")
		}
	}
}
