package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"hotelops_backend/internal/events"
	"hotelops_backend/internal/tasks/domain"
	"hotelops_backend/internal/tasks/repository"
	"hotelops_backend/internal/tasks/transport"
	"hotelops_backend/platform/apperr"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	Store

	tasks   map[uuid.UUID]*repository.Task
	byKey   map[string]*repository.Task
	details map[uuid.UUID]*repository.TaskDetail

	createCalls int
	createTask  *repository.Task
	createFresh bool
	countResult int

	boardDetails  []repository.DetailWithType
	boardStatuses []domain.DetailStatus
	dndDetails    []repository.DetailWithType
	dndChecks     map[uuid.UUID][]repository.DNDCheck
	summaries     []repository.TypeSummary

	reconcileResult  repository.ReconcileResult
	reconcileFactIDs []int64
}

func keyOf(hotelID int64, taskDate time.Time, taskType domain.TaskType) string {
	return strconv.FormatInt(hotelID, 10) + "|" + taskDate.Format("2006-01-02") + "|" + string(taskType)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:   make(map[uuid.UUID]*repository.Task),
		byKey:   make(map[string]*repository.Task),
		details: make(map[uuid.UUID]*repository.TaskDetail),
	}
}

func (f *fakeStore) addTask(task *repository.Task) {
	f.tasks[task.ID] = task
	taskType, _ := domain.ParseTaskType(task.TaskType)
	f.byKey[keyOf(task.HotelID, task.TaskDate, taskType)] = task
}

func (f *fakeStore) GetTaskByKey(_ context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType) (*repository.Task, error) {
	return f.byKey[keyOf(hotelID, taskDate, taskType)], nil
}

func (f *fakeStore) GetTask(_ context.Context, id uuid.UUID) (*repository.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	return task, nil
}

func (f *fakeStore) CountDetails(_ context.Context, _ uuid.UUID) (int, error) {
	return f.countResult, nil
}

func (f *fakeStore) CreateTaskWithDetails(_ context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType, seeds []domain.DetailSeed) (*repository.Task, bool, error) {
	f.createCalls++
	if f.createTask != nil {
		return f.createTask, f.createFresh, nil
	}
	task := &repository.Task{
		ID:       uuid.New(),
		HotelID:  hotelID,
		TaskDate: taskDate,
		TaskType: string(taskType),
		Status:   string(domain.TaskStatusPending),
	}
	f.addTask(task)
	return task, true, nil
}

func (f *fakeStore) ListDetailsByStatus(_ context.Context, _ int64, _ time.Time, statuses []domain.DetailStatus) ([]repository.DetailWithType, error) {
	f.boardStatuses = statuses
	return f.boardDetails, nil
}

func (f *fakeStore) ListDNDDetails(_ context.Context, _ int64, _ time.Time) ([]repository.DetailWithType, error) {
	return f.dndDetails, nil
}

func (f *fakeStore) ListDNDChecksBatch(_ context.Context, _ []uuid.UUID) (map[uuid.UUID][]repository.DNDCheck, error) {
	return f.dndChecks, nil
}

func (f *fakeStore) Summary(_ context.Context, _ int64, _ time.Time) ([]repository.TypeSummary, error) {
	return f.summaries, nil
}

func (f *fakeStore) Reconcile(_ context.Context, factIDs []int64) (repository.ReconcileResult, error) {
	f.reconcileFactIDs = factIDs
	return f.reconcileResult, nil
}

func (f *fakeStore) GetDetail(_ context.Context, id uuid.UUID) (*repository.TaskDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, apperr.NotFound("task detail not found")
	}
	return detail, nil
}

type fakeOccupancy struct {
	facts []domain.Fact
	err   error
	calls int
}

func (f *fakeOccupancy) ListFactsForGeneration(_ context.Context, _ int64, _ time.Time, _ domain.TaskType) ([]domain.Fact, error) {
	f.calls++
	return f.facts, f.err
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

func (f *fakeBus) names() []string {
	out := make([]string, 0, len(f.published))
	for _, evt := range f.published {
		out = append(out, evt.EventName())
	}
	return out
}

func newTestService(store *fakeStore, occupancy OccupancyReader) (*Service, *fakeBus) {
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))
	if occupancy != nil {
		svc.SetOccupancyReader(occupancy)
	}
	return svc, bus
}

func TestGenerateRejectsUnknownTaskType(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), &fakeOccupancy{})

	_, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  1,
		TaskDate: "2026-09-01",
		TaskType: "turndown",
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateRejectsBadDate(t *testing.T) {
	svc, _ := newTestService(newFakeStore(), &fakeOccupancy{})

	_, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  1,
		TaskDate: "01-09-2026",
		TaskType: "arrival",
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateExistingTaskIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.countResult = 4
	taskDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	store.addTask(&repository.Task{
		ID:       uuid.New(),
		HotelID:  7,
		TaskDate: taskDate,
		TaskType: string(domain.TaskTypeInHouse),
		Status:   string(domain.TaskStatusInProgress),
	})
	occupancy := &fakeOccupancy{}
	svc, bus := newTestService(store, occupancy)

	resp, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  7,
		TaskDate: "2026-09-01",
		TaskType: "in_house",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.Created {
		t.Error("expected Created=false for existing task")
	}
	if resp.Task == nil || resp.Task.RoomCount != 4 {
		t.Errorf("expected existing task with 4 rooms, got %+v", resp.Task)
	}
	if occupancy.calls != 0 {
		t.Errorf("occupancy consulted %d times for existing task, want 0", occupancy.calls)
	}
	if store.createCalls != 0 {
		t.Errorf("CreateTaskWithDetails called %d times, want 0", store.createCalls)
	}
	if len(bus.published) != 0 {
		t.Errorf("unexpected events published: %v", bus.names())
	}
}

func TestGenerateNoOccupancyCreatesNothing(t *testing.T) {
	store := newFakeStore()
	occupancy := &fakeOccupancy{}
	svc, bus := newTestService(store, occupancy)

	resp, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  7,
		TaskDate: "2026-09-01",
		TaskType: "departure",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.Created || resp.Task != nil {
		t.Errorf("expected no task, got %+v", resp)
	}
	if store.createCalls != 0 {
		t.Errorf("CreateTaskWithDetails called %d times, want 0", store.createCalls)
	}
	if len(bus.published) != 0 {
		t.Errorf("unexpected events published: %v", bus.names())
	}
}

func TestGenerateCreatesTaskAndPublishesEvent(t *testing.T) {
	store := newFakeStore()
	occupancy := &fakeOccupancy{facts: []domain.Fact{
		{ID: 1, RoomID: 101},
		{ID: 2, RoomID: 102},
	}}
	svc, bus := newTestService(store, occupancy)

	resp, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  7,
		TaskDate: "2026-09-01",
		TaskType: "in_house",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !resp.Created {
		t.Error("expected Created=true")
	}
	if resp.Task == nil || resp.Task.RoomCount != 2 {
		t.Fatalf("expected task with 2 rooms, got %+v", resp.Task)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %v", bus.names())
	}
	created, ok := bus.published[0].(events.TaskCreated)
	if !ok {
		t.Fatalf("expected TaskCreated event, got %T", bus.published[0])
	}
	if created.HotelID != 7 || created.RoomCount != 2 || created.TaskType != "in_house" {
		t.Errorf("unexpected event payload: %+v", created)
	}
}

func TestGenerateLosingRaceReportsExistingTask(t *testing.T) {
	store := newFakeStore()
	store.countResult = 3
	taskDate := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	winner := &repository.Task{
		ID:       uuid.New(),
		HotelID:  7,
		TaskDate: taskDate,
		TaskType: string(domain.TaskTypeArrival),
		Status:   string(domain.TaskStatusPending),
	}
	store.tasks[winner.ID] = winner
	store.createTask = winner
	store.createFresh = false
	occupancy := &fakeOccupancy{facts: []domain.Fact{{ID: 9, RoomID: 301}}}
	svc, bus := newTestService(store, occupancy)

	resp, err := svc.Generate(context.Background(), transport.GenerateTaskRequest{
		HotelID:  7,
		TaskDate: "2026-09-01",
		TaskType: "arrival",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.Created {
		t.Error("expected Created=false when another writer won the insert")
	}
	if resp.Task == nil || resp.Task.RoomCount != 3 {
		t.Errorf("expected winner's task with 3 rooms, got %+v", resp.Task)
	}
	if len(bus.published) != 0 {
		t.Errorf("losing writer must not publish events, got %v", bus.names())
	}
}

func TestGenerateDailyRunsAllTypesInOrder(t *testing.T) {
	store := newFakeStore()
	occupancy := &fakeOccupancy{}
	svc, _ := newTestService(store, occupancy)

	resp, err := svc.GenerateDaily(context.Background(), transport.GenerateDailyRequest{
		HotelID:  7,
		TaskDate: "2026-09-01",
	})
	if err != nil {
		t.Fatalf("GenerateDaily: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	if occupancy.calls != 3 {
		t.Errorf("expected occupancy consulted 3 times, got %d", occupancy.calls)
	}
}

type lifecycleStore struct {
	*fakeStore
	detail *repository.TaskDetail
}

func (s *lifecycleStore) CompleteDetail(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ *string) (*repository.TaskDetail, error) {
	s.detail.Status = string(domain.DetailStatusCompleted)
	return s.detail, nil
}

func (s *lifecycleStore) MarkDND(_ context.Context, _ uuid.UUID, _ uuid.UUID, _ *string) (*repository.TaskDetail, error) {
	s.detail.Status = string(domain.DetailStatusDNDPending)
	s.detail.DNDCount++
	return s.detail, nil
}

func newLifecycleStore(taskStatus string) (*lifecycleStore, *repository.Task, *repository.TaskDetail) {
	base := newFakeStore()
	task := &repository.Task{
		ID:       uuid.New(),
		HotelID:  7,
		TaskDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		TaskType: string(domain.TaskTypeDeparture),
		Status:   taskStatus,
	}
	base.addTask(task)
	detail := &repository.TaskDetail{
		ID:     uuid.New(),
		TaskID: task.ID,
		RoomID: 404,
		Status: string(domain.DetailStatusPending),
	}
	base.details[detail.ID] = detail
	return &lifecycleStore{fakeStore: base, detail: detail}, task, detail
}

func TestCompleteDetailPublishesDetailEvent(t *testing.T) {
	store, _, detail := newLifecycleStore(string(domain.TaskStatusInProgress))
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))
	actor := uuid.New()

	resp, err := svc.CompleteDetail(context.Background(), detail.ID, actor, transport.CompleteDetailRequest{})
	if err != nil {
		t.Fatalf("CompleteDetail: %v", err)
	}

	if resp.Status != string(domain.DetailStatusCompleted) {
		t.Errorf("expected completed status, got %s", resp.Status)
	}
	names := bus.names()
	if len(names) != 1 || names[0] != "tasks.detail.completed" {
		t.Fatalf("expected only the detail event, got %v", names)
	}
}

func TestCompleteLastDetailPublishesTaskCompleted(t *testing.T) {
	store, _, detail := newLifecycleStore(string(domain.TaskStatusCompleted))
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))

	if _, err := svc.CompleteDetail(context.Background(), detail.ID, uuid.New(), transport.CompleteDetailRequest{}); err != nil {
		t.Fatalf("CompleteDetail: %v", err)
	}

	names := bus.names()
	if len(names) != 2 || names[1] != "tasks.task.completed" {
		t.Fatalf("expected detail and task events, got %v", names)
	}
}

func TestMarkDNDPublishesCheckCount(t *testing.T) {
	store, task, detail := newLifecycleStore(string(domain.TaskStatusInProgress))
	detail.DNDCount = 2
	bus := &fakeBus{}
	svc := New(store, bus, logger.New("test"))

	resp, err := svc.MarkDND(context.Background(), detail.ID, uuid.New(), transport.MarkDNDRequest{})
	if err != nil {
		t.Fatalf("MarkDND: %v", err)
	}

	if resp.DNDCount != 3 {
		t.Errorf("expected dnd count 3, got %d", resp.DNDCount)
	}
	if !resp.MinChecksMet {
		t.Error("expected min checks met at third check")
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %v", bus.names())
	}
	evt, ok := bus.published[0].(events.TaskDetailDNDMarked)
	if !ok {
		t.Fatalf("expected TaskDetailDNDMarked, got %T", bus.published[0])
	}
	if evt.HotelID != task.HotelID || evt.DNDCount != 3 || evt.MinChecks != domain.MinDNDChecks {
		t.Errorf("unexpected event payload: %+v", evt)
	}
	if !evt.ThresholdCrossed() {
		t.Error("third check should cross the notification threshold")
	}
}

func TestListPendingBoardCombinesOpenStatusesWithCountdown(t *testing.T) {
	store := newFakeStore()
	scheduled := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	store.boardDetails = []repository.DetailWithType{
		{TaskDetail: repository.TaskDetail{ID: uuid.New(), RoomID: 201, Status: string(domain.DetailStatusPending), ScheduledAt: &scheduled}, TaskType: "departure"},
		{TaskDetail: repository.TaskDetail{ID: uuid.New(), RoomID: 202, Status: string(domain.DetailStatusDNDPending), DNDCount: 1}, TaskType: "in_house"},
	}
	svc, _ := newTestService(store, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 13, 50, 0, 0, time.UTC) }

	items, err := svc.ListPendingBoard(context.Background(), 7, scheduled)
	if err != nil {
		t.Fatalf("ListPendingBoard: %v", err)
	}

	if len(store.boardStatuses) != 2 {
		t.Fatalf("expected pending and dnd_pending queried, got %v", store.boardStatuses)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
	if items[0].Countdown == nil || !items[0].Countdown.Urgent {
		t.Errorf("scheduled room should carry an urgent countdown, got %+v", items[0].Countdown)
	}
	if items[1].Countdown != nil {
		t.Error("unscheduled room must not carry a countdown")
	}
}

func TestListDNDBoardAttachesCheckHistory(t *testing.T) {
	store := newFakeStore()
	detailID := uuid.New()
	store.dndDetails = []repository.DetailWithType{
		{TaskDetail: repository.TaskDetail{ID: detailID, RoomID: 301, Status: string(domain.DetailStatusCompleted), DNDCount: 2}, TaskType: "in_house"},
	}
	store.dndChecks = map[uuid.UUID][]repository.DNDCheck{
		detailID: {
			{ID: uuid.New(), DetailID: detailID, CheckedBy: uuid.New()},
			{ID: uuid.New(), DetailID: detailID, CheckedBy: uuid.New()},
		},
	}
	svc, _ := newTestService(store, nil)

	items, err := svc.ListDNDBoard(context.Background(), 7, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListDNDBoard: %v", err)
	}

	if len(items) != 1 || len(items[0].Checks) != 2 {
		t.Fatalf("expected 1 row with 2 checks, got %+v", items)
	}
	if items[0].Status != string(domain.DetailStatusCompleted) {
		t.Error("completed rooms with prior checks belong on the dnd board")
	}
}

func TestSummaryRoundsCompletionPercent(t *testing.T) {
	store := newFakeStore()
	store.summaries = []repository.TypeSummary{
		{TaskID: uuid.New(), TaskType: "in_house", Status: "in_progress", TotalRooms: 3, Completed: 2, Pending: 1},
		{TaskID: uuid.New(), TaskType: "departure", Status: "pending", TotalRooms: 3, Completed: 1, Pending: 2},
	}
	svc, _ := newTestService(store, nil)

	resp, err := svc.Summary(context.Background(), 7, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if resp.TotalRooms != 6 || resp.Completed != 3 {
		t.Errorf("expected 3/6 overall, got %d/%d", resp.Completed, resp.TotalRooms)
	}
	if resp.CompletionPercent != 50.0 {
		t.Errorf("expected overall 50.0, got %v", resp.CompletionPercent)
	}
	if resp.Types[0].CompletionPercent != 66.7 {
		t.Errorf("expected 66.7 for in_house, got %v", resp.Types[0].CompletionPercent)
	}
}

func TestReconcileFactsReportsCounts(t *testing.T) {
	store := newFakeStore()
	store.reconcileResult = repository.ReconcileResult{
		PreservedCompleted: 2,
		DeletedDetails:     3,
		DeletedEmptyTasks:  1,
	}
	svc, _ := newTestService(store, nil)

	result, err := svc.ReconcileFacts(context.Background(), []int64{11, 12, 13})
	if err != nil {
		t.Fatalf("ReconcileFacts: %v", err)
	}

	if len(store.reconcileFactIDs) != 3 {
		t.Fatalf("expected 3 fact IDs passed to the store, got %v", store.reconcileFactIDs)
	}
	if result.PreservedCompleted != 2 || result.DeletedDetails != 3 || result.DeletedEmptyTasks != 1 {
		t.Errorf("unexpected reconcile result: %+v", result)
	}
}

func TestCountdownRequiresSchedule(t *testing.T) {
	store := newFakeStore()
	detail := &repository.TaskDetail{ID: uuid.New(), RoomID: 101, Status: string(domain.DetailStatusPending)}
	store.details[detail.ID] = detail
	svc, _ := newTestService(store, nil)

	_, err := svc.Countdown(context.Background(), detail.ID)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request error, got %v", err)
	}
}

func TestCountdownUsesInjectedClock(t *testing.T) {
	store := newFakeStore()
	scheduled := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	detail := &repository.TaskDetail{
		ID:          uuid.New(),
		RoomID:      101,
		Status:      string(domain.DetailStatusPending),
		ScheduledAt: &scheduled,
	}
	store.details[detail.ID] = detail
	svc, _ := newTestService(store, nil)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 13, 50, 0, 0, time.UTC) }

	resp, err := svc.Countdown(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("Countdown: %v", err)
	}

	if resp.Countdown.Minutes != 10 || resp.Countdown.Hours != 0 {
		t.Errorf("expected 10 minutes remaining, got %+v", resp.Countdown)
	}
	if !resp.Countdown.Urgent {
		t.Error("expected urgent under fifteen minutes")
	}
}
