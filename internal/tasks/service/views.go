package service

import (
	"context"
	"math"
	"time"

	"hotelops_backend/internal/tasks/domain"
	"hotelops_backend/internal/tasks/repository"
	"hotelops_backend/internal/tasks/transport"

	"github.com/google/uuid"
)

func taskToResponse(task *repository.Task, roomCount int) transport.TaskResponse {
	return transport.TaskResponse{
		ID:          task.ID,
		HotelID:     task.HotelID,
		TaskDate:    task.TaskDate.Format(dateFormat),
		TaskType:    task.TaskType,
		Status:      task.Status,
		CompletedAt: task.CompletedAt,
		RoomCount:   roomCount,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func detailToResponse(detail *repository.TaskDetail) transport.DetailResponse {
	return transport.DetailResponse{
		ID:             detail.ID,
		TaskID:         detail.TaskID,
		RoomID:         detail.RoomID,
		SourceRecordID: detail.SourceRecordID,
		SourceDeleted:  detail.SourceRecordID == nil,
		Status:         detail.Status,
		DNDCount:       detail.DNDCount,
		MinChecksMet:   domain.MinChecksMet(detail.DNDCount),
		LastDNDAt:      detail.LastDNDAt,
		CompletedAt:    detail.CompletedAt,
		PriorityRank:   detail.PriorityRank,
		ScheduledAt:    detail.ScheduledAt,
		Notes:          detail.Notes,
		CreatedAt:      detail.CreatedAt,
		UpdatedAt:      detail.UpdatedAt,
	}
}

func checkToResponse(check repository.DNDCheck) transport.DNDCheckResponse {
	return transport.DNDCheckResponse{
		ID:        check.ID,
		CheckedBy: check.CheckedBy,
		Note:      check.Note,
		CheckedAt: check.CheckedAt,
	}
}

// ListTasks returns all tasks for a hotel and date with their room counts.
func (s *Service) ListTasks(ctx context.Context, hotelID int64, date time.Time) ([]transport.TaskResponse, error) {
	summaries, err := s.store.Summary(ctx, hotelID, date)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, hotelID, date)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int, len(summaries))
	for _, summary := range summaries {
		counts[summary.TaskID] = summary.TotalRooms
	}

	items := make([]transport.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskToResponse(&tasks[i], counts[tasks[i].ID]))
	}
	return items, nil
}

// ListPendingBoard returns the day's open rooms (pending and dnd_pending)
// across task types, ordered by priority rank with unranked rooms last.
// Scheduled rooms carry their live countdown.
func (s *Service) ListPendingBoard(ctx context.Context, hotelID int64, date time.Time) ([]transport.BoardDetailResponse, error) {
	details, err := s.store.ListDetailsByStatus(ctx, hotelID, date,
		[]domain.DetailStatus{domain.DetailStatusPending, domain.DetailStatusDNDPending})
	if err != nil {
		return nil, err
	}
	return s.boardItems(details, nil, true), nil
}

// ListCompletedBoard returns the day's finished rooms across task types.
func (s *Service) ListCompletedBoard(ctx context.Context, hotelID int64, date time.Time) ([]transport.BoardDetailResponse, error) {
	details, err := s.store.ListDetailsByStatus(ctx, hotelID, date,
		[]domain.DetailStatus{domain.DetailStatusCompleted})
	if err != nil {
		return nil, err
	}
	return s.boardItems(details, nil, false), nil
}

// ListDNDBoard returns every room with at least one DND check, including
// rooms completed after earlier checks, with their full check history.
func (s *Service) ListDNDBoard(ctx context.Context, hotelID int64, date time.Time) ([]transport.BoardDetailResponse, error) {
	details, err := s.store.ListDNDDetails(ctx, hotelID, date)
	if err != nil {
		return nil, err
	}

	var checksByDetail map[uuid.UUID][]repository.DNDCheck
	if len(details) > 0 {
		ids := make([]uuid.UUID, 0, len(details))
		for _, d := range details {
			ids = append(ids, d.ID)
		}
		if checksByDetail, err = s.store.ListDNDChecksBatch(ctx, ids); err != nil {
			return nil, err
		}
	}
	return s.boardItems(details, checksByDetail, false), nil
}

func (s *Service) boardItems(details []repository.DetailWithType, checksByDetail map[uuid.UUID][]repository.DNDCheck, withCountdown bool) []transport.BoardDetailResponse {
	now := s.now()
	items := make([]transport.BoardDetailResponse, 0, len(details))
	for i := range details {
		item := transport.BoardDetailResponse{
			DetailResponse: detailToResponse(&details[i].TaskDetail),
			TaskType:       details[i].TaskType,
		}
		if withCountdown && details[i].ScheduledAt != nil {
			countdown := domain.Countdown(*details[i].ScheduledAt, now)
			item.Countdown = &countdown
		}
		for _, check := range checksByDetail[details[i].ID] {
			item.Checks = append(item.Checks, checkToResponse(check))
		}
		items = append(items, item)
	}
	return items
}

// DetailHistory returns a detail with its status transitions and DND checks.
func (s *Service) DetailHistory(ctx context.Context, detailID uuid.UUID) (*transport.DetailHistoryResponse, error) {
	detail, err := s.store.GetDetail(ctx, detailID)
	if err != nil {
		return nil, err
	}
	logs, err := s.store.ListStatusLogs(ctx, detailID)
	if err != nil {
		return nil, err
	}
	checks, err := s.store.ListDNDChecks(ctx, detailID)
	if err != nil {
		return nil, err
	}

	resp := &transport.DetailHistoryResponse{
		Detail:        detailToResponse(detail),
		StatusChanges: make([]transport.StatusLogResponse, 0, len(logs)),
		DNDChecks:     make([]transport.DNDCheckResponse, 0, len(checks)),
	}
	for _, log := range logs {
		resp.StatusChanges = append(resp.StatusChanges, transport.StatusLogResponse{
			ID:         log.ID,
			FromStatus: log.FromStatus,
			ToStatus:   log.ToStatus,
			ChangedBy:  log.ChangedBy,
			Note:       log.Note,
			ChangedAt:  log.ChangedAt,
		})
	}
	for _, check := range checks {
		resp.DNDChecks = append(resp.DNDChecks, checkToResponse(check))
	}
	return resp, nil
}

// Summary returns the per-type progress overview for a hotel and date.
func (s *Service) Summary(ctx context.Context, hotelID int64, date time.Time) (*transport.SummaryResponse, error) {
	summaries, err := s.store.Summary(ctx, hotelID, date)
	if err != nil {
		return nil, err
	}

	resp := &transport.SummaryResponse{
		HotelID: hotelID,
		Date:    date.Format(dateFormat),
		Types:   make([]transport.TypeSummaryResponse, 0, len(summaries)),
	}
	for _, summary := range summaries {
		resp.Types = append(resp.Types, transport.TypeSummaryResponse{
			TaskType:          summary.TaskType,
			Status:            summary.Status,
			CompletedAt:       summary.CompletedAt,
			TotalRooms:        summary.TotalRooms,
			Completed:         summary.Completed,
			Pending:           summary.Pending,
			DNDPending:        summary.DNDPending,
			CompletionPercent: completionPercent(summary.Completed, summary.TotalRooms),
		})
		resp.TotalRooms += summary.TotalRooms
		resp.Completed += summary.Completed
	}
	resp.CompletionPercent = completionPercent(resp.Completed, resp.TotalRooms)
	return resp, nil
}

// completionPercent reports progress rounded to one decimal place.
func completionPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}
