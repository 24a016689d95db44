package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelops_backend/internal/tasks/domain"
	"hotelops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DetailWithType is a detail row joined with its task's type, used by the
// per-status board queries.
type DetailWithType struct {
	TaskDetail
	TaskType string `db:"task_type"`
}

// TypeSummary aggregates one task's detail counts for the summary endpoint.
type TypeSummary struct {
	TaskID      uuid.UUID
	TaskType    string
	Status      string
	CompletedAt *time.Time
	TotalRooms  int
	Completed   int
	Pending     int
	DNDPending  int
}

// ListTasks retrieves all tasks for a hotel and date.
func (r *Repository) ListTasks(ctx context.Context, hotelID int64, taskDate time.Time) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE hotel_id = $1 AND task_date = $2
		ORDER BY task_type`

	rows, err := r.pool.Query(ctx, query, hotelID, taskDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var items []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		items = append(items, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return items, nil
}

// ListDetailsByStatus retrieves all details in the given statuses for a hotel
// and date across task types. Boards rely on the ordering: ranked rooms first
// in rank order, then unranked rooms by room number.
func (r *Repository) ListDetailsByStatus(ctx context.Context, hotelID int64, taskDate time.Time, statuses []domain.DetailStatus) ([]DetailWithType, error) {
	query := `
		SELECT d.id, d.task_id, d.room_id, d.source_record_id, d.status, d.dnd_count,
			d.last_dnd_at, d.completed_at, d.priority_rank, d.scheduled_at, d.notes,
			d.created_at, d.updated_at, t.task_type
		FROM task_details d
		JOIN tasks t ON t.id = d.task_id
		WHERE t.hotel_id = $1 AND t.task_date = $2 AND d.status = ANY($3)
		ORDER BY d.priority_rank ASC NULLS LAST, d.room_id ASC`

	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return r.listDetailRows(ctx, query, hotelID, taskDate, values)
}

// ListDNDDetails retrieves all details with at least one recorded DND check
// for a hotel and date, whatever their current status.
func (r *Repository) ListDNDDetails(ctx context.Context, hotelID int64, taskDate time.Time) ([]DetailWithType, error) {
	query := `
		SELECT d.id, d.task_id, d.room_id, d.source_record_id, d.status, d.dnd_count,
			d.last_dnd_at, d.completed_at, d.priority_rank, d.scheduled_at, d.notes,
			d.created_at, d.updated_at, t.task_type
		FROM task_details d
		JOIN tasks t ON t.id = d.task_id
		WHERE t.hotel_id = $1 AND t.task_date = $2 AND d.dnd_count > 0
		ORDER BY d.priority_rank ASC NULLS LAST, d.room_id ASC`

	return r.listDetailRows(ctx, query, hotelID, taskDate)
}

func (r *Repository) listDetailRows(ctx context.Context, query string, args ...any) ([]DetailWithType, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list details: %w", err)
	}
	defer rows.Close()

	var items []DetailWithType
	for rows.Next() {
		var d DetailWithType
		if err := rows.Scan(
			&d.ID, &d.TaskID, &d.RoomID, &d.SourceRecordID, &d.Status, &d.DNDCount,
			&d.LastDNDAt, &d.CompletedAt, &d.PriorityRank, &d.ScheduledAt, &d.Notes,
			&d.CreatedAt, &d.UpdatedAt, &d.TaskType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan detail: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate details: %w", err)
	}
	return items, nil
}

// GetDetail retrieves a detail by ID.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*TaskDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM task_details WHERE id = $1`

	detail, err := scanDetail(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(detailNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get task detail: %w", err)
	}
	return detail, nil
}

// ListStatusLogs retrieves a detail's status transitions, oldest first.
func (r *Repository) ListStatusLogs(ctx context.Context, detailID uuid.UUID) ([]StatusChangeLog, error) {
	query := `SELECT id, detail_id, from_status, to_status, changed_by, note, changed_at
		FROM status_change_logs
		WHERE detail_id = $1
		ORDER BY changed_at ASC`

	rows, err := r.pool.Query(ctx, query, detailID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status change logs: %w", err)
	}
	defer rows.Close()

	var items []StatusChangeLog
	for rows.Next() {
		var log StatusChangeLog
		if err := rows.Scan(
			&log.ID, &log.DetailID, &log.FromStatus, &log.ToStatus,
			&log.ChangedBy, &log.Note, &log.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan status change log: %w", err)
		}
		items = append(items, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status change logs: %w", err)
	}
	return items, nil
}

// ListDNDChecks retrieves a detail's DND checks, oldest first.
func (r *Repository) ListDNDChecks(ctx context.Context, detailID uuid.UUID) ([]DNDCheck, error) {
	query := `SELECT id, detail_id, checked_by, note, checked_at
		FROM dnd_checks
		WHERE detail_id = $1
		ORDER BY checked_at ASC`

	rows, err := r.pool.Query(ctx, query, detailID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dnd checks: %w", err)
	}
	defer rows.Close()

	var items []DNDCheck
	for rows.Next() {
		var check DNDCheck
		if err := rows.Scan(&check.ID, &check.DetailID, &check.CheckedBy, &check.Note, &check.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dnd check: %w", err)
		}
		items = append(items, check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dnd checks: %w", err)
	}
	return items, nil
}

// ListDNDChecksBatch retrieves checks for multiple details in one round trip.
func (r *Repository) ListDNDChecksBatch(ctx context.Context, detailIDs []uuid.UUID) (map[uuid.UUID][]DNDCheck, error) {
	result := make(map[uuid.UUID][]DNDCheck)
	if len(detailIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, detail_id, checked_by, note, checked_at
		FROM dnd_checks
		WHERE detail_id = ANY($1)
		ORDER BY checked_at ASC`

	rows, err := r.pool.Query(ctx, query, detailIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list dnd checks batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var check DNDCheck
		if err := rows.Scan(&check.ID, &check.DetailID, &check.CheckedBy, &check.Note, &check.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dnd check: %w", err)
		}
		result[check.DetailID] = append(result[check.DetailID], check)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dnd checks: %w", err)
	}
	return result, nil
}

// Summary aggregates per-type detail counts for a hotel and date.
func (r *Repository) Summary(ctx context.Context, hotelID int64, taskDate time.Time) ([]TypeSummary, error) {
	query := `
		SELECT t.id, t.task_type, t.status, t.completed_at,
			COUNT(d.id),
			COUNT(*) FILTER (WHERE d.status = 'completed'),
			COUNT(*) FILTER (WHERE d.status = 'pending'),
			COUNT(*) FILTER (WHERE d.status = 'dnd_pending')
		FROM tasks t
		LEFT JOIN task_details d ON d.task_id = t.id
		WHERE t.hotel_id = $1 AND t.task_date = $2
		GROUP BY t.id
		ORDER BY t.task_type`

	rows, err := r.pool.Query(ctx, query, hotelID, taskDate)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize tasks: %w", err)
	}
	defer rows.Close()

	var items []TypeSummary
	for rows.Next() {
		var s TypeSummary
		if err := rows.Scan(
			&s.TaskID, &s.TaskType, &s.Status, &s.CompletedAt,
			&s.TotalRooms, &s.Completed, &s.Pending, &s.DNDPending,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task summary: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task summaries: %w", err)
	}
	return items, nil
}
