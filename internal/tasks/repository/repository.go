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
	"github.com/jackc/pgx/v5/pgxpool"
)

// Task represents the task aggregate database model. Status and completed_at
// are derived from detail statuses and only ever written by the rollup.
type Task struct {
	ID          uuid.UUID  `db:"id"`
	HotelID     int64      `db:"hotel_id"`
	TaskDate    time.Time  `db:"task_date"`
	TaskType    string     `db:"task_type"`
	Status      string     `db:"status"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// TaskDetail represents one room's inspection within a task.
type TaskDetail struct {
	ID             uuid.UUID  `db:"id"`
	TaskID         uuid.UUID  `db:"task_id"`
	RoomID         int64      `db:"room_id"`
	SourceRecordID *int64     `db:"source_record_id"`
	Status         string     `db:"status"`
	DNDCount       int        `db:"dnd_count"`
	LastDNDAt      *time.Time `db:"last_dnd_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	PriorityRank   *int       `db:"priority_rank"`
	ScheduledAt    *time.Time `db:"scheduled_at"`
	Notes          *string    `db:"notes"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// DNDCheck records one do-not-disturb encounter on a detail.
type DNDCheck struct {
	ID        uuid.UUID `db:"id"`
	DetailID  uuid.UUID `db:"detail_id"`
	CheckedBy uuid.UUID `db:"checked_by"`
	Note      *string   `db:"note"`
	CheckedAt time.Time `db:"checked_at"`
}

// StatusChangeLog records a detail status transition for the audit trail.
type StatusChangeLog struct {
	ID         uuid.UUID `db:"id"`
	DetailID   uuid.UUID `db:"detail_id"`
	FromStatus string    `db:"from_status"`
	ToStatus   string    `db:"to_status"`
	ChangedBy  uuid.UUID `db:"changed_by"`
	Note       *string   `db:"note"`
	ChangedAt  time.Time `db:"changed_at"`
}

// Repository provides database operations for tasks and their details.
type Repository struct {
	pool *pgxpool.Pool
}

const (
	taskNotFoundMsg   = "task not found"
	detailNotFoundMsg = "task detail not found"
)

// New creates a new tasks repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, hotel_id, task_date, task_type, status, completed_at, created_at, updated_at`

const detailColumns = `id, task_id, room_id, source_record_id, status, dnd_count,
	last_dnd_at, completed_at, priority_rank, scheduled_at, notes, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.HotelID, &t.TaskDate, &t.TaskType, &t.Status,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanDetail(row pgx.Row) (*TaskDetail, error) {
	var d TaskDetail
	err := row.Scan(
		&d.ID, &d.TaskID, &d.RoomID, &d.SourceRecordID, &d.Status, &d.DNDCount,
		&d.LastDNDAt, &d.CompletedAt, &d.PriorityRank, &d.ScheduledAt, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetTaskByKey retrieves a task by its natural key. Returns (nil, nil) when no
// task exists for the key, which generation treats as "not yet generated".
func (r *Repository) GetTaskByKey(ctx context.Context, hotelID int64, taskDate time.Time, taskType domain.TaskType) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE hotel_id = $1 AND task_date = $2 AND task_type = $3`

	task, err := scanTask(r.pool.QueryRow(ctx, query, hotelID, taskDate, string(taskType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task by key: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(taskNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// CountDetails returns the number of details on a task.
func (r *Repository) CountDetails(ctx context.Context, taskID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM task_details WHERE task_id = $1`, taskID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count task details: %w", err)
	}
	return count, nil
}

// CreateTaskWithDetails inserts a task and its detail rows in one transaction.
// The unique key on (hotel_id, task_date, task_type) makes generation
// idempotent under races: the loser of a concurrent insert observes the
// conflict, reads the winner's row and reports created = false without
// touching any details.
func (r *Repository) CreateTaskWithDetails(
	ctx context.Context,
	hotelID int64,
	taskDate time.Time,
	taskType domain.TaskType,
	seeds []domain.DetailSeed,
) (*Task, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin generation transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	insertTask := `
		INSERT INTO tasks (id, hotel_id, task_date, task_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (hotel_id, task_date, task_type) DO NOTHING
		RETURNING ` + taskColumns

	task, err := scanTask(tx.QueryRow(ctx, insertTask,
		uuid.New(), hotelID, taskDate, string(taskType), string(domain.TaskStatusPending), now,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race. The winner's task is authoritative.
			existing, readErr := r.GetTaskByKey(ctx, hotelID, taskDate, taskType)
			if readErr != nil {
				return nil, false, readErr
			}
			if existing == nil {
				return nil, false, apperr.Internal("task vanished after insert conflict")
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to insert task: %w", err)
	}

	insertDetail := `
		INSERT INTO task_details (
			id, task_id, room_id, source_record_id, status,
			priority_rank, scheduled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	for _, seed := range seeds {
		_, err := tx.Exec(ctx, insertDetail,
			uuid.New(), task.ID, seed.RoomID, seed.SourceRecordID,
			string(domain.DetailStatusPending), seed.PriorityRank, seed.ScheduledAt, now,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert task detail: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit generation: %w", err)
	}
	return task, true, nil
}
