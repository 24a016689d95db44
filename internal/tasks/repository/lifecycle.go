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

// CompleteDetail marks a detail completed. The detail row is locked for the
// duration of the transaction so concurrent completions and DND marks
// serialize; whichever loses sees the new status and fails the transition
// check.
func (r *Repository) CompleteDetail(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, note *string) (*TaskDetail, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	detail, err := lockDetail(ctx, tx, detailID)
	if err != nil {
		return nil, err
	}

	from := domain.DetailStatus(detail.Status)
	if !domain.CanTransition(from, domain.DetailStatusCompleted) {
		return nil, apperr.Conflict("task detail is already completed")
	}

	now := time.Now()
	updated, err := scanDetail(tx.QueryRow(ctx, `
		UPDATE task_details
		SET status = $2, completed_at = $3, notes = COALESCE($4, notes), updated_at = $3
		WHERE id = $1
		RETURNING `+detailColumns,
		detailID, string(domain.DetailStatusCompleted), now, note,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to complete task detail: %w", err)
	}

	if err := insertStatusLog(ctx, tx, detailID, from, domain.DetailStatusCompleted, actorID, note, now); err != nil {
		return nil, err
	}
	if err := r.rollupTx(ctx, tx, detail.TaskID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}
	return updated, nil
}

// MarkDND records a do-not-disturb encounter: the check counter increments
// without bound, a check row is appended and the detail lands in dnd_pending
// whether it came from pending or was already there.
func (r *Repository) MarkDND(ctx context.Context, detailID uuid.UUID, actorID uuid.UUID, note *string) (*TaskDetail, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin dnd transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	detail, err := lockDetail(ctx, tx, detailID)
	if err != nil {
		return nil, err
	}

	from := domain.DetailStatus(detail.Status)
	if !domain.CanTransition(from, domain.DetailStatusDNDPending) {
		return nil, apperr.Conflict("completed task detail cannot be marked do-not-disturb")
	}

	now := time.Now()
	updated, err := scanDetail(tx.QueryRow(ctx, `
		UPDATE task_details
		SET status = $2, dnd_count = dnd_count + 1, last_dnd_at = $3, updated_at = $3
		WHERE id = $1
		RETURNING `+detailColumns,
		detailID, string(domain.DetailStatusDNDPending), now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to mark task detail dnd: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO dnd_checks (id, detail_id, checked_by, note, checked_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), detailID, actorID, note, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dnd check: %w", err)
	}

	if err := insertStatusLog(ctx, tx, detailID, from, domain.DetailStatusDNDPending, actorID, note, now); err != nil {
		return nil, err
	}
	if err := r.rollupTx(ctx, tx, detail.TaskID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit dnd mark: %w", err)
	}
	return updated, nil
}

func lockDetail(ctx context.Context, tx pgx.Tx, detailID uuid.UUID) (*TaskDetail, error) {
	detail, err := scanDetail(tx.QueryRow(ctx,
		`SELECT `+detailColumns+` FROM task_details WHERE id = $1 FOR UPDATE`, detailID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(detailNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to lock task detail: %w", err)
	}
	return detail, nil
}

func insertStatusLog(ctx context.Context, tx pgx.Tx, detailID uuid.UUID, from, to domain.DetailStatus, actorID uuid.UUID, note *string, at time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO status_change_logs (id, detail_id, from_status, to_status, changed_by, note, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), detailID, string(from), string(to), actorID, note, at,
	)
	if err != nil {
		return fmt.Errorf("failed to insert status change log: %w", err)
	}
	return nil
}

// rollupTx rederives the aggregate status from the detail statuses inside the
// caller's transaction. The task row is locked before the statuses are read
// so concurrent rollups of sibling details serialize and each recomputation
// sees every previously committed detail. completed_at is stamped the first
// time the task reaches completed and kept on any later recomputation.
func (r *Repository) rollupTx(ctx context.Context, tx pgx.Tx, taskID uuid.UUID, at time.Time) error {
	if _, err := tx.Exec(ctx, `SELECT id FROM tasks WHERE id = $1 FOR UPDATE`, taskID); err != nil {
		return fmt.Errorf("failed to lock task for rollup: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT status FROM task_details WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("failed to read detail statuses: %w", err)
	}
	defer rows.Close()

	var statuses []domain.DetailStatus
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return fmt.Errorf("failed to scan detail status: %w", err)
		}
		statuses = append(statuses, domain.DetailStatus(s))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate detail statuses: %w", err)
	}

	status := domain.Rollup(statuses)
	_, err = tx.Exec(ctx, `
		UPDATE tasks
		SET status = $2,
			completed_at = CASE
				WHEN $2 = 'completed' THEN COALESCE(completed_at, $3)
				ELSE completed_at
			END,
			updated_at = $3
		WHERE id = $1`,
		taskID, string(status), at,
	)
	if err != nil {
		return fmt.Errorf("failed to roll up task status: %w", err)
	}
	return nil
}
