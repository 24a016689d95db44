package repository

import (
	"context"
	"fmt"
	"time"

	"hotelops_backend/internal/tasks/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReconcileResult summarizes what a reconciliation pass did.
type ReconcileResult struct {
	PreservedCompleted int
	DeletedDetails     int
	DeletedEmptyTasks  int
}

// Reconcile reacts to the deletion of the given occupancy facts. Details whose
// work is completed are preserved with their source reference nulled out so
// the audit trail outlives the fact; unstarted and dnd_pending details are
// deleted together with their checks and logs. Tasks left without any details
// are removed entirely. Surviving tasks keep whatever status the last rollup
// gave them.
func (r *Repository) Reconcile(ctx context.Context, factIDs []int64) (ReconcileResult, error) {
	var result ReconcileResult
	if len(factIDs) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("failed to begin reconciliation transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, task_id, status FROM task_details
		WHERE source_record_id = ANY($1)
		FOR UPDATE`, factIDs)
	if err != nil {
		return result, fmt.Errorf("failed to select details for reconciliation: %w", err)
	}

	var preserveIDs, deleteIDs []uuid.UUID
	taskIDSet := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var detailID, taskID uuid.UUID
		var status string
		if err := rows.Scan(&detailID, &taskID, &status); err != nil {
			rows.Close()
			return result, fmt.Errorf("failed to scan detail for reconciliation: %w", err)
		}
		taskIDSet[taskID] = struct{}{}
		switch domain.ReconcileActionFor(domain.DetailStatus(status)) {
		case domain.ReconcilePreserve:
			preserveIDs = append(preserveIDs, detailID)
		case domain.ReconcileDelete:
			deleteIDs = append(deleteIDs, detailID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("failed to iterate details for reconciliation: %w", err)
	}

	if len(preserveIDs) > 0 {
		tag, err := tx.Exec(ctx, `
			UPDATE task_details
			SET source_record_id = NULL, updated_at = $2
			WHERE id = ANY($1)`,
			preserveIDs, time.Now(),
		)
		if err != nil {
			return result, fmt.Errorf("failed to detach completed details: %w", err)
		}
		result.PreservedCompleted = int(tag.RowsAffected())
	}

	if len(deleteIDs) > 0 {
		// dnd_checks and status_change_logs go with the detail via ON DELETE CASCADE.
		tag, err := tx.Exec(ctx, `DELETE FROM task_details WHERE id = ANY($1)`, deleteIDs)
		if err != nil {
			return result, fmt.Errorf("failed to delete reconciled details: %w", err)
		}
		result.DeletedDetails = int(tag.RowsAffected())
	}

	if len(taskIDSet) > 0 {
		taskIDs := make([]uuid.UUID, 0, len(taskIDSet))
		for id := range taskIDSet {
			taskIDs = append(taskIDs, id)
		}
		tag, err := tx.Exec(ctx, `
			DELETE FROM tasks t
			WHERE t.id = ANY($1)
			AND NOT EXISTS (SELECT 1 FROM task_details d WHERE d.task_id = t.id)`,
			taskIDs,
		)
		if err != nil {
			return result, fmt.Errorf("failed to delete empty tasks: %w", err)
		}
		result.DeletedEmptyTasks = int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("failed to commit reconciliation: %w", err)
	}
	return result, nil
}
