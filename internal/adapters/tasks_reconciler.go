package adapters

import (
	"context"

	occupancyservice "hotelops_backend/internal/occupancy/service"
	tasksservice "hotelops_backend/internal/tasks/service"
)

// TasksReconcilerAdapter adapts the tasks service to the reconciler the
// occupancy module calls when an upload is retracted.
type TasksReconcilerAdapter struct {
	svc *tasksservice.Service
}

func NewTasksReconcilerAdapter(svc *tasksservice.Service) *TasksReconcilerAdapter {
	return &TasksReconcilerAdapter{svc: svc}
}

func (a *TasksReconcilerAdapter) ReconcileForFacts(ctx context.Context, factIDs []int64) (occupancyservice.ReconcileSummary, error) {
	result, err := a.svc.ReconcileFacts(ctx, factIDs)
	if err != nil {
		return occupancyservice.ReconcileSummary{}, err
	}
	return occupancyservice.ReconcileSummary{
		PreservedCompleted: result.PreservedCompleted,
		DeletedDetails:     result.DeletedDetails,
		DeletedEmptyTasks:  result.DeletedEmptyTasks,
	}, nil
}
