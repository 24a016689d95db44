// Package adapters contains thin anti-corruption adapters that let the tasks
// and occupancy modules collaborate through their own interfaces instead of
// importing each other.
package adapters

import (
	"context"
	"time"

	occupancyrepo "hotelops_backend/internal/occupancy/repository"
	occupancyservice "hotelops_backend/internal/occupancy/service"
	"hotelops_backend/internal/tasks/domain"
	"hotelops_backend/platform/apperr"
)

// OccupancyFactsAdapter adapts the occupancy service to the fact source the
// task generator expects.
type OccupancyFactsAdapter struct {
	svc *occupancyservice.Service
}

func NewOccupancyFactsAdapter(svc *occupancyservice.Service) *OccupancyFactsAdapter {
	return &OccupancyFactsAdapter{svc: svc}
}

func (a *OccupancyFactsAdapter) ListFactsForGeneration(ctx context.Context, hotelID int64, date time.Time, taskType domain.TaskType) ([]domain.Fact, error) {
	var (
		rows []occupancyrepo.Fact
		err  error
	)
	switch taskType {
	case domain.TaskTypeInHouse:
		rows, err = a.svc.ListInHouse(ctx, hotelID, date)
	case domain.TaskTypeArrival:
		rows, err = a.svc.ListArrivals(ctx, hotelID, date)
	case domain.TaskTypeDeparture:
		rows, err = a.svc.ListDepartures(ctx, hotelID, date)
	default:
		return nil, apperr.Validation("unknown task type")
	}
	if err != nil {
		return nil, err
	}

	facts := make([]domain.Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, domain.Fact{
			ID:          row.ID,
			RoomID:      row.RoomID,
			ArrivalAt:   row.ArrivalAt,
			DepartureAt: row.DepartureAt,
		})
	}
	return facts, nil
}
