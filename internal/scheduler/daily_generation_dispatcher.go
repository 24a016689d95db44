package scheduler

import (
	"context"
	"time"

	occupancyservice "hotelops_backend/internal/occupancy/service"
	"hotelops_backend/platform/config"
	"hotelops_backend/platform/logger"
)

const dateFormat = "2006-01-02"

// DailyGenerationDispatcher enqueues one generation job per hotel once a day
// at the configured hour. Hotels are discovered from occupancy data, so a
// hotel with no facts for the day simply gets no job.
type DailyGenerationDispatcher struct {
	scheduler GenerationScheduler
	occupancy *occupancyservice.Service
	hour      int
	log       *logger.Logger

	lastRunDate string
}

func NewDailyGenerationDispatcher(cfg config.TasksConfig, scheduler GenerationScheduler, occupancy *occupancyservice.Service, log *logger.Logger) *DailyGenerationDispatcher {
	return &DailyGenerationDispatcher{
		scheduler: scheduler,
		occupancy: occupancy,
		hour:      cfg.GetDailyGenerationHour(),
		log:       log,
	}
}

func (d *DailyGenerationDispatcher) Run(ctx context.Context) {
	if d == nil || d.scheduler == nil || d.occupancy == nil {
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		today := now.Format(dateFormat)
		if now.Hour() < d.hour || d.lastRunDate == today {
			continue
		}

		if err := d.dispatch(ctx, now, today); err != nil {
			d.log.Warn("daily generation dispatch failed", "error", err)
			continue
		}
		d.lastRunDate = today
	}
}

func (d *DailyGenerationDispatcher) dispatch(ctx context.Context, now time.Time, today string) error {
	hotelIDs, err := d.occupancy.ListHotelIDsWithFacts(ctx, now)
	if err != nil {
		return err
	}

	for _, hotelID := range hotelIDs {
		err := d.scheduler.ScheduleDailyGeneration(ctx, DailyGenerationPayload{
			HotelID:  hotelID,
			TaskDate: today,
		}, now)
		if err != nil {
			return err
		}
	}

	d.log.TaskEvent("daily_generation_dispatched",
		"task_date", today,
		"hotel_count", len(hotelIDs),
	)
	return nil
}
