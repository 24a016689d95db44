package scheduler

import (
	"context"
	"fmt"

	"hotelops_backend/internal/events"
	tasksservice "hotelops_backend/internal/tasks/service"
	"hotelops_backend/internal/tasks/transport"
	"hotelops_backend/platform/config"
	"hotelops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	tasks  *tasksservice.Service
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, tasks *tasksservice.Service, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		tasks:  tasks,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskDailyGeneration, w.handleDailyGeneration)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

// handleDailyGeneration runs the full three-type generation for one hotel.
// Generation is idempotent, so a retried job cannot duplicate tasks.
func (w *Worker) handleDailyGeneration(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDailyGenerationPayload(task)
	if err != nil {
		return err
	}

	result, err := w.tasks.GenerateDaily(ctx, transport.GenerateDailyRequest{
		HotelID:  payload.HotelID,
		TaskDate: payload.TaskDate,
	})
	if err != nil {
		return err
	}

	created := 0
	for _, r := range result.Results {
		if r.Created {
			created++
		}
	}
	w.log.TaskEvent("scheduled_generation_done",
		"hotel_id", payload.HotelID,
		"task_date", payload.TaskDate,
		"created", created,
	)
	return nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
		HotelID:   payload.HotelID,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
