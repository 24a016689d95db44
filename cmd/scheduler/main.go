package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hotelops_backend/internal/adapters"
	"hotelops_backend/internal/events"
	"hotelops_backend/internal/notification"
	occupancyrepo "hotelops_backend/internal/occupancy/repository"
	occupancyservice "hotelops_backend/internal/occupancy/service"
	"hotelops_backend/internal/scheduler"
	tasksrepo "hotelops_backend/internal/tasks/repository"
	tasksservice "hotelops_backend/internal/tasks/service"
	"hotelops_backend/platform/config"
	"hotelops_backend/platform/db"
	"hotelops_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	// Notification delivery happens worker-side, so the outbox handlers must
	// be registered on this process's bus.
	notificationModule := notification.New(pool, log)
	notificationModule.RegisterHandlers(eventBus)

	// Worker-side task generation wiring (no HTTP handlers required).
	tasksSvc := tasksservice.New(tasksrepo.New(pool), eventBus, log)
	occupancySvc := occupancyservice.New(occupancyrepo.New(pool), eventBus, log)
	tasksSvc.SetOccupancyReader(adapters.NewOccupancyFactsAdapter(occupancySvc))
	occupancySvc.SetTaskReconciler(adapters.NewTasksReconcilerAdapter(tasksSvc))

	worker, err := scheduler.NewWorker(cfg, tasksSvc, eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	outboxDispatcher, err := scheduler.NewNotificationOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}
	defer func() { _ = outboxDispatcher.Close() }()

	generationClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = generationClient.Close() }()

	generationDispatcher := scheduler.NewDailyGenerationDispatcher(cfg, generationClient, occupancySvc, log)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		outboxDispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		generationDispatcher.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping scheduler")
	wg.Wait()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
