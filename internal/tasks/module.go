// Package tasks provides the task generation and lifecycle domain module.
package tasks

import (
	"hotelops_backend/internal/events"
	apphttp "hotelops_backend/internal/http"
	"hotelops_backend/internal/tasks/handler"
	"hotelops_backend/internal/tasks/repository"
	"hotelops_backend/internal/tasks/service"
	"hotelops_backend/platform/logger"
	"hotelops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the tasks domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new tasks module with all dependencies wired. The
// occupancy reader is attached afterwards via Service.SetOccupancyReader
// because the occupancy module depends on this one as well.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "tasks"
}

// RegisterRoutes registers the module's routes under /api/v1
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterTaskRoutes(ctx.Protected.Group("/tasks"))
	m.handler.RegisterDetailRoutes(ctx.Protected.Group("/task-details"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
