// Package occupancy provides the occupancy upload domain module.
package occupancy

import (
	"hotelops_backend/internal/events"
	apphttp "hotelops_backend/internal/http"
	"hotelops_backend/internal/occupancy/handler"
	"hotelops_backend/internal/occupancy/repository"
	"hotelops_backend/internal/occupancy/service"
	"hotelops_backend/platform/logger"
	"hotelops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the occupancy domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new occupancy module with all dependencies wired. The
// task reconciler is attached afterwards via Service.SetTaskReconciler.
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
	return "occupancy"
}

// RegisterRoutes registers the module's routes under /api/v1/occupancy
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	occupancy := ctx.Protected.Group("/occupancy")
	m.handler.RegisterRoutes(occupancy)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
