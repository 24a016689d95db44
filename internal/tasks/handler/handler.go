package handler

import (
	"context"
	"net/http"
	"time"

	"hotelops_backend/internal/tasks/service"
	"hotelops_backend/internal/tasks/transport"
	"hotelops_backend/platform/httpkit"
	"hotelops_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	dateFormat = "2006-01-02"
)

// Handler handles HTTP requests for tasks and task details
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new tasks handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterTaskRoutes registers the task aggregate routes
func (h *Handler) RegisterTaskRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate", h.Generate)
	rg.POST("/generate-daily", h.GenerateDaily)
	rg.GET("", h.List)
	rg.GET("/summary", h.Summary)
	rg.GET("/pending", h.boardHandler(h.svc.ListPendingBoard))
	rg.GET("/completed", h.boardHandler(h.svc.ListCompletedBoard))
	rg.GET("/dnd", h.boardHandler(h.svc.ListDNDBoard))
}

// RegisterDetailRoutes registers the task detail routes
func (h *Handler) RegisterDetailRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/complete", h.CompleteDetail)
	rg.POST("/:id/dnd", h.MarkDND)
	rg.GET("/:id/history", h.DetailHistory)
	rg.GET("/:id/countdown", h.Countdown)
}

// Generate handles POST /api/v1/tasks/generate
func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	if result.Created {
		httpkit.Created(c, result)
		return
	}
	httpkit.OK(c, result)
}

// GenerateDaily handles POST /api/v1/tasks/generate-daily
func (h *Handler) GenerateDaily(c *gin.Context) {
	var req transport.GenerateDailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.GenerateDaily(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// List handles GET /api/v1/tasks
func (h *Handler) List(c *gin.Context) {
	hotelID, date, ok := h.bindBoardQuery(c)
	if !ok {
		return
	}

	result, err := h.svc.ListTasks(c.Request.Context(), hotelID, date)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Summary handles GET /api/v1/tasks/summary
func (h *Handler) Summary(c *gin.Context) {
	hotelID, date, ok := h.bindBoardQuery(c)
	if !ok {
		return
	}

	result, err := h.svc.Summary(c.Request.Context(), hotelID, date)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// boardHandler builds the handler for one board endpoint.
func (h *Handler) boardHandler(list func(context.Context, int64, time.Time) ([]transport.BoardDetailResponse, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		hotelID, date, ok := h.bindBoardQuery(c)
		if !ok {
			return
		}

		result, err := list(c.Request.Context(), hotelID, date)
		if httpkit.HandleError(c, err) {
			return
		}

		httpkit.OK(c, result)
	}
}

// CompleteDetail handles POST /api/v1/task-details/:id/complete
func (h *Handler) CompleteDetail(c *gin.Context) {
	detailID, identity, req, ok := h.bindLifecycleRequest(c)
	if !ok {
		return
	}

	result, err := h.svc.CompleteDetail(c.Request.Context(), detailID, identity.UserID(), transport.CompleteDetailRequest{Note: req.Note})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// MarkDND handles POST /api/v1/task-details/:id/dnd
func (h *Handler) MarkDND(c *gin.Context) {
	detailID, identity, req, ok := h.bindLifecycleRequest(c)
	if !ok {
		return
	}

	result, err := h.svc.MarkDND(c.Request.Context(), detailID, identity.UserID(), transport.MarkDNDRequest{Note: req.Note})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// DetailHistory handles GET /api/v1/task-details/:id/history
func (h *Handler) DetailHistory(c *gin.Context) {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.DetailHistory(c.Request.Context(), detailID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Countdown handles GET /api/v1/task-details/:id/countdown
func (h *Handler) Countdown(c *gin.Context) {
	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Countdown(c.Request.Context(), detailID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) bindBoardQuery(c *gin.Context) (int64, time.Time, bool) {
	var query transport.BoardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return 0, time.Time{}, false
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return 0, time.Time{}, false
	}

	date, err := time.Parse(dateFormat, query.Date)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD", nil)
		return 0, time.Time{}, false
	}
	return query.HotelID, date, true
}

// lifecycleRequest is the shared body shape of complete and dnd requests.
type lifecycleRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

func (h *Handler) bindLifecycleRequest(c *gin.Context) (uuid.UUID, httpkit.Identity, lifecycleRequest, bool) {
	var req lifecycleRequest

	detailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.UUID{}, nil, req, false
	}

	// The body is optional: both actions are valid without a note.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return uuid.UUID{}, nil, req, false
		}
		if err := h.val.Struct(req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
			return uuid.UUID{}, nil, req, false
		}
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return uuid.UUID{}, nil, req, false
	}
	return detailID, identity, req, true
}
