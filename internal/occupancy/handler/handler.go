package handler

import (
	"net/http"
	"strconv"

	"hotelops_backend/internal/occupancy/service"
	"hotelops_backend/internal/occupancy/transport"
	"hotelops_backend/platform/httpkit"
	"hotelops_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for occupancy uploads
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new occupancy handler
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the occupancy routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/batches", h.CreateBatch)
	rg.GET("/batches", h.ListBatches)
	rg.GET("/batches/:id", h.GetBatch)
	rg.DELETE("/batches/:id", h.RetractBatch)
}

// CreateBatch handles POST /api/v1/occupancy/batches
func (h *Handler) CreateBatch(c *gin.Context) {
	var req transport.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.CreateBatch(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// ListBatches handles GET /api/v1/occupancy/batches
func (h *Handler) ListBatches(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Query("hotelId"), 10, 64)
	if err != nil || hotelID <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "hotelId is required", nil)
		return
	}

	result, err := h.svc.ListBatches(c.Request.Context(), hotelID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// GetBatch handles GET /api/v1/occupancy/batches/:id
func (h *Handler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetBatch(c.Request.Context(), batchID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// RetractBatch handles DELETE /api/v1/occupancy/batches/:id
func (h *Handler) RetractBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.RetractBatch(c.Request.Context(), batchID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
