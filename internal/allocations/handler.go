package allocations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// CreateRequest is the body for POST /allocations.
type CreateRequest struct {
	EventID      uuid.UUID `json:"event_id" binding:"required"`
	ResourceID   uuid.UUID `json:"resource_id" binding:"required"`
	QuantityUsed *int      `json:"quantity_used"`
}

// Handler handles allocation HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an allocations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /allocations.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), req.EventID, req.ResourceID, req.QuantityUsed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// Remove handles DELETE /allocations/:id.
func (h *Handler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid allocation id")
		return
	}
	if err := h.svc.Remove(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByEvent handles GET /events/:id/allocations.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.svc.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListByResource handles GET /resources/:id/allocations.
func (h *Handler) ListByResource(c *gin.Context) {
	resourceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	list, err := h.svc.ListByResource(c.Request.Context(), resourceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
