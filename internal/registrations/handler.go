package registrations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// RegisterUserRequest is the body for POST /events/:id/registrations/user.
type RegisterUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// RegisterExternalRequest is the body for POST /events/:id/registrations/external.
type RegisterExternalRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterUser handles POST /events/:id/registrations/user.
func (h *Handler) RegisterUser(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reg, err := h.svc.RegisterUser(c.Request.Context(), eventID, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// RegisterExternal handles POST /events/:id/registrations/external.
func (h *Handler) RegisterExternal(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req RegisterExternalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reg, err := h.svc.RegisterExternal(c.Request.Context(), eventID, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// Checkin handles POST /registrations/:id/checkin.
func (h *Handler) Checkin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.svc.Checkin(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reg)
}

// Cancel handles DELETE /registrations/:id.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByEvent handles GET /events/:id/registrations.
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
