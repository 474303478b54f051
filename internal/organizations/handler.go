package organizations

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// CreateRequest is the body for POST /organizations.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateRequest is the body for PATCH /organizations/:id.
type UpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, logger: logger}
}

// Create handles POST /organizations.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org := &models.Organization{Name: req.Name, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		h.logger.Error("create organization failed", zap.Error(err))
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// List handles GET /organizations.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list organizations failed", zap.Error(err))
		response.Internal(c, "failed to list organizations")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /organizations/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get organization failed", zap.Error(err))
		response.Internal(c, "failed to load organization")
		return
	}
	if org == nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// Update handles PATCH /organizations/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	if org == nil {
		response.NotFound(c, "organization not found")
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Name, req.Description); err != nil {
		h.logger.Error("update organization failed", zap.Error(err))
		response.Internal(c, "failed to update organization")
		return
	}
	updated, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil || updated == nil {
		response.Internal(c, "failed to reload organization")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /organizations/:id. Cascades to the tenant's users,
// events and non-global resources.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	if org == nil {
		response.NotFound(c, "organization not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete organization failed", zap.Error(err), zap.String("organization_id", id.String()))
		response.Internal(c, "failed to delete organization")
		return
	}
	response.NoContent(c)
}
