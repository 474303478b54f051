package resources

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/organizations"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// CreateRequest is the body for POST /resources.
type CreateRequest struct {
	Name               string              `json:"name" binding:"required"`
	Description        string              `json:"description"`
	Type               models.ResourceType `json:"type" binding:"required"`
	OrganizationID     *uuid.UUID          `json:"organization_id"`
	IsGlobal           bool                `json:"is_global"`
	MaxConcurrentUsage *int                `json:"max_concurrent_usage"`
	AvailableQuantity  *int                `json:"available_quantity"`
}

// UpdateRequest is the body for PATCH /resources/:id.
type UpdateRequest struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	MaxConcurrentUsage *int   `json:"max_concurrent_usage"`
	AvailableQuantity  *int   `json:"available_quantity"`
}

// Handler handles resource HTTP endpoints.
type Handler struct {
	repo    *Repository
	orgRepo *organizations.Repository
	logger  *zap.Logger
}

// NewHandler creates a resources handler.
func NewHandler(repo *Repository, orgRepo *organizations.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, orgRepo: orgRepo, logger: logger}
}

// Create handles POST /resources. Global resources carry no organization;
// non-global ones must reference an existing organization.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	orgID := req.OrganizationID
	if req.IsGlobal {
		orgID = nil
	}
	res := &models.Resource{
		Name:               req.Name,
		Description:        req.Description,
		Type:               req.Type,
		OrganizationID:     orgID,
		IsGlobal:           req.IsGlobal,
		MaxConcurrentUsage: req.MaxConcurrentUsage,
		AvailableQuantity:  req.AvailableQuantity,
	}
	if err := Validate(res); err != nil {
		response.Error(c, err)
		return
	}
	if res.OrganizationID != nil {
		org, err := h.orgRepo.GetByID(c.Request.Context(), *res.OrganizationID)
		if err != nil {
			response.Internal(c, "failed to load organization")
			return
		}
		if org == nil {
			response.NotFound(c, "organization not found")
			return
		}
	}
	if err := h.repo.Create(c.Request.Context(), res); err != nil {
		h.logger.Error("create resource failed", zap.Error(err), zap.String("name", req.Name))
		response.Internal(c, "failed to create resource")
		return
	}
	response.Created(c, res)
}

// List handles GET /resources with optional ?organization_id= filter; the
// filter returns the organization's resources plus globals.
func (h *Handler) List(c *gin.Context) {
	var orgID *uuid.UUID
	if s := c.Query("organization_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid organization_id")
			return
		}
		orgID = &id
	}
	list, err := h.repo.List(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list resources failed", zap.Error(err))
		response.Internal(c, "failed to list resources")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /resources/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load resource")
		return
	}
	if res == nil {
		response.NotFound(c, "resource not found")
		return
	}
	response.OK(c, res)
}

// Update handles PATCH /resources/:id. Type and scope are immutable; the
// merged row is re-validated before writing.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load resource")
		return
	}
	if res == nil {
		response.NotFound(c, "resource not found")
		return
	}

	if req.Name != "" {
		res.Name = req.Name
	}
	if req.Description != "" {
		res.Description = req.Description
	}
	if req.MaxConcurrentUsage != nil {
		res.MaxConcurrentUsage = req.MaxConcurrentUsage
	}
	if req.AvailableQuantity != nil {
		res.AvailableQuantity = req.AvailableQuantity
	}
	if err := Validate(res); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), res); err != nil {
		h.logger.Error("update resource failed", zap.Error(err), zap.String("resource_id", id.String()))
		response.Internal(c, "failed to update resource")
		return
	}
	response.OK(c, res)
}

// Delete handles DELETE /resources/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid resource id")
		return
	}
	res, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load resource")
		return
	}
	if res == nil {
		response.NotFound(c, "resource not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete resource failed", zap.Error(err), zap.String("resource_id", id.String()))
		response.Internal(c, "failed to delete resource")
		return
	}
	response.NoContent(c)
}
