package users

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/organizations"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/utils"
)

// CreateRequest is the body for POST /users.
type CreateRequest struct {
	Email          string    `json:"email" binding:"required,email"`
	Name           string    `json:"name" binding:"required"`
	Password       string    `json:"password" binding:"required,min=6"`
	OrganizationID uuid.UUID `json:"organization_id" binding:"required"`
}

// UpdateRequest is the body for PATCH /users/:id.
type UpdateRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

// Handler handles user HTTP endpoints.
type Handler struct {
	repo    *Repository
	orgRepo *organizations.Repository
	logger  *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, orgRepo *organizations.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, orgRepo: orgRepo, logger: logger}
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	org, err := h.orgRepo.GetByID(c.Request.Context(), req.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	if org == nil {
		response.NotFound(c, "organization not found")
		return
	}
	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to check email")
		return
	}
	if existing != nil {
		response.Conflict(c, "email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	u := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		PasswordHash:   hash,
		OrganizationID: req.OrganizationID,
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		h.logger.Error("create user failed", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, u.ToPublic())
}

// List handles GET /users with optional ?organization_id= filter.
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
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	out := make([]models.UserPublic, 0, len(list))
	for i := range list {
		out = append(out, list[i].ToPublic())
	}
	response.OK(c, out)
}

// GetByID handles GET /users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u.ToPublic())
}

// Update handles PATCH /users/:id. Changing the email re-checks global
// uniqueness before writing.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}

	if req.Email != "" && req.Email != u.Email {
		other, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
		if err != nil {
			response.Internal(c, "failed to check email")
			return
		}
		if other != nil {
			response.Conflict(c, "email already exists")
			return
		}
		u.Email = req.Email
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		u.PasswordHash = hash
	}

	if err := h.repo.Update(c.Request.Context(), u); err != nil {
		h.logger.Error("update user failed", zap.Error(err), zap.String("user_id", id.String()))
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, u.ToPublic())
}

// Delete handles DELETE /users/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load user")
		return
	}
	if u == nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete user failed", zap.Error(err), zap.String("user_id", id.String()))
		response.Internal(c, "failed to delete user")
		return
	}
	response.NoContent(c)
}
