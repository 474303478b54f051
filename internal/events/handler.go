package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	StartTime      time.Time  `json:"start_time" binding:"required"`
	EndTime        time.Time  `json:"end_time" binding:"required"`
	Capacity       int        `json:"capacity" binding:"required,min=1"`
	OrganizationID uuid.UUID  `json:"organization_id" binding:"required"`
	ParentEventID  *uuid.UUID `json:"parent_event_id"`
}

// UpdateRequest is the body for PATCH /events/:id. Omitted fields keep their
// stored values; "parent_event_id": null detaches the event from its parent.
type UpdateRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Capacity      *int       `json:"capacity"`
	ParentEventID *uuid.UUID `json:"parent_event_id"`
	ClearParent   bool       `json:"clear_parent"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e := &models.Event{
		Name:           req.Name,
		Description:    req.Description,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Capacity:       req.Capacity,
		OrganizationID: req.OrganizationID,
		ParentEventID:  req.ParentEventID,
	}
	created, err := h.svc.Create(c.Request.Context(), e)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List handles GET /events with optional ?organization_id=, ?from=, ?to=.
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if s := c.Query("organization_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid organization_id")
			return
		}
		f.OrganizationID = &id
	}
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid from time, want RFC3339")
			return
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(c, "invalid to time, want RFC3339")
			return
		}
		f.To = &t
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

// ListChildren handles GET /events/:id/children.
func (h *Handler) ListChildren(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.svc.ListChildren(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), id, func(e *models.Event) {
		if req.Name != nil {
			e.Name = *req.Name
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.StartTime != nil {
			e.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			e.EndTime = *req.EndTime
		}
		if req.Capacity != nil {
			e.Capacity = *req.Capacity
		}
		if req.ClearParent {
			e.ParentEventID = nil
		} else if req.ParentEventID != nil {
			e.ParentEventID = req.ParentEventID
		}
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
