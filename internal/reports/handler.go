package reports

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/pkg/response"
)

// Handler serves the report endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// orgFilter parses the optional organization_id query parameter. The bool is
// false when the parameter is present but malformed.
func orgFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("organization_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid organization_id")
		return nil, false
	}
	return &id, true
}

// DoubleBookedUsers handles GET /reports/double-booked-users.
func (h *Handler) DoubleBookedUsers(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.DoubleBookedUsers(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ExclusiveConflicts handles GET /reports/exclusive-conflicts.
func (h *Handler) ExclusiveConflicts(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.ExclusiveConflicts(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ShareableOverAllocations handles GET /reports/shareable-overallocations.
func (h *Handler) ShareableOverAllocations(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.ShareableOverAllocations(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ConsumableOverAllocations handles GET /reports/consumable-overallocations.
func (h *Handler) ConsumableOverAllocations(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.ConsumableOverAllocations(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ResourceViolations handles GET /reports/resource-violations.
func (h *Handler) ResourceViolations(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	v, err := h.svc.AllResourceViolations(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, v)
}

// PeakUsage handles GET /reports/peak-usage.
func (h *Handler) PeakUsage(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.PeakConcurrentUsage(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ParentChildViolations handles GET /reports/parent-child-violations.
func (h *Handler) ParentChildViolations(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	rows, err := h.svc.ParentChildViolations(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// ExternalAttendees handles GET /reports/external-attendees?threshold=N.
func (h *Handler) ExternalAttendees(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	threshold := -1
	if raw := c.Query("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			response.BadRequest(c, "invalid threshold")
			return
		}
		threshold = v
	}
	rows, err := h.svc.ExternalAttendeeViolations(c.Request.Context(), orgID, threshold)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}

// Utilization handles GET /reports/utilization.
func (h *Handler) Utilization(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	cached, err := h.svc.Utilization(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cached)
}

// RefreshUtilization handles POST /reports/utilization/refresh by enqueuing
// a background recompute.
func (h *Handler) RefreshUtilization(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	if err := h.svc.RequestUtilizationRefresh(c.Request.Context(), orgID); err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"status": "refresh scheduled"})
}

// ExportViolations handles POST /reports/violations/export.
func (h *Handler) ExportViolations(c *gin.Context) {
	orgID, ok := orgFilter(c)
	if !ok {
		return
	}
	export, err := h.svc.ExportViolations(c.Request.Context(), orgID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, export)
}
