package events

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

// Store is the persistence surface the event service needs.
type Store interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, f ListFilter) ([]models.Event, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Event, error)
	UpdateEvent(ctx context.Context, e *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service validates and persists events, enforcing the time-window and
// parent-containment invariants before any write.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an event service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Create validates and inserts a new event.
func (s *Service) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	if err := rules.ValidateEventTimes(e.StartTime, e.EndTime); err != nil {
		return nil, err
	}
	if e.Capacity < 1 {
		return nil, apperror.InvalidRequest("capacity", "capacity must be at least 1")
	}
	ok, err := s.store.OrganizationExists(ctx, e.OrganizationID)
	if err != nil {
		return nil, apperror.Internal("check organization", err)
	}
	if !ok {
		return nil, apperror.NotFound("organization", "organization %s not found", e.OrganizationID)
	}
	if e.ParentEventID != nil {
		if err := s.checkParent(ctx, *e.ParentEventID, e); err != nil {
			return nil, err
		}
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, apperror.Internal("create event", err)
	}
	return e, nil
}

// Get returns an event or NotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, apperror.Internal("load event", err)
	}
	if e == nil {
		return nil, apperror.NotFound("event", "event %s not found", id)
	}
	return e, nil
}

// List returns events matching the filter, ordered by start time.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Event, error) {
	list, err := s.store.ListEvents(ctx, f)
	if err != nil {
		return nil, apperror.Internal("list events", err)
	}
	return list, nil
}

// ListChildren returns direct children of an event.
func (s *Service) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Event, error) {
	if _, err := s.Get(ctx, parentID); err != nil {
		return nil, err
	}
	list, err := s.store.ListChildren(ctx, parentID)
	if err != nil {
		return nil, apperror.Internal("list children", err)
	}
	return list, nil
}

// Update applies changes to an event, re-validating the merged time window
// and parent containment before writing.
func (s *Service) Update(ctx context.Context, id uuid.UUID, apply func(*models.Event)) (*models.Event, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(e)

	if err := rules.ValidateEventTimes(e.StartTime, e.EndTime); err != nil {
		return nil, err
	}
	if e.Capacity < 1 {
		return nil, apperror.InvalidRequest("capacity", "capacity must be at least 1")
	}
	if e.ParentEventID != nil {
		if *e.ParentEventID == e.ID {
			return nil, apperror.InvalidRequest("parent_self", "event cannot be its own parent")
		}
		if err := s.checkParent(ctx, *e.ParentEventID, e); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateEvent(ctx, e); err != nil {
		return nil, apperror.Internal("update event", err)
	}
	return e, nil
}

// Delete removes an event and, via cascade, its subtree, registrations and
// allocations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return apperror.Internal("delete event", err)
	}
	return nil
}

func (s *Service) checkParent(ctx context.Context, parentID uuid.UUID, child *models.Event) error {
	parent, err := s.store.GetEvent(ctx, parentID)
	if err != nil {
		return apperror.Internal("load parent event", err)
	}
	if parent == nil {
		return apperror.NotFound("parent_event", "parent event %s not found", parentID)
	}
	return rules.CheckParentWindow(parent, child.StartTime, child.EndTime)
}
