package allocations

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

// Store is the persistence surface the allocation service needs.
type Store interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	GetByEventAndResource(ctx context.Context, eventID, resourceID uuid.UUID) (*models.Allocation, error)
	ListForResourceWithEvents(ctx context.Context, resourceID uuid.UUID) ([]rules.AllocatedEvent, error)
	CreateAllocation(ctx context.Context, a *models.Allocation) error
	GetAllocation(ctx context.Context, id uuid.UUID) (*models.Allocation, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Allocation, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.Allocation, error)
	DeleteAllocation(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates resource allocation against scope, duplicate and
// type-specific rules. All checks run before any write.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an allocation service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Create allocates a resource to an event: organization scope, duplicate and
// type dispatch checks in that order, then insert.
func (s *Service) Create(ctx context.Context, eventID, resourceID uuid.UUID, quantityUsed *int) (*models.Allocation, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Internal("load event", err)
	}
	if event == nil {
		return nil, apperror.NotFound("event", "event %s not found", eventID)
	}
	resource, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, apperror.Internal("load resource", err)
	}
	if resource == nil {
		return nil, apperror.NotFound("resource", "resource %s not found", resourceID)
	}

	if err := rules.CheckResourceScope(event, resource); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByEventAndResource(ctx, eventID, resourceID)
	if err != nil {
		return nil, apperror.Internal("check duplicate allocation", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("duplicate_allocation", "resource already allocated to this event")
	}

	competing, err := s.store.ListForResourceWithEvents(ctx, resourceID)
	if err != nil {
		return nil, apperror.Internal("load resource allocations", err)
	}
	if err := rules.ValidateAllocation(event, resource, quantityUsed, competing); err != nil {
		return nil, err
	}

	a := &models.Allocation{EventID: eventID, ResourceID: resourceID}
	if resource.Type == models.ResourceConsumable {
		a.QuantityUsed = quantityUsed
	}
	if err := s.store.CreateAllocation(ctx, a); err != nil {
		return nil, apperror.Internal("create allocation", err)
	}
	s.logger.Info("resource allocated",
		zap.String("event_id", eventID.String()),
		zap.String("resource_id", resourceID.String()),
		zap.String("type", string(resource.Type)))
	return a, nil
}

// Remove deletes an allocation, returning consumed quantity to the pool.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	a, err := s.store.GetAllocation(ctx, id)
	if err != nil {
		return apperror.Internal("load allocation", err)
	}
	if a == nil {
		return apperror.NotFound("allocation", "allocation %s not found", id)
	}
	if err := s.store.DeleteAllocation(ctx, id); err != nil {
		return apperror.Internal("delete allocation", err)
	}
	return nil
}

// ListByEvent returns an event's allocations ordered by allocation time.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Allocation, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Internal("load event", err)
	}
	if event == nil {
		return nil, apperror.NotFound("event", "event %s not found", eventID)
	}
	list, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Internal("list allocations", err)
	}
	return list, nil
}

// ListByResource returns a resource's allocations ordered by allocation time.
func (s *Service) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.Allocation, error) {
	resource, err := s.store.GetResource(ctx, resourceID)
	if err != nil {
		return nil, apperror.Internal("load resource", err)
	}
	if resource == nil {
		return nil, apperror.NotFound("resource", "resource %s not found", resourceID)
	}
	list, err := s.store.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, apperror.Internal("list allocations", err)
	}
	return list, nil
}
