package registrations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

// Store is the persistence surface the registration service needs. The
// repository enforces check-then-act atomicity via the store's unique
// indexes; the service only guarantees no write happens after a failed check.
type Store interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error)
	GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	GetByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (*models.Registration, error)
	ListEventsForUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error)
	SetCheckin(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteRegistration(ctx context.Context, id uuid.UUID) error
}

// Service orchestrates registration lifecycle against capacity, duplicate and
// double-booking rules. All checks run before any write.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a registration service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// RegisterUser registers a member for an event: capacity, double-booking and
// duplicate checks in that order, then insert.
func (s *Service) RegisterUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("check user", err)
	}
	if !ok {
		return nil, apperror.NotFound("user", "user %s not found", userID)
	}

	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}

	registered, err := s.store.ListEventsForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("load user registrations", err)
	}
	if err := rules.CheckDoubleBooking(event, registered); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, apperror.Internal("check duplicate registration", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("duplicate_registration", "user already registered for this event")
	}

	reg := &models.Registration{EventID: eventID, UserID: &userID}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, apperror.Internal("create registration", err)
	}
	s.logger.Info("user registered",
		zap.String("event_id", eventID.String()), zap.String("user_id", userID.String()))
	return reg, nil
}

// RegisterExternal registers an external guest by email. Externals carry no
// cross-event identity, so no double-booking check applies.
func (s *Service) RegisterExternal(ctx context.Context, eventID uuid.UUID, email string) (*models.Registration, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, event); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByEventAndEmail(ctx, eventID, email)
	if err != nil {
		return nil, apperror.Internal("check duplicate registration", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("duplicate_registration", "email already registered for this event")
	}

	reg := &models.Registration{EventID: eventID, ExternalEmail: &email}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, apperror.Internal("create registration", err)
	}
	s.logger.Info("external guest registered", zap.String("event_id", eventID.String()))
	return reg, nil
}

// Checkin sets the check-in timestamp exactly once.
func (s *Service) Checkin(ctx context.Context, registrationID uuid.UUID) (*models.Registration, error) {
	reg, err := s.loadRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.CheckinTime != nil {
		return nil, apperror.InvalidRequest("already_checked_in", "registration already checked in")
	}
	at := s.now()
	if err := s.store.SetCheckin(ctx, registrationID, at); err != nil {
		return nil, apperror.Internal("set checkin", err)
	}
	reg.CheckinTime = &at
	return reg, nil
}

// Cancel removes a registration.
func (s *Service) Cancel(ctx context.Context, registrationID uuid.UUID) error {
	if _, err := s.loadRegistration(ctx, registrationID); err != nil {
		return err
	}
	if err := s.store.DeleteRegistration(ctx, registrationID); err != nil {
		return apperror.Internal("delete registration", err)
	}
	return nil
}

// ListByEvent returns an event's registrations ordered by registration time.
func (s *Service) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	list, err := s.store.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Internal("list registrations", err)
	}
	return list, nil
}

func (s *Service) loadEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, apperror.Internal("load event", err)
	}
	if event == nil {
		return nil, apperror.NotFound("event", "event %s not found", eventID)
	}
	return event, nil
}

func (s *Service) loadRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return nil, apperror.Internal("load registration", err)
	}
	if reg == nil {
		return nil, apperror.NotFound("registration", "registration %s not found", id)
	}
	return reg, nil
}

func (s *Service) checkCapacity(ctx context.Context, event *models.Event) error {
	count, err := s.store.CountByEvent(ctx, event.ID)
	if err != nil {
		return apperror.Internal("count registrations", err)
	}
	return rules.CheckCapacity(event, count)
}
