package reports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/queue"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/storage"
)

// Loader loads a report dataset, optionally scoped to one organization.
type Loader interface {
	LoadDataset(ctx context.Context, orgID *uuid.UUID) (*Dataset, error)
}

// Snapshotter archives violation snapshots and hands out download links.
// *storage.S3 satisfies it.
type Snapshotter interface {
	UploadSnapshot(ctx context.Context, name string, body []byte) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Service runs reports over loaded datasets and manages the cached
// utilization aggregate. Cache, queue and snapshotter are optional; without
// them the service degrades to compute-on-request.
type Service struct {
	loader            Loader
	cache             *Cache
	queue             *queue.Queue
	snapshotter       Snapshotter
	externalThreshold int
	logger            *zap.Logger
}

// NewService creates a reports service. externalThreshold is the configured
// default for the external-attendee report; a negative value selects
// DefaultExternalThreshold.
func NewService(loader Loader, cache *Cache, q *queue.Queue, snapshotter Snapshotter, externalThreshold int, logger *zap.Logger) *Service {
	if externalThreshold < 0 {
		externalThreshold = DefaultExternalThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader:            loader,
		cache:             cache,
		queue:             q,
		snapshotter:       snapshotter,
		externalThreshold: externalThreshold,
		logger:            logger,
	}
}

func (s *Service) load(ctx context.Context, orgID *uuid.UUID) (*Dataset, error) {
	d, err := s.loader.LoadDataset(ctx, orgID)
	if err != nil {
		return nil, apperror.Internal("load report dataset", err)
	}
	return d, nil
}

// DoubleBookedUsers runs the double-booked user scan.
func (s *Service) DoubleBookedUsers(ctx context.Context, orgID *uuid.UUID) ([]DoubleBookedUser, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return DoubleBookedUsers(d), nil
}

// ExclusiveConflicts runs the exclusive-resource conflict scan.
func (s *Service) ExclusiveConflicts(ctx context.Context, orgID *uuid.UUID) ([]ExclusiveConflict, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ExclusiveConflicts(d), nil
}

// ShareableOverAllocations runs the shareable over-allocation scan.
func (s *Service) ShareableOverAllocations(ctx context.Context, orgID *uuid.UUID) ([]ShareableOverAllocation, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ShareableOverAllocations(d), nil
}

// ConsumableOverAllocations runs the consumable over-allocation scan.
func (s *Service) ConsumableOverAllocations(ctx context.Context, orgID *uuid.UUID) ([]ConsumableOverAllocation, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ConsumableOverAllocations(d), nil
}

// AllResourceViolations bundles the three resource scans over one dataset.
func (s *Service) AllResourceViolations(ctx context.Context, orgID *uuid.UUID) (*ResourceViolations, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	v := AllResourceViolations(d)
	return &v, nil
}

// PeakConcurrentUsage runs the shareable-resource boundary sweep.
func (s *Service) PeakConcurrentUsage(ctx context.Context, orgID *uuid.UUID) ([]PeakUsage, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return PeakConcurrentUsage(d), nil
}

// ParentChildViolations runs the hierarchy time-boundary scan.
func (s *Service) ParentChildViolations(ctx context.Context, orgID *uuid.UUID) ([]ParentChildViolation, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ParentChildViolations(d), nil
}

// ExternalAttendeeViolations runs the external-attendee scan. A negative
// threshold selects the configured default.
func (s *Service) ExternalAttendeeViolations(ctx context.Context, orgID *uuid.UUID, threshold int) ([]ExternalAttendeeViolation, error) {
	if threshold < 0 {
		threshold = s.externalThreshold
	}
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return ExternalAttendeeViolations(d, threshold), nil
}

// Utilization serves the cached aggregate when fresh, computing and caching
// on a miss.
func (s *Service) Utilization(ctx context.Context, orgID *uuid.UUID) (*CachedUtilization, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUtilization(ctx, orgID)
		if err != nil {
			s.logger.Warn("utilization cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}
	return s.RecomputeUtilization(ctx, orgID)
}

// RecomputeUtilization computes the aggregate from the store and updates the
// cache. The worker calls this on dequeued jobs and on its ticker.
func (s *Service) RecomputeUtilization(ctx context.Context, orgID *uuid.UUID) (*CachedUtilization, error) {
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rows := ResourceUtilizations(d)
	if s.cache != nil {
		if err := s.cache.SetUtilization(ctx, orgID, rows); err != nil {
			s.logger.Warn("utilization cache write failed", zap.Error(err))
		}
	}
	return &CachedUtilization{ComputedAt: time.Now().UTC(), Rows: rows}, nil
}

// RequestUtilizationRefresh enqueues a background recompute job.
func (s *Service) RequestUtilizationRefresh(ctx context.Context, orgID *uuid.UUID) error {
	if s.queue == nil {
		return apperror.Internal("report queue unavailable", nil)
	}
	if err := s.queue.EnqueueUtilizationRefresh(ctx, queue.UtilizationRefreshPayload{OrganizationID: orgID}); err != nil {
		return apperror.Internal("enqueue utilization refresh", err)
	}
	return nil
}

// ViolationSnapshot is the archived violation document.
type ViolationSnapshot struct {
	GeneratedAt        time.Time                   `json:"generated_at"`
	OrganizationID     *uuid.UUID                  `json:"organization_id,omitempty"`
	DoubleBookedUsers  []DoubleBookedUser          `json:"double_booked_users"`
	ResourceViolations ResourceViolations          `json:"resource_violations"`
	PeakUsage          []PeakUsage                 `json:"peak_concurrent_usage"`
	ParentChild        []ParentChildViolation      `json:"parent_child_violations"`
	ExternalAttendees  []ExternalAttendeeViolation `json:"external_attendee_violations"`
}

// SnapshotExport identifies an uploaded snapshot. DownloadURL is a
// time-limited link and is empty when presigning fails.
type SnapshotExport struct {
	Key         string `json:"snapshot_key"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportViolations assembles the violation reports into one document,
// uploads it to object storage and returns the stored key with a presigned
// download link.
func (s *Service) ExportViolations(ctx context.Context, orgID *uuid.UUID) (*SnapshotExport, error) {
	if s.snapshotter == nil {
		return nil, apperror.Internal("snapshot storage unavailable", nil)
	}
	d, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	snapshot := ViolationSnapshot{
		GeneratedAt:        time.Now().UTC(),
		OrganizationID:     orgID,
		DoubleBookedUsers:  DoubleBookedUsers(d),
		ResourceViolations: AllResourceViolations(d),
		PeakUsage:          PeakConcurrentUsage(d),
		ParentChild:        ParentChildViolations(d),
		ExternalAttendees:  ExternalAttendeeViolations(d, s.externalThreshold),
	}
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperror.Internal("encode violation snapshot", err)
	}
	key, err := s.snapshotter.UploadSnapshot(ctx, "violations", body)
	if err != nil {
		return nil, apperror.Internal("upload violation snapshot", err)
	}
	url, err := s.snapshotter.PresignDownload(ctx, key)
	if err != nil {
		s.logger.Warn("presign snapshot download failed", zap.String("key", key), zap.Error(err))
		url = ""
	}
	s.logger.Info("violation snapshot exported", zap.String("key", key))
	return &SnapshotExport{Key: key, DownloadURL: url}, nil
}

var _ Snapshotter = (*storage.S3)(nil)
