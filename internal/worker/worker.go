// Package worker runs background report maintenance: it consumes utilization
// refresh jobs from the Redis queue and recomputes the cached aggregate on a
// fixed schedule.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yug49/multi-tenant-event-booking-system/internal/reports"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/queue"
)

// UtilizationProcessor recomputes cached utilization reports, driven by
// queued jobs and a periodic ticker.
type UtilizationProcessor struct {
	reports  *reports.Service
	queue    *queue.Queue
	interval time.Duration
	logger   *zap.Logger
}

// NewUtilizationProcessor creates a utilization refresh processor. interval
// is the scheduled full-refresh period; zero disables the ticker.
func NewUtilizationProcessor(r *reports.Service, q *queue.Queue, interval time.Duration, logger *zap.Logger) *UtilizationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilizationProcessor{reports: r, queue: q, interval: interval, logger: logger}
}

// Process executes one refresh job.
func (p *UtilizationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeUtilizationRefresh {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.UtilizationRefreshPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if _, err := p.reports.RecomputeUtilization(ctx, payload.OrganizationID); err != nil {
		return fmt.Errorf("recompute utilization: %w", err)
	}
	p.logger.Info("utilization refreshed", zap.String("job_id", job.ID))
	return nil
}

// Run starts the worker loop: blocking dequeue plus scheduled refresh.
func (p *UtilizationProcessor) Run(ctx context.Context) {
	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("report worker stopping")
			return
		case <-tick:
			if _, err := p.reports.RecomputeUtilization(ctx, nil); err != nil {
				p.logger.Warn("scheduled utilization refresh failed", zap.Error(err))
			}
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID))
		}
	}
}
