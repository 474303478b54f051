// Package queue provides a Redis-list job queue used to schedule
// utilization report recomputation off the request path.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueReports is the Redis list key for report recomputation jobs.
	QueueReports = "worker:reports"
	// DequeueTimeout is how long a blocking dequeue waits before returning.
	DequeueTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	// JobTypeUtilizationRefresh recomputes the cached resource-utilization report.
	JobTypeUtilizationRefresh JobType = "utilization_refresh"
)

// UtilizationRefreshPayload is the payload for utilization refresh jobs.
// A nil OrganizationID refreshes the unscoped report.
type UtilizationRefreshPayload struct {
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueUtilizationRefresh enqueues a utilization refresh job.
func (q *Queue) EnqueueUtilizationRefresh(ctx context.Context, payload UtilizationRefreshPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeUtilizationRefresh,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueReports, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued utilization refresh job", zap.String("job_id", job.ID))
	return nil
}

// Dequeue blocks up to DequeueTimeout for the next report job. Returns
// (nil, nil) when the queue stays empty.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	res, err := q.client.BLPop(ctx, DequeueTimeout, QueueReports).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blpop: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}
