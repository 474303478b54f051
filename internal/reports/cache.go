package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const utilizationKeyPrefix = "reports:utilization"

func utilizationKey(orgID *uuid.UUID) string {
	if orgID == nil {
		return utilizationKeyPrefix + ":all"
	}
	return utilizationKeyPrefix + ":" + orgID.String()
}

// CachedUtilization is the stored utilization aggregate plus its compute time.
type CachedUtilization struct {
	ComputedAt time.Time             `json:"computed_at"`
	Rows       []ResourceUtilization `json:"rows"`
}

// Cache holds precomputed utilization reports in Redis so the read path does
// not rescan allocations on every request.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a utilization report cache with the given entry TTL.
func NewCache(client *goredis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// GetUtilization returns the cached aggregate, or (nil, nil) on a miss.
func (c *Cache) GetUtilization(ctx context.Context, orgID *uuid.UUID) (*CachedUtilization, error) {
	raw, err := c.client.Get(ctx, utilizationKey(orgID)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var cached CachedUtilization
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &cached, nil
}

// SetUtilization stores a freshly computed aggregate.
func (c *Cache) SetUtilization(ctx context.Context, orgID *uuid.UUID, rows []ResourceUtilization) error {
	cached := CachedUtilization{ComputedAt: time.Now().UTC(), Rows: rows}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, utilizationKey(orgID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	c.logger.Debug("utilization cache updated", zap.String("key", utilizationKey(orgID)))
	return nil
}
