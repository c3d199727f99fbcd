package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/logistiq/caseledger/backend-go/internal/config"
	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

const (
	dashboardKey    = "caseledger:dashboard"
	dashboardPrefix = "caseledger:"
	scanBatchSize   = 100
)

// DashboardCache holds the computed network dashboard between analysis runs.
type DashboardCache interface {
	GetDashboard(ctx context.Context) (*domain.NetworkDashboard, bool, error)
	SetDashboard(ctx context.Context, dashboard *domain.NetworkDashboard) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

// NewDashboardCache builds a redis-backed cache, or a noop cache when
// caching is disabled in config.
func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{client: client, ttl: ttl}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetDashboard(ctx context.Context) (*domain.NetworkDashboard, bool, error) {
	payload, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.NetworkDashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached dashboard: %w", err)
	}
	return &dashboard, true, nil
}

func (c *redisDashboardCache) SetDashboard(ctx context.Context, dashboard *domain.NetworkDashboard) error {
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardPrefix, scanBatchSize)
}

func (c *noopDashboardCache) GetDashboard(context.Context) (*domain.NetworkDashboard, bool, error) {
	return nil, false, nil
}

func (c *noopDashboardCache) SetDashboard(context.Context, *domain.NetworkDashboard) error {
	return nil
}

func (c *noopDashboardCache) InvalidateAll(context.Context) error {
	return nil
}
