package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	portfolioapp "github.com/rentfolio/backend/internal/application/portfolio"
	"github.com/rentfolio/backend/internal/infrastructure/config"
)

// RedisSummaryCache implements the dashboard summary cache on Redis,
// suitable for deployments with multiple instances sharing one dashboard.
type RedisSummaryCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient creates a Redis client from configuration and verifies the
// connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisSummaryCache creates a cache backed by an existing Redis client
func NewRedisSummaryCache(client *redis.Client, keyPrefix string) *RedisSummaryCache {
	if keyPrefix == "" {
		keyPrefix = "dashboard:"
	}
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached summary, or nil on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, key string) (*portfolioapp.DashboardSummary, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached summary: %w", err)
	}

	var summary portfolioapp.DashboardSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		// A stale or corrupted entry reads as a miss
		return nil, nil
	}
	return &summary, nil
}

// Set stores the summary with a TTL
func (c *RedisSummaryCache) Set(ctx context.Context, key string, summary *portfolioapp.DashboardSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache summary: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

// InMemorySummaryCache is a process-local cache for single-instance
// deployments and tests
type InMemorySummaryCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	now     func() time.Time
}

type inMemoryEntry struct {
	summary   portfolioapp.DashboardSummary
	expiresAt time.Time
}

// NewInMemorySummaryCache creates a new in-memory summary cache
func NewInMemorySummaryCache() *InMemorySummaryCache {
	return &InMemorySummaryCache{
		entries: make(map[string]inMemoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the cache clock for tests
func (c *InMemorySummaryCache) WithClock(now func() time.Time) *InMemorySummaryCache {
	c.now = now
	return c
}

// Get returns the cached summary, or nil on a miss or expired entry
func (c *InMemorySummaryCache) Get(_ context.Context, key string) (*portfolioapp.DashboardSummary, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, nil
	}
	summary := entry.summary
	return &summary, nil
}

// Set stores the summary with a TTL
func (c *InMemorySummaryCache) Set(_ context.Context, key string, summary *portfolioapp.DashboardSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = inMemoryEntry{
		summary:   *summary,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

var (
	_ portfolioapp.SummaryCache = (*RedisSummaryCache)(nil)
	_ portfolioapp.SummaryCache = (*InMemorySummaryCache)(nil)
)
