// Package cache provides a two-tier cache for classifier-derived verdicts:
// an in-memory LRU for hot entries and an optional Redis tier shared
// across replicas. Cache outages degrade to recomputation, never to a
// failed decision.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/blood-eligibility-server/internal/domain"
)

// Stats tracks cache performance counters.
type Stats struct {
	MemoryHits   int64 `json:"memory_hits"`
	MemoryMisses int64 `json:"memory_misses"`
	RedisHits    int64 `json:"redis_hits"`
	RedisMisses  int64 `json:"redis_misses"`
	RedisErrors  int64 `json:"redis_errors"`
}

// VerdictCache implements the decision engine's cache contract.
type VerdictCache struct {
	logger *logrus.Logger

	memory *lru.Cache[string, *domain.EligibilityVerdict]

	redis    *redis.Client
	redisTTL time.Duration
	breaker  *gobreaker.CircuitBreaker

	statsMu sync.Mutex
	stats   Stats
}

// New creates a verdict cache from configuration. The Redis tier is
// enabled only when a URL is configured; a connection failure at startup
// disables that tier rather than failing the service.
func New(cfg domain.CacheConfig, logger *logrus.Logger) (*VerdictCache, error) {
	size := cfg.MaxMemorySize
	if size <= 0 {
		size = 1000
	}

	memory, err := lru.New[string, *domain.EligibilityVerdict](size)
	if err != nil {
		return nil, err
	}

	c := &VerdictCache{
		logger:   logger,
		memory:   memory,
		redisTTL: cfg.RedisTTL,
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid Redis URL, distributed cache tier disabled")
			return c, nil
		}

		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, distributed cache tier disabled")
			client.Close()
			return c, nil
		}

		c.redis = client
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "verdict-cache-redis",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Cache circuit breaker state changed")
			},
		})
	}

	return c, nil
}

// Get looks up a verdict, checking the memory tier before Redis. A Redis
// hit is promoted into the memory tier.
func (c *VerdictCache) Get(ctx context.Context, key string) (*domain.EligibilityVerdict, bool) {
	if verdict, ok := c.memory.Get(key); ok {
		c.count(func(s *Stats) { s.MemoryHits++ })
		return verdict, true
	}
	c.count(func(s *Stats) { s.MemoryMisses++ })

	if c.redis == nil {
		return nil, false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.redis.Get(ctx, key).Bytes()
	})
	if err != nil {
		if err != redis.Nil {
			c.count(func(s *Stats) { s.RedisErrors++ })
			c.logger.WithError(err).Debug("Redis cache lookup failed")
		} else {
			c.count(func(s *Stats) { s.RedisMisses++ })
		}
		return nil, false
	}

	var verdict domain.EligibilityVerdict
	if err := json.Unmarshal(result.([]byte), &verdict); err != nil {
		c.count(func(s *Stats) { s.RedisErrors++ })
		return nil, false
	}

	c.count(func(s *Stats) { s.RedisHits++ })
	c.memory.Add(key, &verdict)
	return &verdict, true
}

// Set stores a verdict in both tiers. Failures are logged and swallowed.
func (c *VerdictCache) Set(ctx context.Context, key string, verdict *domain.EligibilityVerdict) {
	c.memory.Add(key, verdict)

	if c.redis == nil {
		return
	}

	payload, err := json.Marshal(verdict)
	if err != nil {
		return
	}

	if _, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.redis.Set(ctx, key, payload, c.redisTTL).Err()
	}); err != nil {
		c.count(func(s *Stats) { s.RedisErrors++ })
		c.logger.WithError(err).Debug("Redis cache store failed")
	}
}

// Stats returns a snapshot of the cache counters.
func (c *VerdictCache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// Close releases the Redis client, if any.
func (c *VerdictCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

func (c *VerdictCache) count(update func(*Stats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}
