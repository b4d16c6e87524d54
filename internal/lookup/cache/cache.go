// Package cache is the Redis-backed cache of resolved lookup results,
// keyed by roster id and normalized query.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mlagarde/colloscope/internal/lookup/tokenizer"
	"github.com/mlagarde/colloscope/pkg/config"
	pkgredis "github.com/mlagarde/colloscope/pkg/redis"
)

const keyPrefix = "lookup:"

// Result is the cached payload for one resolved (or unresolved) query.
type Result struct {
	Matched  bool   `json:"matched"`
	Group    int    `json:"group"`
	Student  int    `json:"student"`
	EntityID int64  `json:"entity_id"`
	Name     string `json:"name"`
}

// LookupCache caches resolve outcomes in Redis and collapses
// concurrent identical lookups with singleflight.
type LookupCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a LookupCache on top of the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *LookupCache {
	return &LookupCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "lookup-cache"),
	}
}

// Get returns the cached result for the query, if present.
func (c *LookupCache) Get(ctx context.Context, rosterID int64, query string) (*Result, bool) {
	key := buildKey(rosterID, query)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "roster_id", rosterID, "query", query)
	return &result, true
}

// Set stores a result under the query's key with the configured TTL.
func (c *LookupCache) Set(ctx context.Context, rosterID int64, query string, result *Result) {
	key := buildKey(rosterID, query)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes, caches, and
// returns a fresh one. The boolean reports whether the cache served
// the result.
func (c *LookupCache) GetOrCompute(
	ctx context.Context,
	rosterID int64,
	query string,
	computeFn func() (*Result, error),
) (*Result, bool, error) {
	if result, ok := c.Get(ctx, rosterID, query); ok {
		return result, true, nil
	}
	key := buildKey(rosterID, query)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, rosterID, query); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, rosterID, query, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*Result), false, nil
}

// InvalidateRoster removes every cached result for the roster. Called
// when a roster document is re-imported.
func (c *LookupCache) InvalidateRoster(ctx context.Context, rosterID int64) error {
	pattern := fmt.Sprintf("%s%d:*", keyPrefix, rosterID)
	deleted, err := c.client.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating roster %d cache: %w", rosterID, err)
	}
	c.logger.Info("cache invalidated", "roster_id", rosterID, "keys_deleted", deleted)
	return nil
}

// Stats returns cumulative hit and miss counts.
func (c *LookupCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey hashes the normalized query so that equivalent renderings
// ("Émilie", "emilie  ") share one cache entry.
func buildKey(rosterID int64, query string) string {
	hash := sha256.Sum256([]byte(tokenizer.Normalize(query)))
	return fmt.Sprintf("%s%d:%x", keyPrefix, rosterID, hash[:16])
}
