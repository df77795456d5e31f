// Package cache provides time-boxed memoization in front of the aggregator.
// Two implementations share one contract: an in-process map for single-node
// deployments and a Redis-backed variant for shared environments. Both store
// JSON so cached reads are byte-stable across implementations.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache is a TTL key-value store. Get reports a miss with (false, nil);
// expired entries count as misses.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Expiry is checked on read; stale
// entries are overwritten in place, never proactively purged. The keyspace
// here is one entry per (page, limit) pair plus one per looked-up id, so
// unbounded growth is not a practical concern.
type Memory struct {
	mu  sync.Mutex
	m   map[string]memoryEntry
	now func() time.Time
}

// NewMemory creates an empty in-process cache. now is injectable for
// deterministic expiry in tests; nil means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{m: map[string]memoryEntry{}, now: now}
}

func (c *Memory) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	entry, ok := c.m[key]
	now := c.now()
	c.mu.Unlock()
	if !ok || now.After(entry.expiresAt) {
		return false, nil
	}
	return true, json.Unmarshal(entry.data, dest)
}

func (c *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.m[key] = memoryEntry{data: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// QueryKey builds a deterministic cache key from a prefix and query
// parameters: parameters are sorted, joined, and md5-hashed so the key is
// order-independent and bounded in length.
func QueryKey(prefix string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(":")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	sum := md5.Sum([]byte(b.String()))
	return prefix + ":" + hex.EncodeToString(sum[:])
}
