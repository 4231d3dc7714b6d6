// Package recocache holds the last generated recommendation set per student.
// Entries live until the snapshot's own expiry; forceRefresh on generation
// bypasses and then overwrites the cache.
package recocache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Cache is a per-student TTL cache of recommendation snapshots
type Cache struct {
	lru *expirable.LRU[types.StudentID, *model.RecommendationSnapshot]
	now func() time.Time
}

// Option is a functional option for Cache configuration
type Option func(*Cache)

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a cache holding up to size entries, each evicted after ttl at
// the latest. Snapshot expiry is checked on read as well, since a snapshot
// may expire before the LRU's own TTL fires.
func New(size int, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		lru: expirable.NewLRU[types.StudentID, *model.RecommendationSnapshot](size, nil, ttl),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached snapshot for the student, or false on a miss.
// Expired entries are dropped and reported as misses.
func (c *Cache) Get(studentID types.StudentID) (*model.RecommendationSnapshot, bool) {
	snapshot, ok := c.lru.Get(studentID)
	if !ok {
		return nil, false
	}
	if snapshot.IsExpired(c.now()) {
		c.lru.Remove(studentID)
		return nil, false
	}
	return snapshot, true
}

// Set stores the snapshot as the student's active cached result
func (c *Cache) Set(studentID types.StudentID, snapshot *model.RecommendationSnapshot) {
	c.lru.Add(studentID, snapshot)
}

// Invalidate drops the student's cached result, if any
func (c *Cache) Invalidate(studentID types.StudentID) {
	c.lru.Remove(studentID)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	return c.lru.Len()
}
