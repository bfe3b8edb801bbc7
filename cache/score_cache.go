// Package cache holds computed scores keyed per (entity, user). Scores are
// immutable once an attempt exists, so entries are only ever overwritten
// with the same value.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ScoreCache is the get/set protocol the scoring engine writes through.
// Get reports presence explicitly: a stored 0.0 is a hit, not a miss.
type ScoreCache interface {
	Get(key string) (float64, bool)
	Set(key string, score float64)
}

// AnswerKey is the cache key for one user's score on one question.
func AnswerKey(questionUUID, userUUID uuid.UUID) string {
	return fmt.Sprintf("answer.%s.%s", questionUUID, userUUID)
}

// QuizKey is the cache key for one user's aggregate score on a quiz.
func QuizKey(quizUUID, userUUID uuid.UUID) string {
	return fmt.Sprintf("quiz.%s.%s", quizUUID, userUUID)
}

type entry struct {
	score     float64
	expiresAt time.Time
}

// MemoryCache is an in-process ScoreCache with optional per-entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// NewMemoryCache creates a cache. ttl of zero disables expiry.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (c *MemoryCache) Get(key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	if c.ttl > 0 && time.Now().After(item.expiresAt) {
		return 0, false
	}
	return item.score, true
}

func (c *MemoryCache) Set(key string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		score:     score,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Purge removes expired entries and returns how many were dropped.
// A zero-TTL cache never drops anything.
func (c *MemoryCache) Purge() int {
	if c.ttl == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, item := range c.entries {
		if now.After(item.expiresAt) {
			delete(c.entries, key)
			purged++
		}
	}
	return purged
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
