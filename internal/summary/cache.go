// Package summary caches per-student attendance aggregates in Redis so the
// student dashboard does not hit Postgres on every load. The worker refreshes
// entries when attendance is saved; reads fall back to the database.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"campuserp/internal/catalog"
)

const cacheTTL = 24 * time.Hour

func cacheKey(studentID int) string {
	return fmt.Sprintf("summary:student:%d", studentID)
}

// Cache reads and refreshes cached summaries.
type Cache struct {
	rdb  *redis.Client
	repo *catalog.Repository
}

// NewCache creates a summary cache. rdb may be nil; all reads then go to the
// database.
func NewCache(rdb *redis.Client, repo *catalog.Repository) *Cache {
	return &Cache{rdb: rdb, repo: repo}
}

// Get returns the student's summary, preferring the cached copy.
func (c *Cache) Get(ctx context.Context, studentID int) (catalog.Summary, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, cacheKey(studentID)).Result()
		if err == nil {
			var s catalog.Summary
			if jsonErr := json.Unmarshal([]byte(raw), &s); jsonErr == nil {
				return s, nil
			}
		} else if err != redis.Nil {
			log.Printf("summary cache read failed for student %d: %v", studentID, err)
		}
	}
	return c.repo.StudentSummary(ctx, studentID)
}

// Refresh recomputes the student's summary and writes it to the cache.
func (c *Cache) Refresh(ctx context.Context, studentID int) error {
	s, err := c.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(studentID), raw, cacheTTL).Err()
}
