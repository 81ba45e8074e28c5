// Package cache holds the latest radon metrics of every open document.
// Entries live in memory only and are dropped when the document closes.
package cache

import (
	"sort"
	"sync"

	"github.com/panbanda/radonlens/pkg/models"
)

// Entry is the cached state of one document. Ratings is nil after an edit
// invalidated it; a refresh that found no blocks stores an empty slice.
type Entry struct {
	Ratings         []models.Rating
	Maintainability models.Maintainability
	SourceInfo      models.SourceInfo
}

// Cache maps document IDs to their latest metrics.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// SetSnapshot stores the three metric groups of one refresh together.
func (c *Cache) SetSnapshot(id string, snap models.Snapshot) {
	ratings := snap.Ratings
	if ratings == nil {
		ratings = []models.Rating{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &Entry{
		Ratings:         ratings,
		Maintainability: snap.Maintainability,
		SourceInfo:      snap.SourceInfo,
	}
}

// Snapshot returns all three metric groups of id as stored by one refresh.
// ok is false when nothing is cached or the ratings were cleared.
func (c *Cache) Snapshot(id string) (models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.Ratings == nil {
		return models.Snapshot{}, false
	}
	return models.Snapshot{
		Ratings:         e.Ratings,
		Maintainability: e.Maintainability,
		SourceInfo:      e.SourceInfo,
	}, true
}

// Ratings returns the cached ratings of id.
func (c *Cache) Ratings(id string) ([]models.Rating, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.Ratings == nil {
		return nil, false
	}
	return e.Ratings, true
}

// Maintainability returns the cached maintainability of id.
func (c *Cache) Maintainability(id string) (models.Maintainability, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return models.Maintainability{}, false
	}
	return e.Maintainability, true
}

// SourceInfo returns the cached raw counters of id.
func (c *Cache) SourceInfo(id string) (models.SourceInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return models.SourceInfo{}, false
	}
	return e.SourceInfo, true
}

// ClearRatings drops the ratings of id and keeps its maintainability and raw counters.
func (c *Cache) ClearRatings(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		e.Ratings = nil
	}
}

// Evict removes everything cached for id.
func (c *Cache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Documents returns the cached document IDs in sorted order.
func (c *Cache) Documents() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats summarizes the cache contents.
type Stats struct {
	Documents int `json:"documents" toon:"documents"`
	Ratings   int `json:"ratings" toon:"ratings"`
	Cleared   int `json:"cleared" toon:"cleared"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := Stats{Documents: len(c.entries)}
	for _, e := range c.entries {
		if e.Ratings == nil {
			stats.Cleared++
			continue
		}
		stats.Ratings += models.CountRatings(e.Ratings)
	}
	return stats
}
