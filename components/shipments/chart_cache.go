package shipments

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes rendered chart HTML so repeated board views are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered charts for a fixed TTL. Every insert sweeps the
// expired entries, so the cache holds at most the keys rendered within one TTL.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]chartEntry
}

type chartEntry struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL
// disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, entries: map[string]chartEntry{}}
}

// GetOrRender returns the live entry for key or renders and stores a new one.
// Render errors are returned and never cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	now := c.now()
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expires) {
		return entry.html, nil
	}

	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.pruneLocked(now)
	c.entries[key] = chartEntry{html: html, expires: now.Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// Prune drops expired entries and returns how many remain.
func (c *ChartCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(c.now())
	return len(c.entries)
}

func (c *ChartCache) pruneLocked(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
}

// countsHash keys a chart by its title and counts.
func countsHash(title string, counts []StatusCount) string {
	b, err := json.Marshal(struct {
		Title  string        `json:"title"`
		Counts []StatusCount `json:"counts"`
	}{title, counts})
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
