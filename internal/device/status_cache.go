package device

import (
	"sort"
	"sync"
	"time"
)

// StatusCache holds the latest known status of every device that has
// reported or been inferred since startup.
//
// Writers are serialised by one lock; the last update processed wins.
// Reads return copies that share nothing with the cache.
type StatusCache struct {
	mu      sync.RWMutex
	entries map[string]Status
	now     func() time.Time
}

// NewStatusCache creates an empty cache.
func NewStatusCache() *StatusCache {
	return &StatusCache{
		entries: make(map[string]Status),
		now:     time.Now,
	}
}

// SetClock replaces the time source used to stamp LastUpdate.
func (c *StatusCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns the status of one device.
func (c *StatusCache) Get(deviceID string) (Status, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[deviceID]
	if !ok {
		return Status{}, false
	}
	return s.Clone(), true
}

// GetAll returns an independent snapshot keyed by device ID.
func (c *StatusCache) GetAll() map[string]Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Status, len(c.entries))
	for id, s := range c.entries {
		out[id] = s.Clone()
	}
	return out
}

// List returns a snapshot ordered by device ID.
func (c *StatusCache) List() []Status {
	all := c.GetAll()
	out := make([]Status, 0, len(all))
	for _, s := range all {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// Update replaces the fields set in f, leaves the others untouched and
// stamps LastUpdate. It returns the resulting status.
func (c *StatusCache) Update(deviceID string, f StatusFields) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.entries[deviceID]
	s.DeviceID = deviceID
	s.apply(f)
	s.LastUpdate = c.now()
	c.entries[deviceID] = s
	return s.Clone()
}

// Len returns the number of devices with a cached status.
func (c *StatusCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
