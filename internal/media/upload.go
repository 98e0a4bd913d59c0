package media

import (
	"maps"
	"sync"
	"time"
)

// UploadProgress is a device's known per-file upload completion.
type UploadProgress struct {
	DeviceID string `json:"device_id"`
	// Files maps file name to completion in [0, 1].
	Files map[string]float64 `json:"files"`
	// LastRequestID is the correlation id of the last report that carried
	// one.
	LastRequestID string    `json:"last_request_id,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p UploadProgress) clone() UploadProgress {
	p.Files = maps.Clone(p.Files)
	if p.Files == nil {
		p.Files = map[string]float64{}
	}
	return p
}

// UploadProgressCache merges upload progress reports per device. Finished
// files stay until ClearCompleted removes them.
type UploadProgressCache struct {
	mu      sync.RWMutex
	devices map[string]*UploadProgress
	now     func() time.Time
}

// NewUploadProgressCache creates an empty cache.
func NewUploadProgressCache() *UploadProgressCache {
	return &UploadProgressCache{
		devices: make(map[string]*UploadProgress),
		now:     time.Now,
	}
}

// Update merges files into the device's progress. correlationID may be
// empty for unsolicited reports.
func (c *UploadProgressCache) Update(deviceID string, files map[string]float64, correlationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.devices[deviceID]
	if !ok {
		p = &UploadProgress{DeviceID: deviceID, Files: make(map[string]float64)}
		c.devices[deviceID] = p
	}
	maps.Copy(p.Files, files)
	if correlationID != "" {
		p.LastRequestID = correlationID
	}
	p.UpdatedAt = c.now()
}

// GetProgress returns a copy of the device's file fractions. Unknown
// devices yield an empty map.
func (c *UploadProgressCache) GetProgress(deviceID string) map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.devices[deviceID]
	if !ok {
		return map[string]float64{}
	}
	return maps.Clone(p.Files)
}

// Snapshot returns the device's full progress record.
func (c *UploadProgressCache) Snapshot(deviceID string) (UploadProgress, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.devices[deviceID]
	if !ok {
		return UploadProgress{}, false
	}
	return p.clone(), true
}

// GetFileProgress returns one file's fraction.
func (c *UploadProgressCache) GetFileProgress(deviceID, fileName string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.devices[deviceID]
	if !ok {
		return 0, false
	}
	v, ok := p.Files[fileName]
	return v, ok
}

// ClearCompleted removes files at fraction >= 1.0 and returns how many
// were removed.
func (c *UploadProgressCache) ClearCompleted(deviceID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.devices[deviceID]
	if !ok {
		return 0
	}
	removed := 0
	for name, frac := range p.Files {
		if frac >= 1.0 {
			delete(p.Files, name)
			removed++
		}
	}
	return removed
}
