package command

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Result values carried in a command result's "result" field.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// NoErrorCode marks a result that carried no error_code.
const NoErrorCode = -1

// Response is a command result as stored in the ResponseCache.
type Response struct {
	DeviceID      string          `json:"device_id"`
	CorrelationID string          `json:"request_id"`
	Result        string          `json:"result"`
	ErrorCode     int             `json:"error_code"`
	ErrorMsg      string          `json:"error_msg,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Raw           json.RawMessage `json:"payload,omitempty"`
}

// Succeeded reports a success result with a zero error code.
func (r Response) Succeeded() bool {
	return r.Result == ResultSuccess && r.ErrorCode == 0
}

func (r Response) clone() Response {
	if r.Raw != nil {
		r.Raw = append(json.RawMessage(nil), r.Raw...)
	}
	return r
}

// ResponseCache keeps the latest command result per correlation id.
// Entries live until PurgeOlderThan or Delete removes them.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]Response
	now     func() time.Time
}

// NewResponseCache creates an empty cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]Response),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for Timestamp and purging.
func (c *ResponseCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Store records resp under correlationID, replacing any earlier entry.
func (c *ResponseCache) Store(correlationID, deviceID string, resp Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp = resp.clone()
	resp.CorrelationID = correlationID
	resp.DeviceID = deviceID
	if resp.Timestamp.IsZero() {
		resp.Timestamp = c.now()
	}
	c.entries[correlationID] = resp
}

// Get returns the response for correlationID.
func (c *ResponseCache) Get(correlationID string) (Response, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[correlationID]
	if !ok {
		return Response{}, false
	}
	return r.clone(), true
}

// ListByDevice returns the device's stored responses, newest first.
func (c *ResponseCache) ListByDevice(deviceID string) []Response {
	c.mu.RLock()
	out := []Response{}
	for _, r := range c.entries {
		if r.DeviceID == deviceID {
			out = append(out, r.clone())
		}
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// PurgeOlderThan removes entries stored more than age ago and returns how
// many were removed.
func (c *ResponseCache) PurgeOlderThan(age time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-age)
	removed := 0
	for id, r := range c.entries {
		if r.Timestamp.Before(cutoff) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Delete removes one entry.
func (c *ResponseCache) Delete(correlationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[correlationID]
	delete(c.entries, correlationID)
	return ok
}

// Len returns the number of cached responses.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
