package media

import (
	"sync"
	"time"
)

// Video is one recording as listed by a camera.
type Video struct {
	FileName  string  `json:"file_name"`
	StartTime string  `json:"start_time,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Size      int64   `json:"size,omitempty"`
}

// VideoList is the result of one list_videos command.
type VideoList struct {
	CorrelationID string    `json:"request_id"`
	DeviceID      string    `json:"device_id"`
	Videos        []Video   `json:"videos"`
	Count         int       `json:"count"`
	Timestamp     time.Time `json:"timestamp"`
}

func (l VideoList) clone() VideoList {
	l.Videos = append([]Video(nil), l.Videos...)
	if l.Videos == nil {
		l.Videos = []Video{}
	}
	return l
}

// VideoListCache keeps every listing by correlation id and the latest
// listing per device. Both views change together under one lock.
type VideoListCache struct {
	mu            sync.RWMutex
	byCorrelation map[string]VideoList
	latest        map[string]VideoList
	now           func() time.Time
}

// NewVideoListCache creates an empty cache.
func NewVideoListCache() *VideoListCache {
	return &VideoListCache{
		byCorrelation: make(map[string]VideoList),
		latest:        make(map[string]VideoList),
		now:           time.Now,
	}
}

// Store records a listing for correlationID and makes it the device's
// latest.
func (c *VideoListCache) Store(correlationID, deviceID string, videos []Video) VideoList {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := VideoList{
		CorrelationID: correlationID,
		DeviceID:      deviceID,
		Videos:        append([]Video(nil), videos...),
		Count:         len(videos),
		Timestamp:     c.now(),
	}
	c.byCorrelation[correlationID] = l
	c.latest[deviceID] = l
	return l.clone()
}

// Get returns the listing produced for correlationID.
func (c *VideoListCache) Get(correlationID string) (VideoList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.byCorrelation[correlationID]
	if !ok {
		return VideoList{}, false
	}
	return l.clone(), true
}

// GetLatest returns the most recently stored listing for deviceID.
func (c *VideoListCache) GetLatest(deviceID string) (VideoList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.latest[deviceID]
	if !ok {
		return VideoList{}, false
	}
	return l.clone(), true
}
