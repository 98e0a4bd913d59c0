package command

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseCache_StoreAndGet(t *testing.T) {
	c := NewResponseCache()
	c.Store("R1", "HW-001", Response{Result: ResultSuccess, ErrorCode: 0, Raw: json.RawMessage(`{"result":"success"}`)})

	got, ok := c.Get("R1")
	require.True(t, ok)
	assert.Equal(t, "HW-001", got.DeviceID)
	assert.Equal(t, "R1", got.CorrelationID)
	assert.True(t, got.Succeeded())
	assert.False(t, got.Timestamp.IsZero())

	// Returned raw payload is a copy.
	got.Raw[0] = 'X'
	again, _ := c.Get("R1")
	assert.Equal(t, byte('{'), again.Raw[0])

	_, ok = c.Get("R-missing")
	assert.False(t, ok)
}

func TestResponseCache_OverwriteOnReuse(t *testing.T) {
	c := NewResponseCache()
	c.Store("R1", "HW-001", Response{Result: ResultFailed, ErrorCode: 500})
	c.Store("R1", "HW-001", Response{Result: ResultSuccess})

	got, ok := c.Get("R1")
	require.True(t, ok)
	assert.Equal(t, ResultSuccess, got.Result)
	assert.Equal(t, 1, c.Len())
}

func TestResponseCache_ListByDevice(t *testing.T) {
	c := NewResponseCache()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c.Store("R1", "HW-001", Response{Timestamp: base})
	c.Store("R2", "HW-002", Response{Timestamp: base})
	c.Store("R3", "HW-001", Response{Timestamp: base.Add(time.Second)})

	list := c.ListByDevice("HW-001")
	require.Len(t, list, 2)
	assert.Equal(t, "R3", list[0].CorrelationID)
	assert.Equal(t, "R1", list[1].CorrelationID)

	assert.Empty(t, c.ListByDevice("HW-404"))
}

func TestResponseCache_PurgeOlderThan(t *testing.T) {
	c := NewResponseCache()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	c.Store("old", "HW-001", Response{Timestamp: now.Add(-2 * time.Hour)})
	c.Store("new", "HW-001", Response{})

	assert.Equal(t, 1, c.PurgeOlderThan(time.Hour))
	_, ok := c.Get("old")
	assert.False(t, ok)
	_, ok = c.Get("new")
	assert.True(t, ok)
}

func TestResponseCache_Delete(t *testing.T) {
	c := NewResponseCache()
	c.Store("R1", "HW-001", Response{})
	assert.True(t, c.Delete("R1"))
	assert.False(t, c.Delete("R1"))
}

func TestResponseCache_Concurrent(t *testing.T) {
	c := NewResponseCache()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("R%d", i%10)
			c.Store(id, "HW-001", Response{ErrorCode: i})
			c.ListByDevice("HW-001")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, c.Len())
}
