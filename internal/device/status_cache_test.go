package device

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStatusCache_UpdateMergesFields(t *testing.T) {
	cache := NewStatusCache()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.SetClock(fixedClock(t0))

	cache.Update("HW-001", StatusFields{
		Status:  Ptr(StatusOnline),
		Battery: Ptr(0.5),
	})

	t1 := t0.Add(time.Minute)
	cache.SetClock(fixedClock(t1))
	got := cache.Update("HW-001", StatusFields{RunState: Ptr(RunStateRecording)})

	assert.Equal(t, "HW-001", got.DeviceID)
	assert.Equal(t, StatusOnline, got.Status)
	assert.Equal(t, RunStateRecording, got.RunState)
	require.NotNil(t, got.Battery)
	assert.InDelta(t, 0.5, *got.Battery, 1e-9)
	assert.Equal(t, t1, got.LastUpdate)
}

func TestStatusCache_UpdateStampsEvenWhenEmpty(t *testing.T) {
	cache := NewStatusCache()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.SetClock(fixedClock(now))

	cache.Update("HW-001", StatusFields{})
	got, ok := cache.Get("HW-001")
	require.True(t, ok)
	assert.Equal(t, now, got.LastUpdate)
}

func TestStatusCache_GetMissing(t *testing.T) {
	cache := NewStatusCache()
	_, ok := cache.Get("HW-404")
	assert.False(t, ok)
}

func TestStatusCache_SnapshotsAreIndependent(t *testing.T) {
	cache := NewStatusCache()
	cache.Update("HW-001", StatusFields{Status: Ptr(StatusOnline), LeftStorage: Ptr(int64(100))})

	snap := cache.GetAll()
	s := snap["HW-001"]
	*s.LeftStorage = 1
	s.Status = StatusOffline
	snap["HW-001"] = s
	delete(snap, "HW-001")

	got, ok := cache.Get("HW-001")
	require.True(t, ok)
	assert.Equal(t, StatusOnline, got.Status)
	assert.Equal(t, int64(100), *got.LeftStorage)

	single, _ := cache.Get("HW-001")
	*single.LeftStorage = 7
	again, _ := cache.Get("HW-001")
	assert.Equal(t, int64(100), *again.LeftStorage)
}

func TestStatusCache_ListSorted(t *testing.T) {
	cache := NewStatusCache()
	cache.Update("HW-3", StatusFields{})
	cache.Update("HW-1", StatusFields{})
	cache.Update("HW-2", StatusFields{})

	list := cache.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"HW-1", "HW-2", "HW-3"}, []string{list[0].DeviceID, list[1].DeviceID, list[2].DeviceID})
	assert.Equal(t, 3, cache.Len())
}

func TestStatusCache_ConcurrentUpdates(t *testing.T) {
	cache := NewStatusCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("HW-%d", i%5)
			cache.Update(id, StatusFields{Signal: Ptr(int64(i))})
			cache.GetAll()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, cache.Len())
}
