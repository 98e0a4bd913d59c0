package command

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), string(k))
	}
	assert.False(t, Kind("reboot").Valid())
	assert.False(t, Kind("").Valid())
}

func TestImpliedRunState(t *testing.T) {
	s, ok := ImpliedRunState(KindStartRecord)
	assert.True(t, ok)
	assert.Equal(t, "recording", s)

	s, ok = ImpliedRunState(KindStopRecord)
	assert.True(t, ok)
	assert.Equal(t, "stopped", s)

	_, ok = ImpliedRunState(KindGetStatus)
	assert.False(t, ok)
}

func TestNewCorrelationID(t *testing.T) {
	now := time.UnixMilli(1772355600123)
	id := newCorrelationID(now)
	assert.True(t, strings.HasPrefix(id, "req_1772355600123_"), id)
	assert.Len(t, strings.TrimPrefix(id, "req_1772355600123_"), 8)
}

func TestNewCorrelationID_ConcurrentDistinct(t *testing.T) {
	const n = 1000
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- NewCorrelationID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestParams_Validate(t *testing.T) {
	neg := int64(-1)
	assert.NoError(t, Params{}.Validate(KindGetStatus))
	assert.ErrorIs(t, Params{PreName: "  "}.Validate(KindStartRecord), ErrInvalidParams)
	assert.ErrorIs(t, Params{MinSize: 10, MaxSize: &neg}.Validate(KindListVideos), ErrInvalidParams)
	assert.NoError(t, Params{FileNames: []string{"a.mp4"}}.Validate(KindUploadFile))
}
