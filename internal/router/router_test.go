package router

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/database"
	"github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"
	"github.com/borncrazy123/CamLink/internal/media"
	"github.com/borncrazy123/CamLink/internal/task"
	"github.com/borncrazy123/CamLink/migrations"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

type fakeSink struct {
	mu       sync.Mutex
	statuses []device.Status
	results  []command.Response
}

func (s *fakeSink) RecordStatus(_ string, st device.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, st)
}

func (s *fakeSink) RecordCommandResult(_, _ string, r command.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// loopback is a command.Transport that remembers the last publish.
type loopback struct {
	topic   string
	payload []byte
}

func (l *loopback) EnsureConnected(context.Context) error { return nil }

func (l *loopback) Publish(topic string, payload []byte, _ byte, _ bool) error {
	l.topic = topic
	l.payload = payload
	return nil
}

type subscription struct {
	topic string
	qos   byte
}

type fakeSubscriber struct {
	subs []subscription
	err  error
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, _ mqtt.MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.subs = append(f.subs, subscription{topic, qos})
	return nil
}

// ─── Helper ─────────────────────────────────────────────────────────────────

type harness struct {
	router    *Router
	db        *database.DB
	devices   *device.SQLiteRepository
	registry  *device.Registry
	tracker   *task.Tracker
	status    *device.StatusCache
	responses *command.ResponseCache
	videos    *media.VideoListCache
	uploads   *media.UploadProgressCache
	sink      *fakeSink
	metrics   *Metrics
}

const (
	testDevice = "D1"
	testClient = "client-d1"
)

func setupRouter(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	require.NoError(t, db.Migrate(ctx, migrations.Source()))

	devices := device.NewSQLiteRepository(db.DB)
	require.NoError(t, devices.Create(ctx, &device.Device{HardwareID: testDevice, ClientID: testClient}))

	h := &harness{
		db:        db,
		devices:   devices,
		registry:  device.NewRegistry(devices),
		tracker:   task.NewTracker(task.NewSQLiteRepository(db.DB)),
		status:    device.NewStatusCache(),
		responses: command.NewResponseCache(),
		videos:    media.NewVideoListCache(),
		uploads:   media.NewUploadProgressCache(),
		sink:      &fakeSink{},
		metrics:   NewMetrics(prometheus.NewRegistry()),
	}
	h.router = New(Config{StoreTimeout: time.Second}, Deps{
		Resolver:  h.registry,
		Store:     devices,
		Tasks:     h.tracker,
		Status:    h.status,
		Responses: h.responses,
		Videos:    h.videos,
		Uploads:   h.uploads,
		Sink:      h.sink,
		Metrics:   h.metrics,
	})
	return h
}

func (h *harness) issue(t *testing.T, corr string, kind command.Kind) {
	t.Helper()
	_, err := h.tracker.Create(context.Background(), testClient, corr, string(kind), "sent")
	require.NoError(t, err)
}

func (h *harness) taskState(t *testing.T, corr string) task.Task {
	t.Helper()
	got, err := h.tracker.Get(context.Background(), corr)
	require.NoError(t, err)
	return got
}

func (h *harness) process(t *testing.T, channel, payload string) MessageKind {
	t.Helper()
	kind, err := h.router.Process(context.Background(), "camera/"+testClient+"/"+channel, []byte(payload))
	require.NoError(t, err)
	return kind
}

// ─── Command results ────────────────────────────────────────────────────────

func TestProcess_StartRecordSuccessInfersRecording(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindStartRecord)

	kind := h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"R1"}`)
	assert.Equal(t, KindCommandResult, kind)

	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.RunStateRecording, st.RunState)
	assert.Equal(t, device.StatusOnline, st.Status)

	assert.Equal(t, task.StateSuccess, h.taskState(t, "R1").State)

	row, err := h.devices.GetByHardwareID(context.Background(), testDevice)
	require.NoError(t, err)
	assert.Equal(t, device.RunStateRecording, row.RunState)
	assert.Equal(t, device.StatusOnline, row.Status)
	assert.NotNil(t, row.LastOnline)

	resp, ok := h.responses.Get("R1")
	require.True(t, ok)
	assert.Equal(t, testDevice, resp.DeviceID)
	assert.True(t, resp.Succeeded())
}

func TestProcess_ExplicitRunStateWinsOverInference(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindStartRecord)

	h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"R1","run_state":"stopped"}`)

	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.RunStateStopped, st.RunState)
	assert.Equal(t, device.StatusOnline, st.Status)
}

func TestProcess_NoInferenceWhenErrorCodeNonZero(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindStopRecord)

	h.process(t, "resp", `{"result":"success","error_code":3,"request_id":"R1"}`)

	_, ok := h.status.Get(testDevice)
	assert.False(t, ok)
	assert.Equal(t, task.StateSuccess, h.taskState(t, "R1").State)
}

func TestProcess_NoInferenceForOtherKinds(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindUploadFile)

	h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"R1"}`)

	_, ok := h.status.Get(testDevice)
	assert.False(t, ok)
}

func TestProcess_FailedResultThenLateSuccess(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindStartRecord)

	h.process(t, "resp", `{"result":"failed","error_code":500,"error_msg":"device offline","request_id":"R1"}`)

	got := h.taskState(t, "R1")
	assert.Equal(t, task.StateFailed, got.State)
	assert.Contains(t, got.Description, "500")
	assert.Contains(t, got.Description, "device offline")

	// Duplicate or contradicting delivery does not move a finished task.
	h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"R1"}`)
	assert.Equal(t, task.StateFailed, h.taskState(t, "R1").State)

	resp, ok := h.responses.Get("R1")
	require.True(t, ok)
	assert.Equal(t, command.ResultSuccess, resp.Result, "response cache keeps the latest message")
}

func TestProcess_ResultForUnknownTask(t *testing.T) {
	h := setupRouter(t)

	h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"R-elsewhere"}`)

	_, ok := h.responses.Get("R-elsewhere")
	assert.True(t, ok)
	_, ok = h.status.Get(testDevice)
	assert.False(t, ok)
}

func TestProcess_ResultWithoutRequestID(t *testing.T) {
	h := setupRouter(t)

	_, err := h.router.Process(context.Background(), "camera/"+testClient+"/resp", []byte(`{"result":"success"}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
	assert.Zero(t, h.responses.Len())
}

// ─── Listings and uploads ───────────────────────────────────────────────────

func TestProcess_VideoList(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R2", command.KindListVideos)

	kind := h.process(t, "resp", `{"result":"success","request_id":"R2","videos":[
		{"file_name":"1772355600_702.mp4","start_time":"2026-03-01T09:00:00Z","duration":60,"size":1024},
		{"file_name":"1772355700_702.mp4","size":2048}]}`)
	assert.Equal(t, KindVideoList, kind, "videos wins over result")

	byID, ok := h.videos.Get("R2")
	require.True(t, ok)
	assert.Len(t, byID.Videos, 2)
	latest, ok := h.videos.GetLatest(testDevice)
	require.True(t, ok)
	assert.Len(t, latest.Videos, 2)

	got := h.taskState(t, "R2")
	assert.Equal(t, task.StateSuccess, got.State)
	assert.Equal(t, "found 2 videos", got.Description)
	assert.Zero(t, h.responses.Len())
}

func TestProcess_VideoListMalformed(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R2", command.KindListVideos)

	for _, payload := range []string{
		`{"videos":[]}`,
		`{"request_id":"R2","videos":{"file_name":"x"}}`,
		`{"request_id":"R2","videos":[{"file_name":"x","size":"big"}]}`,
	} {
		_, err := h.router.Process(context.Background(), "camera/"+testClient+"/resp", []byte(payload))
		assert.ErrorIs(t, err, ErrMalformedMessage, payload)
	}
	_, ok := h.videos.Get("R2")
	assert.False(t, ok)
	assert.Equal(t, task.StateCalling, h.taskState(t, "R2").State)
}

func TestProcess_EmptyVideoList(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R2", command.KindListVideos)

	h.process(t, "resp", `{"request_id":"R2","videos":null}`)

	got, ok := h.videos.GetLatest(testDevice)
	require.True(t, ok)
	assert.Empty(t, got.Videos)
	assert.Equal(t, "found 0 videos", h.taskState(t, "R2").Description)
}

func TestProcess_UploadReportChannelWinsOverContent(t *testing.T) {
	h := setupRouter(t)

	kind := h.process(t, "upload_file_status", `{"file_upload_progress":{"a.mp4":0.5},"videos":[],"result":"success"}`)
	assert.Equal(t, KindUploadReport, kind)

	assert.Equal(t, map[string]float64{"a.mp4": 0.5}, h.uploads.GetProgress(testDevice))
	_, ok := h.videos.GetLatest(testDevice)
	assert.False(t, ok)
}

func TestProcess_UploadReportMissingProgress(t *testing.T) {
	h := setupRouter(t)

	_, err := h.router.Process(context.Background(), "camera/"+testClient+"/upload_file_status", []byte(`{"request_id":"x"}`))
	assert.ErrorIs(t, err, ErrMalformedMessage)
}

func TestProcess_UploadQueryMarksTask(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R3", command.KindGetUploadStatus)

	kind := h.process(t, "resp", `{"request_id":"R3","result":"success","file_list_upload_progress":{"a.mp4":"1.0","b.mp4":0.25}}`)
	assert.Equal(t, KindUploadQuery, kind)

	assert.Equal(t, map[string]float64{"a.mp4": 1.0, "b.mp4": 0.25}, h.uploads.GetProgress(testDevice))
	got := h.taskState(t, "R3")
	assert.Equal(t, task.StateSuccess, got.State)
	assert.Equal(t, "upload progress for 2 files", got.Description)
}

// ─── Status reports ─────────────────────────────────────────────────────────

func TestProcess_StatusReportMirrorsToStore(t *testing.T) {
	h := setupRouter(t)

	kind := h.process(t, "state", `{"status":"online","run_state":"recording","left_storage":"512",
		"electric_percent":0.87,"network_signal_strength":-61}`)
	assert.Equal(t, KindStatusReport, kind)

	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.StatusOnline, st.Status)
	require.NotNil(t, st.Battery)
	assert.InDelta(t, 0.87, *st.Battery, 1e-9)

	row, err := h.devices.GetByHardwareID(context.Background(), testDevice)
	require.NoError(t, err)
	require.NotNil(t, row.BatteryPercent)
	assert.Equal(t, 87, *row.BatteryPercent)
	require.NotNil(t, row.LeftStorage)
	assert.Equal(t, int64(512), *row.LeftStorage)

	require.Len(t, h.sink.statuses, 1)
	assert.Equal(t, testDevice, h.sink.statuses[0].DeviceID)
}

func TestProcess_StatusReportPartialMerge(t *testing.T) {
	h := setupRouter(t)

	h.process(t, "state", `{"status":"online","run_state":"recording"}`)
	h.process(t, "state", `{"network_signal_strength":-70}`)

	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.RunStateRecording, st.RunState)
	require.NotNil(t, st.Signal)
	assert.Equal(t, int64(-70), *st.Signal)
}

func TestProcess_StatusReportCompletesGetStatus(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R4", command.KindGetStatus)
	h.issue(t, "R5", command.KindStartRecord)

	h.process(t, "resp", `{"request_id":"R4","status":"online"}`)
	h.process(t, "state", `{"request_id":"R5","status":"online"}`)

	assert.Equal(t, task.StateSuccess, h.taskState(t, "R4").State)
	assert.Equal(t, task.StateCalling, h.taskState(t, "R5").State)
}

// ─── Drops ──────────────────────────────────────────────────────────────────

func TestProcess_UnresolvedDeviceTouchesNothing(t *testing.T) {
	h := setupRouter(t)
	h.issue(t, "R1", command.KindStartRecord)
	before, err := h.devices.GetByHardwareID(context.Background(), testDevice)
	require.NoError(t, err)

	payloads := map[string]string{
		"resp":               `{"result":"success","error_code":0,"request_id":"R1"}`,
		"state":              `{"status":"online"}`,
		"upload_file_status": `{"file_upload_progress":{"a":1}}`,
	}
	for channel, payload := range payloads {
		_, err := h.router.Process(context.Background(), "camera/stranger/"+channel, []byte(payload))
		assert.ErrorIs(t, err, ErrUnresolvedDevice)
	}
	_, err = h.router.Process(context.Background(), "camera/stranger/resp", []byte(`{"request_id":"R1","videos":[]}`))
	assert.ErrorIs(t, err, ErrUnresolvedDevice)

	assert.Zero(t, h.status.Len())
	assert.Zero(t, h.responses.Len())
	_, ok := h.videos.Get("R1")
	assert.False(t, ok)
	assert.Empty(t, h.uploads.GetProgress(testDevice))
	assert.Equal(t, task.StateCalling, h.taskState(t, "R1").State)

	after, err := h.devices.GetByHardwareID(context.Background(), testDevice)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProcess_MalformedInput(t *testing.T) {
	h := setupRouter(t)

	tests := []struct {
		name    string
		topic   string
		payload string
		wantErr error
	}{
		{"wrong namespace", "cams/" + testClient + "/resp", `{}`, ErrMalformedTopic},
		{"too deep", "camera/" + testClient + "/resp/extra", `{}`, ErrMalformedTopic},
		{"unknown channel", "camera/" + testClient + "/telemetry", `{}`, ErrMalformedTopic},
		{"command channel", "camera/" + testClient + "/cmd", `{}`, ErrMalformedTopic},
		{"not json", "camera/" + testClient + "/state", `online`, ErrMalformedMessage},
		{"json array", "camera/" + testClient + "/state", `[1,2]`, ErrMalformedMessage},
		{"json null", "camera/" + testClient + "/state", `null`, ErrMalformedMessage},
		{"storage overflow", "camera/" + testClient + "/state", `{"status":"online","left_storage":1e300}`, ErrMalformedMessage},
		{"signal not finite", "camera/" + testClient + "/state", `{"network_signal_strength":"NaN"}`, ErrMalformedMessage},
		{"battery as percent", "camera/" + testClient + "/state", `{"electric_percent":87}`, ErrMalformedMessage},
		{"battery infinite", "camera/" + testClient + "/state", `{"electric_percent":"+Inf"}`, ErrMalformedMessage},
		{"upload over one", "camera/" + testClient + "/upload_file_status", `{"file_upload_progress":{"a.mp4":1.5}}`, ErrMalformedMessage},
		{"upload negative", "camera/" + testClient + "/resp", `{"request_id":"R9","file_list_upload_progress":{"a.mp4":-0.1}}`, ErrMalformedMessage},
		{"upload not finite", "camera/" + testClient + "/upload_file_status", `{"file_upload_progress":{"a.mp4":"Inf"}}`, ErrMalformedMessage},
		{"error code overflow", "camera/" + testClient + "/resp", `{"result":"failed","error_code":1e30,"request_id":"R9"}`, ErrMalformedMessage},
		{"result with bad battery", "camera/" + testClient + "/resp", `{"result":"success","request_id":"R9","electric_percent":-3}`, ErrMalformedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.router.Process(context.Background(), tt.topic, []byte(tt.payload))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, h.status.Len())
	assert.Zero(t, h.responses.Len())
	assert.Empty(t, h.uploads.GetProgress(testDevice))
}

func TestHandle_LogsAndCounts(t *testing.T) {
	h := setupRouter(t)

	assert.NoError(t, h.router.Handle("camera/stranger/state", []byte(`{}`)))
	assert.NoError(t, h.router.Handle("bogus", []byte(`{}`)))
	assert.NoError(t, h.router.Handle("camera/"+testClient+"/state", []byte(`{`)))
	assert.NoError(t, h.router.Handle("camera/"+testClient+"/state", []byte(`{"status":"online"}`)))

	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.dropped.WithLabelValues(reasonUnresolvedDevice)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.dropped.WithLabelValues(reasonMalformedTopic)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.dropped.WithLabelValues(reasonMalformedMessage)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(h.metrics.messages.WithLabelValues("state", string(KindStatusReport))), 0)
}

func TestHandle_RecoversPanic(t *testing.T) {
	metrics := NewMetrics(nil)
	r := New(Config{}, Deps{
		Resolver: device.NewRegistry(nil),
		Metrics:  metrics,
	})

	// A nil repository behind the registry panics on lookup.
	assert.NotPanics(t, func() {
		assert.NoError(t, r.Handle("camera/"+testClient+"/state", []byte(`{}`)))
	})
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.dropped.WithLabelValues(reasonPanic)), 0)
}

func TestProcess_PersistenceErrorKeepsCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := device.NewMockRepository(ctrl)
	store.EXPECT().StableID(gomock.Any(), testClient).Return(testDevice, nil)
	store.EXPECT().UpdateStatus(gomock.Any(), testDevice, gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("database is locked"))

	status := device.NewStatusCache()
	r := New(Config{}, Deps{
		Resolver: device.NewRegistry(store),
		Store:    store,
		Tasks:    task.NewTracker(task.NewMockRepository(ctrl)),
		Status:   status,
	})

	_, err := r.Process(context.Background(), "camera/"+testClient+"/state", []byte(`{"status":"offline"}`))
	assert.ErrorIs(t, err, ErrPersistence)

	st, ok := status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.StatusOffline, st.Status)
}

func TestProcess_DeletedDeviceIsDropped(t *testing.T) {
	h := setupRouter(t)
	h.process(t, "state", `{"status":"online"}`)
	before, ok := h.status.Get(testDevice)
	require.True(t, ok)

	_, err := h.db.ExecContext(context.Background(), "DELETE FROM devices WHERE hardware_id = ?", testDevice)
	require.NoError(t, err)

	_, err = h.router.Process(context.Background(), "camera/"+testClient+"/state", []byte(`{"run_state":"recording"}`))
	assert.ErrorIs(t, err, ErrUnresolvedDevice)

	after, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Empty(t, after.RunState)
}

func TestIssueThenResult(t *testing.T) {
	h := setupRouter(t)
	wire := &loopback{}
	pub := command.NewPublisher(wire, h.registry, h.tracker, command.PublisherConfig{Namespace: "camera", QoS: 1}, nil)

	corr, err := pub.Issue(context.Background(), testDevice, command.KindStartRecord, command.Params{PreName: "lobby"}, "")
	require.NoError(t, err)
	assert.Equal(t, "camera/"+testClient+"/cmd", wire.topic)
	assert.Contains(t, string(wire.payload), corr)
	assert.Equal(t, task.StateCalling, h.taskState(t, corr).State)

	h.process(t, "resp", `{"result":"success","error_code":0,"request_id":"`+corr+`"}`)

	assert.Equal(t, task.StateSuccess, h.taskState(t, corr).State)
	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.RunStateRecording, st.RunState)

	require.Len(t, h.sink.results, 1)
	assert.Equal(t, corr, h.sink.results[0].CorrelationID)
}

// replyingLoopback delivers the device's reply to the router before
// Publish returns.
type replyingLoopback struct {
	h     *harness
	reply func(corr string) string
	err   error
}

func (l *replyingLoopback) EnsureConnected(context.Context) error { return nil }

func (l *replyingLoopback) Publish(_ string, payload []byte, _ byte, _ bool) error {
	var cmd struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return err
	}
	_, l.err = l.h.router.Process(context.Background(), "camera/"+testClient+"/resp", []byte(l.reply(cmd.RequestID)))
	return nil
}

func TestIssue_ReplyOvertakesPublish(t *testing.T) {
	h := setupRouter(t)
	wire := &replyingLoopback{h: h, reply: func(corr string) string {
		return `{"result":"success","error_code":0,"request_id":"` + corr + `"}`
	}}
	pub := command.NewPublisher(wire, h.registry, h.tracker, command.PublisherConfig{Namespace: "camera", QoS: 1}, nil)

	corr, err := pub.Issue(context.Background(), testDevice, command.KindStartRecord, command.Params{PreName: "lobby"}, "")
	require.NoError(t, err)
	require.NoError(t, wire.err)

	assert.Equal(t, task.StateSuccess, h.taskState(t, corr).State)
	st, ok := h.status.Get(testDevice)
	require.True(t, ok)
	assert.Equal(t, device.RunStateRecording, st.RunState)
}

// ─── Classification ─────────────────────────────────────────────────────────

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		payload string
		want    MessageKind
	}{
		{"upload channel beats everything", "upload_file_status", `{"videos":[],"file_list_upload_progress":{},"result":"x"}`, KindUploadReport},
		{"videos beats query and result", "resp", `{"videos":[],"file_list_upload_progress":{},"result":"x"}`, KindVideoList},
		{"query beats result", "resp", `{"file_list_upload_progress":{},"result":"x"}`, KindUploadQuery},
		{"result", "resp", `{"result":"x"}`, KindCommandResult},
		{"result on state channel", "state", `{"result":"x"}`, KindCommandResult},
		{"bare status", "state", `{"status":"online"}`, KindStatusReport},
		{"empty object", "resp", `{}`, KindStatusReport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := decode([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, classify(tt.channel, doc))
		})
	}
}

// ─── Wiring ─────────────────────────────────────────────────────────────────

func TestStart_Subscriptions(t *testing.T) {
	r := New(Config{Namespace: "camera"}, Deps{})
	sub := &fakeSubscriber{}

	require.NoError(t, r.Start(sub))
	assert.Equal(t, []subscription{
		{"camera/+/resp", 1},
		{"camera/+/state", 0},
		{"camera/+/upload_file_status", 0},
	}, sub.subs)

	assert.Error(t, r.Start(&fakeSubscriber{err: mqtt.ErrSubscribeFailed}))
}
