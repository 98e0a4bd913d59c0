package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"
	"github.com/borncrazy123/CamLink/internal/media"
	"github.com/borncrazy123/CamLink/internal/task"
)

const defaultStoreTimeout = 5 * time.Second

// Resolver maps a topic's client ID to the device's hardware ID.
type Resolver interface {
	StableID(ctx context.Context, clientID string) (string, error)
}

// StatusStore mirrors status changes into the devices table.
type StatusStore interface {
	UpdateStatus(ctx context.Context, hardwareID string, f device.StatusFields, seen time.Time) (int64, error)
}

// TaskTracker is the part of task.Tracker the router drives.
type TaskTracker interface {
	Get(ctx context.Context, correlationID string) (task.Task, error)
	MarkSuccess(ctx context.Context, correlationID, description string) error
	MarkFailed(ctx context.Context, correlationID string, code int, msg string) error
}

// StatusSink receives every applied status and command result. The
// InfluxDB client implements it.
type StatusSink interface {
	RecordStatus(deviceID string, s device.Status)
	RecordCommandResult(deviceID, kind string, r command.Response)
}

// Subscriber is the subscribing side of the MQTT client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds router settings.
type Config struct {
	// Namespace is the first topic level; empty means "camera".
	Namespace string
	// StoreTimeout bounds the store calls made for one message.
	StoreTimeout time.Duration
}

// Deps are the collaborators the router feeds. Sink, Metrics and Logger
// are optional.
type Deps struct {
	Resolver  Resolver
	Store     StatusStore
	Tasks     TaskTracker
	Status    *device.StatusCache
	Responses *command.ResponseCache
	Videos    *media.VideoListCache
	Uploads   *media.UploadProgressCache
	Sink      StatusSink
	Metrics   *Metrics
	Logger    Logger
}

// Router is the single consumer of camera messages. It classifies each
// message by shape and dispatches it to the caches, the task tracker and
// the store.
//
// Thread Safety: Handle may be called concurrently; each cache serialises
// its own writers.
type Router struct {
	deps         Deps
	topics       mqtt.Topics
	storeTimeout time.Duration
	now          func() time.Time
	logger       Logger
}

// New creates a router.
func New(cfg Config, deps Deps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Router{
		deps:         deps,
		topics:       mqtt.Topics{Namespace: cfg.Namespace},
		storeTimeout: timeout,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// Start subscribes Handle to the response (QoS 1), state (QoS 0) and
// upload status (QoS 0) channels of every camera.
func (r *Router) Start(sub Subscriber) error {
	subs := []struct {
		topic string
		qos   byte
	}{
		{r.topics.AllResponses(), 1},
		{r.topics.AllStates(), 0},
		{r.topics.AllUploadStatus(), 0},
	}
	for _, s := range subs {
		if err := sub.Subscribe(s.topic, s.qos, r.Handle); err != nil {
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
	}
	r.logger.Info("router subscribed", "namespace", r.topics.Namespace)
	return nil
}

// Handle is the mqtt.MessageHandler for camera topics. It never fails:
// drops and store errors are logged once and counted here.
func (r *Router) Handle(topic string, payload []byte) error {
	defer func() {
		if p := recover(); p != nil {
			r.deps.Metrics.drop(reasonPanic)
			r.logger.Error("router panic recovered", "topic", topic, "panic", p)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.storeTimeout)
	defer cancel()

	_, perr := r.Process(ctx, topic, payload)
	switch {
	case perr == nil:
	case errors.Is(perr, ErrMalformedTopic):
		r.deps.Metrics.drop(reasonMalformedTopic)
		r.logger.Warn("message dropped", "topic", topic, "error", perr)
	case errors.Is(perr, ErrUnresolvedDevice):
		r.deps.Metrics.drop(reasonUnresolvedDevice)
		r.logger.Warn("message dropped", "topic", topic, "error", perr)
	case errors.Is(perr, ErrMalformedMessage):
		r.deps.Metrics.drop(reasonMalformedMessage)
		r.logger.Warn("message dropped", "topic", topic, "error", perr)
	default:
		r.deps.Metrics.persistenceError()
		r.logger.Error("message applied in memory only", "topic", topic, "error", perr)
	}
	return nil
}

// Process runs one message through parse, resolve, decode, classify and
// dispatch. The kind is returned once classification has happened.
func (r *Router) Process(ctx context.Context, topic string, payload []byte) (MessageKind, error) {
	clientID, channel, ok := r.topics.Parse(topic)
	if !ok || channel == mqtt.ChannelCommand {
		return "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	deviceID, err := r.deps.Resolver.StableID(ctx, clientID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return "", fmt.Errorf("%w: client_id %s", ErrUnresolvedDevice, clientID)
		}
		return "", fmt.Errorf("%w: client_id %s: %w", ErrUnresolvedDevice, clientID, err)
	}

	doc, err := decode(payload)
	if err != nil {
		return "", err
	}

	kind := classify(channel, doc)
	switch kind {
	case KindUploadReport:
		err = r.handleUploadReport(doc, deviceID)
	case KindVideoList:
		err = r.handleVideoList(ctx, doc, deviceID)
	case KindUploadQuery:
		err = r.handleUploadQuery(ctx, doc, deviceID)
	case KindCommandResult:
		err = r.handleCommandResult(ctx, doc, deviceID, payload)
	default:
		err = r.handleStatusReport(ctx, doc, deviceID)
	}
	if err == nil || !errors.Is(err, ErrMalformedMessage) {
		r.deps.Metrics.dispatched(channel, kind)
	}
	return kind, err
}

func (r *Router) handleStatusReport(ctx context.Context, doc document, deviceID string) error {
	fields, err := doc.statusFields()
	if err != nil {
		return err
	}
	err = r.applyStatus(ctx, deviceID, fields)

	// A get_status answer arrives as a plain status report carrying the
	// request id.
	if corr := doc.requestID(); corr != "" {
		if t, terr := r.deps.Tasks.Get(ctx, corr); terr == nil &&
			t.Kind == string(command.KindGetStatus) && t.State == task.StateCalling {
			err = errors.Join(err, r.finish(corr, func() error {
				return r.deps.Tasks.MarkSuccess(ctx, corr, "status received")
			}))
		}
	}
	return err
}

func (r *Router) handleVideoList(ctx context.Context, doc document, deviceID string) error {
	corr := doc.requestID()
	if corr == "" {
		return fmt.Errorf("%w: video list without request_id", ErrMalformedMessage)
	}
	videos, err := doc.videos()
	if err != nil {
		return err
	}

	list := r.deps.Videos.Store(corr, deviceID, videos)
	return r.finish(corr, func() error {
		return r.deps.Tasks.MarkSuccess(ctx, corr, fmt.Sprintf("found %d videos", list.Count))
	})
}

func (r *Router) handleUploadReport(doc document, deviceID string) error {
	files, err := doc.progress(keyUploadReport)
	if err != nil {
		return err
	}
	r.deps.Uploads.Update(deviceID, files, doc.requestID())
	return nil
}

func (r *Router) handleUploadQuery(ctx context.Context, doc document, deviceID string) error {
	corr := doc.requestID()
	if corr == "" {
		return fmt.Errorf("%w: upload progress result without request_id", ErrMalformedMessage)
	}
	files, err := doc.progress(keyUploadQuery)
	if err != nil {
		return err
	}

	r.deps.Uploads.Update(deviceID, files, corr)
	return r.finish(corr, func() error {
		return r.deps.Tasks.MarkSuccess(ctx, corr, fmt.Sprintf("upload progress for %d files", len(files)))
	})
}

func (r *Router) handleCommandResult(ctx context.Context, doc document, deviceID string, payload []byte) error {
	corr := doc.requestID()
	if corr == "" {
		return fmt.Errorf("%w: command result without request_id", ErrMalformedMessage)
	}

	fields, err := doc.statusFields()
	if err != nil {
		return err
	}
	resp := command.Response{
		DeviceID:      deviceID,
		CorrelationID: corr,
		ErrorCode:     command.NoErrorCode,
		Raw:           payload,
	}
	resp.Result, _ = doc.str(keyResult)
	if code, ok, err := doc.integer(keyErrorCode); err != nil {
		return err
	} else if ok {
		resp.ErrorCode = int(code)
	}
	resp.ErrorMsg, _ = doc.str(keyErrorMsg)
	r.deps.Responses.Store(corr, deviceID, resp)

	// Read the kind before the transition; inference needs it either way.
	var kind string
	if t, err := r.deps.Tasks.Get(ctx, corr); err == nil {
		kind = t.Kind
	}

	var errs []error
	switch resp.Result {
	case command.ResultSuccess:
		errs = append(errs, r.finish(corr, func() error {
			return r.deps.Tasks.MarkSuccess(ctx, corr, "command succeeded")
		}))
	case command.ResultFailed:
		msg := resp.ErrorMsg
		if msg == "" {
			msg = "command failed"
		}
		errs = append(errs, r.finish(corr, func() error {
			return r.deps.Tasks.MarkFailed(ctx, corr, resp.ErrorCode, msg)
		}))
	}

	if inferred, ok := inferStatus(command.Kind(kind), resp); ok {
		// Explicit fields from the payload are applied on top.
		fields = inferred.Merge(fields)
	}
	if !fields.IsEmpty() {
		errs = append(errs, r.applyStatus(ctx, deviceID, fields))
	}

	if r.deps.Sink != nil {
		r.deps.Sink.RecordCommandResult(deviceID, kind, resp)
	}
	return errors.Join(errs...)
}

// inferStatus returns the status a successful command implies, if any.
func inferStatus(kind command.Kind, resp command.Response) (device.StatusFields, bool) {
	if !resp.Succeeded() {
		return device.StatusFields{}, false
	}
	runState, ok := command.ImpliedRunState(kind)
	if !ok {
		return device.StatusFields{}, false
	}
	return device.StatusFields{
		RunState: device.Ptr(runState),
		Status:   device.Ptr(device.StatusOnline),
	}, true
}

// applyStatus updates the cache, then mirrors to the store and the sink.
func (r *Router) applyStatus(ctx context.Context, deviceID string, f device.StatusFields) error {
	status := r.deps.Status.Update(deviceID, f)
	if r.deps.Sink != nil {
		r.deps.Sink.RecordStatus(deviceID, status)
	}

	n, err := r.deps.Store.UpdateStatus(ctx, deviceID, f, r.now())
	if err != nil {
		return fmt.Errorf("%w: device %s: %w", ErrPersistence, deviceID, err)
	}
	if n == 0 {
		r.logger.Warn("status not mirrored, device row missing", "hardware_id", deviceID)
	}
	return nil
}

// finish runs a task transition. Unknown and already-finished tasks are
// expected (duplicate deliveries, commands issued elsewhere) and only
// logged at debug level.
func (r *Router) finish(corr string, transition func() error) error {
	err := transition()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, task.ErrTaskNotFound), errors.Is(err, task.ErrTaskTerminal):
		r.logger.Debug("task not transitioned", "request_id", corr, "reason", err)
		return nil
	default:
		return fmt.Errorf("%w: task %s: %w", ErrPersistence, corr, err)
	}
}
