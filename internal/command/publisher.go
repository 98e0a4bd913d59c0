package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"
	"github.com/borncrazy123/CamLink/internal/task"
)

// Transport is the publishing side of the MQTT client.
type Transport interface {
	// EnsureConnected makes one bounded reconnect attempt if the session
	// is down.
	EnsureConnected(ctx context.Context) error

	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Resolver maps a stable device ID to the client ID used in topics.
type Resolver interface {
	TransportID(ctx context.Context, hardwareID string) (string, error)
}

// TaskRecorder registers the lifecycle record of a command before it is
// published, and withdraws it if publishing fails.
type TaskRecorder interface {
	Create(ctx context.Context, clientID, correlationID, kind, description string) (task.Task, error)
	Discard(ctx context.Context, correlationID string) error
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

// PublisherConfig holds the publisher's wire settings.
type PublisherConfig struct {
	// Namespace is the first topic level; empty means "camera".
	Namespace string
	// QoS for command messages.
	QoS byte
	// Breaker gates reconnect attempts; nil disables it.
	Breaker *Breaker
}

// Publisher turns command intents into MQTT messages and registers a task
// for each one the broker accepts.
//
// Acceptance is transport-level only: it means the broker took the
// message, not that the camera received or executed it.
//
// Thread Safety: Issue is safe for concurrent use.
type Publisher struct {
	transport Transport
	resolver  Resolver
	tasks     TaskRecorder
	topics    mqtt.Topics
	qos       byte
	breaker   *Breaker
	newID     func() string
	logger    Logger
}

// NewPublisher creates a publisher.
//
// Parameters:
//   - transport: MQTT client owned by the publisher role
//   - resolver: stable -> transport ID lookup (normally *device.Registry)
//   - tasks: task tracker that records issued commands
//   - cfg: topic namespace, QoS and optional breaker
//   - logger: Logger instance (may be nil)
func NewPublisher(transport Transport, resolver Resolver, tasks TaskRecorder, cfg PublisherConfig, logger Logger) *Publisher {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Publisher{
		transport: transport,
		resolver:  resolver,
		tasks:     tasks,
		topics:    mqtt.Topics{Namespace: cfg.Namespace},
		qos:       cfg.QoS,
		breaker:   cfg.Breaker,
		newID:     NewCorrelationID,
		logger:    logger,
	}
}

// Issue publishes kind to the device identified by stableID.
//
// correlationID may be empty, in which case one is generated. The returned
// id is non-empty whenever the failure happened at or after publishing, so
// callers can log it. A nil error means the command was accepted.
//
// Returns:
//   - ErrUnsupportedCommand or ErrInvalidParams before anything is sent
//   - device.ErrDeviceNotFound (wrapped) when stableID does not resolve
//   - ErrCircuitOpen, mqtt.ErrNotConnected or mqtt.ErrPublishFailed
//     (wrapped) when the message could not be handed to the broker
//   - task.ErrTaskExists when correlationID is already in use
func (p *Publisher) Issue(ctx context.Context, stableID string, kind Kind, params Params, correlationID string) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCommand, kind)
	}
	if err := params.Validate(kind); err != nil {
		return "", err
	}

	transportID, err := p.resolver.TransportID(ctx, stableID)
	if err != nil {
		p.logger.Warn("command target not resolved", "hardware_id", stableID, "action", kind, "error", err)
		return "", fmt.Errorf("resolving %s: %w", stableID, err)
	}

	if correlationID == "" {
		correlationID = p.newID()
	}

	payload, err := encode(kind, correlationID, params)
	if err != nil {
		return correlationID, fmt.Errorf("encoding %s: %w", kind, err)
	}

	if err := p.connect(ctx); err != nil {
		p.logger.Warn("command not sent, transport unavailable",
			"hardware_id", stableID, "action", kind, "request_id", correlationID, "error", err)
		return correlationID, err
	}

	// The task is indexed before publishing so a reply that overtakes
	// Publish still finds it.
	if _, err := p.tasks.Create(ctx, transportID, correlationID, string(kind), describe(kind, params)); err != nil {
		if errors.Is(err, task.ErrTaskExists) {
			p.logger.Warn("command not sent, request id in use",
				"hardware_id", stableID, "action", kind, "request_id", correlationID)
			return correlationID, err
		}
		p.logger.Error("task not persisted for command",
			"request_id", correlationID, "action", kind, "error", err)
	}

	topic := p.topics.Command(transportID)
	if err := p.transport.Publish(topic, payload, p.qos, false); err != nil {
		p.logger.Error("command publish failed",
			"topic", topic, "action", kind, "request_id", correlationID, "error", err)
		if discardErr := p.tasks.Discard(ctx, correlationID); discardErr != nil {
			p.logger.Warn("task for unsent command not withdrawn",
				"request_id", correlationID, "error", discardErr)
		}
		return correlationID, fmt.Errorf("publishing %s: %w", kind, err)
	}

	p.logger.Info("command sent",
		"hardware_id", stableID, "client_id", transportID, "action", kind, "request_id", correlationID)
	return correlationID, nil
}

// connect runs the transport's bounded reconnect through the breaker.
func (p *Publisher) connect(ctx context.Context) error {
	done, err := p.breaker.Allow()
	if err != nil {
		return err
	}
	err = p.transport.EnsureConnected(ctx)
	done(err)
	return err
}
