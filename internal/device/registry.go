package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

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

// Registry resolves between hardware IDs and MQTT client IDs. Every lookup
// goes to the repository, so a deleted or reassigned device stops resolving
// as soon as the row changes. The last pair seen for each device is kept
// only to log removals and reassignments.
//
// All public methods are thread-safe.
type Registry struct {
	repo Repository

	byHardware map[string]string // hardware_id -> client_id
	byClient   map[string]string // client_id -> hardware_id
	mu         sync.Mutex

	logger Logger
}

// NewRegistry creates a registry over repo.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:       repo,
		byHardware: make(map[string]string),
		byClient:   make(map[string]string),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Repository returns the underlying store.
func (r *Registry) Repository() Repository {
	return r.repo
}

// RefreshCache reloads the known ID pairs from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.List(ctx, MaxListLimit)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	byHardware := make(map[string]string, len(devices))
	byClient := make(map[string]string, len(devices))
	for _, d := range devices {
		byHardware[d.HardwareID] = d.ClientID
		byClient[d.ClientID] = d.HardwareID
	}

	r.mu.Lock()
	r.byHardware = byHardware
	r.byClient = byClient
	r.mu.Unlock()

	r.logger.Info("device registry loaded", "count", len(devices))
	return nil
}

// TransportID resolves a hardware ID to its client ID.
func (r *Registry) TransportID(ctx context.Context, hardwareID string) (string, error) {
	clientID, err := r.repo.TransportID(ctx, hardwareID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			r.forgetHardware(hardwareID)
		}
		return "", err
	}
	r.remember(hardwareID, clientID)
	return clientID, nil
}

// StableID resolves a client ID to its hardware ID.
func (r *Registry) StableID(ctx context.Context, clientID string) (string, error) {
	hardwareID, err := r.repo.StableID(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			r.forgetClient(clientID)
		}
		return "", err
	}
	r.remember(hardwareID, clientID)
	return hardwareID, nil
}

// Register creates the device in the repository and records its IDs.
func (r *Registry) Register(ctx context.Context, d *Device) error {
	if err := r.repo.Create(ctx, d); err != nil {
		return err
	}
	r.remember(d.HardwareID, d.ClientID)
	r.logger.Info("device registered", "hardware_id", d.HardwareID, "client_id", d.ClientID)
	return nil
}

func (r *Registry) remember(hardwareID, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byHardware[hardwareID]; ok && prev != clientID {
		delete(r.byClient, prev)
		r.logger.Info("device client id reassigned", "hardware_id", hardwareID, "from", prev, "to", clientID)
	}
	if prev, ok := r.byClient[clientID]; ok && prev != hardwareID {
		delete(r.byHardware, prev)
	}
	r.byHardware[hardwareID] = clientID
	r.byClient[clientID] = hardwareID
}

func (r *Registry) forgetHardware(hardwareID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientID, ok := r.byHardware[hardwareID]
	if !ok {
		return
	}
	delete(r.byHardware, hardwareID)
	delete(r.byClient, clientID)
	r.logger.Info("device no longer registered", "hardware_id", hardwareID, "client_id", clientID)
}

func (r *Registry) forgetClient(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hardwareID, ok := r.byClient[clientID]
	if !ok {
		return
	}
	delete(r.byClient, clientID)
	delete(r.byHardware, hardwareID)
	r.logger.Info("device no longer registered", "hardware_id", hardwareID, "client_id", clientID)
}
