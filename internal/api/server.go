package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/config"
	"github.com/borncrazy123/CamLink/internal/infrastructure/logging"
	"github.com/borncrazy123/CamLink/internal/media"
	"github.com/borncrazy123/CamLink/internal/task"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// CommandIssuer sends commands to cameras. command.Publisher implements it.
type CommandIssuer interface {
	Issue(ctx context.Context, stableID string, kind command.Kind, params command.Params, correlationID string) (string, error)
}

// DeviceDirectory lists and registers devices. device.Registry implements it.
type DeviceDirectory interface {
	Register(ctx context.Context, d *device.Device) error
	Repository() device.Repository
}

// TaskReader reads tracked tasks. task.Tracker implements it.
type TaskReader interface {
	Get(ctx context.Context, correlationID string) (task.Task, error)
	List(ctx context.Context, f task.Filter) ([]task.Task, error)
	Pending(ctx context.Context, olderThan time.Duration, limit int) ([]task.Task, error)
}

// HealthChecker is implemented by every infrastructure component.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Logger    *logging.Logger
	Devices   DeviceDirectory
	Commands  CommandIssuer
	Tasks     TaskReader
	Status    *device.StatusCache
	Responses *command.ResponseCache
	Videos    *media.VideoListCache
	Uploads   *media.UploadProgressCache

	// Hub, if set, is the live event hub also fed by the router.
	Hub *Hub

	// Registry collects /metrics. A private registry is created if nil.
	Registry *prometheus.Registry

	// Health lists the components reported by /api/v1/health, by name.
	Health  map[string]HealthChecker
	Version string
}

// Server is the HTTP API server for CamLink.
//
// It is a thin surface over the engine: handlers translate requests into
// calls on the publisher, the caches and the task tracker.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	devices   DeviceDirectory
	commands  CommandIssuer
	tasks     TaskReader
	status    *device.StatusCache
	responses *command.ResponseCache
	videos    *media.VideoListCache
	uploads   *media.UploadProgressCache
	hub       *Hub
	registry  *prometheus.Registry
	health    map[string]HealthChecker
	version   string
	startTime time.Time

	server *http.Server
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Devices == nil:
		return nil, fmt.Errorf("device directory is required")
	case deps.Tasks == nil:
		return nil, fmt.Errorf("task reader is required")
	case deps.Status == nil || deps.Responses == nil || deps.Videos == nil || deps.Uploads == nil:
		return nil, fmt.Errorf("all caches are required")
	}
	// Commands is optional: without it the API is read-only.

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.Config.WebSocket, logger)
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if err := registry.Register(NewStatusCollector(deps.Status, hub)); err != nil {
		return nil, fmt.Errorf("registering status collector: %w", err)
	}

	return &Server{
		cfg:       deps.Config,
		logger:    logger,
		devices:   deps.Devices,
		commands:  deps.Commands,
		tasks:     deps.Tasks,
		status:    deps.Status,
		responses: deps.Responses,
		videos:    deps.Videos,
		uploads:   deps.Uploads,
		hub:       hub,
		registry:  registry,
		health:    deps.Health,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Hub returns the live event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// ctx bounds the hub; Close stops both.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr, "auth", s.cfg.Auth.JWTSecret != "")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
