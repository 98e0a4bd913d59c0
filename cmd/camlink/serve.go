package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/borncrazy123/CamLink/internal/api"
	"github.com/borncrazy123/CamLink/internal/command"
	"github.com/borncrazy123/CamLink/internal/device"
	"github.com/borncrazy123/CamLink/internal/infrastructure/config"
	"github.com/borncrazy123/CamLink/internal/infrastructure/influxdb"
	"github.com/borncrazy123/CamLink/internal/infrastructure/logging"
	"github.com/borncrazy123/CamLink/internal/infrastructure/mqtt"
	"github.com/borncrazy123/CamLink/internal/media"
	"github.com/borncrazy123/CamLink/internal/router"
	"github.com/borncrazy123/CamLink/internal/task"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the publisher, router and HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
}

// run wires the engine and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Logging, version)
	log.Info("starting CamLink",
		"version", version,
		"commit", commit,
		"build_date", date,
		"service_id", cfg.Service.ID,
	)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	deviceRepo := device.NewSQLiteRepository(db.DB)
	registry := device.NewRegistry(deviceRepo)
	registry.SetLogger(log)
	if refreshErr := registry.RefreshCache(ctx); refreshErr != nil {
		return fmt.Errorf("loading device registry: %w", refreshErr)
	}

	tracker := task.NewTracker(task.NewSQLiteRepository(db.DB))
	tracker.SetLogger(log)

	statusCache := device.NewStatusCache()
	responses := command.NewResponseCache()
	videos := media.NewVideoListCache()
	uploads := media.NewUploadProgressCache()

	// The publisher and router hold separate broker sessions.
	pubClient := newMQTTClient(ctx, cfg.MQTT, mqtt.RolePublisher, log)
	defer closeMQTT(pubClient, log)
	routerClient := newMQTTClient(ctx, cfg.MQTT, mqtt.RoleRouter, log)
	defer closeMQTT(routerClient, log)

	influxClient, err := connectInflux(ctx, cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := api.NewHub(cfg.API.WebSocket, log)
	sinks := fanoutSink{hub}
	if influxClient != nil {
		sinks = append(sinks, influxClient)
	}

	breaker := command.NewBreaker(cfg.MQTT.Reconnect.BreakerThreshold, cfg.MQTT.Reconnect.BreakerCooldown)
	publisher := command.NewPublisher(pubClient, registry, tracker, command.PublisherConfig{
		Namespace: cfg.MQTT.Namespace,
		QoS:       byte(cfg.MQTT.QoS), //nolint:gosec // Validated to 0-2
		Breaker:   breaker,
	}, log)

	rt := router.New(router.Config{
		Namespace:    cfg.MQTT.Namespace,
		StoreTimeout: cfg.Engine.StoreTimeout,
	}, router.Deps{
		Resolver:  registry,
		Store:     deviceRepo,
		Tasks:     tracker,
		Status:    statusCache,
		Responses: responses,
		Videos:    videos,
		Uploads:   uploads,
		Sink:      sinks,
		Metrics:   router.NewMetrics(metricsRegistry),
		Logger:    log,
	})
	if startErr := rt.Start(routerClient); startErr != nil {
		return fmt.Errorf("starting router: %w", startErr)
	}

	health := map[string]api.HealthChecker{
		"database":       db,
		"mqtt_publisher": pubClient,
		"mqtt_router":    routerClient,
		"mqtt_breaker":   breaker,
	}
	if influxClient != nil {
		health["influxdb"] = influxClient
	}

	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Devices:   registry,
			Commands:  publisher,
			Tasks:     tracker,
			Status:    statusCache,
			Responses: responses,
			Videos:    videos,
			Uploads:   uploads,
			Hub:       hub,
			Registry:  metricsRegistry,
			Health:    health,
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("HTTP API disabled")
	}

	go purgeLoop(ctx, cfg.Engine, responses, tracker, log)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse: API, InfluxDB, MQTT router, MQTT publisher, database.
	log.Info("CamLink stopped")
	return nil
}

// newMQTTClient creates a role client and connects it in the background.
// Startup does not wait for the broker; the router's subscriptions are
// applied on connect.
func newMQTTClient(ctx context.Context, cfg config.MQTTConfig, role string, log *logging.Logger) *mqtt.Client {
	client := mqtt.New(cfg, role)
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT connected",
			"role", role,
			"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
			"client_id", client.ClientID(),
		)
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "role", role, "error", err)
	})

	go func() {
		if err := client.ConnectWithRetry(ctx); err != nil {
			log.Warn("MQTT connect abandoned", "role", role, "error", err)
		}
	}()
	return client
}

func closeMQTT(client *mqtt.Client, log *logging.Logger) {
	log.Info("disconnecting from MQTT", "client_id", client.ClientID())
	if err := client.Close(); err != nil {
		log.Error("error closing MQTT", "error", err)
	}
}

// connectInflux returns nil when InfluxDB is disabled.
func connectInflux(ctx context.Context, cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.Enabled {
		log.Info("InfluxDB disabled")
		return nil, nil //nolint:nilnil // Disabled is not an error
	}
	client, err := influxdb.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client, nil
}

// fanoutSink forwards router events to every sink in order.
type fanoutSink []router.StatusSink

func (f fanoutSink) RecordStatus(deviceID string, s device.Status) {
	for _, sink := range f {
		sink.RecordStatus(deviceID, s)
	}
}

func (f fanoutSink) RecordCommandResult(deviceID, kind string, r command.Response) {
	for _, sink := range f {
		sink.RecordCommandResult(deviceID, kind, r)
	}
}

// purgeLoop drops cached results and in-memory task entries older than
// ResponseTTL. It does nothing when the TTL is zero.
func purgeLoop(ctx context.Context, cfg config.EngineConfig, responses *command.ResponseCache, tracker *task.Tracker, log *logging.Logger) {
	if cfg.ResponseTTL <= 0 {
		return
	}
	interval := cfg.PurgeInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged := responses.PurgeOlderThan(cfg.ResponseTTL)
			forgotten := tracker.Forget(cfg.ResponseTTL)
			if purged > 0 || forgotten > 0 {
				log.Debug("purged expired results", "responses", purged, "tasks", forgotten)
			}
		}
	}
}
