package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
service:
  id: "edge-7"
database:
  path: "/tmp/test.db"
mqtt:
  broker:
    host: "broker.local"
    port: 8883
    client_id: "camlink-test"
  qos: 1
  namespace: "camera"
  reconnect:
    interval: 2s
    jitter: 500ms
    connect_wait: 3s
engine:
  store_timeout: 1s
  response_ttl: 10m
  purge_interval: 1m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "edge-7" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "edge-7")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.MQTT.Reconnect.Interval != 2*time.Second {
		t.Errorf("MQTT.Reconnect.Interval = %v, want 2s", cfg.MQTT.Reconnect.Interval)
	}
	if cfg.MQTT.Reconnect.Jitter != 500*time.Millisecond {
		t.Errorf("MQTT.Reconnect.Jitter = %v, want 500ms", cfg.MQTT.Reconnect.Jitter)
	}
	if cfg.Engine.ResponseTTL != 10*time.Minute {
		t.Errorf("Engine.ResponseTTL = %v, want 10m", cfg.Engine.ResponseTTL)
	}
	// Unset sections keep their defaults.
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
service:
  id: ""
`)

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected validation error for empty service.id, got nil")
	}
}

func TestLoad_InvalidEnvOverride(t *testing.T) {
	path := writeConfig(t, "service:\n  id: x\n")
	t.Setenv("CAMLINK_MQTT_PORT", "not-a-port")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for malformed CAMLINK_MQTT_PORT, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing service id", mutate: func(c *Config) { c.Service.ID = "" }, wantErr: true},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "invalid qos", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "wildcard namespace", mutate: func(c *Config) { c.MQTT.Namespace = "cam/+" }, wantErr: true},
		{name: "zero reconnect interval", mutate: func(c *Config) { c.MQTT.Reconnect.Interval = 0 }, wantErr: true},
		{name: "negative jitter", mutate: func(c *Config) { c.MQTT.Reconnect.Jitter = -time.Second }, wantErr: true},
		{name: "zero connect wait", mutate: func(c *Config) { c.MQTT.Reconnect.ConnectWait = 0 }, wantErr: true},
		{name: "api port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "short jwt secret", mutate: func(c *Config) { c.API.Auth.JWTSecret = "short" }, wantErr: true},
		{
			name:   "jwt secret",
			mutate: func(c *Config) { c.API.Auth.JWTSecret = "0123456789abcdef0123456789abcdef" },
		},
		{name: "zero ping interval", mutate: func(c *Config) { c.API.WebSocket.PingInterval = 0 }, wantErr: true},
		{
			name:   "api port ignored when disabled",
			mutate: func(c *Config) { c.API.Enabled = false; c.API.Port = 0 },
		},
		{
			name:    "influx without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "cams" },
			wantErr: true,
		},
		{
			name:    "ttl without purge interval",
			mutate:  func(c *Config) { c.Engine.PurgeInterval = 0 },
			wantErr: true,
		},
		{
			name:   "no ttl no purge interval",
			mutate: func(c *Config) { c.Engine.ResponseTTL = 0; c.Engine.PurgeInterval = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("CAMLINK_DATABASE_PATH", "/custom/path.db")
	t.Setenv("CAMLINK_MQTT_HOST", "mqtt.example.com")
	t.Setenv("CAMLINK_MQTT_PORT", "8883")
	t.Setenv("CAMLINK_MQTT_USERNAME", "testuser")
	t.Setenv("CAMLINK_MQTT_PASSWORD", "testpass")
	t.Setenv("CAMLINK_MQTT_RECONNECT_INTERVAL", "15s")
	t.Setenv("CAMLINK_API_HOST", "192.168.1.1")
	t.Setenv("CAMLINK_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("CAMLINK_API_JWT_SECRET", "env-secret")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v, want testuser/testpass", cfg.MQTT.Auth)
	}
	if cfg.MQTT.Reconnect.Interval != 15*time.Second {
		t.Errorf("MQTT.Reconnect.Interval = %v, want 15s", cfg.MQTT.Reconnect.Interval)
	}
	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
	if cfg.API.Auth.JWTSecret != "env-secret" {
		t.Errorf("API.Auth.JWTSecret = %q, want %q", cfg.API.Auth.JWTSecret, "env-secret")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("CAMLINK_TEST_DOTENV=loaded\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("CAMLINK_TEST_DOTENV", "")
	os.Unsetenv("CAMLINK_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("CAMLINK_TEST_DOTENV"); got != "loaded" {
		t.Errorf("CAMLINK_TEST_DOTENV = %q, want %q", got, "loaded")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig should validate: %v", err)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Namespace != "camera" {
		t.Errorf("defaultConfig MQTT.Namespace = %q, want camera", cfg.MQTT.Namespace)
	}
	if cfg.MQTT.Reconnect.Interval != 5*time.Second {
		t.Errorf("defaultConfig MQTT.Reconnect.Interval = %v, want 5s", cfg.MQTT.Reconnect.Interval)
	}
}
