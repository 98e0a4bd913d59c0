package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/borncrazy123/CamLink/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is in milliseconds.
	defaultDisconnectQuiesce = 1000

	defaultKeepAlive = 60 * time.Second

	// connectPollInterval is how often EnsureConnected re-checks a
	// reconnect that is already in flight.
	connectPollInterval = 100 * time.Millisecond

	maxQoS        = 2
	tlsMinVersion = tls.VersionTLS12
)

// Roles used as client ID suffixes.
const (
	RolePublisher = "publisher"
	RoleRouter    = "router"
)

func roleClientID(base, role string) string {
	if role == "" {
		return base
	}
	return base + "-" + role
}

// buildClientOptions creates paho options for one role's session.
//
// Initial connection retries are driven by ConnectWithRetry so that each
// attempt is observable; paho's own ConnectRetry stays off. After the first
// success, paho auto-reconnects with MaxReconnectInterval pinned to the
// configured interval, so the delay never grows.
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))
	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(false)
	interval := cfg.Reconnect.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	opts.SetConnectRetryInterval(interval)
	opts.SetMaxReconnectInterval(interval)

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// retryDelay is the fixed interval plus a uniform random jitter in [0, jitter).
func retryDelay(cfg config.MQTTReconnectConfig) time.Duration {
	delay := cfg.Interval
	if delay <= 0 {
		delay = 5 * time.Second
	}
	if cfg.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(cfg.Jitter)))
	}
	return delay
}

// statusPayload is published retained on camlink/system/status/{client_id}.
type statusPayload struct {
	Status    string `json:"status"`
	ClientID  string `json:"client_id"`
	Role      string `json:"role,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func marshalStatus(p statusPayload) []byte {
	p.Timestamp = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(p) //nolint:errcheck // Plain struct of strings
	return data
}

// configureLWT has the broker publish an unexpected-disconnect status if
// this session dies without a clean Close.
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	payload := marshalStatus(statusPayload{
		Status:   "offline",
		ClientID: clientID,
		Reason:   "unexpected_disconnect",
	})
	opts.SetBinaryWill(Topics{}.SystemStatus(clientID), payload, 1, true)
}

func buildOnlinePayload(clientID, role string) []byte {
	return marshalStatus(statusPayload{Status: "online", ClientID: clientID, Role: role})
}

func buildOfflinePayload(clientID, role string) []byte {
	return marshalStatus(statusPayload{
		Status:   "offline",
		ClientID: clientID,
		Role:     role,
		Reason:   "graceful_shutdown",
	})
}
