package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/borncrazy123/CamLink/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for one CamLink role (publisher or router).
//
// Each role holds its own broker session under the client ID
// "<broker.client_id>-<role>". Once connected, paho reconnects in the
// background at the configured fixed interval; subscriptions are restored
// on every reconnect.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client   pahomqtt.Client
	cfg      config.MQTTConfig
	role     string
	clientID string

	// subscriptions tracks active subscriptions for re-subscription on reconnect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	connected bool
	connMu    sync.RWMutex

	// dialMu serialises explicit connect attempts on the paho client.
	dialMu sync.Mutex

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger is the subset of logging.Logger used by the client.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers run on paho's delivery goroutine and must not block for long.
// A returned error is logged and does not affect acknowledgement.
type MessageHandler func(topic string, payload []byte) error

// New builds a client for role without connecting it.
func New(cfg config.MQTTConfig, role string) *Client {
	c := &Client{
		cfg:           cfg,
		role:          role,
		clientID:      roleClientID(cfg.Broker.ClientID, role),
		subscriptions: make(map[string]subscription),
	}

	opts := buildClientOptions(cfg, c.clientID)
	configureLWT(opts, c.clientID)

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		if logger := c.getLogger(); logger != nil {
			logger.Info("mqtt reconnecting", "client_id", c.clientID)
		}
	})

	c.client = pahomqtt.NewClient(opts)
	return c
}

// Connect makes a single connection attempt, bounded by ctx and the
// client's connect timeout.
func (c *Client) Connect(ctx context.Context) error {
	c.dialMu.Lock()
	defer c.dialMu.Unlock()
	return c.dial(ctx, defaultConnectTimeout)
}

func (c *Client) dial(ctx context.Context, wait time.Duration) error {
	if c.client.IsConnectionOpen() {
		c.setConnected(true)
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
	}
	if wait <= 0 {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, context.DeadlineExceeded)
	}

	token := c.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	case <-time.After(wait):
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The OnConnect callback runs asynchronously; mark connected now so
	// callers see IsConnected() == true as soon as Connect returns.
	c.setConnected(true)
	return nil
}

// ConnectWithRetry retries Connect until it succeeds or ctx is cancelled.
// Attempts are spaced by the reconnect interval plus random jitter; there
// is no attempt limit and no backoff growth.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}

		delay := retryDelay(c.cfg.Reconnect)
		if logger := c.getLogger(); logger != nil {
			logger.Warn("mqtt connect failed, retrying",
				"client_id", c.clientID,
				"attempt", attempt,
				"retry_in", delay.String(),
				"error", err,
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
		case <-timer.C:
		}
	}
}

// EnsureConnected returns nil if the session is open. Otherwise it makes
// one synchronous attempt bounded by the reconnect connect_wait. If another
// attempt (background retry or paho auto-reconnect) is already running, it
// waits for that attempt's outcome for at most the same bound instead of
// starting a second one.
func (c *Client) EnsureConnected(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}

	wait := c.cfg.Reconnect.ConnectWait
	if wait <= 0 {
		wait = defaultConnectTimeout
	}

	if c.client.IsConnected() || !c.dialMu.TryLock() {
		return c.waitForConnection(ctx, wait)
	}
	defer c.dialMu.Unlock()
	return c.dial(ctx, wait)
}

func (c *Client) waitForConnection(ctx context.Context, wait time.Duration) error {
	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	tick := time.NewTicker(connectPollInterval)
	defer tick.Stop()

	for {
		if c.client.IsConnectionOpen() {
			c.setConnected(true)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrNotConnected, ctx.Err())
		case <-deadline.C:
			return fmt.Errorf("%w: reconnect in progress, not open after %v", ErrNotConnected, wait)
		case <-tick.C:
		}
	}
}

func (c *Client) handleConnect() {
	c.setConnected(true)
	c.restoreSubscriptions()
	c.publishOnlineStatus()

	if logger := c.getLogger(); logger != nil {
		logger.Info("mqtt connected", "client_id", c.clientID)
	}

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

func (c *Client) handleDisconnect(err error) {
	c.setConnected(false)

	if logger := c.getLogger(); logger != nil {
		logger.Warn("mqtt connection lost", "client_id", c.clientID, "error", err)
	}

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	defer c.subMu.RUnlock()

	for _, sub := range c.subscriptions {
		token := c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
		go func(topic string) {
			if token.WaitTimeout(defaultPublishTimeout) && token.Error() == nil {
				return
			}
			if logger := c.getLogger(); logger != nil {
				logger.Error("mqtt resubscribe failed", "topic", topic, "error", token.Error())
			}
		}(sub.topic)
	}
}

func (c *Client) publishOnlineStatus() {
	topic := Topics{}.SystemStatus(c.clientID)
	c.client.Publish(topic, 1, true, buildOnlinePayload(c.clientID, c.role))
}

// Close publishes a graceful offline status and disconnects.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	if c.IsConnected() {
		topic := Topics{}.SystemStatus(c.clientID)
		token := c.client.Publish(topic, 1, true, buildOfflinePayload(c.clientID, c.role))
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)
	return nil
}

// HealthCheck reports ErrNotConnected when the session is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the session is open right now.
func (c *Client) IsConnected() bool {
	if c.client == nil {
		return false
	}
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnectionOpen()
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// ClientID returns the role-suffixed MQTT client ID.
func (c *Client) ClientID() string {
	return c.clientID
}

// SetOnConnect sets a callback invoked on initial connect and every reconnect.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback invoked when the connection is lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for connection events and handler failures.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// wrapHandler adapts a MessageHandler to paho with panic recovery.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("mqtt handler returned error", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
