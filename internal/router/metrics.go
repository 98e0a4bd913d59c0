package router

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons used as the "reason" label.
const (
	reasonMalformedTopic   = "malformed_topic"
	reasonUnresolvedDevice = "unresolved_device"
	reasonMalformedMessage = "malformed_message"
	reasonPanic            = "panic"
)

// Metrics counts what the router does with inbound messages.
type Metrics struct {
	messages *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	persist  prometheus.Counter
}

// NewMetrics creates the router counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camlink",
			Subsystem: "router",
			Name:      "messages_total",
			Help:      "Inbound messages dispatched, by channel and classified kind.",
		}, []string{"channel", "kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camlink",
			Subsystem: "router",
			Name:      "dropped_total",
			Help:      "Inbound messages dropped before dispatch, by reason.",
		}, []string{"reason"}),
		persist: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "camlink",
			Subsystem: "router",
			Name:      "persistence_errors_total",
			Help:      "Messages whose store writes failed after the caches were updated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.messages, m.dropped, m.persist)
	}
	return m
}

func (m *Metrics) dispatched(channel string, kind MessageKind) {
	if m != nil {
		m.messages.WithLabelValues(channel, string(kind)).Inc()
	}
}

func (m *Metrics) drop(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) persistenceError() {
	if m != nil {
		m.persist.Inc()
	}
}
