package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts transport traffic per transport name. A nil *Metrics
// counts nothing.
type Metrics struct {
	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	errors          *prometheus.CounterVec
	polls           *prometheus.CounterVec
}

// NewMetrics registers the transport counters with reg, a nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	labels := []string{"transport"}

	return &Metrics{
		packetsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eioclient",
			Subsystem: "transport",
			Name:      "packets_sent_total",
			Help:      "Engine.IO packets written to the server.",
		}, labels),
		packetsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eioclient",
			Subsystem: "transport",
			Name:      "packets_received_total",
			Help:      "Engine.IO packets dispatched to the owner.",
		}, labels),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eioclient",
			Subsystem: "transport",
			Name:      "errors_total",
			Help:      "Error events emitted by a transport.",
		}, labels),
		polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eioclient",
			Subsystem: "transport",
			Name:      "polls_total",
			Help:      "Long-poll requests issued.",
		}, labels),
	}
}

func (m *Metrics) sent(name Name, n int) {
	if m == nil || n == 0 {
		return
	}
	m.packetsSent.WithLabelValues(string(name)).Add(float64(n))
}

func (m *Metrics) received(name Name) {
	if m == nil {
		return
	}
	m.packetsReceived.WithLabelValues(string(name)).Inc()
}

func (m *Metrics) errored(name Name) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(string(name)).Inc()
}

func (m *Metrics) polled(name Name) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(string(name)).Inc()
}
