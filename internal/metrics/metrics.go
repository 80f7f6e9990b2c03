package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mysteryletter"

// Metrics records room and round activity. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	RoomsActive     prometheus.Gauge
	RoundsStarted   prometheus.Counter
	RoundsEnded     *prometheus.CounterVec
	ActionsRejected *prometheus.CounterVec
	BotTurns        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently open.",
		}),
		RoundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_started_total",
			Help:      "Rounds dealt.",
		}),
		RoundsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_ended_total",
			Help:      "Rounds finished, by how they ended.",
		}, []string{"reason"}),
		ActionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_rejected_total",
			Help:      "Commands refused by the engine, by error code.",
		}, []string{"code"}),
		BotTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_turns_total",
			Help:      "Turns taken by bots, by skill level.",
		}, []string{"level"}),
	}
	reg.MustRegister(m.RoomsActive, m.RoundsStarted, m.RoundsEnded, m.ActionsRejected, m.BotTurns)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RoomOpened() {
	if m != nil {
		m.RoomsActive.Inc()
	}
}

func (m *Metrics) RoomClosed() {
	if m != nil {
		m.RoomsActive.Dec()
	}
}

func (m *Metrics) RoundStarted() {
	if m != nil {
		m.RoundsStarted.Inc()
	}
}

func (m *Metrics) RoundEnded(reason string) {
	if m != nil {
		m.RoundsEnded.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ActionRejected(code string) {
	if m != nil {
		m.ActionsRejected.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) BotTurn(level string) {
	if m != nil {
		m.BotTurns.WithLabelValues(level).Inc()
	}
}
