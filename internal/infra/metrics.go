package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the contest's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	betsPlaced      *prometheus.CounterVec
	betsSettled     *prometheus.CounterVec
	settleDuration  prometheus.Histogram
	fixturesReset   prometheus.Counter
	outboxPublished *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		betsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_bets_placed_total",
			Help: "Bet placement attempts by result.",
		}, []string{"result"}),
		betsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_bets_settled_total",
			Help: "Bets settled by final state.",
		}, []string{"state"}),
		settleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiniela_settlement_duration_seconds",
			Help:    "Duration of settleMatch transactions.",
			Buckets: prometheus.DefBuckets,
		}),
		fixturesReset: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiniela_fixtures_reset_total",
			Help: "Jornadas rewound by an administrator.",
		}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiniela_outbox_published_total",
			Help: "Outbox events relayed to Kafka by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.betsPlaced, m.betsSettled, m.settleDuration, m.fixturesReset, m.outboxPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BetPlaced counts a placement attempt; result is "ok" or an error code.
func (m *Metrics) BetPlaced(result string) {
	if m == nil {
		return
	}
	m.betsPlaced.WithLabelValues(result).Inc()
}

// MatchSettled records one settlement run.
func (m *Metrics) MatchSettled(won, lost int, took time.Duration) {
	if m == nil {
		return
	}
	m.betsSettled.WithLabelValues("won").Add(float64(won))
	m.betsSettled.WithLabelValues("lost").Add(float64(lost))
	m.settleDuration.Observe(took.Seconds())
}

// FixtureReset counts one jornada rewind.
func (m *Metrics) FixtureReset() {
	if m == nil {
		return
	}
	m.fixturesReset.Inc()
}

// OutboxPublished counts relayed outbox events.
func (m *Metrics) OutboxPublished(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.outboxPublished.WithLabelValues(result).Inc()
}
