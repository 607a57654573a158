package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the server's counters/histograms. The hub's tick loop
// observes TickDuration and the orchestrator's HTTP handlers count
// TicketsIssued/TicketsValidated; ReplicationDiffSize and CombatHits are
// registered but nothing records to them. Grounded on
// bayleafwalker-bindery-core and luxfi-consensus, both of which take
// prometheus/client_golang as a direct dependency for controller/engine
// instrumentation.
type Metrics struct {
	TickDuration       prometheus.Histogram
	ReplicationDiffSize prometheus.Histogram
	CombatHits         *prometheus.CounterVec
	TicketsIssued      prometheus.Counter
	TicketsValidated   *prometheus.CounterVec
}

// NewMetrics registers and returns a Metrics bundle on reg. Pass
// prometheus.NewRegistry() in tests to avoid polluting the default
// registry; pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "realmcore_tick_duration_seconds",
			Help:    "Wall-clock duration of one server tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		ReplicationDiffSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "realmcore_replication_diff_entities",
			Help:    "Number of entities (create+update+delete) in one user's per-tick diff.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		CombatHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realmcore_combat_hits_total",
			Help: "Combat hits by kind (projectile, melee).",
		}, []string{"kind"}),
		TicketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "realmcore_orchestrator_tickets_issued_total",
			Help: "Join tickets issued by the orchestrator.",
		}),
		TicketsValidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "realmcore_orchestrator_tickets_validated_total",
			Help: "Join ticket validation outcomes.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.TickDuration, m.ReplicationDiffSize, m.CombatHits, m.TicketsIssued, m.TicketsValidated)
	return m
}
