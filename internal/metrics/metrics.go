// Package metrics holds the Prometheus collectors for the auth gate and the
// rating engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notflix"

// Gate decisions.
const (
	DecisionPreflight     = "preflight"
	DecisionBypass        = "bypass"
	DecisionAuthenticated = "authenticated"
	DecisionRejected      = "rejected"
)

// Compensation results.
const (
	CompensationReverted = "reverted"
	CompensationFailed   = "failed"
)

// Recorder groups the collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	gate          *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	compensations *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		gate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "gate_decisions_total",
			Help:      "Requests seen by the auth gate, by decision.",
		}, []string{"decision"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratings",
			Name:      "mutations_total",
			Help:      "Rating mutations, by operation and outcome.",
		}, []string{"op", "outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratings",
			Name:      "compensations_total",
			Help:      "Revert attempts after a partially applied rating update.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		r.gate,
		r.mutations,
		r.compensations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) GateDecision(decision string) {
	if r == nil {
		return
	}
	r.gate.WithLabelValues(decision).Inc()
}

func (r *Recorder) RatingMutation(op, outcome string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op, outcome).Inc()
}

func (r *Recorder) Compensation(result string) {
	if r == nil {
		return
	}
	r.compensations.WithLabelValues(result).Inc()
}

// PoolStats reports connection counts of a database pool.
type PoolStats func() (total, idle, acquired int32)

// ObservePool exports the pool's connection counts as gauges read at scrape
// time.
func (r *Recorder) ObservePool(stats PoolStats) {
	if r == nil || stats == nil {
		return
	}
	gauge := func(name, help string, pick func(total, idle, acquired int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(pick(stats())) })
	}
	r.registry.MustRegister(
		gauge("total_conns", "Open connections in the pool.", func(t, _, _ int32) int32 { return t }),
		gauge("idle_conns", "Idle connections in the pool.", func(_, i, _ int32) int32 { return i }),
		gauge("acquired_conns", "Connections currently checked out.", func(_, _, a int32) int32 { return a }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
