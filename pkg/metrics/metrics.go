package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "factdeck", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "factdeck", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// FactsServed counts facts returned to callers, by where they came from (store|generated).
	FactsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "factdeck", Name: "facts_served_total", Help: "Number of facts served by source."},
		[]string{"source"},
	)
	GeneratorCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "factdeck", Name: "generator_calls_total", Help: "Number of fact generator calls by result."},
		[]string{"result"},
	)
	DuplicateRejections = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "factdeck", Name: "duplicate_rejections_total", Help: "Generated candidates rejected as too similar to an existing fact."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(FactsServed)
	reg.MustRegister(GeneratorCalls)
	reg.MustRegister(DuplicateRejections)
}
