package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ruleBuckets spans the per-rule budget, from half a millisecond to ~250ms.
var ruleBuckets = prometheus.ExponentialBuckets(0.0005, 2, 10)

var (
	// RequestsTotal counts correction requests by outcome (found, empty, deadline)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixer_requests_total",
			Help: "Total number of correction requests",
		},
		[]string{"result"},
	)

	// RequestDuration tracks end-to-end evaluation latency
	RequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fixer_request_duration_seconds",
			Help:    "Correction request latency in seconds",
			Buckets: ruleBuckets,
		},
	)

	// RuleEvaluations tracks the status of every rule evaluation
	RuleEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixer_rule_evaluations_total",
			Help: "Total number of rule evaluations by status",
		},
		[]string{"rule", "status"},
	)

	// RuleDuration tracks how long each rule ran
	RuleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fixer_rule_duration_seconds",
			Help:    "Rule evaluation latency in seconds",
			Buckets: ruleBuckets,
		},
		[]string{"rule"},
	)

	// CorrectionsTotal counts corrections that survived ranking, per rule
	CorrectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fixer_corrections_total",
			Help: "Total number of corrections returned",
		},
		[]string{"rule"},
	)

	// RegisteredRules tracks the registry size by state (enabled, disabled)
	RegisteredRules = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fixer_registered_rules",
			Help: "Number of registered rules",
		},
		[]string{"state"},
	)
)
