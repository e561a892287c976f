// Package metrics exposes Prometheus instruments for the decision core and
// the admin HTTP router that serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uburu_broadcasts_total",
			Help: "Messages run through broadcast ingestion, by outcome",
		},
		[]string{"outcome"}, // malformed, forged, stale, self, new, rejoin
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uburu_decisions_total",
			Help: "Support decisions, by the rule that made them",
		},
		[]string{"rule"},
	)

	RoundsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uburu_rounds_total",
			Help: "Round transitions observed",
		},
	)

	RosterSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uburu_roster_size",
			Help: "Teammates currently active, self included",
		},
	)

	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uburu_tool_calls_total",
			Help: "MCP tool invocations",
		},
		[]string{"tool", "status"}, // status: ok, error
	)
)
