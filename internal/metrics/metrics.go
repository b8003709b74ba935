// Package metrics defines the Prometheus collectors the aggregator exposes
// at /metrics: poll outcomes, backoff state, row throughput, and
// pattern-query latency, self-instrumenting this process rather than
// consuming metrics from elsewhere.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PatternQueryDuration records how long each pattern-detection query takes,
// labeled by query name.
var PatternQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "wardragon",
	Name:      "pattern_query_duration_seconds",
	Help:      "Duration of pattern-detection queries, by query name.",
	Buckets:   prometheus.DefBuckets,
}, []string{"query"})

// KitPollsTotal counts collector poll attempts per kit and outcome.
var KitPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wardragon",
	Name:      "kit_polls_total",
	Help:      "Total collector poll attempts, by kit_id and outcome.",
}, []string{"kit_id", "outcome"})

// KitBackoffSeconds reports the current exponential-backoff delay per kit.
var KitBackoffSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "wardragon",
	Name:      "kit_backoff_seconds",
	Help:      "Current poll backoff delay, by kit_id.",
}, []string{"kit_id"})

// RowsUpsertedTotal counts rows written per table, by kit_id.
var RowsUpsertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wardragon",
	Name:      "rows_upserted_total",
	Help:      "Total rows upserted, by table and kit_id.",
}, []string{"table", "kit_id"})
