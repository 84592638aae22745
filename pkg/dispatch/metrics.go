package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the fulfillment engine. Registered on the
// default registry; pkg/web exposes them on /metrics.
var (
	metricBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftvoice_toolcall_batches_total",
		Help: "Tool-call batches received from the agent session.",
	})

	metricCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftvoice_toolcalls_total",
		Help: "Tool calls processed, by declared function name.",
	}, []string{"function"})

	metricBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftvoice_toolcall_batch_failures_total",
		Help: "Batches that failed uniformly and were reported as errors for every call.",
	})

	metricDatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiftvoice_dataset_loads_total",
		Help: "Dataset loads, by source (cache or remote).",
	}, []string{"source"})

	metricPersists = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shiftvoice_dataset_persists_total",
		Help: "Dataset writes back to the local cache.",
	})

	metricBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shiftvoice_toolcall_batch_duration_seconds",
		Help:    "Wall time spent fulfilling one tool-call batch.",
		Buckets: prometheus.DefBuckets,
	})
)
