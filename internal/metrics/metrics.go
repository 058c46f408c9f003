package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebox_executions_total",
			Help: "Total number of code executions",
		},
		[]string{"language", "status"},
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradebox_execution_duration_ms",
			Help:    "Execution duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"language", "phase"}, // phase: "compile", "run"
	)

	MemoryUsage = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradebox_memory_usage_kb",
			Help:    "Peak memory usage per execution in KB",
			Buckets: []float64{1024, 4096, 16384, 65536, 131072, 262144},
		},
		[]string{"language"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gradebox_queue_depth",
			Help: "Current number of tasks waiting in the execution queue",
		},
	)

	BusyWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gradebox_busy_workers",
			Help: "Number of workers currently running a task",
		},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebox_cache_requests_total",
			Help: "Execution cache lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "miss"
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gradebox_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)

	TCPConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gradebox_tcp_connections",
			Help: "Number of live TCP protocol connections",
		},
	)

	GradeRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebox_grade_runs_total",
			Help: "Total number of grading runs",
		},
		[]string{"language"},
	)
)
