package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_benchmark_cache_lookups_total",
			Help: "Total number of benchmark cache lookups",
		},
		[]string{"result"}, // result: exact|same_year|prior_year|miss
	)

	CacheSavings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "devwise_benchmark_cache_savings_usd",
			Help: "Estimated USD saved by serving research from cache",
		},
	)

	// Research metrics
	ResearchJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_research_jobs_total",
			Help: "Total number of research jobs by outcome",
		},
		[]string{"outcome"}, // outcome: completed|failed|cached
	)

	ResearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "devwise_research_duration_seconds",
			Help:    "End-to-end research duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		},
	)

	// Spend-control metrics
	BudgetDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_budget_denials_total",
			Help: "Total operations denied by budget limits",
		},
		[]string{"limit"}, // limit: daily|monthly
	)

	RateLimitDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_rate_limit_denials_total",
			Help: "Total operations denied by rate limits",
		},
		[]string{"operation"},
	)

	APISpend = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_api_spend_usd",
			Help: "Total external API spend in USD",
		},
		[]string{"provider", "operation"},
	)

	// External API metrics
	ExternalAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_external_api_calls_total",
			Help: "Total number of external API calls",
		},
		[]string{"provider", "status"}, // status: success|error|timeout
	)

	ExternalAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devwise_external_api_latency_seconds",
			Help:    "External API latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	// Extraction metrics
	Extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_extractions_total",
			Help: "Total number of proposal extractions by outcome",
		},
		[]string{"outcome", "file_type"}, // outcome: completed|failed
	)

	ExtractedLineItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "devwise_extracted_line_items",
			Help:    "Line items extracted per proposal",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devwise_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "devwise_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	ReapedJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devwise_reaped_jobs_total",
			Help: "Stale jobs transitioned to failed by the reaper",
		},
		[]string{"kind"}, // kind: research|extraction
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(CacheSavings)

	prometheus.MustRegister(ResearchJobs)
	prometheus.MustRegister(ResearchDuration)

	prometheus.MustRegister(BudgetDenials)
	prometheus.MustRegister(RateLimitDenials)
	prometheus.MustRegister(APISpend)

	prometheus.MustRegister(ExternalAPICalls)
	prometheus.MustRegister(ExternalAPILatency)

	prometheus.MustRegister(Extractions)
	prometheus.MustRegister(ExtractedLineItems)

	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)
	prometheus.MustRegister(ReapedJobs)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordExternalCall records one external API call
func RecordExternalCall(provider string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ExternalAPICalls.WithLabelValues(provider, status).Inc()
	ExternalAPILatency.WithLabelValues(provider).Observe(latency.Seconds())
}
