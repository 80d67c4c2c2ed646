package services

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	serviceRestarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagekeeper_service_restarts_total",
			Help: "Total restarts performed per supervised service",
		},
		[]string{"service"},
	)

	serviceExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagekeeper_service_exits_total",
			Help: "Total exits per supervised service, by outcome",
		},
		[]string{"service", "outcome"},
	)

	stagedFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagekeeper_staged_files_total",
			Help: "Files processed by the stager, by action",
		},
		[]string{"action"},
	)

	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stagekeeper_request_total",
			Help: "Total API requests",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stagekeeper_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// 本地计数器，healthz接口直接读取
	totalRequests int64
	errorRequests int64
)

func init() {
	prometheus.MustRegister(serviceRestarts)
	prometheus.MustRegister(serviceExits)
	prometheus.MustRegister(stagedFiles)
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(requestDuration)
}

func RecordServiceRestart(name string) {
	serviceRestarts.WithLabelValues(name).Inc()
}

func RecordServiceExit(name string, clean bool) {
	outcome := "failure"
	if clean {
		outcome = "clean"
	}
	serviceExits.WithLabelValues(name, outcome).Inc()
}

func RecordStagedFile(copied bool) {
	action := "skipped"
	if copied {
		action = "copied"
	}
	stagedFiles.WithLabelValues(action).Inc()
}

func IncrementRequestCount(path string) {
	atomic.AddInt64(&totalRequests, 1)
	requestCount.WithLabelValues(path).Inc()
}

func IncrementErrorCount(path string) {
	atomic.AddInt64(&errorRequests, 1)
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

func GetTotalRequestCount() int64 {
	return atomic.LoadInt64(&totalRequests)
}

func GetTotalErrorCount() int64 {
	return atomic.LoadInt64(&errorRequests)
}
