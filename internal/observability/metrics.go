// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// StorageOperations counts object storage calls by operation and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_storage_operations_total",
		Help: "Total number of object storage operations by operation and result",
	}, []string{"operation", "result"})

	// UploadBytes records the size of processed photos uploaded to object storage.
	UploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mingle_storage_upload_bytes",
		Help:    "Size in bytes of photos uploaded to object storage",
		Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
	})

	// LoginOutcomes counts authentication attempts by outcome
	// (success, account_not_found, wrong_password).
	LoginOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mingle_login_outcomes_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})
)
