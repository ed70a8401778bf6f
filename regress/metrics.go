// SPDX-License-Identifier: MIT

package regress

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// factorizeTotal counts factorizations by outcome
	factorizeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gramian_factorize_total",
		Help: "Cholesky factorizations by outcome",
	}, []string{"result"})

	// factorizeDuration tracks factorization latency
	factorizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gramian_factorize_duration_seconds",
		Help:    "Cholesky factorization duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
	})

	// ridgeRetries counts ridge escalations
	ridgeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gramian_ridge_retries_total",
		Help: "Refactorizations with an increased ridge penalty",
	})
)
