// SPDX-License-Identifier: MIT

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// chunksTotal counts processed chunks by result
	chunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gramian_pipeline_chunks_total",
		Help: "Chunks processed by result",
	}, []string{"result"})

	// rowsTotal counts rows handed to tasks
	rowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gramian_pipeline_rows_total",
		Help: "Complete rows processed",
	})

	// chunkDuration tracks per-chunk processing latency
	chunkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gramian_pipeline_chunk_duration_seconds",
		Help:    "Chunk processing duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	})

	// mergeDuration tracks Reduce latency by topology
	mergeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gramian_pipeline_merge_duration_seconds",
		Help:    "Reduce duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
	}, []string{"topology"})
)
