// Package metrics exposes Prometheus instrumentation for the stitching
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts completed pipeline executions by outcome.
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pano360_pipeline_runs_total",
		Help: "Completed stitching pipeline runs by outcome.",
	}, []string{"outcome"})

	// PipelineDuration observes end-to-end pipeline latency.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pano360_pipeline_duration_seconds",
		Help:    "End-to-end stitching pipeline duration.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// StageFailures counts failures by pipeline stage.
	StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pano360_stage_failures_total",
		Help: "Pipeline failures by stage.",
	}, []string{"stage"})
)
