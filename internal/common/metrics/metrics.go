// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// Inference, shared by the worker and the HTTP API.

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_predictions_total",
			Help: "Total number of loan predictions by result",
		},
		[]string{"result"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_prediction_errors_total",
			Help: "Total number of failed loan predictions by error code",
		},
		[]string{"code"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loan_prediction_duration_seconds",
			Help:    "Time spent running the inference pipeline",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		},
	)

	ArtifactsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_artifacts_loaded",
			Help: "Number of model artifacts loaded at startup",
		},
	)
)
