package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ScoresSubmittedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tabulator_scores_submitted_total",
	Help: "Number of score submissions, including overwrites",
}, []string{"category"})

var DeductionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tabulator_deductions_total",
	Help: "Deduction workflow transitions by resulting status",
}, []string{"status"})

var SignaturesCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tabulator_signatures_total",
	Help: "Number of new judge signatures recorded",
})

var CategoriesSealedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tabulator_categories_sealed_total",
	Help: "Number of categories that reached their signing quorum",
})

var RejectedOperationsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tabulator_rejected_operations_total",
	Help: "Operations rejected by the engine, by operation and error kind",
}, []string{"operation", "kind"})

var AuditFailuresCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tabulator_audit_failures_total",
	Help: "Audit records that could not be delivered to a sink",
})

var ResultComputationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "tabulator_result_computation_duration_s",
	Help: "Duration of result computation",
	Buckets: []float64{
		0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2,
	},
}, []string{"scope"})

var ConnectedResultSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "tabulator_result_subscribers",
	Help: "Number of websocket clients subscribed to live standings",
})
