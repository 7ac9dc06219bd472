package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionsInitiatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hpp_sessions_initiated_total",
			Help: "Total number of hosted payment sessions requested, by result",
		},
		[]string{"result"},
	)

	responsesReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hpp_responses_reconciled_total",
			Help: "Total number of gateway responses processed, by result",
		},
		[]string{"result"},
	)

	orphanedResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hpp_orphaned_responses_total",
			Help: "Authentic gateway responses with no matching payment record",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsInitiatedTotal)
	prometheus.MustRegister(responsesReconciledTotal)
	prometheus.MustRegister(orphanedResponsesTotal)
}

func RecordSessionInitiated(result string) {
	sessionsInitiatedTotal.WithLabelValues(result).Inc()
}

func RecordResponseReconciled(result string) {
	responsesReconciledTotal.WithLabelValues(result).Inc()
}

func RecordOrphanedResponse() {
	orphanedResponsesTotal.Inc()
}
