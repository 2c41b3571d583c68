package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "covenant_ledger_calls_total",
		Help: "Total ledger gateway calls, labeled by operation and outcome",
	}, []string{"operation", "outcome"})
	ledgerCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "covenant_ledger_call_latency_seconds",
		Help:    "Latency of ledger gateway calls in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"operation"})
)

func observeCall(operation string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ledgerCalls.WithLabelValues(operation, outcome).Inc()
	ledgerCallLatency.WithLabelValues(operation).Observe(seconds)
}
