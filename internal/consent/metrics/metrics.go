package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for consent lifecycle operations.
type Metrics struct {
	ConsentsGranted     *prometheus.CounterVec
	ConsentsRevoked     *prometheus.CounterVec
	ConsentsExpired     prometheus.Counter
	VerificationsPassed *prometheus.CounterVec
	VerificationsFailed *prometheus.CounterVec
	LedgerWriteFailures *prometheus.CounterVec
	TrailReads          prometheus.Counter
	GrantLatency        prometheus.Histogram
}

// New registers and returns consent metrics collectors.
func New() *Metrics {
	return &Metrics{
		ConsentsGranted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "covenant_consents_granted_total",
			Help: "Total number of consents granted, labeled by purpose",
		}, []string{"purpose"}),
		ConsentsRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "covenant_consents_revoked_total",
			Help: "Total number of consents revoked, labeled by purpose",
		}, []string{"purpose"}),
		ConsentsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "covenant_consents_expired_total",
			Help: "Total number of lazy expiry transitions persisted at verification time",
		}),
		VerificationsPassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "covenant_verifications_passed_total",
			Help: "Total number of verifications that found a valid consent, labeled by purpose",
		}, []string{"purpose"}),
		VerificationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "covenant_verifications_failed_total",
			Help: "Total number of verifications that found no valid consent, labeled by purpose",
		}, []string{"purpose"}),
		LedgerWriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "covenant_ledger_write_failures_total",
			Help: "Total number of absorbed best-effort ledger write failures, labeled by operation",
		}, []string{"operation"}),
		TrailReads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "covenant_audit_trail_reads_total",
			Help: "Total number of audit trail reads",
		}),
		GrantLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "covenant_consent_grant_latency_seconds",
			Help:    "Latency of consent grant operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementConsentsGranted(purpose string) {
	m.ConsentsGranted.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementConsentsRevoked(purpose string) {
	m.ConsentsRevoked.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementConsentsExpired() {
	m.ConsentsExpired.Inc()
}

func (m *Metrics) IncrementVerificationsPassed(purpose string) {
	m.VerificationsPassed.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementVerificationsFailed(purpose string) {
	m.VerificationsFailed.WithLabelValues(purpose).Inc()
}

func (m *Metrics) IncrementLedgerWriteFailures(operation string) {
	m.LedgerWriteFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementTrailReads() {
	m.TrailReads.Inc()
}

func (m *Metrics) ObserveGrantLatency(seconds float64) {
	m.GrantLatency.Observe(seconds)
}
