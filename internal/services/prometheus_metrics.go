package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by MetricsRecorderInterface
const (
	MetricTransactionWrite    = "transaction.write"
	MetricLedgerFailure       = "ledger.failure"
	MetricLedgerDuration      = "ledger.duration"
	MetricCategoryWrite       = "category.write"
	MetricFilterRejected      = "filter.rejected"
	MetricSummaryDuration     = "summary.duration"
	MetricAuthenticationEvent = "authentication_event"
)

type PrometheusMetrics struct {
	transactionWrites         *prometheus.CounterVec
	ledgerFailures            *prometheus.CounterVec
	ledgerDuration            prometheus.Histogram
	categoryWrites            *prometheus.CounterVec
	filterRejections          prometheus.Counter
	summaryDuration           prometheus.Histogram
	authenticationEventsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics registers the budget collectors on reg
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transactionWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_transaction_writes_total",
				Help: "Total number of transaction writes applied to the ledger",
			},
			[]string{"operation", "status"},
		),
		ledgerFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_ledger_failures_total",
				Help: "Total number of ledger writes that failed to persist",
			},
			[]string{"operation"},
		),
		ledgerDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_ledger_duration_milliseconds",
				Help:    "Ledger write duration in milliseconds, including the per-user wait",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		categoryWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_category_writes_total",
				Help: "Total number of category writes",
			},
			[]string{"operation", "status"},
		),
		filterRejections: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_filter_rejections_total",
				Help: "Total number of rejected transaction filters",
			},
		),
		summaryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_summary_duration_seconds",
				Help:    "Summary computation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	operation := tags["operation"]
	status := tags["status"]
	if status == "" {
		status = "success"
	}

	switch name {
	case MetricTransactionWrite:
		m.transactionWrites.WithLabelValues(operation, status).Inc()
	case MetricLedgerFailure:
		m.ledgerFailures.WithLabelValues(operation).Inc()
	case MetricCategoryWrite:
		m.categoryWrites.WithLabelValues(operation, status).Inc()
	case MetricFilterRejected:
		m.filterRejections.Inc()
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricLedgerDuration:
		m.ledgerDuration.Observe(float64(duration.Milliseconds()))
	case MetricSummaryDuration:
		m.summaryDuration.Observe(duration.Seconds())
	}
}
