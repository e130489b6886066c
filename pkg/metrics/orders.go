package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records counters and timings around the checkout flow.
type OrderMetrics struct {
	submitted      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	submitDuration *prometheus.HistogramVec
	webhookSuccess *prometheus.CounterVec
	webhookFailure *prometheus.CounterVec
	quoteOutcomes  *prometheus.CounterVec
}

// NewOrderMetrics registers the checkout metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Orders accepted by the checkout flow.",
	}, []string{"origin", "status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Order submissions rejected before persistence.",
	}, []string{"reason"})
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_duration_seconds",
		Help:    "Duration of order submission in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"origin"})
	webhookSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_dispatch_success_total",
		Help: "Outbound webhook deliveries that succeeded.",
	}, []string{"event"})
	webhookFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_dispatch_failure_total",
		Help: "Outbound webhook deliveries that failed.",
	}, []string{"event"})
	quoteOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_quotes_total",
		Help: "Delivery fee quotes by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submitted, rejected, submitDuration, webhookSuccess, webhookFailure, quoteOutcomes)
	return &OrderMetrics{
		submitted:      submitted,
		rejected:       rejected,
		submitDuration: submitDuration,
		webhookSuccess: webhookSuccess,
		webhookFailure: webhookFailure,
		quoteOutcomes:  quoteOutcomes,
	}
}

// IncSubmitted counts an accepted order.
func (m *OrderMetrics) IncSubmitted(origin, status string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(origin), normalizeLabel(status)).Inc()
}

// IncRejected counts a submission rejected for the given reason.
func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveSubmitDuration records how long a submission took.
func (m *OrderMetrics) ObserveSubmitDuration(origin string, duration time.Duration) {
	if m == nil || m.submitDuration == nil {
		return
	}
	m.submitDuration.WithLabelValues(normalizeLabel(origin)).Observe(duration.Seconds())
}

// IncWebhookSuccess counts a successful outbound webhook delivery.
func (m *OrderMetrics) IncWebhookSuccess(event string) {
	if m == nil || m.webhookSuccess == nil {
		return
	}
	m.webhookSuccess.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncWebhookFailure counts a failed outbound webhook delivery.
func (m *OrderMetrics) IncWebhookFailure(event string) {
	if m == nil || m.webhookFailure == nil {
		return
	}
	m.webhookFailure.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncQuote counts a delivery quote outcome (ok, out_of_area, dependency_error).
func (m *OrderMetrics) IncQuote(outcome string) {
	if m == nil || m.quoteOutcomes == nil {
		return
	}
	m.quoteOutcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
