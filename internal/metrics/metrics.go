// Package metrics provides Prometheus observability for the crew registration
// service: registration volume, payment flow outcomes, and webhook handling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all counters and histograms exported on /metrics.
type Metrics struct {
	RegistrationsCreated prometheus.Counter
	PaymentsStarted      prometheus.Counter
	PaymentsCompleted    prometheus.Counter
	PaymentsFailed       prometheus.Counter
	WebhooksReceived     *prometheus.CounterVec
	GatewayCallDuration  prometheus.Histogram
	SensitivePurged      prometheus.Counter
}

// New registers all service metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crewreg_registrations_created_total",
			Help: "Total number of registrations created",
		}),
		PaymentsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crewreg_payments_started_total",
			Help: "Total number of gateway payment attempts started",
		}),
		PaymentsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crewreg_payments_completed_total",
			Help: "Total number of payment intents reaching COMPLETED",
		}),
		PaymentsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crewreg_payments_failed_total",
			Help: "Total number of payment intents reaching FAILED",
		}),
		WebhooksReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crewreg_payu_webhooks_total",
			Help: "PayU notifications received, labeled by HTTP result",
		}, []string{"status"}),
		GatewayCallDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "crewreg_gateway_call_duration_seconds",
			Help:    "Duration of PayU API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SensitivePurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crewreg_sensitive_records_purged_total",
			Help: "Sensitive records removed by the retention sweep",
		}),
	}
}

// All recording methods tolerate a nil receiver so unit tests can construct
// services without touching the default Prometheus registry.

func (m *Metrics) IncRegistrationsCreated() {
	if m != nil {
		m.RegistrationsCreated.Inc()
	}
}

func (m *Metrics) IncPaymentsStarted() {
	if m != nil {
		m.PaymentsStarted.Inc()
	}
}

func (m *Metrics) IncPaymentsCompleted() {
	if m != nil {
		m.PaymentsCompleted.Inc()
	}
}

func (m *Metrics) IncPaymentsFailed() {
	if m != nil {
		m.PaymentsFailed.Inc()
	}
}

// IncWebhook records one received PayU notification by HTTP result code.
func (m *Metrics) IncWebhook(status string) {
	if m != nil {
		m.WebhooksReceived.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) AddSensitivePurged(n int) {
	if m != nil {
		m.SensitivePurged.Add(float64(n))
	}
}

// ObserveGatewayCall records the duration of one PayU API round trip.
// Call with time.Now() captured at the start of the call.
func (m *Metrics) ObserveGatewayCall(start time.Time) {
	if m != nil {
		m.GatewayCallDuration.Observe(time.Since(start).Seconds())
	}
}
