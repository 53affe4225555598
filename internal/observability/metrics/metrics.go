package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the capture flow.
type LeadMetrics struct {
	captureTotal    *prometheus.CounterVec
	captureLatency  *prometheus.HistogramVec
	deliveriesTotal *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		captureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "api",
			Name:      "capture_total",
			Help:      "Total lead capture attempts by outcome",
		}, []string{"outcome"}),
		captureLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadcapture",
			Subsystem: "api",
			Name:      "capture_latency_seconds",
			Help:      "Latency of lead capture handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "automation",
			Name:      "webhook_delivery_total",
			Help:      "Total automation webhook delivery attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.captureTotal, m.captureLatency, m.deliveriesTotal)
	return m
}

func (m *LeadMetrics) ObserveCapture(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.captureTotal.WithLabelValues(outcome).Inc()
	m.captureLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *LeadMetrics) ObserveWebhookDelivery(status string) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(status).Inc()
}
