package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics exposes counters/histograms for the booking journey and its
// upstream calls.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	slipViewsTotal   *prometheus.CounterVec
	validationTotal  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prisoner_profile",
			Subsystem: "appointments",
			Name:      "submissions_total",
			Help:      "Booking submissions by request variant and outcome",
		}, []string{"variant", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prisoner_profile",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"api", "operation", "status"}),
		slipViewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prisoner_profile",
			Subsystem: "movement_slip",
			Name:      "views_total",
			Help:      "Movement slip requests by result",
		}, []string{"result"}),
		validationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prisoner_profile",
			Subsystem: "forms",
			Name:      "validation_failures_total",
			Help:      "Form submissions rejected by validation",
		}, []string{"form"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.upstreamLatency, m.slipViewsTotal, m.validationTotal)
	return m
}

func (m *BookingMetrics) ObserveSubmission(variant, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(variant, outcome).Inc()
}

// ObserveUpstream records one upstream call. status 0 means a transport error.
func (m *BookingMetrics) ObserveUpstream(api, operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamLatency.WithLabelValues(api, operation, label).Observe(seconds)
}

func (m *BookingMetrics) ObserveSlipView(result string) {
	if m == nil {
		return
	}
	m.slipViewsTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveValidationFailure(form string) {
	if m == nil {
		return
	}
	m.validationTotal.WithLabelValues(form).Inc()
}
