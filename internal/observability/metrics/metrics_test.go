package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveSubmission("court", "created")
	m.ObserveUpstream("prison-api", "get_prisoner", 200, 0.05)
	m.ObserveUpstream("video-link-api", "create_booking", 0, 1.2)
	m.ObserveSlipView("rendered")
	m.ObserveValidationFailure("add-appointment")
}

func TestBookingMetricsCountsSubmissions(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveSubmission("legacy", "created")
	m.ObserveSubmission("legacy", "created")
	m.ObserveSubmission("legacy", "failed")

	var metric dto.Metric
	if err := m.submissionsTotal.WithLabelValues("legacy", "created").Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 created submissions, got %v", got)
	}
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveSubmission("legacy", "created")
	m.ObserveUpstream("prison-api", "op", 500, 0.1)
	m.ObserveSlipView("not_found")
	m.ObserveValidationFailure("form")
}
