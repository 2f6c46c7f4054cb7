package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	reportServedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_report",
		Subsystem: "api",
		Name:      "last_report_served_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity report returned to a caller.",
	})
	reportEventGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activity_report",
		Subsystem: "events",
		Name:      "last_report_event_published_timestamp_seconds",
		Help:      "Unix timestamp of the most recent report-generated event published to Kafka.",
	})
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_report",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Inbound HTTP requests grouped by method and status class.",
	}, []string{"method", "code"})
)

func init() {
	prometheus.MustRegister(reportServedGauge, reportEventGauge, requestCounter)
}

// RecordReportServed updates the served watermark gauge.
func RecordReportServed(ts time.Time) {
	if ts.IsZero() {
		return
	}
	reportServedGauge.Set(float64(ts.Unix()))
}

// RecordReportEventPublished updates the event watermark gauge.
func RecordReportEventPublished(ts time.Time) {
	if ts.IsZero() {
		return
	}
	reportEventGauge.Set(float64(ts.Unix()))
}

// RecordRequest counts a completed inbound request.
func RecordRequest(method string, status int) {
	requestCounter.WithLabelValues(method, statusLabel(status)).Inc()
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
