package backend

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	upstreamCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_report",
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Backend API calls grouped by kind (entities, notes) and outcome.",
	}, []string{"kind", "outcome"})

	upstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activity_report",
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of backend API calls, including body decoding.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(upstreamCounter, upstreamDuration)
}

func recordUpstream(kind string, err error, elapsed time.Duration) {
	upstreamDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	upstreamCounter.WithLabelValues(kind, outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return strconv.Itoa(statusErr.Status)
	}
	return "error"
}
