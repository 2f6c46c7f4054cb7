package report

import "github.com/prometheus/client_golang/prometheus"

var (
	generatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_report",
		Subsystem: "aggregator",
		Name:      "reports_generated_total",
		Help:      "Number of activity reports assembled.",
	})

	categoryFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_report",
		Subsystem: "aggregator",
		Name:      "category_failures_total",
		Help:      "Number of categories reported as zero because the entity list could not be fetched.",
	}, []string{"category"})

	noteFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activity_report",
		Subsystem: "aggregator",
		Name:      "note_fetch_failures_total",
		Help:      "Number of per-entity notes fetches that failed and contributed zero, labeled by category.",
	}, []string{"category"})

	generateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "activity_report",
		Subsystem: "aggregator",
		Name:      "generate_duration_seconds",
		Help:      "Wall time spent fetching and aggregating every category of a report.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(generatedCounter, categoryFailureCounter, noteFailureCounter, generateDuration)
}

func recordCategoryFailure(category string) {
	categoryFailureCounter.WithLabelValues(category).Inc()
}

func recordNoteFailure(category string) {
	noteFailureCounter.WithLabelValues(category).Inc()
}
