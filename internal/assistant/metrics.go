package assistant

import "github.com/prometheus/client_golang/prometheus"

var (
	classificationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapfit",
		Subsystem: "assistant",
		Name:      "classifications_total",
		Help:      "Number of oracle classifications grouped by resulting kind (or error/invalid/unknown).",
	}, []string{"outcome"})

	classificationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snapfit",
		Subsystem: "assistant",
		Name:      "classification_duration_seconds",
		Help:      "Latency of oracle classification calls, including timeouts.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(classificationCounter, classificationDuration)
}

func recordClassification(outcome string) {
	classificationCounter.WithLabelValues(outcome).Inc()
}
