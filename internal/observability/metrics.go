// Package observability holds cross-package Prometheus instruments.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	writePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "snapfit",
		Subsystem: "persistence",
		Name:      "last_write_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent fitness write persisted to Postgres.",
	})

	executionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snapfit",
		Subsystem: "executor",
		Name:      "actions_executed_total",
		Help:      "Number of executed actions grouped by kind and outcome.",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(writePersistGauge, executionCounter)
}

// RecordWritePersisted updates the persistence watermark gauge.
func RecordWritePersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	writePersistGauge.Set(float64(ts.Unix()))
}

// RecordExecution counts one executed action.
func RecordExecution(kind string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	executionCounter.WithLabelValues(kind, outcome).Inc()
}
