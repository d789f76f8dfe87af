package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/labsweep/labsweep/reaper"
)

type metrics struct {
	lastRunTimestamp prometheus.Gauge
	resourcesTotal   outcomeCounter
}

func newMetrics() *metrics {
	return &metrics{
		lastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "labsweep",
				Subsystem: "cleanup",
				Name:      "last_run_timestamp_seconds",
				Help:      "Timestamp of the last completed cleanup run",
			},
		),
		resourcesTotal: outcomeCounter{prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "labsweep",
				Subsystem: "cleanup",
				Name:      "resources_total",
				Help:      "Number of resources handled per kind and status",
			},
			[]string{"kind", "status"},
		)},
	}
}

type outcomeCounter struct {
	*prometheus.CounterVec
}

func (c outcomeCounter) observe(outcome reaper.Outcome) {
	c.WithLabelValues(string(outcome.Ref.Kind), string(outcome.Status)).Inc()
}

func (m *metrics) serve(address string) {
	prometheus.MustRegister(m.lastRunTimestamp)
	prometheus.MustRegister(m.resourcesTotal)

	http.Handle("/metrics", promhttp.Handler())
	log.Fatal(http.ListenAndServe(address, nil))
}
