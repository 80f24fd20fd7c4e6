package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	TransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_transitions_total",
			Help: "Total number of accepted state transitions.",
		},
		[]string{"entity", "state"},
	)
	RejectedOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_rejected_operations_total",
			Help: "Total number of operations refused with a workflow failure.",
		},
		[]string{"kind"},
	)
	PlacementsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_placements_total",
			Help: "Total number of recorded placements.",
		},
	)
	PendingReviewsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_pending_reviews",
			Help: "Entities waiting for an admin decision.",
		},
		[]string{"entity"},
	)
	CatalogSizeGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_catalog_jobs",
			Help: "Job postings currently visible in the catalog.",
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(TransitionsCounter)
	prometheus.MustRegister(RejectedOperationsCounter)
	prometheus.MustRegister(PlacementsCounter)
	prometheus.MustRegister(PendingReviewsGauge)
	prometheus.MustRegister(CatalogSizeGauge)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()
}
