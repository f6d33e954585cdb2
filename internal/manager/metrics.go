package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	constructionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthmind",
			Subsystem: "manager",
			Name:      "constructions_total",
			Help:      "Instance constructions by category and result",
		},
		[]string{"category", "result"},
	)
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "synthmind",
			Subsystem: "manager",
			Name:      "cache_hits_total",
			Help:      "Instance cache hits by category",
		},
		[]string{"category"},
	)
	admissionWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "synthmind",
			Subsystem: "manager",
			Name:      "admission_wait_seconds",
			Help:      "Time spent waiting for exclusive use of an instance",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(constructionsTotal, cacheHitsTotal, admissionWaitSeconds)
}
