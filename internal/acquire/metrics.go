package acquire

import "github.com/prometheus/client_golang/prometheus"

var fetchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "synthmind",
		Subsystem: "acquire",
		Name:      "fetches_total",
		Help:      "Remote artifact fetches by category and result",
	},
	[]string{"category", "result"},
)

func init() {
	prometheus.MustRegister(fetchesTotal)
}
