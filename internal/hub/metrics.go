package hub

import "github.com/prometheus/client_golang/prometheus"

var bytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "synthmind",
	Subsystem: "hub",
	Name:      "downloaded_bytes_total",
	Help:      "Bytes downloaded from the model hub",
})

func init() {
	prometheus.MustRegister(bytesTotal)
}
