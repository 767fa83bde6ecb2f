package controller

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "library_request_duration_ms",
	Help:    "Duration of library operations in ms",
	Buckets: prometheus.DefBuckets,
}, []string{"action"})

func init() {
	prometheus.MustRegister(RequestDuration)
}

func observe(action string, start time.Time) {
	RequestDuration.WithLabelValues(action).Observe(float64(time.Since(start).Milliseconds()))
}
