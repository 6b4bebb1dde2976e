package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type metrics struct {
	transfers *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "faucet",
				Name:      "transfers_total",
				Help:      "Transfer requests handled, by token and outcome.",
			},
			[]string{"token", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "faucet",
				Name:      "transfer_duration_seconds",
				Help:      "Time spent in the backend per transfer request.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"token"},
		),
	}
	reg.MustRegister(m.transfers, m.duration, collectors.NewGoCollector())
	return m
}
