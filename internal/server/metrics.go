package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decisionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kagero_decisions_total",
		Help: "Gate decisions by outcome code.",
	}, []string{"code"})

	rateLimitedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kagero_rate_limited_total",
		Help: "API requests rejected by the rate limiter.",
	})

	configWriteCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kagero_config_writes_total",
		Help: "Accepted admin configuration writes.",
	})
)

// decisionLabel collapses the allow outcome into one label value.
func decisionLabel(blocked bool, code string) string {
	if !blocked {
		return "allowed"
	}
	return code
}
