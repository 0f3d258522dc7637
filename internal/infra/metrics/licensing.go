package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		codesIssuedTotal,
		activationsExpiredTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by outcome.",
		},
		[]string{"outcome"}, // 'ok', 'invalid_code', 'seat_limit', 'already_redeemed', 'error'
	)

	codesIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codes_issued_total",
			Help: "Total number of activation codes issued.",
		},
	)

	activationsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activations_expired_total",
			Help: "Total number of grants processed by the expiry sweep.",
		},
	)
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(outcome).Inc()
}

func IncCodesIssued() {
	codesIssuedTotal.Inc()
}

func IncActivationsExpired(count int) {
	activationsExpiredTotal.Add(float64(count))
}
