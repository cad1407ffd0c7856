package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(redemptionsTotal, codesUsed, codesAvailable) }

var redemptionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "activation_redemptions_total",
		Help: "Redemption attempts by outcome.",
	},
	[]string{"outcome"}, // 'success', 'invalid', 'already_used', 'empty', 'bad_format', 'error'
)

var codesUsed = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "activation_codes_used",
		Help: "Codes redeemed so far, as of the last stats query.",
	},
)

var codesAvailable = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "activation_codes_available",
		Help: "Codes still available, as of the last stats query.",
	},
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(outcome).Inc()
}

func SetCodeCounts(used, available int64) {
	codesUsed.Set(float64(used))
	codesAvailable.Set(float64(available))
}
