package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(webhooksTotal, refundsTotal)
}

var (
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momo_webhooks_total",
			Help: "Operator callbacks by operator and outcome (processed/duplicate/error).",
		},
		[]string{"operator", "outcome"},
	)

	refundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refunds_total",
			Help: "Refund lifecycle events (requested/approved/rejected/executed).",
		},
		[]string{"outcome"},
	)
)

func IncWebhook(operator, outcome string) {
	webhooksTotal.WithLabelValues(norm(operator), norm(outcome)).Inc()
}

func IncRefund(outcome string) {
	refundsTotal.WithLabelValues(norm(outcome)).Inc()
}
