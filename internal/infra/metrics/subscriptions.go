package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		subscriptionsActivatedTotal,
		subscriptionsCancelledTotal,
		subscriptionsExpiredTotal,
	)
}

var (
	subscriptionsActivatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscriptions_activated_total",
		Help: "Subscriptions activated after a successful payment.",
	})

	subscriptionsCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscriptions_cancelled_total",
		Help: "Subscriptions cancelled by their owner.",
	})

	subscriptionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscriptions_expired_total",
		Help: "Subscriptions closed by the expiry worker.",
	})
)

func IncSubscriptionActivated() { subscriptionsActivatedTotal.Inc() }
func IncSubscriptionCancelled() { subscriptionsCancelledTotal.Inc() }

func IncSubscriptionsExpired(n int) {
	if n > 0 {
		subscriptionsExpiredTotal.Add(float64(n))
	}
}
