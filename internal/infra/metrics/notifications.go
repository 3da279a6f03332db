package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(notificationsTotal, notificationsEscalatedTotal)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notifications created, by priority.",
		},
		[]string{"priority"},
	)

	notificationsEscalatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_escalated_total",
			Help: "Notifications bumped up the priority ladder, by new priority.",
		},
		[]string{"priority"},
	)
)

func IncNotification(priority string) {
	notificationsTotal.WithLabelValues(norm(priority)).Inc()
}

func IncNotificationEscalated(priority string) {
	notificationsEscalatedTotal.WithLabelValues(norm(priority)).Inc()
}
