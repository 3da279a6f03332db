package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(eventsCreatedTotal, ticketsSoldTotal)
}

var (
	eventsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "events_created_total",
		Help: "Events created by organizers.",
	})

	ticketsSoldTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tickets_sold_total",
		Help: "Tickets reserved through the purchase flow.",
	})
)

func IncEventCreated() { eventsCreatedTotal.Inc() }
func IncTicketSold()   { ticketsSoldTotal.Inc() }
