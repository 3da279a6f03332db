// Package apiv1 exposes the public REST surface: payments, operator
// webhooks, subscriptions, events, refunds and notifications.
package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"spotvibe/internal/domain/model"
	"spotvibe/internal/usecase"
)

type Server struct {
	payments usecase.PaymentUseCase
	webhooks usecase.WebhookUseCase
	subs     usecase.SubscriptionUseCase
	events   usecase.EventUseCase
	refunds  usecase.RefundUseCase
	notifs   usecase.NotificationUseCase
	users    usecase.UserUseCase

	// webhookKeys holds the per-operator shared secret checked against the
	// X-Webhook-Key header. An empty value disables the check (sandbox).
	webhookKeys map[model.MomoOperator]string

	log *zerolog.Logger
}

type Deps struct {
	Payments      usecase.PaymentUseCase
	Webhooks      usecase.WebhookUseCase
	Subscriptions usecase.SubscriptionUseCase
	Events        usecase.EventUseCase
	Refunds       usecase.RefundUseCase
	Notifications usecase.NotificationUseCase
	Users         usecase.UserUseCase
	WebhookKeys   map[model.MomoOperator]string
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "APIv1").Logger()
	return &Server{
		payments:    d.Payments,
		webhooks:    d.Webhooks,
		subs:        d.Subscriptions,
		events:      d.Events,
		refunds:     d.Refunds,
		notifs:      d.Notifications,
		users:       d.Users,
		webhookKeys: d.WebhookKeys,
		log:         &l,
	}
}

// RegisterAPIV1 mounts the public routes. auth wraps everything except the
// operator webhooks, the plan catalog and registration; pass nil to leave
// the routes open (tests do).
func RegisterAPIV1(r chi.Router, s *Server, auth func(http.Handler) http.Handler) {
	if auth == nil {
		auth = func(h http.Handler) http.Handler { return h }
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/payments", func(r chi.Router) {
			// Operator callbacks carry their own shared-secret check.
			r.Post("/webhooks/mtn", s.handleWebhook(model.OperatorMTN))
			r.Post("/webhooks/moov", s.handleWebhook(model.OperatorMoov))

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/initiate", s.handleInitiatePayment)
				r.Get("/", s.handleListPayments)
				r.Get("/{id}", s.handleGetPayment)
				r.Post("/{id}/verify", s.handleVerifyPayment)
				r.Post("/{id}/cancel", s.handleCancelPayment)
				r.Post("/{id}/retry", s.handleRetryPayment)

				r.Route("/refunds", func(r chi.Router) {
					r.Post("/", s.handleRequestRefund)
					r.Get("/", s.handleListMyRefunds)
					r.Get("/{id}", s.handleGetRefund)
				})
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/plans", s.handleListPlans)

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Post("/", s.handleSubscribe)
				r.Post("/renew", s.handleRenew)
				r.Post("/upgrade", s.handleUpgrade)
				r.Get("/upgrade/quote", s.handleQuoteUpgrade)
				r.Get("/usage", s.handleUsage)
				r.Post("/{id}/pay", s.handlePaySubscription)
				r.Post("/{id}/cancel", s.handleCancelSubscription)
				r.Get("/{id}/history", s.handleSubscriptionHistory)
			})
		})

		r.Post("/users", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/me", s.handleMe)

			r.Route("/events", func(r chi.Router) {
				r.Post("/", s.handleCreateEvent)
				r.Get("/", s.handleListMyEvents)
				r.Get("/{id}", s.handleGetEvent)
				r.Post("/{id}/submit", s.handleSubmitEvent)
				r.Post("/{id}/tickets", s.handleBuyTicket)
			})
			r.Get("/tickets", s.handleListMyTickets)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Post("/{id}/view", s.handleViewNotification)
			})
		})
	})
}
