// Package web is the admin surface: platform stats, refund moderation and
// event review. It stays on net/http with a bearer key, separate from the
// public chi API.
package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"spotvibe/internal/usecase"
)

type Server struct {
	statsUC   usecase.StatsUseCase
	refundUC  usecase.RefundUseCase
	eventUC   usecase.EventUseCase
	paymentUC usecase.PaymentUseCase
	apiKey    string
	log       *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	refundUC usecase.RefundUseCase,
	eventUC usecase.EventUseCase,
	paymentUC usecase.PaymentUseCase,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "AdminWeb").Logger()
	return &Server{
		statsUC:   statsUC,
		refundUC:  refundUC,
		eventUC:   eventUC,
		paymentUC: paymentUC,
		apiKey:    apiKey,
		log:       &l,
	}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/admin/stats", s.authMiddleware(statsHandler(s.statsUC)))
	mux.Handle("/admin/payments", s.authMiddleware(paymentsListHandler(s.paymentUC)))

	refundsRouter := s.authMiddleware(s.refundsRouter())
	mux.Handle("/admin/refunds", refundsRouter)
	mux.Handle("/admin/refunds/", refundsRouter)

	eventsRouter := s.authMiddleware(s.eventsRouter())
	mux.Handle("/admin/events", eventsRouter)
	mux.Handle("/admin/events/", eventsRouter)
}

// authMiddleware provides simple Bearer token authentication for the admin API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("Admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// refundsRouter dispatches /admin/refunds and /admin/refunds/{id}/{action}.
func (s *Server) refundsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/refunds")
		path = strings.Trim(path, "/")

		if path == "" {
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			refundsListHandler(s.refundUC)(w, r)
			return
		}

		parts := strings.Split(path, "/")
		if len(parts) != 2 || r.Method != http.MethodPost {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		refundActionHandler(s.refundUC, parts[0], parts[1])(w, r)
	})
}

// eventsRouter dispatches /admin/events and /admin/events/{id}/{action}.
func (s *Server) eventsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/events")
		path = strings.Trim(path, "/")

		if path == "" {
			if r.Method != http.MethodGet {
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
				return
			}
			eventsListHandler(s.eventUC)(w, r)
			return
		}

		parts := strings.Split(path, "/")
		if len(parts) != 2 || r.Method != http.MethodPost {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		eventActionHandler(s.eventUC, parts[0], parts[1])(w, r)
	})
}
