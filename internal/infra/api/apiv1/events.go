package apiv1

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/infra/security"
	"spotvibe/internal/usecase"
)

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	TicketPrice string    `json:"ticket_price"`
	Capacity    int       `json:"capacity"`
	// Optional percentage overriding the organizer's plan commission rate.
	CommissionRate string `json:"commission_rate,omitempty"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	price, ok := parseAmount(req.TicketPrice)
	if !ok {
		writeErr(w, domain.ErrInvalidArgument)
		return
	}
	var commissionRate *decimal.Decimal
	if req.CommissionRate != "" {
		rate, ok := parseAmount(req.CommissionRate)
		if !ok || rate.IsNegative() {
			writeErr(w, domain.ErrInvalidArgument)
			return
		}
		commissionRate = &rate
	}
	e, err := s.events.Create(r.Context(), usecase.CreateEventInput{
		OrganizerID:    security.UserID(r.Context()),
		Title:          req.Title,
		Description:    req.Description,
		Venue:          req.Venue,
		City:           req.City,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		TicketPrice:    price,
		Capacity:       req.Capacity,
		CommissionRate: commissionRate,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEvent(e))
}

func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.events.Submit(r.Context(), chi.URLParam(r, "id"), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvent(e))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvent(e))
}

func (s *Server) handleListMyEvents(w http.ResponseWriter, r *http.Request) {
	items, err := s.events.ListByOrganizer(r.Context(), security.UserID(r.Context()))
	if err != nil && err != domain.ErrNotFound {
		writeErr(w, err)
		return
	}
	out := make([]Event, 0, len(items))
	for _, e := range items {
		out = append(out, toEvent(e))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

type buyTicketRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone"`
}

type buyTicketResponse struct {
	Ticket  Ticket  `json:"ticket"`
	Payment Payment `json:"payment"`
}

func (s *Server) handleBuyTicket(w http.ResponseWriter, r *http.Request) {
	var req buyTicketRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	t, p, err := s.events.BuyTicket(r.Context(), chi.URLParam(r, "id"), security.UserID(r.Context()),
		model.PaymentMethod(req.Method), req.Phone)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, buyTicketResponse{Ticket: toTicket(t), Payment: toPayment(p)})
}

func (s *Server) handleListMyTickets(w http.ResponseWriter, r *http.Request) {
	items, err := s.events.ListTicketsByBuyer(r.Context(), security.UserID(r.Context()))
	if err != nil && err != domain.ErrNotFound {
		writeErr(w, err)
		return
	}
	out := make([]Ticket, 0, len(items))
	for _, t := range items {
		out = append(out, toTicket(t))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}
