package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/infra/security"
)

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.subs.ListPlans(r.Context())
	if err != nil && err != domain.ErrNotFound {
		writeErr(w, err)
		return
	}
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlan(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

type subscribeRequest struct {
	PlanID    string `json:"plan_id"`
	Method    string `json:"method"`
	Phone     string `json:"phone"`
	AutoRenew bool   `json:"auto_renew"`
}

// subscriptionResponse pairs the pending subscription with the payment the
// client must complete on their phone.
type subscriptionResponse struct {
	Subscription Subscription `json:"subscription"`
	Payment      Payment      `json:"payment"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	sub, p, err := s.subs.Subscribe(r.Context(), security.UserID(r.Context()), req.PlanID,
		model.PaymentMethod(req.Method), req.Phone, req.AutoRenew)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionResponse{
		Subscription: toSubscription(sub),
		Payment:      toPayment(p),
	})
}

type renewRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone"`
}

func (s *Server) handleRenew(w http.ResponseWriter, r *http.Request) {
	var req renewRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	sub, p, err := s.subs.Renew(r.Context(), security.UserID(r.Context()),
		model.PaymentMethod(req.Method), req.Phone)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionResponse{
		Subscription: toSubscription(sub),
		Payment:      toPayment(p),
	})
}

type upgradeRequest struct {
	PlanID string `json:"plan_id"`
	Method string `json:"method"`
	Phone  string `json:"phone"`
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	var req upgradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	sub, p, err := s.subs.Upgrade(r.Context(), security.UserID(r.Context()), req.PlanID,
		model.PaymentMethod(req.Method), req.Phone)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, subscriptionResponse{
		Subscription: toSubscription(sub),
		Payment:      toPayment(p),
	})
}

type paySubscriptionRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone"`
}

func (s *Server) handlePaySubscription(w http.ResponseWriter, r *http.Request) {
	var req paySubscriptionRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	p, err := s.subs.PayPending(r.Context(), security.UserID(r.Context()), chi.URLParam(r, "id"),
		model.PaymentMethod(req.Method), req.Phone)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayment(p))
}

func (s *Server) handleQuoteUpgrade(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("plan_id")
	if planID == "" {
		writeErr(w, domain.ErrInvalidArgument)
		return
	}
	q, err := s.subs.QuoteUpgrade(r.Context(), security.UserID(r.Context()), planID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuote(q))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	u, err := s.subs.Usage(r.Context(), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUsage(u))
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	err := s.subs.Cancel(r.Context(), security.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleSubscriptionHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.subs.History(r.Context(), security.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]SubscriptionHistory, 0, len(items))
	for _, h := range items {
		out = append(out, toHistory(h))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}
