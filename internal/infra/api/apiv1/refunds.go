package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/infra/security"
)

type requestRefundRequest struct {
	PaymentID   string `json:"payment_id"`
	Amount      string `json:"amount"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleRequestRefund(w http.ResponseWriter, r *http.Request) {
	var req requestRefundRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeErr(w, domain.ErrInvalidArgument)
		return
	}
	ref, err := s.refunds.Request(r.Context(), req.PaymentID, security.UserID(r.Context()),
		amount, model.RefundReason(req.Reason), req.Description)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRefund(ref))
}

func (s *Server) handleGetRefund(w http.ResponseWriter, r *http.Request) {
	ref, err := s.refunds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if ref.RequesterID != security.UserID(r.Context()) {
		writeErr(w, domain.ErrPermissionDenied)
		return
	}
	writeJSON(w, http.StatusOK, toRefund(ref))
}

func (s *Server) handleListMyRefunds(w http.ResponseWriter, r *http.Request) {
	items, err := s.refunds.ListByRequester(r.Context(), security.UserID(r.Context()))
	if err != nil && err != domain.ErrNotFound {
		writeErr(w, err)
		return
	}
	out := make([]Refund, 0, len(items))
	for _, ref := range items {
		out = append(out, toRefund(ref))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}
