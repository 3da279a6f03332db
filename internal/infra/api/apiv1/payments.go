package apiv1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/security"
	"spotvibe/internal/usecase"
)

type initiatePaymentRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee,omitempty"`
	Method      string `json:"method"`
	Phone       string `json:"phone"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req initiatePaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeErr(w, domain.ErrInvalidArgument)
		return
	}
	fee := decimal.Zero
	if req.Fee != "" {
		if fee, ok = parseAmount(req.Fee); !ok {
			writeErr(w, domain.ErrInvalidArgument)
			return
		}
	}

	p, err := s.payments.Initiate(r.Context(), usecase.InitiatePaymentInput{
		UserID:      security.UserID(r.Context()),
		Type:        model.PaymentType(req.Type),
		Amount:      amount,
		Fee:         fee,
		Method:      model.PaymentMethod(req.Method),
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayment(p))
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if p.UserID != security.UserID(r.Context()) {
		writeErr(w, domain.ErrPermissionDenied)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if p.UserID != security.UserID(r.Context()) {
		writeErr(w, domain.ErrPermissionDenied)
		return
	}
	p, err = s.payments.Verify(r.Context(), p.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.Cancel(r.Context(), chi.URLParam(r, "id"), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayment(p))
}

func (s *Server) handleRetryPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.payments.Retry(r.Context(), chi.URLParam(r, "id"), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayment(p))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	userID := security.UserID(r.Context())
	f := repository.PaymentFilter{UserID: userID, Limit: 50}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		f.Status = model.PaymentStatus(v)
	}
	if v := q.Get("type"); v != "" {
		f.Type = model.PaymentType(v)
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	items, err := s.payments.List(r.Context(), f)
	if err != nil {
		if err == domain.ErrNotFound {
			items = nil
		} else {
			writeErr(w, err)
			return
		}
	}
	out := make([]Payment, 0, len(items))
	for _, p := range items {
		out = append(out, toPayment(p))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}
