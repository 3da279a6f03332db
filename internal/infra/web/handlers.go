package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/usecase"
)

// adminActor is the subject recorded on moderation actions. The admin surface
// authenticates with a shared key, so there is no per-admin identity here.
const adminActor = "admin"

// statsHandler serves the platform dashboard numbers.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		users, payments, subs, err := statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		week, month, year, err := statsUC.Revenue(ctx)
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}

		response := struct {
			TotalUsers       int64                              `json:"total_users"`
			PaymentsByStatus map[model.PaymentStatus]int64      `json:"payments_by_status"`
			SubsByStatus     map[model.SubscriptionStatus]int64 `json:"subscriptions_by_status"`
			Revenue          struct {
				Week  string `json:"week"`
				Month string `json:"month"`
				Year  string `json:"year"`
			} `json:"revenue_xof"`
		}{
			TotalUsers:       users,
			PaymentsByStatus: payments,
			SubsByStatus:     subs,
		}
		response.Revenue.Week = week.String()
		response.Revenue.Month = month.String()
		response.Revenue.Year = year.String()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// paymentsListHandler returns a filtered, paginated payment list.
func paymentsListHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		f := repository.PaymentFilter{
			UserID: q.Get("user_id"),
			Status: model.PaymentStatus(q.Get("status")),
			Type:   model.PaymentType(q.Get("type")),
			Limit:  limit,
			Offset: offset,
		}

		payments, err := paymentUC.List(ctx, f)
		if err != nil && err != domain.ErrNotFound {
			http.Error(w, "Failed to list payments", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"items": payments})
	}
}

// refundsListHandler lists refunds by status, defaulting to the review queue.
func refundsListHandler(refundUC usecase.RefundUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		status := model.RefundStatus(q.Get("status"))
		if status == "" {
			status = model.RefundStatusRequested
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit <= 0 {
			limit = 50
		}

		refunds, err := refundUC.ListByStatus(ctx, status, limit, offset)
		if err != nil && err != domain.ErrNotFound {
			http.Error(w, "Failed to list refunds", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"items": refunds})
	}
}

type moderationRequest struct {
	Comment string `json:"comment"`
	Reason  string `json:"reason"`
}

// refundActionHandler applies approve/reject/execute to one refund.
func refundActionHandler(refundUC usecase.RefundUseCase, refundID, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req moderationRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
		}

		var (
			refund *model.Refund
			err    error
		)
		switch action {
		case "approve":
			refund, err = refundUC.Approve(ctx, refundID, adminActor, req.Comment)
		case "reject":
			refund, err = refundUC.Reject(ctx, refundID, adminActor, req.Comment)
		case "execute":
			refund, err = refundUC.Execute(ctx, refundID, adminActor)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeAdminErr(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(refund)
	}
}

// eventsListHandler lists events by status, defaulting to the review queue.
func eventsListHandler(eventUC usecase.EventUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		status := model.EventStatus(q.Get("status"))
		if status == "" {
			status = model.EventStatusSubmitted
		}
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		if limit <= 0 {
			limit = 50
		}

		events, err := eventUC.ListByStatus(ctx, status, limit, offset)
		if err != nil && err != domain.ErrNotFound {
			http.Error(w, "Failed to list events", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"items": events})
	}
}

// eventActionHandler applies approve/reject to one submitted event.
func eventActionHandler(eventUC usecase.EventUseCase, eventID, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req moderationRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		var (
			event *model.Event
			err   error
		)
		switch action {
		case "approve":
			event, err = eventUC.Approve(ctx, eventID, adminActor)
		case "reject":
			event, err = eventUC.Reject(ctx, eventID, adminActor, req.Reason)
		default:
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		if err != nil {
			writeAdminErr(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(event)
	}
}

func writeAdminErr(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrNotFound:
		http.Error(w, err.Error(), http.StatusNotFound)
	case domain.ErrInvalidArgument, domain.ErrInvalidStatusTransition,
		domain.ErrRefundNotRequested, domain.ErrRefundNotApproved:
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Operation failed", http.StatusInternalServerError)
	}
}
