package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"

	"spotvibe/internal/domain"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeErr maps domain sentinels onto HTTP status codes.
func writeErr(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrDuplicatePendingSub),
		errors.Is(err, domain.ErrRefundAlreadyOpen):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnsupportedPaymentMethod),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrRefundAmountTooBig),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrPaymentNotPending),
		errors.Is(err, domain.ErrPaymentNotFailed),
		errors.Is(err, domain.ErrRefundNotEligible),
		errors.Is(err, domain.ErrRefundNotRequested),
		errors.Is(err, domain.ErrRefundNotApproved),
		errors.Is(err, domain.ErrSubscriptionNotPending),
		errors.Is(err, domain.ErrPlanInactive),
		errors.Is(err, domain.ErrEventNotEditable),
		errors.Is(err, domain.ErrTicketNotPending):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrPermissionDenied):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNoActiveSubscription),
		errors.Is(err, domain.ErrSubscriptionLimitReached):
		code = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrGatewayUnavailable):
		code = http.StatusBadGateway
	case errors.Is(err, domain.ErrLockNotAcquired):
		code = http.StatusTooManyRequests
	default:
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return domain.ErrInvalidArgument
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}
