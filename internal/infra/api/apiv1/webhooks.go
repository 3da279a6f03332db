package apiv1

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/usecase"
)

const webhookKeyHeader = "X-Webhook-Key"

// handleWebhook accepts one operator callback. The response is always 200
// for anything the operator could fix by retrying and 4xx for payloads that
// can never be processed; operators retry on non-2xx.
func (s *Server) handleWebhook(operator model.MomoOperator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key := s.webhookKeys[operator]; key != "" {
			got := r.Header.Get(webhookKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				s.log.Warn().Str("operator", string(operator)).Msg("webhook key mismatch")
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		var payload usecase.WebhookPayload
		if err := decodeBody(r, &payload); err != nil {
			writeErr(w, err)
			return
		}
		if payload.TransactionID == "" || payload.Status == "" {
			writeErr(w, domain.ErrInvalidArgument)
			return
		}

		err := s.webhooks.Process(r.Context(), operator, payload)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInvalidArgument),
			errors.Is(err, domain.ErrAmountMismatch):
			// Unfixable payload; a retry would fail the same way.
			writeErr(w, err)
		case errors.Is(err, domain.ErrLockNotAcquired):
			// Another delivery of the same transaction is in flight.
			writeErr(w, err)
		default:
			writeErr(w, err)
		}
	}
}
