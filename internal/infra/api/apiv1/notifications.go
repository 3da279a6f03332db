package apiv1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spotvibe/internal/domain"
	"spotvibe/internal/infra/security"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	onlyUnread := q.Get("unread") == "true"
	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	items, err := s.notifs.ListByUser(r.Context(), security.UserID(r.Context()), onlyUnread, limit, offset)
	if err != nil && err != domain.ErrNotFound {
		writeErr(w, err)
		return
	}
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		out = append(out, toNotification(n))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

func (s *Server) handleViewNotification(w http.ResponseWriter, r *http.Request) {
	err := s.notifs.MarkViewed(r.Context(), chi.URLParam(r, "id"), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}
