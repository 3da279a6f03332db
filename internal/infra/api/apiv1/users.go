package apiv1

import (
	"net/http"
	"time"

	"spotvibe/internal/domain/model"
	"spotvibe/internal/infra/security"
)

type User struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Role     string    `json:"role"`
	Verified bool      `json:"verified"`
	Created  time.Time `json:"created_at"`
}

func toUser(u *model.User) User {
	return User{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Phone:    u.Phone,
		Role:     string(u.Role),
		Verified: u.Verified,
		Created:  u.CreatedAt,
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	role := model.UserRole(req.Role)
	if role == "" {
		role = model.RoleClient
	}
	u, err := s.users.Register(r.Context(), req.Email, req.Name, req.Phone, role)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(u))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), security.UserID(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}
