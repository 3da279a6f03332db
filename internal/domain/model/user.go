package model

import (
	"time"

	"spotvibe/internal/domain"
)

type UserRole string

const (
	RoleClient    UserRole = "CLIENT"
	RoleOrganizer UserRole = "ORGANISATEUR"
	RoleAdmin     UserRole = "ADMIN"
)

type User struct {
	ID       string
	Email    string
	Name     string
	Phone    string
	Role     UserRole
	Verified bool
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(id, email, name string, role UserRole) (*User, error) {
	if id == "" || email == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch role {
	case RoleClient, RoleOrganizer, RoleAdmin:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u *User) IsOrganizer() bool { return u.Role == RoleOrganizer }
