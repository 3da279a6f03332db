//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/usecase"
)

func TestUserUseCase_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active user", func(t *testing.T) {
		repo := NewMockUserRepo()
		uc := usecase.NewUserUseCase(repo, newTestLogger())

		u, err := uc.Register(ctx, "ayo@example.bj", "Ayo", validPhone, model.RoleOrganizer)
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if u.Role != model.RoleOrganizer || !u.Active {
			t.Errorf("unexpected user: %+v", u)
		}

		got, err := uc.GetByEmail(ctx, "ayo@example.bj")
		if err != nil {
			t.Fatalf("get by email: %v", err)
		}
		if got.ID != u.ID {
			t.Errorf("expected %s, got %s", u.ID, got.ID)
		}
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		repo := NewMockUserRepo()
		uc := usecase.NewUserUseCase(repo, newTestLogger())

		if _, err := uc.Register(ctx, "ayo@example.bj", "Ayo", validPhone, model.RoleClient); err != nil {
			t.Fatalf("first register: %v", err)
		}
		if _, err := uc.Register(ctx, "ayo@example.bj", "Autre", validPhone, model.RoleClient); !errors.Is(err, domain.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		repo := NewMockUserRepo()
		uc := usecase.NewUserUseCase(repo, newTestLogger())

		if _, err := uc.Register(ctx, "ayo@example.bj", "Ayo", validPhone, model.UserRole("SUPERADMIN")); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestStatsUseCase_Totals(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo()
	payments := NewMockPaymentRepo()
	subs := NewMockSubscriptionRepo()
	commissions := NewMockCommissionRepo()
	uc := usecase.NewStatsUseCase(users, payments, subs, commissions, newTestLogger())

	u, _ := model.NewUser("u-1", "ayo@example.bj", "Ayo", model.RoleClient)
	_ = users.Save(ctx, nil, u)
	p, _ := model.NewPayment("pay-1", "u-1", model.PaymentTypeTicket, decimal.NewFromInt(5000), decimal.Zero, model.PaymentMethodMTN, validPhone, 0)
	_ = p.TransitionTo(model.PaymentStatusProcessing)
	_ = p.TransitionTo(model.PaymentStatusSucceeded)
	_ = payments.Save(ctx, nil, p)

	total, byPayment, bySub, err := uc.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 user, got %d", total)
	}
	if byPayment[model.PaymentStatusSucceeded] != 1 {
		t.Errorf("expected 1 REUSSI payment, got %+v", byPayment)
	}
	if len(bySub) != 0 {
		t.Errorf("expected no subscriptions, got %+v", bySub)
	}

	week, _, _, err := uc.Revenue(ctx)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if !week.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected revenue 5000, got %s", week)
	}
}
