//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/usecase"
)

const validPhone = "+22901234567890"

type paymentUCTestDeps struct {
	payments *MockPaymentRepo
	momoTxs  *MockMomoTxRepo
	gateway  *MockGateway
	tm       *MockTxManager
}

func newPaymentUCDeps() *paymentUCTestDeps {
	return &paymentUCTestDeps{
		payments: NewMockPaymentRepo(),
		momoTxs:  NewMockMomoTxRepo(),
		gateway:  NewMockGateway(model.OperatorMTN),
		tm:       NewMockTxManager(),
	}
}

func (d *paymentUCTestDeps) newUC() usecase.PaymentUseCase {
	gws := map[model.PaymentMethod]adapter.MomoGateway{model.PaymentMethodMTN: d.gateway}
	return usecase.NewPaymentUseCase(d.payments, d.momoTxs, gws, d.tm, 30*time.Minute, newTestLogger())
}

func validInput() usecase.InitiatePaymentInput {
	return usecase.InitiatePaymentInput{
		UserID: "user-1",
		Type:   model.PaymentTypeTicket,
		Amount: decimal.NewFromInt(5000),
		Fee:    decimal.Zero,
		Method: model.PaymentMethodMTN,
		Phone:  validPhone,
	}
}

func TestPaymentUseCase_Initiate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates payment and operator transaction", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()

		p, err := uc.Initiate(ctx, validInput())
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if p.Status != model.PaymentStatusProcessing {
			t.Errorf("expected EN_COURS after gateway accepted, got %s", p.Status)
		}
		if p.InternalRef == "" || p.InternalRef[:2] != "SV" {
			t.Errorf("expected SV reference, got %q", p.InternalRef)
		}
		if len(deps.gateway.Requests) != 1 {
			t.Fatalf("expected 1 gateway request, got %d", len(deps.gateway.Requests))
		}
		if deps.gateway.Requests[0].Currency != "XOF" {
			t.Errorf("expected XOF, got %s", deps.gateway.Requests[0].Currency)
		}
		if _, err := deps.momoTxs.FindByPaymentID(ctx, nil, p.ID); err != nil {
			t.Errorf("expected momo transaction saved: %v", err)
		}
	})

	t.Run("rejects amount below operator floor", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()

		in := validInput()
		in.Amount = decimal.NewFromInt(99)
		if _, err := uc.Initiate(ctx, in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()

		in := validInput()
		in.Phone = "+33612345678901"
		if _, err := uc.Initiate(ctx, in); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("rejects unconfigured method", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()

		in := validInput()
		in.Method = model.PaymentMethodMoov
		if _, err := uc.Initiate(ctx, in); !errors.Is(err, domain.ErrUnsupportedPaymentMethod) {
			t.Fatalf("expected ErrUnsupportedPaymentMethod, got %v", err)
		}
	})

	t.Run("records a failed payment when the gateway is down", func(t *testing.T) {
		deps := newPaymentUCDeps()
		deps.gateway.RequestPaymentFunc = func(ctx context.Context, req adapter.PaymentRequest) (adapter.PaymentResult, error) {
			return adapter.PaymentResult{}, errors.New("connection refused")
		}
		uc := deps.newUC()

		if _, err := uc.Initiate(ctx, validInput()); !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}

		// The attempt still left an ECHEC row behind.
		items, err := deps.payments.List(ctx, nil, repository.PaymentFilter{UserID: "user-1"})
		if err != nil || len(items) != 1 {
			t.Fatalf("expected one persisted payment, got %d (err=%v)", len(items), err)
		}
		p := items[0]
		if p.Status != model.PaymentStatusFailed {
			t.Fatalf("expected ECHEC, got %s", p.Status)
		}
		if p.ProcessedAt == nil {
			t.Error("expected ProcessedAt stamped on the failed attempt")
		}

		// The user can retry once the operator is back.
		deps.gateway.RequestPaymentFunc = nil
		fresh, err := uc.Retry(ctx, p.ID, "user-1")
		if err != nil {
			t.Fatalf("retry after outage: %v", err)
		}
		if fresh.Status != model.PaymentStatusProcessing {
			t.Errorf("expected EN_COURS on the retried payment, got %s", fresh.Status)
		}
	})
}

func TestPaymentUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*paymentUCTestDeps, usecase.PaymentUseCase, *model.Payment) {
		t.Helper()
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, err := uc.Initiate(ctx, validInput())
		if err != nil {
			t.Fatalf("initiate: %v", err)
		}
		return deps, uc, p
	}

	t.Run("settles payment on provider success", func(t *testing.T) {
		deps, uc, p := setup(t)
		deps.gateway.VerifyTransactionFunc = func(ctx context.Context, id string) (adapter.VerifyResult, error) {
			return adapter.VerifyResult{ProviderTxID: id, Status: model.MomoStatusSuccess}, nil
		}

		got, err := uc.Verify(ctx, p.ID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.PaymentStatusSucceeded {
			t.Errorf("expected REUSSI, got %s", got.Status)
		}
		if got.ProcessedAt == nil {
			t.Error("expected ProcessedAt stamped")
		}
	})

	t.Run("leaves payment untouched while provider still pending", func(t *testing.T) {
		_, uc, p := setup(t)

		got, err := uc.Verify(ctx, p.ID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.PaymentStatusProcessing {
			t.Errorf("expected EN_COURS, got %s", got.Status)
		}
	})

	t.Run("is a no-op on settled payments", func(t *testing.T) {
		deps, uc, p := setup(t)
		now := time.Now()
		if _, err := deps.payments.UpdateStatusIfActionable(ctx, nil, p.ID, model.PaymentStatusSucceeded, &now); err != nil {
			t.Fatal(err)
		}
		deps.gateway.VerifyTransactionFunc = func(ctx context.Context, id string) (adapter.VerifyResult, error) {
			t.Error("gateway must not be polled for settled payments")
			return adapter.VerifyResult{}, nil
		}

		got, err := uc.Verify(ctx, p.ID)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if got.Status != model.PaymentStatusSucceeded {
			t.Errorf("expected REUSSI, got %s", got.Status)
		}
	})
}

func TestPaymentUseCase_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a processing payment", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, _ := uc.Initiate(ctx, validInput())

		cancelled := false
		deps.gateway.CancelFunc = func(ctx context.Context, id string) error {
			cancelled = true
			return nil
		}

		got, err := uc.Cancel(ctx, p.ID, "user-1")
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if got.Status != model.PaymentStatusCancelled {
			t.Errorf("expected ANNULE, got %s", got.Status)
		}
		if !cancelled {
			t.Error("expected provider cancel attempt")
		}
	})

	t.Run("rejects foreign user", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, _ := uc.Initiate(ctx, validInput())

		if _, err := uc.Cancel(ctx, p.ID, "someone-else"); !errors.Is(err, domain.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("returns fresh state when a webhook wins the race", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, _ := uc.Initiate(ctx, validInput())

		// Simulate the webhook settling the payment between the status check
		// and the conditional update.
		deps.payments.UpdateStatusIfActionableFunc = func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, at *time.Time) (bool, error) {
			now := time.Now()
			_ = deps.payments.UpdateStatus(ctx, tx, id, model.PaymentStatusSucceeded, &now)
			return false, nil
		}

		got, err := uc.Cancel(ctx, p.ID, "user-1")
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if got.Status != model.PaymentStatusSucceeded {
			t.Errorf("expected the settled state back, got %s", got.Status)
		}
	})
}

func TestPaymentUseCase_Retry(t *testing.T) {
	ctx := context.Background()

	t.Run("reopens a failed payment", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, _ := uc.Initiate(ctx, validInput())
		now := time.Now()
		deps.payments.UpdateStatusIfActionable(ctx, nil, p.ID, model.PaymentStatusFailed, &now)

		fresh, err := uc.Retry(ctx, p.ID, "user-1")
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		if fresh.ID == p.ID {
			t.Error("expected a new payment record")
		}
		if !fresh.Amount.Equal(p.Amount) {
			t.Errorf("expected amount carried over, got %s", fresh.Amount)
		}
	})

	t.Run("refuses to retry a non-failed payment", func(t *testing.T) {
		deps := newPaymentUCDeps()
		uc := deps.newUC()
		p, _ := uc.Initiate(ctx, validInput())

		if _, err := uc.Retry(ctx, p.ID, "user-1"); !errors.Is(err, domain.ErrPaymentNotFailed) {
			t.Fatalf("expected ErrPaymentNotFailed, got %v", err)
		}
	})
}

func TestPaymentUseCase_ExpireStale(t *testing.T) {
	ctx := context.Background()
	deps := newPaymentUCDeps()
	gws := map[model.PaymentMethod]adapter.MomoGateway{model.PaymentMethodMTN: deps.gateway}
	// Zero-length expiry window so freshly created payments are already stale.
	uc := usecase.NewPaymentUseCase(deps.payments, deps.momoTxs, gws, deps.tm, time.Nanosecond, newTestLogger())

	p, err := uc.Initiate(ctx, validInput())
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	// Put it back to EN_ATTENTE; only pending payments expire.
	_ = deps.payments.UpdateStatus(ctx, nil, p.ID, model.PaymentStatusPending, nil)
	time.Sleep(2 * time.Millisecond)

	n, err := uc.ExpireStale(ctx, 100)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired payment, got %d", n)
	}
	got, _ := deps.payments.FindByID(ctx, nil, p.ID)
	if got.Status != model.PaymentStatusCancelled {
		t.Errorf("expected ANNULE, got %s", got.Status)
	}
}
