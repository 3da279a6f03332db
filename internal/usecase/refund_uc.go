package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/metrics"
)

// Compile-time check
var _ RefundUseCase = (*refundUC)(nil)

type RefundUseCase interface {
	// Request opens a refund against a succeeded BILLET or ABONNEMENT payment.
	Request(ctx context.Context, paymentID, requesterID string, amount decimal.Decimal, reason model.RefundReason, description string) (*model.Refund, error)
	Approve(ctx context.Context, refundID, adminID, comment string) (*model.Refund, error)
	Reject(ctx context.Context, refundID, adminID, comment string) (*model.Refund, error)
	// Execute creates the compensating payment for an approved refund and
	// flips the original payment to REMBOURSE.
	Execute(ctx context.Context, refundID, adminID string) (*model.Refund, error)
	Get(ctx context.Context, refundID string) (*model.Refund, error)
	ListByStatus(ctx context.Context, status model.RefundStatus, limit, offset int) ([]*model.Refund, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*model.Refund, error)
}

type refundUC struct {
	refunds  repository.RefundRepository
	payments repository.PaymentRepository
	notifier Notifier
	txm      repository.TransactionManager
	log      *zerolog.Logger
}

func NewRefundUseCase(
	refunds repository.RefundRepository,
	payments repository.PaymentRepository,
	notifier Notifier,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *refundUC {
	l := logger.With().Str("component", "RefundUC").Logger()
	return &refundUC{refunds: refunds, payments: payments, notifier: notifier, txm: txm, log: &l}
}

func (u *refundUC) Request(ctx context.Context, paymentID, requesterID string, amount decimal.Decimal, reason model.RefundReason, description string) (*model.Refund, error) {
	var out *model.Refund
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		p, err := u.payments.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if p.UserID != requesterID {
			return domain.ErrPermissionDenied
		}
		if _, err := u.refunds.FindOpenByPaymentID(ctx, tx, paymentID); err == nil {
			return domain.ErrRefundAlreadyOpen
		} else if err != domain.ErrNotFound {
			return err
		}
		r, err := model.NewRefund(uuid.NewString(), p, requesterID, amount, reason, description)
		if err != nil {
			return err
		}
		if err := u.refunds.Save(ctx, tx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRefund("requested")
	u.log.Info().Str("refund_id", out.ID).Str("payment_id", paymentID).Msg("refund requested")
	return out, nil
}

func (u *refundUC) Approve(ctx context.Context, refundID, adminID, comment string) (*model.Refund, error) {
	r, err := u.refunds.FindByID(ctx, repository.NoTX, refundID)
	if err != nil {
		return nil, err
	}
	if err := r.Approve(adminID, comment); err != nil {
		return nil, err
	}
	if err := u.refunds.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	metrics.IncRefund("approved")
	u.notify(ctx, r, model.PriorityNormal, "Remboursement approuvé")
	return r, nil
}

func (u *refundUC) Reject(ctx context.Context, refundID, adminID, comment string) (*model.Refund, error) {
	r, err := u.refunds.FindByID(ctx, repository.NoTX, refundID)
	if err != nil {
		return nil, err
	}
	if err := r.Reject(adminID, comment); err != nil {
		return nil, err
	}
	if err := u.refunds.Save(ctx, repository.NoTX, r); err != nil {
		return nil, err
	}
	metrics.IncRefund("rejected")
	u.notify(ctx, r, model.PriorityNormal, "Remboursement rejeté")
	return r, nil
}

func (u *refundUC) Execute(ctx context.Context, refundID, adminID string) (*model.Refund, error) {
	var out *model.Refund
	err := u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		r, err := u.refunds.FindByID(ctx, tx, refundID)
		if err != nil {
			return err
		}
		original, err := u.payments.FindByID(ctx, tx, r.PaymentID)
		if err != nil {
			return err
		}

		// The compensating payment is a money-out record; it succeeds
		// immediately because the operator payout is a back-office step.
		rp, err := model.NewPayment(uuid.NewString(), r.RequesterID, model.PaymentTypeRefund,
			r.Amount, decimal.Zero, original.Method, original.Phone, 0)
		if err != nil {
			return err
		}
		rp.Description = "Remboursement " + original.InternalRef
		if err := rp.TransitionTo(model.PaymentStatusSucceeded); err != nil {
			return err
		}
		if err := u.payments.Save(ctx, tx, rp); err != nil {
			return err
		}

		if err := r.MarkRefunded(rp.ID); err != nil {
			return err
		}
		if err := u.refunds.Save(ctx, tx, r); err != nil {
			return err
		}

		if err := original.TransitionTo(model.PaymentStatusRefunded); err != nil {
			return err
		}
		if err := u.payments.UpdateStatus(ctx, tx, original.ID, original.Status, original.ProcessedAt); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncRefund("executed")
	u.notify(ctx, out, model.PriorityNormal, "Remboursement effectué")
	u.log.Info().Str("refund_id", out.ID).Str("admin_id", adminID).Msg("refund executed")
	return out, nil
}

func (u *refundUC) Get(ctx context.Context, refundID string) (*model.Refund, error) {
	return u.refunds.FindByID(ctx, repository.NoTX, refundID)
}

func (u *refundUC) ListByStatus(ctx context.Context, status model.RefundStatus, limit, offset int) ([]*model.Refund, error) {
	return u.refunds.ListByStatus(ctx, repository.NoTX, status, limit, offset)
}

func (u *refundUC) ListByRequester(ctx context.Context, requesterID string) ([]*model.Refund, error) {
	return u.refunds.ListByRequester(ctx, repository.NoTX, requesterID)
}

func (u *refundUC) notify(ctx context.Context, r *model.Refund, prio model.NotificationPriority, title string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, r.RequesterID, model.NotificationKindRefund, prio, title, "Montant: "+r.Amount.String()+" XOF", model.RelatedRefund, r.ID); err != nil {
		u.log.Warn().Err(err).Str("refund_id", r.ID).Msg("notify failed")
	}
}
