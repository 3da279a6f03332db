package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/usecase"
)

// PaymentReconciler polls the operators for payments stuck in EN_COURS,
// catching transactions whose webhook never arrived.
type PaymentReconciler struct {
	interval  time.Duration
	minAge    time.Duration
	payments  repository.PaymentRepository
	paymentUC usecase.PaymentUseCase
	log       *zerolog.Logger
}

func NewPaymentReconciler(interval time.Duration, payments repository.PaymentRepository, paymentUC usecase.PaymentUseCase, logger *zerolog.Logger) *PaymentReconciler {
	l := logger.With().Str("component", "PaymentReconciler").Logger()
	return &PaymentReconciler{
		interval:  interval,
		minAge:    5 * time.Minute,
		payments:  payments,
		paymentUC: paymentUC,
		log:       &l,
	}
}

func (w *PaymentReconciler) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment reconciler")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment reconciler")
			return ctx.Err()
		case <-ticker.C:
			w.reconcile(ctx)
		}
	}
}

func (w *PaymentReconciler) reconcile(ctx context.Context) {
	stuck, err := w.payments.List(ctx, repository.NoTX, repository.PaymentFilter{
		Status: model.PaymentStatusProcessing,
		Limit:  100,
	})
	if err != nil {
		if err != domain.ErrNotFound {
			w.log.Error().Err(err).Msg("reconciler list error")
		}
		return
	}
	cutoff := time.Now().Add(-w.minAge)
	settled := 0
	for _, p := range stuck {
		if p.CreatedAt.After(cutoff) {
			continue // give the webhook a chance first
		}
		fresh, err := w.paymentUC.Verify(ctx, p.ID)
		if err != nil {
			w.log.Warn().Err(err).Str("payment_id", p.ID).Msg("reconcile verify failed")
			continue
		}
		if fresh.Status != model.PaymentStatusProcessing {
			settled++
		}
	}
	if settled > 0 {
		w.log.Info().Int("count", settled).Msg("payments reconciled")
	}
}
