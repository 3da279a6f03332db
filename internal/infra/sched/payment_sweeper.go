package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"spotvibe/internal/usecase"
)

// PaymentSweeper cancels pending payments past their expiry window and
// terminates approved events that have ended.
type PaymentSweeper struct {
	interval  time.Duration
	paymentUC usecase.PaymentUseCase
	eventUC   usecase.EventUseCase
	log       *zerolog.Logger
}

func NewPaymentSweeper(interval time.Duration, paymentUC usecase.PaymentUseCase, eventUC usecase.EventUseCase, logger *zerolog.Logger) *PaymentSweeper {
	l := logger.With().Str("component", "PaymentSweeper").Logger()
	return &PaymentSweeper{interval: interval, paymentUC: paymentUC, eventUC: eventUC, log: &l}
}

func (w *PaymentSweeper) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting payment sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping payment sweeper")
			return ctx.Err()
		case <-ticker.C:
			if n, err := w.paymentUC.ExpireStale(ctx, 200); err != nil {
				w.log.Error().Err(err).Msg("stale payment sweep error")
			} else if n > 0 {
				w.log.Info().Int("count", n).Msg("stale payments cancelled")
			}
			if n, err := w.eventUC.TerminateEnded(ctx); err != nil {
				w.log.Error().Err(err).Msg("event termination error")
			} else if n > 0 {
				w.log.Info().Int("count", n).Msg("ended events terminated")
			}
		}
	}
}
