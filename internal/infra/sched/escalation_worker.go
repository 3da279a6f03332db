package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"spotvibe/internal/usecase"
)

// EscalationWorker bumps unhandled notifications up the priority ladder and
// purges old resolved ones once a day.
type EscalationWorker struct {
	interval  time.Duration
	retention time.Duration
	notifUC   usecase.NotificationUseCase
	log       *zerolog.Logger

	lastCleanup time.Time
}

func NewEscalationWorker(interval, retention time.Duration, notifUC usecase.NotificationUseCase, logger *zerolog.Logger) *EscalationWorker {
	l := logger.With().Str("component", "EscalationWorker").Logger()
	return &EscalationWorker{interval: interval, retention: retention, notifUC: notifUC, log: &l}
}

func (w *EscalationWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting escalation worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping escalation worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.notifUC.EscalateDue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("escalation error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("notifications escalated")
			}

			if time.Since(w.lastCleanup) >= 24*time.Hour {
				deleted, err := w.notifUC.CleanupOld(ctx, w.retention)
				if err != nil {
					w.log.Error().Err(err).Msg("cleanup error")
				} else if deleted > 0 {
					w.log.Info().Int64("count", deleted).Msg("old notifications purged")
				}
				w.lastCleanup = time.Now()
			}
		}
	}
}
