package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/metrics"
)

// Compile-time checks
var (
	_ NotificationUseCase = (*notificationUC)(nil)
	_ Notifier            = (*notificationUC)(nil)
)

type NotificationUseCase interface {
	Notifier
	MarkViewed(ctx context.Context, notificationID, userID string) error
	Resolve(ctx context.Context, notificationID string) error
	ListByUser(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*model.Notification, error)
	// EscalateDue bumps unhandled notifications whose priority delay has
	// elapsed; returns how many were escalated.
	EscalateDue(ctx context.Context) (int, error)
	// CleanupOld purges resolved notifications older than the retention window.
	CleanupOld(ctx context.Context, retention time.Duration) (int64, error)
}

type notificationUC struct {
	notifications repository.NotificationRepository
	log           *zerolog.Logger
}

func NewNotificationUseCase(notifications repository.NotificationRepository, logger *zerolog.Logger) *notificationUC {
	l := logger.With().Str("component", "NotificationUC").Logger()
	return &notificationUC{notifications: notifications, log: &l}
}

func (u *notificationUC) Notify(ctx context.Context, userID string, kind model.NotificationKind, priority model.NotificationPriority, title, message string, related model.RelatedKind, relatedID string) error {
	n, err := model.NewNotification(uuid.NewString(), userID, kind, priority, title, message)
	if err != nil {
		return err
	}
	if relatedID != "" {
		n.Relate(related, relatedID)
	}
	if err := u.notifications.Save(ctx, repository.NoTX, n); err != nil {
		return err
	}
	metrics.IncNotification(string(priority))
	return nil
}

func (u *notificationUC) MarkViewed(ctx context.Context, notificationID, userID string) error {
	n, err := u.notifications.FindByID(ctx, repository.NoTX, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return domain.ErrPermissionDenied
	}
	n.MarkViewed(time.Now())
	return u.notifications.Save(ctx, repository.NoTX, n)
}

func (u *notificationUC) Resolve(ctx context.Context, notificationID string) error {
	n, err := u.notifications.FindByID(ctx, repository.NoTX, notificationID)
	if err != nil {
		return err
	}
	n.Resolve(time.Now())
	return u.notifications.Save(ctx, repository.NoTX, n)
}

func (u *notificationUC) ListByUser(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*model.Notification, error) {
	return u.notifications.ListByUser(ctx, repository.NoTX, userID, onlyUnread, limit, offset)
}

func (u *notificationUC) EscalateDue(ctx context.Context) (int, error) {
	now := time.Now()
	// The longest ladder delay is 24h; anything younger cannot be due.
	due, err := u.notifications.ListEscalatable(ctx, repository.NoTX, now, 500)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, item := range due {
		if !item.EscalateIfNeeded(now) {
			continue
		}
		if err := u.notifications.Save(ctx, repository.NoTX, item); err != nil {
			u.log.Error().Err(err).Str("notification_id", item.ID).Msg("escalation save failed")
			continue
		}
		metrics.IncNotificationEscalated(string(item.Priority))
		n++
	}
	return n, nil
}

func (u *notificationUC) CleanupOld(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	return u.notifications.DeleteOlderThan(ctx, repository.NoTX, time.Now().Add(-retention))
}
