package repository

import (
	"context"
	"time"

	"spotvibe/internal/domain/model"
)

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Notification, error)
	ListByUser(ctx context.Context, tx Tx, userID string, onlyUnread bool, limit, offset int) ([]*model.Notification, error)
	// ListEscalatable returns unresolved, not-yet-escalated notifications
	// created before the cutoff, oldest first.
	ListEscalatable(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Notification, error)
	// DeleteOlderThan purges resolved and archived notifications created
	// before the cutoff; returns how many rows went away.
	DeleteOlderThan(ctx context.Context, tx Tx, cutoff time.Time) (int64, error)
}
