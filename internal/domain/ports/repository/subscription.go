package repository

import (
	"context"
	"time"

	"spotvibe/internal/domain/model"
)

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// FindActiveByUser returns the ACTIF subscription whose end date has not
	// passed, or domain.ErrNotFound.
	FindActiveByUser(ctx context.Context, tx Tx, userID string, now time.Time) (*model.Subscription, error)
	FindPendingByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	// ListActiveExpiredBy returns ACTIF rows whose end date passed, for the
	// expiry worker.
	ListActiveExpiredBy(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Subscription, error)
	ListExpiringBetween(ctx context.Context, tx Tx, from, to time.Time) ([]*model.Subscription, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus) error
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int64, error)

	SaveHistory(ctx context.Context, tx Tx, h *model.SubscriptionHistory) error
	ListHistory(ctx context.Context, tx Tx, subscriptionID string) ([]*model.SubscriptionHistory, error)
}
