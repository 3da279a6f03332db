package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*notificationRepo)(nil)

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

const notificationCols = `id, user_id, kind, priority, status, title, message, related_kind, related_id, escalated, escalated_at, created_at, viewed_at, resolved_at`

func scanNotification(row pgx.Row) (*model.Notification, error) {
	n := &model.Notification{}
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Priority, &n.Status, &n.Title, &n.Message, &n.RelatedKind, &n.RelatedID, &n.Escalated, &n.EscalatedAt, &n.CreatedAt, &n.ViewedAt, &n.ResolvedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (` + notificationCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  priority=$4, status=$5, escalated=$10, escalated_at=$11, viewed_at=$13, resolved_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, n.Kind, n.Priority, n.Status, n.Title, n.Message, n.RelatedKind, n.RelatedID, n.Escalated, n.EscalatedAt, n.CreatedAt, n.ViewedAt, n.ResolvedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanNotification(row)
}

func (r *notificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, onlyUnread bool, limit, offset int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + notificationCols + ` FROM notifications WHERE user_id=$1`
	if onlyUnread {
		q += ` AND status='NOUVEAU'`
	}
	q += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit, offset)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepo) ListEscalatable(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 500
	}
	const q = `
SELECT ` + notificationCols + ` FROM notifications
 WHERE escalated = FALSE
   AND status NOT IN ('RESOLU','IGNORE','ARCHIVE')
   AND created_at < $1
 ORDER BY created_at ASC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, cutoff, limit)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	out, err := collectNotifications(rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *notificationRepo) DeleteOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM notifications WHERE status IN ('RESOLU','ARCHIVE') AND created_at < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return cmd.RowsAffected(), nil
}

func collectNotifications(rows pgx.Rows) ([]*model.Notification, error) {
	var out []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
