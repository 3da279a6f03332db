package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

var _ repository.RefundRepository = (*refundRepo)(nil)

type refundRepo struct{ pool *pgxpool.Pool }

func NewRefundRepo(pool *pgxpool.Pool) *refundRepo {
	return &refundRepo{pool: pool}
}

const refundCols = `id, payment_id, requester_id, amount, reason, description, status, requested_at, processed_at, refunded_at, processed_by_id, admin_comment, refund_payment_id`

func scanRefund(row pgx.Row) (*model.Refund, error) {
	f := &model.Refund{}
	if err := row.Scan(&f.ID, &f.PaymentID, &f.RequesterID, &f.Amount, &f.Reason, &f.Description, &f.Status, &f.RequestedAt, &f.ProcessedAt, &f.RefundedAt, &f.ProcessedByID, &f.AdminComment, &f.RefundPaymentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return f, nil
}

func (r *refundRepo) Save(ctx context.Context, tx repository.Tx, f *model.Refund) error {
	const q = `
INSERT INTO refunds (` + refundCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  status=$7, processed_at=$9, refunded_at=$10, processed_by_id=$11, admin_comment=$12, refund_payment_id=$13;`

	_, err := execSQL(ctx, r.pool, tx, q, f.ID, f.PaymentID, f.RequesterID, f.Amount, f.Reason, f.Description, f.Status, f.RequestedAt, f.ProcessedAt, f.RefundedAt, f.ProcessedByID, f.AdminComment, f.RefundPaymentID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *refundRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Refund, error) {
	q := `SELECT ` + refundCols + ` FROM refunds WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanRefund(row)
}

func (r *refundRepo) FindOpenByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Refund, error) {
	const q = `SELECT ` + refundCols + ` FROM refunds WHERE payment_id=$1 AND status IN ('DEMANDE','APPROUVE') LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanRefund(row)
}

func (r *refundRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.RefundStatus, limit, offset int) ([]*model.Refund, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + refundCols + ` FROM refunds WHERE status=$1 ORDER BY requested_at ASC LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, status, limit, offset)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Refund
	for rows.Next() {
		f, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *refundRepo) ListByRequester(ctx context.Context, tx repository.Tx, requesterID string) ([]*model.Refund, error) {
	const q = `SELECT ` + refundCols + ` FROM refunds WHERE requester_id=$1 ORDER BY requested_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, requesterID)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Refund
	for rows.Next() {
		f, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
