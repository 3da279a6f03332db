package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

var _ repository.CommissionRepository = (*commissionRepo)(nil)

type commissionRepo struct{ pool *pgxpool.Pool }

func NewCommissionRepo(pool *pgxpool.Pool) *commissionRepo {
	return &commissionRepo{pool: pool}
}

const commissionCols = `id, payment_id, type, base_amount, rate, amount, status, event_id, organizer_id, calculated_at, paid_at, notes`

func scanCommission(row pgx.Row) (*model.Commission, error) {
	c := &model.Commission{}
	if err := row.Scan(&c.ID, &c.PaymentID, &c.Type, &c.BaseAmount, &c.Rate, &c.Amount, &c.Status, &c.EventID, &c.OrganizerID, &c.CalculatedAt, &c.PaidAt, &c.Notes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

func (r *commissionRepo) Save(ctx context.Context, tx repository.Tx, c *model.Commission) error {
	// payment_id carries a UNIQUE constraint; a replayed webhook inserting a
	// second commission for the same payment fails with ErrAlreadyExists.
	const q = `
INSERT INTO commissions (` + commissionCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  base_amount=$4, rate=$5, amount=$6, status=$7, paid_at=$11, notes=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.PaymentID, c.Type, c.BaseAmount, c.Rate, c.Amount, c.Status, c.EventID, c.OrganizerID, c.CalculatedAt, c.PaidAt, c.Notes)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *commissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Commission, error) {
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCommission(row)
}

func (r *commissionRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Commission, error) {
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE payment_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanCommission(row)
}

func (r *commissionRepo) ListByOrganizer(ctx context.Context, tx repository.Tx, organizerID string, limit, offset int) ([]*model.Commission, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + commissionCols + ` FROM commissions WHERE organizer_id=$1 ORDER BY calculated_at DESC LIMIT $2 OFFSET $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, organizerID, limit, offset)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *commissionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CommissionStatus, paidAt *time.Time) error {
	const q = `UPDATE commissions SET status=$2, paid_at=COALESCE($3, paid_at) WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, paidAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *commissionRepo) SumByPeriod(ctx context.Context, tx repository.Tx, since, until time.Time) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM commissions WHERE status IN ('CALCULEE','PAYEE') AND calculated_at >= $1 AND calculated_at < $2;`
	row, err := pickRow(ctx, r.pool, tx, q, since, until)
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
