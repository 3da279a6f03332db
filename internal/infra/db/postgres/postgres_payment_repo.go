package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentCols = `id, user_id, type, amount, fee, net_amount, status, method, external_ref, internal_ref, subscription_id, ticket_id, phone, description, created_at, processed_at, expires_at, provider_data`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Type, &p.Amount, &p.Fee, &p.NetAmount, &p.Status, &p.Method, &p.ExternalRef, &p.InternalRef, &p.SubscriptionID, &p.TicketID, &p.Phone, &p.Description, &p.CreatedAt, &p.ProcessedAt, &p.ExpiresAt, &p.ProviderData); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (` + paymentCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
) ON CONFLICT (id) DO UPDATE SET
  amount=$4, fee=$5, net_amount=$6, status=$7, external_ref=$9, subscription_id=$11, ticket_id=$12, description=$14, processed_at=$16, expires_at=$17, provider_data=$18;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.UserID, p.Type, p.Amount, p.Fee, p.NetAmount, p.Status, p.Method, p.ExternalRef, p.InternalRef, p.SubscriptionID, p.TicketID, p.Phone, p.Description, p.CreatedAt, p.ProcessedAt, p.ExpiresAt, p.ProviderData)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByInternalRef(ctx context.Context, tx repository.Tx, ref string) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE internal_ref=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, ref)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) List(ctx context.Context, tx repository.Tx, f repository.PaymentFilter) ([]*model.Payment, error) {
	q := `SELECT ` + paymentCols + ` FROM payments WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(cond string, v interface{}) {
		n++
		args = append(args, v)
		q += cond + "$" + strconv.Itoa(n)
	}
	if f.UserID != "" {
		add(" AND user_id=", f.UserID)
	}
	if f.Status != "" {
		add(" AND status=", f.Status)
	}
	if f.Type != "" {
		add(" AND type=", f.Type)
	}
	if f.Since != nil {
		add(" AND created_at >= ", *f.Since)
	}
	if f.Until != nil {
		add(" AND created_at < ", *f.Until)
	}
	q += " ORDER BY created_at DESC"
	if f.Limit <= 0 {
		f.Limit = 50
	}
	add(" LIMIT ", f.Limit)
	add(" OFFSET ", f.Offset)
	q += ";"

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, processedAt *time.Time) error {
	const q = `UPDATE payments SET status=$2, processed_at=COALESCE($3, processed_at) WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status, processedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// UpdateStatusIfActionable flips status only when the row is still waiting on
// the operator, which is what makes webhook replays harmless.
func (r *paymentRepo) UpdateStatusIfActionable(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, processedAt *time.Time) (bool, error) {
	const q = `
UPDATE payments
   SET status = $2,
       processed_at = $3
 WHERE id = $1
   AND status IN ('EN_ATTENTE','EN_COURS');`

	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status), processedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE status IN ('EN_ATTENTE','EN_COURS') AND expires_at IS NOT NULL AND expires_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *paymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status='REUSSI' AND processed_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return decimal.Zero, err
	}
	var sum decimal.Decimal
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *paymentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int64, error) {
	const q = `SELECT status, COUNT(*) FROM payments GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	out := map[model.PaymentStatus]int64{}
	for rows.Next() {
		var s model.PaymentStatus
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[s] = n
	}
	return out, nil
}

func translateQueryErr(err error) error {
	switch err {
	case pgx.ErrNoRows:
		return domain.ErrNotFound
	case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
		return err
	default:
		return domain.ErrOperationFailed
	}
}
