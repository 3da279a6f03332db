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

var _ repository.MomoTransactionRepository = (*momoTxRepo)(nil)

type momoTxRepo struct{ pool *pgxpool.Pool }

func NewMomoTransactionRepo(pool *pgxpool.Pool) *momoTxRepo {
	return &momoTxRepo{pool: pool}
}

const momoCols = `id, payment_id, operator, phone, provider_tx_id, operator_ref, response_code, response_msg, status, initiated_at, confirmed_at, webhook_received, webhook_payload`

func scanMomoTx(row pgx.Row) (*model.MomoTransaction, error) {
	t := &model.MomoTransaction{}
	if err := row.Scan(&t.ID, &t.PaymentID, &t.Operator, &t.Phone, &t.ProviderTxID, &t.OperatorRef, &t.ResponseCode, &t.ResponseMsg, &t.Status, &t.InitiatedAt, &t.ConfirmedAt, &t.WebhookReceived, &t.WebhookPayload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return t, nil
}

func (r *momoTxRepo) Save(ctx context.Context, tx repository.Tx, t *model.MomoTransaction) error {
	const q = `
INSERT INTO momo_transactions (` + momoCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  operator_ref=$6, response_code=$7, response_msg=$8, status=$9, confirmed_at=$11, webhook_received=$12, webhook_payload=$13;`

	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.PaymentID, t.Operator, t.Phone, t.ProviderTxID, t.OperatorRef, t.ResponseCode, t.ResponseMsg, t.Status, t.InitiatedAt, t.ConfirmedAt, t.WebhookReceived, t.WebhookPayload)
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

func (r *momoTxRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MomoTransaction, error) {
	const q = `SELECT ` + momoCols + ` FROM momo_transactions WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMomoTx(row)
}

func (r *momoTxRepo) FindByProviderTxID(ctx context.Context, tx repository.Tx, providerTxID string) (*model.MomoTransaction, error) {
	q := `SELECT ` + momoCols + ` FROM momo_transactions WHERE provider_tx_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, providerTxID)
	if err != nil {
		return nil, err
	}
	return scanMomoTx(row)
}

func (r *momoTxRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.MomoTransaction, error) {
	const q = `SELECT ` + momoCols + ` FROM momo_transactions WHERE payment_id=$1 ORDER BY initiated_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, paymentID)
	if err != nil {
		return nil, err
	}
	return scanMomoTx(row)
}
