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

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planCols = `id, name, tier, price, duration, description, active, sort_order, created_at, updated_at`

func (r *planRepo) scanPlanWithFeatures(ctx context.Context, tx repository.Tx, row pgx.Row) (*model.SubscriptionPlan, error) {
	p := &model.SubscriptionPlan{}
	if err := row.Scan(&p.ID, &p.Name, &p.Tier, &p.Price, &p.Duration, &p.Description, &p.Active, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	features, err := r.loadFeatures(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Features = features
	return p, nil
}

func (r *planRepo) loadFeatures(ctx context.Context, tx repository.Tx, planID string) ([]model.PlanFeature, error) {
	const q = `SELECT name, description, included, lim, sort_order FROM plan_features WHERE plan_id=$1 ORDER BY sort_order ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, planID)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var out []model.PlanFeature
	for rows.Next() {
		var f model.PlanFeature
		if err := rows.Scan(&f.Name, &f.Description, &f.Included, &f.Limit, &f.SortOrder); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, f)
	}
	return out, nil
}

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (` + planCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  name=$2, tier=$3, price=$4, duration=$5, description=$6, active=$7, sort_order=$8, updated_at=$10;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.Tier, p.Price, p.Duration, p.Description, p.Active, p.SortOrder, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}

	const dq = `DELETE FROM plan_features WHERE plan_id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, dq, p.ID); err != nil {
		return domain.ErrOperationFailed
	}
	const fq = `INSERT INTO plan_features (plan_id, name, description, included, lim, sort_order) VALUES ($1,$2,$3,$4,$5,$6);`
	for _, f := range p.Features {
		if _, err := execSQL(ctx, r.pool, tx, fq, p.ID, f.Name, f.Description, f.Included, f.Limit, f.SortOrder); err != nil {
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planCols + ` FROM subscription_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scanPlanWithFeatures(ctx, tx, row)
}

func (r *planRepo) FindByTierAndDuration(ctx context.Context, tx repository.Tx, tier model.PlanTier, duration model.PlanDuration) (*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planCols + ` FROM subscription_plans WHERE tier=$1 AND duration=$2 AND active LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, tier, duration)
	if err != nil {
		return nil, err
	}
	return r.scanPlanWithFeatures(ctx, tx, row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionPlan, error) {
	const q = `SELECT ` + planCols + ` FROM subscription_plans WHERE active ORDER BY sort_order ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, translateQueryErr(err)
	}
	defer rows.Close()

	var bare []*model.SubscriptionPlan
	for rows.Next() {
		p := &model.SubscriptionPlan{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Tier, &p.Price, &p.Duration, &p.Description, &p.Active, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		bare = append(bare, p)
	}
	rows.Close()

	for _, p := range bare {
		features, err := r.loadFeatures(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Features = features
	}
	return bare, nil
}
