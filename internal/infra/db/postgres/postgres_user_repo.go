package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/security"
)

var _ repository.UserRepository = (*userRepo)(nil)

// userRepo stores users with the phone number encrypted at rest.
type userRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewUserRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *userRepo {
	return &userRepo{pool: pool, enc: enc}
}

const userCols = `id, email, name, phone, role, verified, active, created_at, updated_at`

func (r *userRepo) scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var phone string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &phone, &u.Role, &u.Verified, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if phone != "" && r.enc != nil {
		plain, err := r.enc.Decrypt(phone)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		u.Phone = plain
	} else {
		u.Phone = phone
	}
	return u, nil
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	phone := u.Phone
	if phone != "" && r.enc != nil {
		var err error
		phone, err = r.enc.Encrypt(phone)
		if err != nil {
			return domain.ErrOperationFailed
		}
	}
	const q = `
INSERT INTO users (` + userCols + `) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
) ON CONFLICT (id) DO UPDATE SET
  email=$2, name=$3, phone=$4, role=$5, verified=$6, active=$7, updated_at=$9;`

	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Email, u.Name, phone, u.Role, u.Verified, u.Active, u.CreatedAt, u.UpdatedAt)
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

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return r.scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, email)
	if err != nil {
		return nil, err
	}
	return r.scanUser(row)
}

func (r *userRepo) Count(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `SELECT COUNT(*) FROM users;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
