package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
)

type CommissionRepository interface {
	// Save inserts the commission. A unique constraint on payment_id makes a
	// second insert for the same payment return domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, c *model.Commission) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Commission, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.Commission, error)
	ListByOrganizer(ctx context.Context, tx Tx, organizerID string, limit, offset int) ([]*model.Commission, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.CommissionStatus, paidAt *time.Time) error
	SumByPeriod(ctx context.Context, tx Tx, since, until time.Time) (decimal.Decimal, error)
}
