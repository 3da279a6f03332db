package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
)

// PaymentFilter narrows List queries. Zero values mean "any".
type PaymentFilter struct {
	UserID string
	Status model.PaymentStatus
	Type   model.PaymentType
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByInternalRef(ctx context.Context, tx Tx, ref string) (*model.Payment, error)
	List(ctx context.Context, tx Tx, f PaymentFilter) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, processedAt *time.Time) error
	// UpdateStatusIfActionable flips status only when the row is still
	// EN_ATTENTE or EN_COURS; returns whether a row changed.
	UpdateStatusIfActionable(ctx context.Context, tx Tx, id string, status model.PaymentStatus, processedAt *time.Time) (bool, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	SumByPeriod(ctx context.Context, tx Tx, period string) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.PaymentStatus]int64, error)
}

type MomoTransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.MomoTransaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MomoTransaction, error)
	FindByProviderTxID(ctx context.Context, tx Tx, providerTxID string) (*model.MomoTransaction, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.MomoTransaction, error)
}
