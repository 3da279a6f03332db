package repository

import (
	"context"

	"spotvibe/internal/domain/model"
)

type RefundRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Refund) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Refund, error)
	// FindOpenByPaymentID returns the DEMANDE or APPROUVE refund for the
	// payment, or domain.ErrNotFound when none is open.
	FindOpenByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.Refund, error)
	ListByStatus(ctx context.Context, tx Tx, status model.RefundStatus, limit, offset int) ([]*model.Refund, error)
	ListByRequester(ctx context.Context, tx Tx, requesterID string) ([]*model.Refund, error)
}
