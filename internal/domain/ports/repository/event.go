package repository

import (
	"context"
	"time"

	"spotvibe/internal/domain/model"
)

type EventRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Event) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Event, error)
	ListByOrganizer(ctx context.Context, tx Tx, organizerID string) ([]*model.Event, error)
	ListByStatus(ctx context.Context, tx Tx, status model.EventStatus, limit, offset int) ([]*model.Event, error)
	// ListApprovedEndedBy returns approved events whose end date passed, for
	// the sweeper that terminates them.
	ListApprovedEndedBy(ctx context.Context, tx Tx, cutoff time.Time, limit int) ([]*model.Event, error)
	// IncrementTicketsSold bumps the sold counter only while capacity
	// remains; returns whether a row changed.
	IncrementTicketsSold(ctx context.Context, tx Tx, eventID string) (bool, error)
	CountCreatedInMonth(ctx context.Context, tx Tx, organizerID string, year int, month time.Month) (int, error)
}

type TicketRepository interface {
	Save(ctx context.Context, tx Tx, t *model.EventTicket) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.EventTicket, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.EventTicket, error)
	ListByBuyer(ctx context.Context, tx Tx, buyerID string) ([]*model.EventTicket, error)
	ListByEvent(ctx context.Context, tx Tx, eventID string) ([]*model.EventTicket, error)
}
