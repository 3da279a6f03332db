package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/metrics"
)

// Compile-time checks
var (
	_ EventUseCase  = (*eventUC)(nil)
	_ TicketSettler = (*eventUC)(nil)
)

type CreateEventInput struct {
	OrganizerID string
	Title       string
	Description string
	Venue       string
	City        string
	StartAt     time.Time
	EndAt       time.Time
	TicketPrice decimal.Decimal
	Capacity    int
	// CommissionRate pins this event's ticketing commission; nil falls back
	// to the organizer's plan rate.
	CommissionRate *decimal.Decimal
}

type EventUseCase interface {
	// Create makes a draft event, enforcing the organizer's monthly quota
	// (plan limit, or the free tier without a subscription).
	Create(ctx context.Context, in CreateEventInput) (*model.Event, error)
	Submit(ctx context.Context, eventID, organizerID string) (*model.Event, error)
	Approve(ctx context.Context, eventID, adminID string) (*model.Event, error)
	Reject(ctx context.Context, eventID, adminID, reason string) (*model.Event, error)
	// TerminateEnded closes approved events past their end date; returns the count.
	TerminateEnded(ctx context.Context) (int, error)
	// BuyTicket reserves a ticket and opens the payment collecting its price.
	BuyTicket(ctx context.Context, eventID, buyerID string, method model.PaymentMethod, phone string) (*model.EventTicket, *model.Payment, error)
	SettleTicketPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error
	Get(ctx context.Context, eventID string) (*model.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*model.Event, error)
	ListByStatus(ctx context.Context, status model.EventStatus, limit, offset int) ([]*model.Event, error)
	ListTicketsByBuyer(ctx context.Context, buyerID string) ([]*model.EventTicket, error)
}

type eventUC struct {
	events    repository.EventRepository
	tickets   repository.TicketRepository
	subUC     SubscriptionUseCase
	paymentUC PaymentUseCase
	notifier  Notifier
	txm       repository.TransactionManager
	freeLimit int
	log       *zerolog.Logger
}

func NewEventUseCase(
	events repository.EventRepository,
	tickets repository.TicketRepository,
	subUC SubscriptionUseCase,
	paymentUC PaymentUseCase,
	notifier Notifier,
	txm repository.TransactionManager,
	freeLimit int,
	logger *zerolog.Logger,
) *eventUC {
	if freeLimit <= 0 {
		freeLimit = 2
	}
	l := logger.With().Str("component", "EventUC").Logger()
	return &eventUC{
		events:    events,
		tickets:   tickets,
		subUC:     subUC,
		paymentUC: paymentUC,
		notifier:  notifier,
		txm:       txm,
		freeLimit: freeLimit,
		log:       &l,
	}
}

func (u *eventUC) Create(ctx context.Context, in CreateEventInput) (*model.Event, error) {
	ok, err := u.subUC.CanCreateEvent(ctx, in.OrganizerID)
	switch {
	case err == domain.ErrNoActiveSubscription:
		now := time.Now()
		n, cerr := u.events.CountCreatedInMonth(ctx, repository.NoTX, in.OrganizerID, now.Year(), now.Month())
		if cerr != nil {
			return nil, cerr
		}
		if n >= u.freeLimit {
			return nil, domain.ErrSubscriptionLimitReached
		}
	case err != nil:
		return nil, err
	case !ok:
		return nil, domain.ErrSubscriptionLimitReached
	}

	e, err := model.NewEvent(uuid.NewString(), in.OrganizerID, in.Title, in.Venue, in.City, in.StartAt, in.EndAt, in.TicketPrice, in.Capacity)
	if err != nil {
		return nil, err
	}
	e.Description = in.Description
	e.TicketCommissionRate = in.CommissionRate
	if err := u.events.Save(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	if err := u.subUC.RecordEventCreated(ctx, in.OrganizerID); err != nil {
		u.log.Warn().Err(err).Str("organizer_id", in.OrganizerID).Msg("usage counter update failed")
	}
	metrics.IncEventCreated()
	return e, nil
}

func (u *eventUC) Submit(ctx context.Context, eventID, organizerID string) (*model.Event, error) {
	e, err := u.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != organizerID {
		return nil, domain.ErrPermissionDenied
	}
	if err := e.Submit(); err != nil {
		return nil, err
	}
	if err := u.events.Save(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (u *eventUC) Approve(ctx context.Context, eventID, adminID string) (*model.Event, error) {
	e, err := u.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	if err := e.Approve(adminID); err != nil {
		return nil, err
	}
	if err := u.events.Save(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	if u.notifier != nil {
		_ = u.notifier.Notify(ctx, e.OrganizerID, model.NotificationKindEvent, model.PriorityNormal,
			"Événement approuvé", e.Title, model.RelatedEvent, e.ID)
	}
	return e, nil
}

func (u *eventUC) Reject(ctx context.Context, eventID, adminID, reason string) (*model.Event, error) {
	e, err := u.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, err
	}
	if err := e.Reject(adminID, reason); err != nil {
		return nil, err
	}
	if err := u.events.Save(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	if u.notifier != nil {
		_ = u.notifier.Notify(ctx, e.OrganizerID, model.NotificationKindEvent, model.PriorityHigh,
			"Événement rejeté", reason, model.RelatedEvent, e.ID)
	}
	return e, nil
}

func (u *eventUC) TerminateEnded(ctx context.Context) (int, error) {
	ended, err := u.events.ListApprovedEndedBy(ctx, repository.NoTX, time.Now(), 200)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range ended {
		if err := e.Terminate(); err != nil {
			continue
		}
		if err := u.events.Save(ctx, repository.NoTX, e); err != nil {
			u.log.Error().Err(err).Str("event_id", e.ID).Msg("terminate failed")
			continue
		}
		n++
	}
	return n, nil
}

func (u *eventUC) BuyTicket(ctx context.Context, eventID, buyerID string, method model.PaymentMethod, phone string) (*model.EventTicket, *model.Payment, error) {
	e, err := u.events.FindByID(ctx, repository.NoTX, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !e.CanSellTicket(time.Now()) {
		return nil, nil, domain.ErrOperationFailed
	}

	var t *model.EventTicket
	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.events.IncrementTicketsSold(ctx, tx, e.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrOperationFailed // sold out under us
		}
		t, err = model.NewEventTicket(uuid.NewString(), e, buyerID, newTicketCode())
		if err != nil {
			return err
		}
		return u.tickets.Save(ctx, tx, t)
	})
	if err != nil {
		return nil, nil, err
	}

	p, err := u.paymentUC.Initiate(ctx, InitiatePaymentInput{
		UserID:      buyerID,
		Type:        model.PaymentTypeTicket,
		Amount:      e.TicketPrice,
		Fee:         decimal.Zero,
		Method:      method,
		Phone:       phone,
		Description: "Billet " + e.Title,
		TicketID:    &t.ID,
	})
	if err != nil {
		_ = t.Cancel()
		_ = u.tickets.Save(ctx, repository.NoTX, t)
		return nil, nil, err
	}
	t.PaymentID = p.ID
	if err := u.tickets.Save(ctx, repository.NoTX, t); err != nil {
		return nil, nil, err
	}
	metrics.IncTicketSold()
	return t, p, nil
}

func (u *eventUC) SettleTicketPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error {
	if payment.TicketID == nil {
		return domain.ErrInvalidArgument
	}
	t, err := u.tickets.FindByID(ctx, tx, *payment.TicketID)
	if err != nil {
		return err
	}
	if err := t.MarkPaid(); err != nil {
		if err == domain.ErrTicketNotPending {
			return nil // replayed webhook, already settled
		}
		return err
	}
	return u.tickets.Save(ctx, tx, t)
}

func (u *eventUC) Get(ctx context.Context, eventID string) (*model.Event, error) {
	return u.events.FindByID(ctx, repository.NoTX, eventID)
}

func (u *eventUC) ListByOrganizer(ctx context.Context, organizerID string) ([]*model.Event, error) {
	return u.events.ListByOrganizer(ctx, repository.NoTX, organizerID)
}

func (u *eventUC) ListByStatus(ctx context.Context, status model.EventStatus, limit, offset int) ([]*model.Event, error) {
	return u.events.ListByStatus(ctx, repository.NoTX, status, limit, offset)
}

func (u *eventUC) ListTicketsByBuyer(ctx context.Context, buyerID string) ([]*model.EventTicket, error) {
	return u.tickets.ListByBuyer(ctx, repository.NoTX, buyerID)
}

// newTicketCode yields the human-readable code printed on the ticket.
func newTicketCode() string {
	return "TK-" + strings.ToUpper(uuid.NewString()[:8])
}
