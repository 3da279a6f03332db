package usecase

import (
	"context"
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

// Locker is the distributed-lock port; the redis implementation satisfies it.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// WebhookPayload is the operator-agnostic shape both MTN and Moov callbacks
// are normalized into before processing.
type WebhookPayload struct {
	TransactionID string          `json:"transaction_id"`
	Status        string          `json:"status"` // SUCCESS | FAILED | PENDING | CANCELLED
	Amount        decimal.Decimal `json:"amount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	ErrorCode     string          `json:"error_code,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty"`
}

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Process applies one operator callback. Duplicate deliveries are safe:
	// a per-transaction lock serializes concurrent deliveries and a
	// conditional status update makes replays no-ops.
	Process(ctx context.Context, operator model.MomoOperator, payload WebhookPayload) error
}

type webhookUC struct {
	payments      repository.PaymentRepository
	momoTxs       repository.MomoTransactionRepository
	commissions   repository.CommissionRepository
	ticketRepo    repository.TicketRepository
	eventRepo     repository.EventRepository
	subscriptions SubscriptionActivator
	tickets       TicketSettler
	notifier      Notifier
	rates         CommissionRateSource
	subRate       decimal.Decimal // fixed commission rate on subscription payments
	locker        Locker
	txm           repository.TransactionManager
	log           *zerolog.Logger
}

// SubscriptionActivator is the slice of the subscription use case the webhook
// pipeline needs.
type SubscriptionActivator interface {
	ActivateOnPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error
}

// TicketSettler settles the event ticket attached to a payment.
type TicketSettler interface {
	SettleTicketPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error
}

// Notifier is the slice of the notification use case other use cases call.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind model.NotificationKind, priority model.NotificationPriority, title, message string, related model.RelatedKind, relatedID string) error
}

// CommissionRateSource resolves the ticketing commission rate for an
// organizer, honoring plan discounts.
type CommissionRateSource interface {
	CommissionRateFor(ctx context.Context, tx repository.Tx, organizerID string) (decimal.Decimal, error)
}

func NewWebhookUseCase(
	payments repository.PaymentRepository,
	momoTxs repository.MomoTransactionRepository,
	commissions repository.CommissionRepository,
	ticketRepo repository.TicketRepository,
	eventRepo repository.EventRepository,
	subscriptions SubscriptionActivator,
	tickets TicketSettler,
	notifier Notifier,
	rates CommissionRateSource,
	subRate decimal.Decimal,
	locker Locker,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *webhookUC {
	if subRate.IsZero() {
		subRate = decimal.NewFromInt(3)
	}
	l := logger.With().Str("component", "WebhookUC").Logger()
	return &webhookUC{
		payments:      payments,
		momoTxs:       momoTxs,
		commissions:   commissions,
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		subscriptions: subscriptions,
		tickets:       tickets,
		notifier:      notifier,
		rates:         rates,
		subRate:       subRate,
		locker:        locker,
		txm:           txm,
		log:           &l,
	}
}

func statusFromWebhook(s string) (model.PaymentStatus, model.MomoTransactionStatus, bool) {
	switch s {
	case "SUCCESS":
		return model.PaymentStatusSucceeded, model.MomoStatusSuccess, true
	case "FAILED":
		return model.PaymentStatusFailed, model.MomoStatusFailed, true
	case "CANCELLED":
		return model.PaymentStatusCancelled, model.MomoStatusCancelled, true
	case "PENDING":
		return "", model.MomoStatusPending, true
	default:
		return "", "", false
	}
}

func (u *webhookUC) Process(ctx context.Context, operator model.MomoOperator, payload WebhookPayload) error {
	if payload.TransactionID == "" {
		return domain.ErrInvalidArgument
	}
	next, momoStatus, ok := statusFromWebhook(payload.Status)
	if !ok {
		return domain.ErrInvalidArgument
	}

	token, err := u.locker.TryLock(ctx, "webhook:"+payload.TransactionID, 30*time.Second)
	if err != nil {
		return domain.ErrLockNotAcquired
	}
	defer func() { _ = u.locker.Unlock(ctx, "webhook:"+payload.TransactionID, token) }()

	mt, err := u.momoTxs.FindByProviderTxID(ctx, repository.NoTX, payload.TransactionID)
	if err != nil {
		return err
	}
	if mt.Operator != operator {
		return domain.ErrInvalidArgument
	}

	p, err := u.payments.FindByID(ctx, repository.NoTX, mt.PaymentID)
	if err != nil {
		return err
	}
	if !payload.Amount.IsZero() && !payload.Amount.Equal(p.Amount) {
		u.log.Warn().Str("payment_id", p.ID).
			Str("got", payload.Amount.String()).Str("want", p.Amount.String()).
			Msg("webhook amount mismatch")
		return domain.ErrAmountMismatch
	}

	// A PENDING callback only records the webhook on the transaction.
	if next == "" {
		mt.Confirm(momoStatus, webhookMap(payload))
		mt.ConfirmedAt = nil // not final yet
		return u.momoTxs.Save(ctx, repository.NoTX, mt)
	}

	now := time.Now()
	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		changed, err := u.payments.UpdateStatusIfActionable(ctx, tx, p.ID, next, &now)
		if err != nil {
			return err
		}
		if !changed {
			// Replay of an already-settled payment.
			return domain.ErrWebhookAlreadyProcessed
		}
		p.Status = next
		p.ProcessedAt = &now

		mt.Confirm(momoStatus, webhookMap(payload))
		mt.ResponseCode = payload.ErrorCode
		mt.ResponseMsg = payload.ErrorMessage
		if err := u.momoTxs.Save(ctx, tx, mt); err != nil {
			return err
		}

		if next == model.PaymentStatusSucceeded {
			return u.onSuccess(ctx, tx, p)
		}
		return nil
	})
	if err != nil {
		if err == domain.ErrWebhookAlreadyProcessed {
			u.log.Info().Str("tx_id", payload.TransactionID).Msg("duplicate webhook ignored")
			metrics.IncWebhook(string(operator), "duplicate")
			return nil
		}
		metrics.IncWebhook(string(operator), "error")
		return err
	}

	metrics.IncWebhook(string(operator), "processed")
	metrics.IncPaymentSettled(string(next))
	u.notifyOutcome(ctx, p)
	return nil
}

// onSuccess runs the side effects of a settled payment inside the same
// transaction: subscription activation, ticket settlement, commission row.
func (u *webhookUC) onSuccess(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	switch p.Type {
	case model.PaymentTypeSubscription:
		if u.subscriptions != nil {
			if err := u.subscriptions.ActivateOnPayment(ctx, tx, p); err != nil {
				return err
			}
		}
		return u.createSubscriptionCommission(ctx, tx, p)
	case model.PaymentTypeTicket:
		if u.tickets != nil {
			if err := u.tickets.SettleTicketPayment(ctx, tx, p); err != nil {
				return err
			}
		}
		return u.createTicketCommission(ctx, tx, p)
	}
	return nil
}

// createSubscriptionCommission records the platform's fixed-rate cut of a
// subscription purchase.
func (u *webhookUC) createSubscriptionCommission(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	c, err := model.NewCommission(uuid.NewString(), p.ID, p.UserID, model.CommissionTypeSubscription, p.Amount, u.subRate)
	if err != nil {
		return err
	}
	return u.saveCommission(ctx, tx, c)
}

// createTicketCommission records the cut owed by the event's organizer. The
// rate comes from the event's override when set, else the organizer's plan.
func (u *webhookUC) createTicketCommission(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if p.TicketID == nil {
		return domain.ErrInvalidArgument
	}
	t, err := u.ticketRepo.FindByID(ctx, tx, *p.TicketID)
	if err != nil {
		return err
	}
	e, err := u.eventRepo.FindByID(ctx, tx, t.EventID)
	if err != nil {
		return err
	}

	rate := decimal.NewFromInt(10)
	if e.TicketCommissionRate != nil {
		rate = *e.TicketCommissionRate
	} else if u.rates != nil {
		if r, err := u.rates.CommissionRateFor(ctx, tx, e.OrganizerID); err == nil {
			rate = r
		}
	}

	c, err := model.NewCommission(uuid.NewString(), p.ID, e.OrganizerID, model.CommissionTypeTicketing, p.Amount, rate)
	if err != nil {
		return err
	}
	c.EventID = &e.ID
	return u.saveCommission(ctx, tx, c)
}

func (u *webhookUC) saveCommission(ctx context.Context, tx repository.Tx, c *model.Commission) error {
	if err := u.commissions.Save(ctx, tx, c); err != nil {
		// Unique payment_id constraint: a replay already created it.
		if err == domain.ErrAlreadyExists {
			return nil
		}
		return err
	}
	return nil
}

func (u *webhookUC) notifyOutcome(ctx context.Context, p *model.Payment) {
	if u.notifier == nil {
		return
	}
	var tmpl model.NotificationTemplate
	switch p.Status {
	case model.PaymentStatusSucceeded:
		tmpl = model.TemplatePaymentConfirmed
	case model.PaymentStatusFailed:
		tmpl = model.TemplatePaymentFailed
	case model.PaymentStatusCancelled:
		tmpl = model.TemplatePaymentCancelled
	default:
		return
	}
	title, msg := tmpl.Render(map[string]string{"reference": p.InternalRef})
	if err := u.notifier.Notify(ctx, p.UserID, tmpl.Kind, tmpl.Priority, title, msg, model.RelatedPayment, p.ID); err != nil {
		u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("notify failed")
	}
}

func webhookMap(p WebhookPayload) map[string]interface{} {
	m := map[string]interface{}{
		"transaction_id": p.TransactionID,
		"status":         p.Status,
	}
	if !p.Amount.IsZero() {
		m["amount"] = p.Amount.String()
	}
	if p.Currency != "" {
		m["currency"] = p.Currency
	}
	if p.Reference != "" {
		m["reference"] = p.Reference
	}
	if p.ErrorCode != "" {
		m["error_code"] = p.ErrorCode
	}
	if p.ErrorMessage != "" {
		m["error_message"] = p.ErrorMessage
	}
	return m
}
