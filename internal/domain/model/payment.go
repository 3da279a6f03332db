package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type PaymentType string

const (
	PaymentTypeSubscription PaymentType = "ABONNEMENT"
	PaymentTypeTicket       PaymentType = "BILLET"
	PaymentTypeCommission   PaymentType = "COMMISSION"
	PaymentTypeRefund       PaymentType = "REMBOURSEMENT"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "EN_ATTENTE"
	PaymentStatusProcessing PaymentStatus = "EN_COURS"
	PaymentStatusSucceeded  PaymentStatus = "REUSSI"
	PaymentStatusFailed     PaymentStatus = "ECHEC"
	PaymentStatusCancelled  PaymentStatus = "ANNULE"
	PaymentStatusRefunded   PaymentStatus = "REMBOURSE"
)

type PaymentMethod string

const (
	PaymentMethodMTN  PaymentMethod = "MOMO_MTN"
	PaymentMethodMoov PaymentMethod = "MOMO_MOOV"
)

// paymentTransitions is the one-directional status graph. Cancel is only
// reachable from the pending states, refund only from succeeded.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:    {PaymentStatusProcessing, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusProcessing: {PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusSucceeded:  {PaymentStatusRefunded},
	PaymentStatusFailed:     {PaymentStatusPending}, // retry re-opens the payment
}

// Payment is the aggregate root for every amount of money moving through the
// platform: subscription purchases, event tickets, commission settlements and
// refund executions.
type Payment struct {
	ID          string
	UserID      string
	Type        PaymentType
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	NetAmount   decimal.Decimal // always Amount - Fee, recomputed by setters
	Status      PaymentStatus
	Method      PaymentMethod
	ExternalRef string // provider-side reference
	InternalRef string // SV-prefixed sortable reference

	SubscriptionID *string
	TicketID       *string

	Phone       string
	Description string

	CreatedAt   time.Time
	ProcessedAt *time.Time
	ExpiresAt   *time.Time

	ProviderData map[string]interface{}
}

// NewPayment builds a pending payment with derived fields populated.
// expiry of zero means the payment never expires.
func NewPayment(id, userID string, typ PaymentType, amount, fee decimal.Decimal, method PaymentMethod, phone string, expiry time.Duration) (*Payment, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amount.IsNegative() || fee.IsNegative() || fee.GreaterThan(amount) {
		return nil, domain.ErrInvalidArgument
	}
	switch method {
	case PaymentMethodMTN, PaymentMethodMoov:
	default:
		return nil, domain.ErrUnsupportedPaymentMethod
	}
	now := time.Now()
	p := &Payment{
		ID:          id,
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Fee:         fee,
		NetAmount:   amount.Sub(fee),
		Status:      PaymentStatusPending,
		Method:      method,
		InternalRef: NewPaymentRef(now),
		Phone:       phone,
		CreatedAt:   now,
	}
	if expiry > 0 {
		exp := now.Add(expiry)
		p.ExpiresAt = &exp
	}
	return p, nil
}

// NewPaymentRef produces the internal SV reference. ULIDs sort by creation
// time, which keeps the reference usable for support lookups and exports.
func NewPaymentRef(t time.Time) string {
	return fmt.Sprintf("SV%s", ulid.MustNew(ulid.Timestamp(t), rand.Reader))
}

// SetAmounts updates amount/fee and recomputes the net amount.
func (p *Payment) SetAmounts(amount, fee decimal.Decimal) error {
	if amount.IsNegative() || fee.IsNegative() || fee.GreaterThan(amount) {
		return domain.ErrInvalidArgument
	}
	p.Amount = amount
	p.Fee = fee
	p.NetAmount = amount.Sub(fee)
	return nil
}

// TransitionTo moves the payment along the status graph, stamping
// ProcessedAt on terminal outcomes.
func (p *Payment) TransitionTo(next PaymentStatus) error {
	for _, allowed := range paymentTransitions[p.Status] {
		if allowed == next {
			p.Status = next
			switch next {
			case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
				now := time.Now()
				p.ProcessedAt = &now
			}
			return nil
		}
	}
	return domain.ErrInvalidStatusTransition
}

func (p *Payment) IsSuccessful() bool { return p.Status == PaymentStatusSucceeded }

// CanBeRefunded reports whether a refund may be requested against this payment.
func (p *Payment) CanBeRefunded() bool {
	return p.Status == PaymentStatusSucceeded &&
		(p.Type == PaymentTypeTicket || p.Type == PaymentTypeSubscription)
}

// IsExpired reports whether a pending payment has outlived its expiry window.
func (p *Payment) IsExpired(now time.Time) bool {
	return p.Status == PaymentStatusPending && p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}
