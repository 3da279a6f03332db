package model

import (
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type CommissionType string

const (
	CommissionTypeTicketing    CommissionType = "BILLETTERIE"
	CommissionTypeSubscription CommissionType = "ABONNEMENT"
	CommissionTypeService      CommissionType = "SERVICE"
)

type CommissionStatus string

const (
	CommissionStatusPending    CommissionStatus = "EN_ATTENTE"
	CommissionStatusCalculated CommissionStatus = "CALCULEE"
	CommissionStatusPaid       CommissionStatus = "PAYEE"
	CommissionStatusCancelled  CommissionStatus = "ANNULEE"
)

// Commission is the platform's cut of a successful payment. One commission
// exists per payment at most; the repository enforces this with a unique
// constraint on payment_id so that replayed webhooks cannot create duplicates.
type Commission struct {
	ID          string
	PaymentID   string
	Type        CommissionType
	BaseAmount  decimal.Decimal
	Rate        decimal.Decimal // percentage, e.g. 5 means 5%
	Amount      decimal.Decimal // always BaseAmount * Rate / 100
	Status      CommissionStatus
	EventID     *string
	OrganizerID string

	CalculatedAt time.Time
	PaidAt       *time.Time
	Notes        string
}

var oneHundred = decimal.NewFromInt(100)

// CommissionAmount is the single place the platform's cut is computed.
func CommissionAmount(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(oneHundred)
}

func NewCommission(id, paymentID, organizerID string, typ CommissionType, base, rate decimal.Decimal) (*Commission, error) {
	if id == "" || paymentID == "" || organizerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if base.IsNegative() || rate.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	return &Commission{
		ID:           id,
		PaymentID:    paymentID,
		Type:         typ,
		BaseAmount:   base,
		Rate:         rate,
		Amount:       CommissionAmount(base, rate),
		Status:       CommissionStatusCalculated,
		OrganizerID:  organizerID,
		CalculatedAt: time.Now(),
	}, nil
}

// Recalculate recomputes the derived amount after a base or rate change.
func (c *Commission) Recalculate() {
	c.Amount = CommissionAmount(c.BaseAmount, c.Rate)
}

// MarkPaid settles the commission.
func (c *Commission) MarkPaid() error {
	if c.Status != CommissionStatusCalculated && c.Status != CommissionStatusPending {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now()
	c.Status = CommissionStatusPaid
	c.PaidAt = &now
	return nil
}
