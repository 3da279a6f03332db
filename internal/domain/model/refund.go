package model

import (
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type RefundStatus string

const (
	RefundStatusRequested RefundStatus = "DEMANDE"
	RefundStatusApproved  RefundStatus = "APPROUVE"
	RefundStatusRejected  RefundStatus = "REJETE"
	RefundStatusRefunded  RefundStatus = "REMBOURSE"
)

type RefundReason string

const (
	RefundReasonEventCancelled RefundReason = "ANNULATION_EVENT"
	RefundReasonCustomer       RefundReason = "DEMANDE_CLIENT"
	RefundReasonPaymentError   RefundReason = "ERREUR_PAIEMENT"
	RefundReasonFraud          RefundReason = "FRAUDE"
	RefundReasonOther          RefundReason = "AUTRE"
)

// Refund is a request to reverse a succeeded payment. Approval only flags
// eligibility; the compensating payment is created separately and linked
// through RefundPaymentID.
type Refund struct {
	ID          string
	PaymentID   string
	RequesterID string
	Amount      decimal.Decimal
	Reason      RefundReason
	Description string
	Status      RefundStatus

	RequestedAt time.Time
	ProcessedAt *time.Time
	RefundedAt  *time.Time

	ProcessedByID   *string
	AdminComment    string
	RefundPaymentID *string
}

func NewRefund(id string, payment *Payment, requesterID string, amount decimal.Decimal, reason RefundReason, description string) (*Refund, error) {
	if id == "" || payment == nil || requesterID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !payment.CanBeRefunded() {
		return nil, domain.ErrRefundNotEligible
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidArgument
	}
	if amount.GreaterThan(payment.Amount) {
		return nil, domain.ErrRefundAmountTooBig
	}
	return &Refund{
		ID:          id,
		PaymentID:   payment.ID,
		RequesterID: requesterID,
		Amount:      amount,
		Reason:      reason,
		Description: description,
		Status:      RefundStatusRequested,
		RequestedAt: time.Now(),
	}, nil
}

// IsOpen reports whether the refund still blocks new requests for the
// same payment.
func (r *Refund) IsOpen() bool {
	return r.Status == RefundStatusRequested || r.Status == RefundStatusApproved
}

func (r *Refund) Approve(adminID, comment string) error {
	if r.Status != RefundStatusRequested {
		return domain.ErrRefundNotRequested
	}
	now := time.Now()
	r.Status = RefundStatusApproved
	r.ProcessedByID = &adminID
	r.AdminComment = comment
	r.ProcessedAt = &now
	return nil
}

func (r *Refund) Reject(adminID, comment string) error {
	if r.Status != RefundStatusRequested {
		return domain.ErrRefundNotRequested
	}
	now := time.Now()
	r.Status = RefundStatusRejected
	r.ProcessedByID = &adminID
	r.AdminComment = comment
	r.ProcessedAt = &now
	return nil
}

// MarkRefunded links the compensating payment once the money moved.
func (r *Refund) MarkRefunded(refundPaymentID string) error {
	if r.Status != RefundStatusApproved {
		return domain.ErrRefundNotApproved
	}
	now := time.Now()
	r.Status = RefundStatusRefunded
	r.RefundPaymentID = &refundPaymentID
	r.RefundedAt = &now
	return nil
}
