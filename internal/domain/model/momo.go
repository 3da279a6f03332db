package model

import (
	"strings"
	"time"

	"spotvibe/internal/domain"
)

type MomoOperator string

const (
	OperatorMTN  MomoOperator = "MTN"
	OperatorMoov MomoOperator = "MOOV"
)

type MomoTransactionStatus string

const (
	MomoStatusPending   MomoTransactionStatus = "PENDING"
	MomoStatusSuccess   MomoTransactionStatus = "SUCCESS"
	MomoStatusFailed    MomoTransactionStatus = "FAILED"
	MomoStatusCancelled MomoTransactionStatus = "CANCELLED"
)

// MomoTransaction carries the operator-specific detail of a payment. Exactly
// one row exists per payment; ProviderTxID is unique across operators.
type MomoTransaction struct {
	ID           string
	PaymentID    string
	Operator     MomoOperator
	Phone        string
	ProviderTxID string
	OperatorRef  string
	ResponseCode string
	ResponseMsg  string
	Status       MomoTransactionStatus

	InitiatedAt     time.Time
	ConfirmedAt     *time.Time
	WebhookReceived bool
	WebhookPayload  map[string]interface{}
}

func NewMomoTransaction(id, paymentID string, operator MomoOperator, phone, providerTxID string) (*MomoTransaction, error) {
	if id == "" || paymentID == "" || providerTxID == "" {
		return nil, domain.ErrInvalidArgument
	}
	switch operator {
	case OperatorMTN, OperatorMoov:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &MomoTransaction{
		ID:           id,
		PaymentID:    paymentID,
		Operator:     operator,
		Phone:        phone,
		ProviderTxID: providerTxID,
		Status:       MomoStatusPending,
		InitiatedAt:  time.Now(),
	}, nil
}

// Confirm records the webhook outcome. Both the timestamp and the
// webhook flag are required for IsConfirmed to hold.
func (t *MomoTransaction) Confirm(status MomoTransactionStatus, payload map[string]interface{}) {
	now := time.Now()
	t.Status = status
	t.ConfirmedAt = &now
	t.WebhookReceived = true
	t.WebhookPayload = payload
}

func (t *MomoTransaction) IsConfirmed() bool {
	return t.ConfirmedAt != nil && t.WebhookReceived
}

// momoPhoneLen covers the full international form, e.g. +22901970000012.
// momoPhoneLegacyLen covers 8-digit numbers issued before Benin added the
// 01 prefix; the operators still accept both.
const (
	momoPhoneLen       = 15
	momoPhoneLegacyLen = 12
)

// ValidateMomoPhone checks the Beninese international format required by
// both operators.
func ValidateMomoPhone(phone string) error {
	if !strings.HasPrefix(phone, "+229") {
		return domain.ErrInvalidArgument
	}
	if len(phone) != momoPhoneLen && len(phone) != momoPhoneLegacyLen {
		return domain.ErrInvalidArgument
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return domain.ErrInvalidArgument
		}
	}
	return nil
}
