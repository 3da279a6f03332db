package adapter

import (
	"context"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
)

// PaymentRequest is what a mobile-money gateway needs to start a collection.
type PaymentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Phone       string
	Reference   string // our internal payment reference, echoed back in webhooks
	Description string
}

// PaymentResult is the provider's answer to a collection request.
type PaymentResult struct {
	ProviderTxID string
	Status       model.MomoTransactionStatus
	Message      string
}

// VerifyResult is the provider's view of a transaction when polled.
type VerifyResult struct {
	ProviderTxID string
	Status       model.MomoTransactionStatus
	Amount       decimal.Decimal
	Currency     string
	ErrorCode    string
	ErrorMessage string
}

// MomoGateway is the hex port for mobile-money operators (MTN, Moov).
type MomoGateway interface {
	Name() string
	Operator() model.MomoOperator

	// RequestPayment initiates a collection against the subscriber's phone.
	RequestPayment(ctx context.Context, req PaymentRequest) (PaymentResult, error)
	// VerifyTransaction polls the provider for the current transaction state.
	VerifyTransaction(ctx context.Context, providerTxID string) (VerifyResult, error)
	// CancelTransaction asks the provider to abort a pending collection.
	CancelTransaction(ctx context.Context, providerTxID string) error
}
