package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Payments
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrPaymentNotPending        = errors.New("payment is not pending")
	ErrPaymentNotFailed         = errors.New("payment is not in failed state")
	ErrInvalidStatusTransition  = errors.New("invalid payment status transition")
	ErrAmountMismatch           = errors.New("amount does not match expected amount")
	ErrGatewayUnavailable       = errors.New("payment gateway unavailable")
	ErrWebhookAlreadyProcessed  = errors.New("webhook already processed for this transaction")

	// Refunds
	ErrRefundNotEligible  = errors.New("payment is not eligible for refund")
	ErrRefundAlreadyOpen  = errors.New("a refund request is already open for this payment")
	ErrRefundAmountTooBig = errors.New("refund amount exceeds original payment amount")
	ErrRefundNotRequested = errors.New("refund is not in requested state")
	ErrRefundNotApproved  = errors.New("refund is not approved")

	// Subscriptions
	ErrNoActiveSubscription     = errors.New("no active subscription")
	ErrSubscriptionNotPending   = errors.New("subscription is not awaiting payment")
	ErrSubscriptionExpired      = errors.New("subscription has expired")
	ErrSubscriptionLimitReached = errors.New("monthly event limit reached for this plan")
	ErrDuplicatePendingSub      = errors.New("a pending subscription already exists for this plan")
	ErrPlanInactive             = errors.New("subscription plan is not available")

	// Events
	ErrEventNotEditable = errors.New("event cannot be modified in its current status")
	ErrTicketNotPending = errors.New("ticket is not awaiting payment")

	// Locking
	ErrLockNotAcquired = errors.New("could not acquire lock")
)
