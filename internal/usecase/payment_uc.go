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
	"spotvibe/internal/domain/ports/adapter"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/metrics"
)

// minPaymentAmount is the operators' floor for a collection, in XOF.
var minPaymentAmount = decimal.NewFromInt(100)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type InitiatePaymentInput struct {
	UserID         string
	Type           model.PaymentType
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	Method         model.PaymentMethod
	Phone          string
	Description    string
	SubscriptionID *string
	TicketID       *string
}

type PaymentUseCase interface {
	// Initiate creates the payment and the operator transaction, then asks
	// the gateway to start the collection.
	Initiate(ctx context.Context, in InitiatePaymentInput) (*model.Payment, error)
	// Verify polls the provider for the transaction state and settles the
	// payment accordingly.
	Verify(ctx context.Context, paymentID string) (*model.Payment, error)
	// Cancel aborts a payment still waiting on the provider.
	Cancel(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	// Retry re-opens a failed payment and starts a fresh collection.
	Retry(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	Get(ctx context.Context, paymentID string) (*model.Payment, error)
	List(ctx context.Context, f repository.PaymentFilter) ([]*model.Payment, error)
	SumByPeriod(ctx context.Context, tx repository.Tx, period string) (decimal.Decimal, error)
	// ExpireStale cancels pending payments past their expiry window and
	// returns how many were closed.
	ExpireStale(ctx context.Context, limit int) (int, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	momoTxs  repository.MomoTransactionRepository
	gateways map[model.PaymentMethod]adapter.MomoGateway
	txm      repository.TransactionManager
	expiry   time.Duration
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	momoTxs repository.MomoTransactionRepository,
	gateways map[model.PaymentMethod]adapter.MomoGateway,
	txm repository.TransactionManager,
	expiry time.Duration,
	logger *zerolog.Logger,
) *paymentUC {
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{payments: payments, momoTxs: momoTxs, gateways: gateways, txm: txm, expiry: expiry, log: &l}
}

func (u *paymentUC) gateway(method model.PaymentMethod) (adapter.MomoGateway, error) {
	gw, ok := u.gateways[method]
	if !ok {
		return nil, domain.ErrUnsupportedPaymentMethod
	}
	return gw, nil
}

func (u *paymentUC) Initiate(ctx context.Context, in InitiatePaymentInput) (*model.Payment, error) {
	if in.Amount.LessThan(minPaymentAmount) {
		return nil, domain.ErrInvalidArgument
	}
	if err := model.ValidateMomoPhone(in.Phone); err != nil {
		return nil, err
	}
	gw, err := u.gateway(in.Method)
	if err != nil {
		return nil, err
	}

	p, err := model.NewPayment(uuid.NewString(), in.UserID, in.Type, in.Amount, in.Fee, in.Method, in.Phone, u.expiry)
	if err != nil {
		return nil, err
	}
	p.Description = in.Description
	p.SubscriptionID = in.SubscriptionID
	p.TicketID = in.TicketID

	// The payment row exists before the provider is asked, so a dead gateway
	// leaves an ECHEC record the user can retry instead of nothing at all.
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}

	res, err := gw.RequestPayment(ctx, adapter.PaymentRequest{
		Amount:      p.Amount,
		Currency:    "XOF",
		Phone:       p.Phone,
		Reference:   p.InternalRef,
		Description: p.Description,
	})
	if err != nil {
		u.log.Error().Err(err).Str("method", string(in.Method)).Str("payment_id", p.ID).Msg("gateway request failed")
		now := time.Now()
		if terr := p.TransitionTo(model.PaymentStatusFailed); terr == nil {
			_ = u.payments.UpdateStatus(ctx, repository.NoTX, p.ID, p.Status, &now)
		}
		metrics.IncPaymentSettled(string(model.PaymentStatusFailed))
		return nil, domain.ErrGatewayUnavailable
	}
	p.ExternalRef = res.ProviderTxID

	mt, err := model.NewMomoTransaction(uuid.NewString(), p.ID, gw.Operator(), p.Phone, res.ProviderTxID)
	if err != nil {
		return nil, err
	}

	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.payments.Save(ctx, tx, p); err != nil {
			return err
		}
		return u.momoTxs.Save(ctx, tx, mt)
	})
	if err != nil {
		return nil, err
	}

	if err := p.TransitionTo(model.PaymentStatusProcessing); err == nil {
		_ = u.payments.UpdateStatus(ctx, repository.NoTX, p.ID, p.Status, nil)
	}
	metrics.IncPaymentInitiated(string(in.Method))
	u.log.Info().Str("payment_id", p.ID).Str("ref", p.InternalRef).Msg("payment initiated")
	return p, nil
}

func (u *paymentUC) Verify(ctx context.Context, paymentID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case model.PaymentStatusPending, model.PaymentStatusProcessing:
	default:
		return p, nil
	}
	mt, err := u.momoTxs.FindByPaymentID(ctx, repository.NoTX, p.ID)
	if err != nil {
		return nil, err
	}
	gw, err := u.gateway(p.Method)
	if err != nil {
		return nil, err
	}

	res, err := gw.VerifyTransaction(ctx, mt.ProviderTxID)
	if err != nil {
		u.log.Warn().Err(err).Str("payment_id", p.ID).Msg("verify poll failed")
		return nil, domain.ErrGatewayUnavailable
	}

	var next model.PaymentStatus
	switch res.Status {
	case model.MomoStatusSuccess:
		next = model.PaymentStatusSucceeded
	case model.MomoStatusFailed:
		next = model.PaymentStatusFailed
	case model.MomoStatusCancelled:
		next = model.PaymentStatusCancelled
	default:
		return p, nil // still pending at the operator
	}

	now := time.Now()
	ok, err := u.payments.UpdateStatusIfActionable(ctx, repository.NoTX, p.ID, next, &now)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Status = next
		p.ProcessedAt = &now
		metrics.IncPaymentSettled(string(next))
	}
	return p, nil
}

func (u *paymentUC) Cancel(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	if userID != "" && p.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}
	switch p.Status {
	case model.PaymentStatusPending, model.PaymentStatusProcessing:
	default:
		return nil, domain.ErrPaymentNotPending
	}

	if mt, err := u.momoTxs.FindByPaymentID(ctx, repository.NoTX, p.ID); err == nil {
		if gw, gerr := u.gateway(p.Method); gerr == nil {
			if cerr := gw.CancelTransaction(ctx, mt.ProviderTxID); cerr != nil {
				u.log.Warn().Err(cerr).Str("payment_id", p.ID).Msg("provider cancel failed")
			}
		}
	}

	now := time.Now()
	ok, err := u.payments.UpdateStatusIfActionable(ctx, repository.NoTX, p.ID, model.PaymentStatusCancelled, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a webhook; report the fresh state.
		return u.payments.FindByID(ctx, repository.NoTX, paymentID)
	}
	p.Status = model.PaymentStatusCancelled
	p.ProcessedAt = &now
	metrics.IncPaymentSettled(string(model.PaymentStatusCancelled))
	return p, nil
}

func (u *paymentUC) Retry(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	if userID != "" && p.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}
	if p.Status != model.PaymentStatusFailed {
		return nil, domain.ErrPaymentNotFailed
	}

	return u.Initiate(ctx, InitiatePaymentInput{
		UserID:         p.UserID,
		Type:           p.Type,
		Amount:         p.Amount,
		Fee:            p.Fee,
		Method:         p.Method,
		Phone:          p.Phone,
		Description:    p.Description,
		SubscriptionID: p.SubscriptionID,
		TicketID:       p.TicketID,
	})
}

func (u *paymentUC) Get(ctx context.Context, paymentID string) (*model.Payment, error) {
	return u.payments.FindByID(ctx, repository.NoTX, paymentID)
}

func (u *paymentUC) List(ctx context.Context, f repository.PaymentFilter) ([]*model.Payment, error) {
	return u.payments.List(ctx, repository.NoTX, f)
}

func (u *paymentUC) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (decimal.Decimal, error) {
	return u.payments.SumByPeriod(ctx, tx, period)
}

func (u *paymentUC) ExpireStale(ctx context.Context, limit int) (int, error) {
	stale, err := u.payments.ListPendingOlderThan(ctx, repository.NoTX, time.Now(), limit)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	now := time.Now()
	for _, p := range stale {
		if !p.IsExpired(now) {
			continue
		}
		ok, err := u.payments.UpdateStatusIfActionable(ctx, repository.NoTX, p.ID, model.PaymentStatusCancelled, &now)
		if err != nil {
			u.log.Error().Err(err).Str("payment_id", p.ID).Msg("expire failed")
			continue
		}
		if ok {
			n++
		}
	}
	return n, nil
}
