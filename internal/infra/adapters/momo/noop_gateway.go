package momo

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
)

var _ adapter.MomoGateway = (*NoopGateway)(nil)

// NoopGateway accepts every collection and reports success on verify. Used in
// dev mode and by the seed tool so flows can run without operator credentials.
type NoopGateway struct {
	operator model.MomoOperator
}

func NewNoopGateway(operator model.MomoOperator) *NoopGateway {
	return &NoopGateway{operator: operator}
}

func (g *NoopGateway) Name() string {
	return "noop-" + strings.ToLower(string(g.operator))
}

func (g *NoopGateway) Operator() model.MomoOperator { return g.operator }

func (g *NoopGateway) RequestPayment(ctx context.Context, r adapter.PaymentRequest) (adapter.PaymentResult, error) {
	return adapter.PaymentResult{
		ProviderTxID: newProviderRef(string(g.operator)),
		Status:       model.MomoStatusPending,
		Message:      "accepted",
	}, nil
}

func (g *NoopGateway) VerifyTransaction(ctx context.Context, providerTxID string) (adapter.VerifyResult, error) {
	return adapter.VerifyResult{
		ProviderTxID: providerTxID,
		Status:       model.MomoStatusSuccess,
		Currency:     "XOF",
	}, nil
}

func (g *NoopGateway) CancelTransaction(ctx context.Context, providerTxID string) error {
	return nil
}

// newProviderRef builds a provider-side transaction id for requests we
// originate (MTN requires the caller to mint the reference).
func newProviderRef(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader))
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
