package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// Totals aggregates the admin dashboard counters.
	Totals(ctx context.Context) (users int64, payments map[model.PaymentStatus]int64, subs map[model.SubscriptionStatus]int64, err error)
	Revenue(ctx context.Context) (week, month, year decimal.Decimal, err error)
	CommissionRevenue(ctx context.Context, since, until time.Time) (decimal.Decimal, error)
}

type statsUC struct {
	users       repository.UserRepository
	payments    repository.PaymentRepository
	subs        repository.SubscriptionRepository
	commissions repository.CommissionRepository
	log         *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, payments repository.PaymentRepository, subs repository.SubscriptionRepository, commissions repository.CommissionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, payments: payments, subs: subs, commissions: commissions, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (int64, map[model.PaymentStatus]int64, map[model.SubscriptionStatus]int64, error) {
	users, err := s.users.Count(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, nil, err
	}
	payments, err := s.payments.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, nil, err
	}
	subs, err := s.subs.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return 0, nil, nil, err
	}
	return users, payments, subs, nil
}

func (s *statsUC) Revenue(ctx context.Context) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	w, err := s.payments.SumByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	m, err := s.payments.SumByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	y, err := s.payments.SumByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return w, m, y, nil
}

func (s *statsUC) CommissionRevenue(ctx context.Context, since, until time.Time) (decimal.Decimal, error) {
	return s.commissions.SumByPeriod(ctx, repository.NoTX, since, until)
}
