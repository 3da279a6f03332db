package model

import (
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "EN_ATTENTE"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIF"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRE"
	SubscriptionStatusCancelled SubscriptionStatus = "ANNULE"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDU"
	SubscriptionStatusReplaced  SubscriptionStatus = "REMPLACE"
)

// Subscription is a user's instance of a plan. It starts pending until a
// payment succeeds, then carries the monthly usage counter that gates event
// creation.
type Subscription struct {
	ID     string
	UserID string
	PlanID string

	StartAt time.Time
	EndAt   time.Time // StartAt + plan duration, fixed at creation
	Status  SubscriptionStatus

	PaidPrice  decimal.Decimal
	AutoRenew  bool
	PaymentRef string

	EventsThisMonth  int
	LastCounterReset time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubscription creates a pending subscription starting at startAt.
func NewSubscription(id, userID string, plan *SubscriptionPlan, startAt time.Time, autoRenew bool) (*Subscription, error) {
	if id == "" || userID == "" || plan == nil {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:               id,
		UserID:           userID,
		PlanID:           plan.ID,
		StartAt:          startAt,
		EndAt:            startAt.AddDate(0, 0, plan.DurationDays()),
		Status:           SubscriptionStatusPending,
		PaidPrice:        plan.Price,
		AutoRenew:        autoRenew,
		LastCounterReset: now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsActive holds iff the status is ACTIF and the end date has not passed.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.EndAt)
}

// DaysRemaining returns whole days until expiry, zero when not active.
func (s *Subscription) DaysRemaining(now time.Time) int {
	if !s.IsActive(now) {
		return 0
	}
	d := int(s.EndAt.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// Activate flips a pending subscription to active. The caller is responsible
// for superseding any previously active subscription.
func (s *Subscription) Activate(paymentRef string) error {
	if s.Status != SubscriptionStatusPending && s.Status != SubscriptionStatusSuspended {
		return domain.ErrSubscriptionNotPending
	}
	s.Status = SubscriptionStatusActive
	s.PaymentRef = paymentRef
	s.UpdatedAt = time.Now()
	return nil
}

// ResetCounterIfNeeded zeroes the monthly usage counter when the wall-clock
// month changed since the last reset. Returns true when a reset happened.
func (s *Subscription) ResetCounterIfNeeded(now time.Time) bool {
	ly, lm, _ := s.LastCounterReset.Date()
	ny, nm, _ := now.Date()
	if ly == ny && lm == nm {
		return false
	}
	s.EventsThisMonth = 0
	s.LastCounterReset = now
	return true
}

// CanCreateEvent applies the plan's monthly event cap. A nil limit means
// unlimited.
func (s *Subscription) CanCreateEvent(plan *SubscriptionPlan, now time.Time) bool {
	if !s.IsActive(now) {
		return false
	}
	s.ResetCounterIfNeeded(now)
	limit := plan.EventLimit()
	if limit == nil {
		return true
	}
	return s.EventsThisMonth < *limit
}

// RecordEventCreated bumps the monthly counter.
func (s *Subscription) RecordEventCreated(now time.Time) {
	s.ResetCounterIfNeeded(now)
	s.EventsThisMonth++
	s.UpdatedAt = now
}

type SubscriptionAction string

const (
	SubscriptionActionSubscribed SubscriptionAction = "SOUSCRIPTION"
	SubscriptionActionActivated  SubscriptionAction = "ACTIVATION"
	SubscriptionActionRenewed    SubscriptionAction = "RENOUVELLEMENT"
	SubscriptionActionUpgraded   SubscriptionAction = "CHANGEMENT_PLAN"
	SubscriptionActionCancelled  SubscriptionAction = "ANNULATION"
	SubscriptionActionSuspended  SubscriptionAction = "SUSPENSION"
	SubscriptionActionExpired    SubscriptionAction = "EXPIRATION"
)

// SubscriptionHistory is the audit trail of lifecycle changes.
type SubscriptionHistory struct {
	ID             string
	SubscriptionID string
	Action         SubscriptionAction
	OldStatus      SubscriptionStatus
	NewStatus      SubscriptionStatus
	Comment        string
	ActorID        *string
	At             time.Time
}
