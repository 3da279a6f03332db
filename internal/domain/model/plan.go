package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type PlanTier string

const (
	PlanTierStandard PlanTier = "STANDARD"
	PlanTierPremium  PlanTier = "PREMIUM"
	PlanTierGold     PlanTier = "GOLD"
)

type PlanDuration string

const (
	PlanDurationMonthly   PlanDuration = "MENSUEL"
	PlanDurationQuarterly PlanDuration = "TRIMESTRIEL"
	PlanDurationYearly    PlanDuration = "ANNUEL"
)

// Feature keys read by the subscription use case.
const (
	FeatureMaxEventsPerMonth = "max_evenements_par_mois"
	FeatureReducedCommission = "commission_reduite"
	FeatureVerifiedBadge     = "badge_verifie"
)

// PlanFeature is a keyed limit attached to a plan. Limit is a free-form
// string ("10", "Illimité"); numeric parsing is up to the reader.
type PlanFeature struct {
	Name        string
	Description string
	Included    bool
	Limit       string
	SortOrder   int
}

// SubscriptionPlan is a catalog entry users subscribe to.
type SubscriptionPlan struct {
	ID          string
	Name        string
	Tier        PlanTier
	Price       decimal.Decimal
	Duration    PlanDuration
	Description string
	Active      bool
	SortOrder   int
	Features    []PlanFeature

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSubscriptionPlan(id, name string, tier PlanTier, price decimal.Decimal, duration PlanDuration) (*SubscriptionPlan, error) {
	if id == "" || name == "" {
		return nil, domain.ErrInvalidArgument
	}
	if price.IsNegative() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &SubscriptionPlan{
		ID:        id,
		Name:      name,
		Tier:      tier,
		Price:     price,
		Duration:  duration,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DurationDays maps the duration enum onto calendar days.
func (p *SubscriptionPlan) DurationDays() int {
	switch p.Duration {
	case PlanDurationQuarterly:
		return 90
	case PlanDurationYearly:
		return 365
	default:
		return 30
	}
}

// Feature returns the named feature, or nil when the plan does not carry it.
func (p *SubscriptionPlan) Feature(name string) *PlanFeature {
	for i := range p.Features {
		if p.Features[i].Name == name {
			return &p.Features[i]
		}
	}
	return nil
}

// EventLimit returns the monthly event cap, or nil when unlimited
// (feature missing or its limit is not numeric).
func (p *SubscriptionPlan) EventLimit() *int {
	f := p.Feature(FeatureMaxEventsPerMonth)
	if f == nil || !f.Included {
		return nil
	}
	n, err := strconv.Atoi(f.Limit)
	if err != nil {
		return nil
	}
	return &n
}

// CommissionRate returns the plan's discounted ticketing commission rate,
// or nil when the plan does not define one.
func (p *SubscriptionPlan) CommissionRate() *decimal.Decimal {
	f := p.Feature(FeatureReducedCommission)
	if f == nil || !f.Included {
		return nil
	}
	d, err := decimal.NewFromString(f.Limit)
	if err != nil {
		return nil
	}
	return &d
}
