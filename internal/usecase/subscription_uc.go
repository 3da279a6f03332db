package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/repository"
	"spotvibe/internal/infra/metrics"
)

// Compile-time checks
var (
	_ SubscriptionUseCase   = (*subscriptionUC)(nil)
	_ SubscriptionActivator = (*subscriptionUC)(nil)
	_ CommissionRateSource  = (*subscriptionUC)(nil)
)

// UpgradeQuote is the prorated cost of moving to another plan mid-cycle.
type UpgradeQuote struct {
	CurrentPlanID string
	NewPlanID     string
	DaysRemaining int
	Credit        decimal.Decimal
	AmountDue     decimal.Decimal
}

// SubscriptionUsage is the read model behind GET /subscriptions/usage.
type SubscriptionUsage struct {
	SubscriptionID  string
	PlanName        string
	Tier            model.PlanTier
	Active          bool
	EndAt           time.Time
	DaysRemaining   int
	EventsThisMonth int
	EventLimit      *int // nil means unlimited
	VerifiedBadge   bool
}

type SubscriptionUseCase interface {
	ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error)
	// Subscribe creates a pending subscription and the payment collecting
	// its price. Activation happens when the payment webhook lands.
	Subscribe(ctx context.Context, userID, planID string, method model.PaymentMethod, phone string, autoRenew bool) (*model.Subscription, *model.Payment, error)
	// PayPending opens a fresh collection for a subscription still waiting
	// on its payment, e.g. after the first attempt died at the gateway.
	PayPending(ctx context.Context, userID, subscriptionID string, method model.PaymentMethod, phone string) (*model.Payment, error)
	ActivateOnPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error
	// Renew opens a new pending subscription starting at the current one's
	// end date, paid through a fresh payment.
	Renew(ctx context.Context, userID string, method model.PaymentMethod, phone string) (*model.Subscription, *model.Payment, error)
	Cancel(ctx context.Context, userID, subscriptionID string) error
	// QuoteUpgrade prices a plan change with a daily-rate credit for the
	// unused remainder of the current cycle.
	QuoteUpgrade(ctx context.Context, userID, newPlanID string) (*UpgradeQuote, error)
	Upgrade(ctx context.Context, userID, newPlanID string, method model.PaymentMethod, phone string) (*model.Subscription, *model.Payment, error)
	Usage(ctx context.Context, userID string) (*SubscriptionUsage, error)
	CanCreateEvent(ctx context.Context, userID string) (bool, error)
	RecordEventCreated(ctx context.Context, userID string) error
	CommissionRateFor(ctx context.Context, tx repository.Tx, organizerID string) (decimal.Decimal, error)
	// FinishExpired marks overrun ACTIF subscriptions EXPIRE; returns the count.
	FinishExpired(ctx context.Context) (int, error)
	History(ctx context.Context, userID, subscriptionID string) ([]*model.SubscriptionHistory, error)
}

type subscriptionUC struct {
	plans       repository.PlanRepository
	subs        repository.SubscriptionRepository
	paymentUC   PaymentUseCase
	notifier    Notifier
	txm         repository.TransactionManager
	defaultRate decimal.Decimal // ticketing commission when no plan discount applies
	freeLimit   int             // monthly events allowed without a subscription
	log         *zerolog.Logger
}

func NewSubscriptionUseCase(
	plans repository.PlanRepository,
	subs repository.SubscriptionRepository,
	paymentUC PaymentUseCase,
	notifier Notifier,
	txm repository.TransactionManager,
	defaultRate decimal.Decimal,
	freeLimit int,
	logger *zerolog.Logger,
) *subscriptionUC {
	if freeLimit <= 0 {
		freeLimit = 2
	}
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{
		plans:       plans,
		subs:        subs,
		paymentUC:   paymentUC,
		notifier:    notifier,
		txm:         txm,
		defaultRate: defaultRate,
		freeLimit:   freeLimit,
		log:         &l,
	}
}

func (u *subscriptionUC) ListPlans(ctx context.Context) ([]*model.SubscriptionPlan, error) {
	return u.plans.ListActive(ctx, repository.NoTX)
}

func (u *subscriptionUC) Subscribe(ctx context.Context, userID, planID string, method model.PaymentMethod, phone string, autoRenew bool) (*model.Subscription, *model.Payment, error) {
	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, nil, err
	}
	if !plan.Active {
		return nil, nil, domain.ErrPlanInactive
	}
	if _, err := u.subs.FindPendingByUser(ctx, repository.NoTX, userID); err == nil {
		return nil, nil, domain.ErrDuplicatePendingSub
	} else if err != domain.ErrNotFound {
		return nil, nil, err
	}

	return u.openPaidSubscription(ctx, userID, plan, time.Now(), method, phone, autoRenew, "Abonnement "+plan.Name, plan.Price)
}

// openPaidSubscription creates the pending subscription and its payment.
func (u *subscriptionUC) openPaidSubscription(ctx context.Context, userID string, plan *model.SubscriptionPlan, startAt time.Time, method model.PaymentMethod, phone string, autoRenew bool, description string, due decimal.Decimal) (*model.Subscription, *model.Payment, error) {
	sub, err := model.NewSubscription(uuid.NewString(), userID, plan, startAt, autoRenew)
	if err != nil {
		return nil, nil, err
	}
	if err := u.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, nil, err
	}
	u.recordHistory(ctx, repository.NoTX, sub, model.SubscriptionActionSubscribed, "", sub.Status, nil, "")

	p, err := u.paymentUC.Initiate(ctx, InitiatePaymentInput{
		UserID:         userID,
		Type:           model.PaymentTypeSubscription,
		Amount:         due,
		Fee:            decimal.Zero,
		Method:         method,
		Phone:          phone,
		Description:    description,
		SubscriptionID: &sub.ID,
	})
	if err != nil {
		// The sub stays EN_ATTENTE: the failed payment can be retried, or a
		// fresh one opened through PayPending.
		return nil, nil, err
	}
	return sub, p, nil
}

func (u *subscriptionUC) PayPending(ctx context.Context, userID, subscriptionID string, method model.PaymentMethod, phone string) (*model.Payment, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}
	if sub.Status != model.SubscriptionStatusPending {
		return nil, domain.ErrInvalidStatusTransition
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return nil, err
	}
	return u.paymentUC.Initiate(ctx, InitiatePaymentInput{
		UserID:         userID,
		Type:           model.PaymentTypeSubscription,
		Amount:         plan.Price,
		Fee:            decimal.Zero,
		Method:         method,
		Phone:          phone,
		Description:    "Abonnement " + plan.Name,
		SubscriptionID: &sub.ID,
	})
}

func (u *subscriptionUC) ActivateOnPayment(ctx context.Context, tx repository.Tx, payment *model.Payment) error {
	if payment.SubscriptionID == nil {
		return domain.ErrInvalidArgument
	}
	sub, err := u.subs.FindByID(ctx, tx, *payment.SubscriptionID)
	if err != nil {
		return err
	}

	// Supersede whatever is currently active.
	if prev, err := u.subs.FindActiveByUser(ctx, tx, sub.UserID, time.Now()); err == nil && prev.ID != sub.ID {
		old := prev.Status
		if err := u.subs.UpdateStatus(ctx, tx, prev.ID, model.SubscriptionStatusReplaced); err != nil {
			return err
		}
		u.recordHistory(ctx, tx, prev, model.SubscriptionActionUpgraded, old, model.SubscriptionStatusReplaced, nil, "remplacé par "+sub.ID)
	} else if err != nil && err != domain.ErrNotFound {
		return err
	}

	old := sub.Status
	if err := sub.Activate(payment.InternalRef); err != nil {
		return err
	}
	if err := u.subs.Save(ctx, tx, sub); err != nil {
		return err
	}
	u.recordHistory(ctx, tx, sub, model.SubscriptionActionActivated, old, sub.Status, nil, "")
	metrics.IncSubscriptionActivated()

	if u.notifier != nil {
		_ = u.notifier.Notify(ctx, sub.UserID, model.NotificationKindSubscription, model.PriorityNormal,
			"Abonnement activé", "Actif jusqu'au "+sub.EndAt.Format("2006-01-02"), model.RelatedSubscription, sub.ID)
	}
	return nil
}

func (u *subscriptionUC) Renew(ctx context.Context, userID string, method model.PaymentMethod, phone string) (*model.Subscription, *model.Payment, error) {
	cur, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID, time.Now())
	if err != nil {
		return nil, nil, domain.ErrNoActiveSubscription
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, cur.PlanID)
	if err != nil {
		return nil, nil, err
	}
	sub, p, err := u.openPaidSubscription(ctx, userID, plan, cur.EndAt, method, phone, cur.AutoRenew, "Renouvellement "+plan.Name, plan.Price)
	if err != nil {
		return nil, nil, err
	}
	u.recordHistory(ctx, repository.NoTX, sub, model.SubscriptionActionRenewed, "", sub.Status, nil, "renouvelle "+cur.ID)
	return sub, p, nil
}

func (u *subscriptionUC) Cancel(ctx context.Context, userID, subscriptionID string) error {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return err
	}
	if sub.UserID != userID {
		return domain.ErrPermissionDenied
	}
	switch sub.Status {
	case model.SubscriptionStatusActive, model.SubscriptionStatusPending, model.SubscriptionStatusSuspended:
	default:
		return domain.ErrInvalidStatusTransition
	}
	old := sub.Status
	if err := u.subs.UpdateStatus(ctx, repository.NoTX, sub.ID, model.SubscriptionStatusCancelled); err != nil {
		return err
	}
	u.recordHistory(ctx, repository.NoTX, sub, model.SubscriptionActionCancelled, old, model.SubscriptionStatusCancelled, &userID, "")
	metrics.IncSubscriptionCancelled()
	return nil
}

func (u *subscriptionUC) QuoteUpgrade(ctx context.Context, userID, newPlanID string) (*UpgradeQuote, error) {
	now := time.Now()
	cur, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID, now)
	if err != nil {
		return nil, domain.ErrNoActiveSubscription
	}
	curPlan, err := u.plans.FindByID(ctx, repository.NoTX, cur.PlanID)
	if err != nil {
		return nil, err
	}
	newPlan, err := u.plans.FindByID(ctx, repository.NoTX, newPlanID)
	if err != nil {
		return nil, err
	}
	if !newPlan.Active {
		return nil, domain.ErrPlanInactive
	}
	if newPlan.ID == curPlan.ID {
		return nil, domain.ErrInvalidArgument
	}

	days := cur.DaysRemaining(now)
	dailyRate := cur.PaidPrice.Div(decimal.NewFromInt(int64(curPlan.DurationDays())))
	credit := dailyRate.Mul(decimal.NewFromInt(int64(days))).Round(0)
	due := newPlan.Price.Sub(credit)
	if due.IsNegative() {
		due = decimal.Zero
	}
	return &UpgradeQuote{
		CurrentPlanID: curPlan.ID,
		NewPlanID:     newPlan.ID,
		DaysRemaining: days,
		Credit:        credit,
		AmountDue:     due,
	}, nil
}

func (u *subscriptionUC) Upgrade(ctx context.Context, userID, newPlanID string, method model.PaymentMethod, phone string) (*model.Subscription, *model.Payment, error) {
	quote, err := u.QuoteUpgrade(ctx, userID, newPlanID)
	if err != nil {
		return nil, nil, err
	}
	newPlan, err := u.plans.FindByID(ctx, repository.NoTX, newPlanID)
	if err != nil {
		return nil, nil, err
	}
	due := quote.AmountDue
	if due.LessThan(minPaymentAmount) {
		// Operators refuse sub-minimum collections; charge the floor.
		due = minPaymentAmount
	}
	return u.openPaidSubscription(ctx, userID, newPlan, time.Now(), method, phone, false, "Changement vers "+newPlan.Name, due)
}

func (u *subscriptionUC) Usage(ctx context.Context, userID string) (*SubscriptionUsage, error) {
	now := time.Now()
	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID, now)
	if err != nil {
		return nil, domain.ErrNoActiveSubscription
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return nil, err
	}
	if sub.ResetCounterIfNeeded(now) {
		_ = u.subs.Save(ctx, repository.NoTX, sub)
	}
	badge := false
	if f := plan.Feature(model.FeatureVerifiedBadge); f != nil && f.Included {
		badge = true
	}
	return &SubscriptionUsage{
		SubscriptionID:  sub.ID,
		PlanName:        plan.Name,
		Tier:            plan.Tier,
		Active:          sub.IsActive(now),
		EndAt:           sub.EndAt,
		DaysRemaining:   sub.DaysRemaining(now),
		EventsThisMonth: sub.EventsThisMonth,
		EventLimit:      plan.EventLimit(),
		VerifiedBadge:   badge,
	}, nil
}

func (u *subscriptionUC) CanCreateEvent(ctx context.Context, userID string) (bool, error) {
	now := time.Now()
	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID, now)
	if err != nil {
		if err == domain.ErrNotFound {
			// Without a subscription the free tier applies; the event use
			// case counts created events directly.
			return false, domain.ErrNoActiveSubscription
		}
		return false, err
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, sub.PlanID)
	if err != nil {
		return false, err
	}
	return sub.CanCreateEvent(plan, now), nil
}

func (u *subscriptionUC) RecordEventCreated(ctx context.Context, userID string) error {
	now := time.Now()
	sub, err := u.subs.FindActiveByUser(ctx, repository.NoTX, userID, now)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil // free tier, nothing to count here
		}
		return err
	}
	sub.RecordEventCreated(now)
	return u.subs.Save(ctx, repository.NoTX, sub)
}

func (u *subscriptionUC) CommissionRateFor(ctx context.Context, tx repository.Tx, organizerID string) (decimal.Decimal, error) {
	sub, err := u.subs.FindActiveByUser(ctx, tx, organizerID, time.Now())
	if err != nil {
		return u.defaultRate, nil
	}
	plan, err := u.plans.FindByID(ctx, tx, sub.PlanID)
	if err != nil {
		return u.defaultRate, nil
	}
	if r := plan.CommissionRate(); r != nil {
		return *r, nil
	}
	return u.defaultRate, nil
}

func (u *subscriptionUC) FinishExpired(ctx context.Context) (int, error) {
	now := time.Now()
	expired, err := u.subs.ListActiveExpiredBy(ctx, repository.NoTX, now, 200)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, sub := range expired {
		old := sub.Status
		if err := u.subs.UpdateStatus(ctx, repository.NoTX, sub.ID, model.SubscriptionStatusExpired); err != nil {
			u.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("expire failed")
			continue
		}
		u.recordHistory(ctx, repository.NoTX, sub, model.SubscriptionActionExpired, old, model.SubscriptionStatusExpired, nil, "")
		if u.notifier != nil {
			_ = u.notifier.Notify(ctx, sub.UserID, model.NotificationKindSubscription, model.PriorityHigh,
				"Abonnement expiré", "Renouvelez pour continuer à publier des événements", model.RelatedSubscription, sub.ID)
		}
		n++
	}
	return n, nil
}

func (u *subscriptionUC) History(ctx context.Context, userID, subscriptionID string) ([]*model.SubscriptionHistory, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	if userID != "" && sub.UserID != userID {
		return nil, domain.ErrPermissionDenied
	}
	return u.subs.ListHistory(ctx, repository.NoTX, subscriptionID)
}

func (u *subscriptionUC) recordHistory(ctx context.Context, tx repository.Tx, sub *model.Subscription, action model.SubscriptionAction, old, next model.SubscriptionStatus, actorID *string, comment string) {
	h := &model.SubscriptionHistory{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		Action:         action,
		OldStatus:      old,
		NewStatus:      next,
		Comment:        comment,
		ActorID:        actorID,
		At:             time.Now(),
	}
	if err := u.subs.SaveHistory(ctx, tx, h); err != nil {
		u.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("history write failed")
	}
}
