//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
	"spotvibe/internal/usecase"
)

type subUCTestDeps struct {
	plans    *MockPlanRepo
	subs     *MockSubscriptionRepo
	payments *MockPaymentRepo
	momoTxs  *MockMomoTxRepo
	gateway  *MockGateway
	notifier *recordingNotifier
	tm       *MockTxManager
}

func newSubUCDeps() *subUCTestDeps {
	return &subUCTestDeps{
		plans:    NewMockPlanRepo(),
		subs:     NewMockSubscriptionRepo(),
		payments: NewMockPaymentRepo(),
		momoTxs:  NewMockMomoTxRepo(),
		gateway:  NewMockGateway(model.OperatorMTN),
		notifier: &recordingNotifier{},
		tm:       NewMockTxManager(),
	}
}

func (d *subUCTestDeps) newUC() usecase.SubscriptionUseCase {
	gws := map[model.PaymentMethod]adapter.MomoGateway{model.PaymentMethodMTN: d.gateway}
	payUC := usecase.NewPaymentUseCase(d.payments, d.momoTxs, gws, d.tm, 30*time.Minute, newTestLogger())
	return usecase.NewSubscriptionUseCase(d.plans, d.subs, payUC, d.notifier, d.tm,
		decimal.NewFromInt(10), 2, newTestLogger())
}

// seedPlan stores a monthly plan; features are optional.
func (d *subUCTestDeps) seedPlan(t *testing.T, name string, price int64, duration model.PlanDuration, features ...model.PlanFeature) *model.SubscriptionPlan {
	t.Helper()
	p, err := model.NewSubscriptionPlan(uuid.NewString(), name, model.PlanTierStandard, decimal.NewFromInt(price), duration)
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	p.Features = features
	if err := d.plans.Save(context.Background(), nil, p); err != nil {
		t.Fatal(err)
	}
	return p
}

// seedActiveSub stores an active subscription with the given time left.
func (d *subUCTestDeps) seedActiveSub(t *testing.T, userID string, plan *model.SubscriptionPlan, remaining time.Duration) *model.Subscription {
	t.Helper()
	sub, err := model.NewSubscription(uuid.NewString(), userID, plan, time.Now(), false)
	if err != nil {
		t.Fatalf("new subscription: %v", err)
	}
	if err := sub.Activate("SVTEST"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	sub.EndAt = time.Now().Add(remaining)
	if err := d.subs.Save(context.Background(), nil, sub); err != nil {
		t.Fatal(err)
	}
	return sub
}

func TestSubscriptionUseCase_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a pending subscription with its payment", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		uc := deps.newUC()

		sub, p, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, true)
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		if sub.Status != model.SubscriptionStatusPending {
			t.Errorf("expected EN_ATTENTE, got %s", sub.Status)
		}
		if !sub.AutoRenew {
			t.Error("expected auto-renew carried over")
		}
		if p.Type != model.PaymentTypeSubscription {
			t.Errorf("expected ABONNEMENT payment, got %s", p.Type)
		}
		if p.SubscriptionID == nil || *p.SubscriptionID != sub.ID {
			t.Error("expected payment linked to the subscription")
		}
		if !p.Amount.Equal(plan.Price) {
			t.Errorf("expected amount %s, got %s", plan.Price, p.Amount)
		}

		hist, _ := deps.subs.ListHistory(ctx, nil, sub.ID)
		if len(hist) != 1 || hist[0].Action != model.SubscriptionActionSubscribed {
			t.Errorf("expected a SOUSCRIPTION history row, got %+v", hist)
		}
	})

	t.Run("rejects a second pending subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		uc := deps.newUC()

		if _, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false); err != nil {
			t.Fatalf("first subscribe: %v", err)
		}
		if _, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false); !errors.Is(err, domain.ErrDuplicatePendingSub) {
			t.Fatalf("expected ErrDuplicatePendingSub, got %v", err)
		}
	})

	t.Run("rejects an inactive plan", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Retiré", 5000, model.PlanDurationMonthly)
		plan.Active = false
		_ = deps.plans.Save(ctx, nil, plan)
		uc := deps.newUC()

		if _, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false); !errors.Is(err, domain.ErrPlanInactive) {
			t.Fatalf("expected ErrPlanInactive, got %v", err)
		}
	})

	t.Run("keeps the subscription pending when payment initiation fails", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		deps.gateway.RequestPaymentFunc = func(ctx context.Context, req adapter.PaymentRequest) (adapter.PaymentResult, error) {
			return adapter.PaymentResult{}, errors.New("operator down")
		}
		uc := deps.newUC()

		_, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false)
		if !errors.Is(err, domain.ErrGatewayUnavailable) {
			t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
		}
		// The sub survives the outage so a fresh payment can be opened later.
		sub, err := deps.subs.FindPendingByUser(ctx, nil, "org-1")
		if err != nil {
			t.Fatalf("expected the subscription kept pending: %v", err)
		}

		deps.gateway.RequestPaymentFunc = nil
		p, err := uc.PayPending(ctx, "org-1", sub.ID, model.PaymentMethodMTN, validPhone)
		if err != nil {
			t.Fatalf("pay pending: %v", err)
		}
		if p.SubscriptionID == nil || *p.SubscriptionID != sub.ID {
			t.Error("expected the new payment linked to the subscription")
		}
	})
}

func TestSubscriptionUseCase_PayPending(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*subUCTestDeps, usecase.SubscriptionUseCase, *model.Subscription) {
		t.Helper()
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		uc := deps.newUC()
		sub, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false)
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		return deps, uc, sub
	}

	t.Run("opens a fresh payment at the plan price", func(t *testing.T) {
		_, uc, sub := setup(t)

		p, err := uc.PayPending(ctx, "org-1", sub.ID, model.PaymentMethodMTN, validPhone)
		if err != nil {
			t.Fatalf("pay pending: %v", err)
		}
		if p.Type != model.PaymentTypeSubscription {
			t.Errorf("expected ABONNEMENT payment, got %s", p.Type)
		}
		if !p.Amount.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected plan price 5000, got %s", p.Amount)
		}
		if p.SubscriptionID == nil || *p.SubscriptionID != sub.ID {
			t.Error("expected payment linked to the subscription")
		}
	})

	t.Run("rejects foreign user", func(t *testing.T) {
		_, uc, sub := setup(t)
		if _, err := uc.PayPending(ctx, "someone-else", sub.ID, model.PaymentMethodMTN, validPhone); !errors.Is(err, domain.ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("rejects a subscription no longer pending", func(t *testing.T) {
		deps, uc, sub := setup(t)
		got, _ := deps.subs.FindByID(ctx, nil, sub.ID)
		if err := got.Activate("SVTEST"); err != nil {
			t.Fatal(err)
		}
		_ = deps.subs.Save(ctx, nil, got)

		if _, err := uc.PayPending(ctx, "org-1", sub.ID, model.PaymentMethodMTN, validPhone); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_ActivateOnPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("activates the pending subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		uc := deps.newUC()

		sub, p, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false)
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		if err := uc.ActivateOnPayment(ctx, nil, p); err != nil {
			t.Fatalf("activate: %v", err)
		}

		got, _ := deps.subs.FindByID(ctx, nil, sub.ID)
		if got.Status != model.SubscriptionStatusActive {
			t.Errorf("expected ACTIF, got %s", got.Status)
		}
		if got.PaymentRef != p.InternalRef {
			t.Errorf("expected payment ref recorded, got %q", got.PaymentRef)
		}
		if len(deps.notifier.sent) != 1 || deps.notifier.sent[0].Title != "Abonnement activé" {
			t.Errorf("expected activation notification, got %+v", deps.notifier.sent)
		}
	})

	t.Run("supersedes the previously active subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		prev := deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
		uc := deps.newUC()

		_, p, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false)
		if err != nil {
			t.Fatalf("subscribe: %v", err)
		}
		if err := uc.ActivateOnPayment(ctx, nil, p); err != nil {
			t.Fatalf("activate: %v", err)
		}

		got, _ := deps.subs.FindByID(ctx, nil, prev.ID)
		if got.Status != model.SubscriptionStatusReplaced {
			t.Errorf("expected REMPLACE on the old subscription, got %s", got.Status)
		}
	})

	t.Run("rejects payments without a subscription link", func(t *testing.T) {
		deps := newSubUCDeps()
		uc := deps.newUC()

		p, _ := model.NewPayment("pay-x", "org-1", model.PaymentTypeSubscription, decimal.NewFromInt(5000), decimal.Zero, model.PaymentMethodMTN, validPhone, 0)
		if err := uc.ActivateOnPayment(ctx, nil, p); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_QuoteUpgrade(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the unused days at the paid daily rate", func(t *testing.T) {
		deps := newSubUCDeps()
		standard := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		premium := deps.seedPlan(t, "Premium Mensuel", 15000, model.PlanDurationMonthly)
		// 15 full days left; the extra hour keeps the day count stable.
		deps.seedActiveSub(t, "org-1", standard, 15*24*time.Hour+time.Hour)
		uc := deps.newUC()

		q, err := uc.QuoteUpgrade(ctx, "org-1", premium.ID)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if q.DaysRemaining != 15 {
			t.Fatalf("expected 15 days remaining, got %d", q.DaysRemaining)
		}
		// 5000/30 per day, 15 days = 2500 credit
		if !q.Credit.Equal(decimal.NewFromInt(2500)) {
			t.Errorf("expected credit 2500, got %s", q.Credit)
		}
		if !q.AmountDue.Equal(decimal.NewFromInt(12500)) {
			t.Errorf("expected due 12500, got %s", q.AmountDue)
		}
	})

	t.Run("floors the quote at zero on downgrades", func(t *testing.T) {
		deps := newSubUCDeps()
		gold := deps.seedPlan(t, "Gold Annuel", 350000, model.PlanDurationYearly)
		standard := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		deps.seedActiveSub(t, "org-1", gold, 300*24*time.Hour+time.Hour)
		uc := deps.newUC()

		q, err := uc.QuoteUpgrade(ctx, "org-1", standard.ID)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if !q.AmountDue.IsZero() {
			t.Errorf("expected zero due, got %s", q.AmountDue)
		}
	})

	t.Run("rejects quoting the current plan", func(t *testing.T) {
		deps := newSubUCDeps()
		standard := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		deps.seedActiveSub(t, "org-1", standard, 10*24*time.Hour)
		uc := deps.newUC()

		if _, err := uc.QuoteUpgrade(ctx, "org-1", standard.ID); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("requires an active subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		premium := deps.seedPlan(t, "Premium Mensuel", 15000, model.PlanDurationMonthly)
		uc := deps.newUC()

		if _, err := uc.QuoteUpgrade(ctx, "org-1", premium.ID); !errors.Is(err, domain.ErrNoActiveSubscription) {
			t.Fatalf("expected ErrNoActiveSubscription, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_Upgrade_ChargesAtLeastTheOperatorFloor(t *testing.T) {
	ctx := context.Background()
	deps := newSubUCDeps()
	gold := deps.seedPlan(t, "Gold Annuel", 350000, model.PlanDurationYearly)
	standard := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
	deps.seedActiveSub(t, "org-1", gold, 300*24*time.Hour+time.Hour)
	uc := deps.newUC()

	_, p, err := uc.Upgrade(ctx, "org-1", standard.ID, model.PaymentMethodMTN, validPhone)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if !p.Amount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected the 100 XOF floor, got %s", p.Amount)
	}
}

func TestSubscriptionUseCase_Renew(t *testing.T) {
	ctx := context.Background()

	t.Run("opens the next cycle at the current end date", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
		cur := deps.seedActiveSub(t, "org-1", plan, 5*24*time.Hour)
		uc := deps.newUC()

		next, p, err := uc.Renew(ctx, "org-1", model.PaymentMethodMTN, validPhone)
		if err != nil {
			t.Fatalf("renew: %v", err)
		}
		if !next.StartAt.Equal(cur.EndAt) {
			t.Errorf("expected the renewal to start at %s, got %s", cur.EndAt, next.StartAt)
		}
		if !p.Amount.Equal(plan.Price) {
			t.Errorf("expected full plan price, got %s", p.Amount)
		}
	})

	t.Run("requires an active subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		uc := deps.newUC()
		if _, _, err := uc.Renew(ctx, "org-1", model.PaymentMethodMTN, validPhone); !errors.Is(err, domain.ErrNoActiveSubscription) {
			t.Fatalf("expected ErrNoActiveSubscription, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_Cancel(t *testing.T) {
	ctx := context.Background()
	deps := newSubUCDeps()
	plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
	sub := deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
	uc := deps.newUC()

	if err := uc.Cancel(ctx, "someone-else", sub.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := uc.Cancel(ctx, "org-1", sub.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := deps.subs.FindByID(ctx, nil, sub.ID)
	if got.Status != model.SubscriptionStatusCancelled {
		t.Errorf("expected ANNULE, got %s", got.Status)
	}
	// Already cancelled
	if err := uc.Cancel(ctx, "org-1", sub.ID); !errors.Is(err, domain.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestSubscriptionUseCase_Usage(t *testing.T) {
	ctx := context.Background()
	deps := newSubUCDeps()
	plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly,
		model.PlanFeature{Name: model.FeatureMaxEventsPerMonth, Included: true, Limit: "5"})
	sub := deps.seedActiveSub(t, "org-1", plan, 12*24*time.Hour+time.Hour)

	// Stale counter from last month
	sub.EventsThisMonth = 3
	sub.LastCounterReset = time.Now().AddDate(0, -1, 0)
	_ = deps.subs.Save(ctx, nil, sub)

	uc := deps.newUC()
	u, err := uc.Usage(ctx, "org-1")
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if u.PlanName != "Standard Mensuel" || !u.Active {
		t.Errorf("unexpected usage header: %+v", u)
	}
	if u.EventsThisMonth != 0 {
		t.Errorf("expected the monthly counter reset, got %d", u.EventsThisMonth)
	}
	if u.EventLimit == nil || *u.EventLimit != 5 {
		t.Errorf("expected limit 5, got %v", u.EventLimit)
	}
	if u.DaysRemaining != 12 {
		t.Errorf("expected 12 days remaining, got %d", u.DaysRemaining)
	}

	got, _ := deps.subs.FindByID(ctx, nil, sub.ID)
	if got.EventsThisMonth != 0 {
		t.Error("expected the reset persisted")
	}
}

func TestSubscriptionUseCase_EventQuota(t *testing.T) {
	ctx := context.Background()

	t.Run("no subscription means the free tier", func(t *testing.T) {
		deps := newSubUCDeps()
		uc := deps.newUC()
		if _, err := uc.CanCreateEvent(ctx, "org-1"); !errors.Is(err, domain.ErrNoActiveSubscription) {
			t.Fatalf("expected ErrNoActiveSubscription, got %v", err)
		}
	})

	t.Run("counts events against the plan cap", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly,
			model.PlanFeature{Name: model.FeatureMaxEventsPerMonth, Included: true, Limit: "2"})
		deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
		uc := deps.newUC()

		for i := 0; i < 2; i++ {
			ok, err := uc.CanCreateEvent(ctx, "org-1")
			if err != nil || !ok {
				t.Fatalf("event %d: ok=%v err=%v", i, ok, err)
			}
			if err := uc.RecordEventCreated(ctx, "org-1"); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
		ok, err := uc.CanCreateEvent(ctx, "org-1")
		if err != nil {
			t.Fatalf("can create: %v", err)
		}
		if ok {
			t.Error("expected the cap reached")
		}
	})

	t.Run("a missing limit feature means unlimited", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Gold Mensuel", 35000, model.PlanDurationMonthly)
		sub := deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
		sub.EventsThisMonth = 1000
		_ = deps.subs.Save(ctx, nil, sub)
		uc := deps.newUC()

		ok, err := uc.CanCreateEvent(ctx, "org-1")
		if err != nil || !ok {
			t.Fatalf("expected unlimited, got ok=%v err=%v", ok, err)
		}
	})
}

func TestSubscriptionUseCase_CommissionRateFor(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults without a subscription", func(t *testing.T) {
		deps := newSubUCDeps()
		uc := deps.newUC()
		r, err := uc.CommissionRateFor(ctx, nil, "org-1")
		if err != nil {
			t.Fatalf("rate: %v", err)
		}
		if !r.Equal(decimal.NewFromInt(10)) {
			t.Errorf("expected default 10, got %s", r)
		}
	})

	t.Run("applies the plan discount", func(t *testing.T) {
		deps := newSubUCDeps()
		plan := deps.seedPlan(t, "Premium Mensuel", 15000, model.PlanDurationMonthly,
			model.PlanFeature{Name: model.FeatureReducedCommission, Included: true, Limit: "7.5"})
		deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
		uc := deps.newUC()

		r, err := uc.CommissionRateFor(ctx, nil, "org-1")
		if err != nil {
			t.Fatalf("rate: %v", err)
		}
		if !r.Equal(decimal.RequireFromString("7.5")) {
			t.Errorf("expected 7.5, got %s", r)
		}
	})
}

func TestSubscriptionUseCase_FinishExpired(t *testing.T) {
	ctx := context.Background()
	deps := newSubUCDeps()
	plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
	overdue := deps.seedActiveSub(t, "org-1", plan, 10*24*time.Hour)
	overdue.EndAt = time.Now().Add(-time.Hour)
	_ = deps.subs.Save(ctx, nil, overdue)
	deps.seedActiveSub(t, "org-2", plan, 10*24*time.Hour)
	uc := deps.newUC()

	n, err := uc.FinishExpired(ctx)
	if err != nil {
		t.Fatalf("finish expired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expiry, got %d", n)
	}
	got, _ := deps.subs.FindByID(ctx, nil, overdue.ID)
	if got.Status != model.SubscriptionStatusExpired {
		t.Errorf("expected EXPIRE, got %s", got.Status)
	}
	if len(deps.notifier.sent) != 1 || deps.notifier.sent[0].UserID != "org-1" {
		t.Errorf("expected an expiry notification for org-1, got %+v", deps.notifier.sent)
	}
}

func TestSubscriptionUseCase_History(t *testing.T) {
	ctx := context.Background()
	deps := newSubUCDeps()
	plan := deps.seedPlan(t, "Standard Mensuel", 5000, model.PlanDurationMonthly)
	uc := deps.newUC()

	sub, _, err := uc.Subscribe(ctx, "org-1", plan.ID, model.PaymentMethodMTN, validPhone, false)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := uc.History(ctx, "someone-else", sub.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	hist, err := uc.History(ctx, "org-1", sub.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(hist))
	}
}
