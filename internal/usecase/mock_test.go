//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
	"spotvibe/internal/domain/model"
	"spotvibe/internal/domain/ports/adapter"
	"spotvibe/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type noTx struct{}

type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, noTx{})
}

// ---- Mock MomoGateway ----

type MockGateway struct {
	mu       sync.Mutex
	operator model.MomoOperator
	Requests []adapter.PaymentRequest

	RequestPaymentFunc    func(ctx context.Context, req adapter.PaymentRequest) (adapter.PaymentResult, error)
	VerifyTransactionFunc func(ctx context.Context, providerTxID string) (adapter.VerifyResult, error)
	CancelFunc            func(ctx context.Context, providerTxID string) error
}

var _ adapter.MomoGateway = (*MockGateway)(nil)

func NewMockGateway(op model.MomoOperator) *MockGateway { return &MockGateway{operator: op} }

func (m *MockGateway) Name() string                 { return "mock-" + string(m.operator) }
func (m *MockGateway) Operator() model.MomoOperator { return m.operator }

func (m *MockGateway) RequestPayment(ctx context.Context, req adapter.PaymentRequest) (adapter.PaymentResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.RequestPaymentFunc != nil {
		return m.RequestPaymentFunc(ctx, req)
	}
	return adapter.PaymentResult{ProviderTxID: "ptx-" + req.Reference, Status: model.MomoStatusPending}, nil
}

func (m *MockGateway) VerifyTransaction(ctx context.Context, providerTxID string) (adapter.VerifyResult, error) {
	if m.VerifyTransactionFunc != nil {
		return m.VerifyTransactionFunc(ctx, providerTxID)
	}
	return adapter.VerifyResult{ProviderTxID: providerTxID, Status: model.MomoStatusPending}, nil
}

func (m *MockGateway) CancelTransaction(ctx context.Context, providerTxID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, providerTxID)
	}
	return nil
}

// ---- Mock Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]bool
	Fail  bool
	Locks int
}

func NewMockLocker() *MockLocker { return &MockLocker{held: map[string]bool{}} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail || m.held[key] {
		return "", domain.ErrLockNotAcquired
	}
	m.held[key] = true
	m.Locks++
	return "token", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment

	SaveFunc                     func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	UpdateStatusIfActionableFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, processedAt *time.Time) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: map[string]*model.Payment{}}
}

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByInternalRef(ctx context.Context, tx repository.Tx, ref string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.InternalRef == ref {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) List(ctx context.Context, tx repository.Tx, f repository.PaymentFilter) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if f.UserID != "" && p.UserID != f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, processedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	if processedAt != nil {
		p.ProcessedAt = processedAt
	}
	return nil
}

func (m *MockPaymentRepo) UpdateStatusIfActionable(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, processedAt *time.Time) (bool, error) {
	if m.UpdateStatusIfActionableFunc != nil {
		return m.UpdateStatusIfActionableFunc(ctx, tx, id, status, processedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, nil
	}
	switch p.Status {
	case model.PaymentStatusPending, model.PaymentStatusProcessing:
		p.Status = status
		p.ProcessedAt = processedAt
		return true, nil
	}
	return false, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.ExpiresAt != nil && p.ExpiresAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockPaymentRepo) SumByPeriod(ctx context.Context, tx repository.Tx, period string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, p := range m.store {
		if p.Status == model.PaymentStatusSucceeded {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (m *MockPaymentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[model.PaymentStatus]int64{}
	for _, p := range m.store {
		out[p.Status]++
	}
	return out, nil
}

// ---- Mock MomoTransactionRepository ----

type MockMomoTxRepo struct {
	mu    sync.RWMutex
	store map[string]*model.MomoTransaction
}

var _ repository.MomoTransactionRepository = (*MockMomoTxRepo)(nil)

func NewMockMomoTxRepo() *MockMomoTxRepo {
	return &MockMomoTxRepo{store: map[string]*model.MomoTransaction{}}
}

func (m *MockMomoTxRepo) Save(ctx context.Context, tx repository.Tx, t *model.MomoTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MockMomoTxRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MomoTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockMomoTxRepo) FindByProviderTxID(ctx context.Context, tx repository.Tx, providerTxID string) (*model.MomoTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.ProviderTxID == providerTxID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockMomoTxRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.MomoTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.PaymentID == paymentID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- Mock CommissionRepository ----

type MockCommissionRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Commission
}

var _ repository.CommissionRepository = (*MockCommissionRepo)(nil)

func NewMockCommissionRepo() *MockCommissionRepo {
	return &MockCommissionRepo{store: map[string]*model.Commission{}}
}

func (m *MockCommissionRepo) Save(ctx context.Context, tx repository.Tx, c *model.Commission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.PaymentID == c.PaymentID {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockCommissionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommissionRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.PaymentID == paymentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockCommissionRepo) ListByOrganizer(ctx context.Context, tx repository.Tx, organizerID string, limit, offset int) ([]*model.Commission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Commission
	for _, c := range m.store {
		if c.OrganizerID == organizerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCommissionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CommissionStatus, paidAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = status
	if paidAt != nil {
		c.PaidAt = paidAt
	}
	return nil
}

func (m *MockCommissionRepo) SumByPeriod(ctx context.Context, tx repository.Tx, since, until time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, c := range m.store {
		sum = sum.Add(c.Amount)
	}
	return sum, nil
}

// ---- Mock RefundRepository ----

type MockRefundRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Refund
}

var _ repository.RefundRepository = (*MockRefundRepo)(nil)

func NewMockRefundRepo() *MockRefundRepo {
	return &MockRefundRepo{store: map[string]*model.Refund{}}
}

func (m *MockRefundRepo) Save(ctx context.Context, tx repository.Tx, r *model.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *MockRefundRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockRefundRepo) FindOpenByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.PaymentID == paymentID && r.IsOpen() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRefundRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.RefundStatus, limit, offset int) ([]*model.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Refund
	for _, r := range m.store {
		if r.Status == status {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockRefundRepo) ListByRequester(ctx context.Context, tx repository.Tx, requesterID string) ([]*model.Refund, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Refund
	for _, r := range m.store {
		if r.RequesterID == requesterID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock PlanRepository ----

type MockPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.SubscriptionPlan
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{store: map[string]*model.SubscriptionPlan{}}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) FindByTierAndDuration(ctx context.Context, tx repository.Tx, tier model.PlanTier, duration model.PlanDuration) (*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Tier == tier && p.Duration == duration && p.Active {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.SubscriptionPlan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubscriptionPlan
	for _, p := range m.store {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Subscription
	history []*model.SubscriptionHistory
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: map[string]*model.Subscription{}}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive && now.Before(s.EndAt) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) FindPendingByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusPending {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) ListActiveExpiredBy(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive && s.EndAt.Before(cutoff) {
			cp := *s
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockSubscriptionRepo) ListExpiringBetween(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive && s.EndAt.After(from) && s.EndAt.Before(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *MockSubscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[model.SubscriptionStatus]int64{}
	for _, s := range m.store {
		out[s.Status]++
	}
	return out, nil
}

func (m *MockSubscriptionRepo) SaveHistory(ctx context.Context, tx repository.Tx, h *model.SubscriptionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *h
	m.history = append(m.history, &cp)
	return nil
}

func (m *MockSubscriptionRepo) ListHistory(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.SubscriptionHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SubscriptionHistory
	for _, h := range m.history {
		if h.SubscriptionID == subscriptionID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock EventRepository ----

type MockEventRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Event
}

var _ repository.EventRepository = (*MockEventRepo)(nil)

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{store: map[string]*model.Event{}}
}

func (m *MockEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[e.ID] = &cp
	return nil
}

func (m *MockEventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockEventRepo) ListByOrganizer(ctx context.Context, tx repository.Tx, organizerID string) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Event
	for _, e := range m.store {
		if e.OrganizerID == organizerID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEventRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.EventStatus, limit, offset int) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Event
	for _, e := range m.store {
		if e.Status == status {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEventRepo) ListApprovedEndedBy(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Event
	for _, e := range m.store {
		if e.Status == model.EventStatusApproved && e.EndAt.Before(cutoff) {
			cp := *e
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockEventRepo) IncrementTicketsSold(ctx context.Context, tx repository.Tx, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[eventID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if e.TicketsSold >= e.TicketCapacity {
		return false, nil
	}
	e.TicketsSold++
	return true, nil
}

func (m *MockEventRepo) CountCreatedInMonth(ctx context.Context, tx repository.Tx, organizerID string, year int, month time.Month) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.store {
		if e.OrganizerID == organizerID && e.CreatedAt.Year() == year && e.CreatedAt.Month() == month {
			n++
		}
	}
	return n, nil
}

// ---- Mock TicketRepository ----

type MockTicketRepo struct {
	mu    sync.RWMutex
	store map[string]*model.EventTicket
}

var _ repository.TicketRepository = (*MockTicketRepo)(nil)

func NewMockTicketRepo() *MockTicketRepo {
	return &MockTicketRepo{store: map[string]*model.EventTicket{}}
}

func (m *MockTicketRepo) Save(ctx context.Context, tx repository.Tx, t *model.EventTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.store[t.ID] = &cp
	return nil
}

func (m *MockTicketRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.EventTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTicketRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.EventTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.PaymentID == paymentID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTicketRepo) ListByBuyer(ctx context.Context, tx repository.Tx, buyerID string) ([]*model.EventTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.EventTicket
	for _, t := range m.store {
		if t.BuyerID == buyerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTicketRepo) ListByEvent(ctx context.Context, tx repository.Tx, eventID string) ([]*model.EventTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.EventTicket
	for _, t := range m.store {
		if t.EventID == eventID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: map[string]*model.User{}}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) Count(ctx context.Context, tx repository.Tx) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.store)), nil
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Notification
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{store: map[string]*model.Notification{}}
}

func (m *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.store[n.ID] = &cp
	return nil
}

func (m *MockNotificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *MockNotificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, onlyUnread bool, limit, offset int) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Notification
	for _, n := range m.store {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.Status != model.NotificationStatusNew {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockNotificationRepo) ListEscalatable(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Notification
	for _, n := range m.store {
		if n.Escalated {
			continue
		}
		switch n.Status {
		case model.NotificationStatusResolved, model.NotificationStatusIgnored, model.NotificationStatusArchived:
			continue
		}
		if n.CreatedAt.Before(cutoff) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockNotificationRepo) DeleteOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, v := range m.store {
		if v.CreatedAt.Before(cutoff) {
			switch v.Status {
			case model.NotificationStatusResolved, model.NotificationStatusArchived:
				delete(m.store, id)
				n++
			}
		}
	}
	return n, nil
}
