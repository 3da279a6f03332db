package apiv1

import (
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain/model"
	"spotvibe/internal/usecase"
)

// Wire representations. Amounts travel as decimal strings so XOF values
// survive JSON without float rounding.

type Payment struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Amount      string     `json:"amount"`
	Fee         string     `json:"fee"`
	NetAmount   string     `json:"net_amount"`
	Status      string     `json:"status"`
	Method      string     `json:"method"`
	InternalRef string     `json:"reference"`
	Phone       string     `json:"phone"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func toPayment(p *model.Payment) Payment {
	return Payment{
		ID:          p.ID,
		Type:        string(p.Type),
		Amount:      p.Amount.String(),
		Fee:         p.Fee.String(),
		NetAmount:   p.NetAmount.String(),
		Status:      string(p.Status),
		Method:      string(p.Method),
		InternalRef: p.InternalRef,
		Phone:       p.Phone,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		ProcessedAt: p.ProcessedAt,
		ExpiresAt:   p.ExpiresAt,
	}
}

type PlanFeature struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Included    bool   `json:"included"`
	Limit       string `json:"limit,omitempty"`
}

type Plan struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Tier        string        `json:"tier"`
	Price       string        `json:"price"`
	Duration    string        `json:"duration"`
	Description string        `json:"description,omitempty"`
	Features    []PlanFeature `json:"features"`
}

func toPlan(p *model.SubscriptionPlan) Plan {
	features := make([]PlanFeature, 0, len(p.Features))
	for _, f := range p.Features {
		features = append(features, PlanFeature{
			Name:        f.Name,
			Description: f.Description,
			Included:    f.Included,
			Limit:       f.Limit,
		})
	}
	return Plan{
		ID:          p.ID,
		Name:        p.Name,
		Tier:        string(p.Tier),
		Price:       p.Price.String(),
		Duration:    string(p.Duration),
		Description: p.Description,
		Features:    features,
	}
}

type Subscription struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"plan_id"`
	Status    string    `json:"status"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	AutoRenew bool      `json:"auto_renew"`
}

func toSubscription(s *model.Subscription) Subscription {
	return Subscription{
		ID:        s.ID,
		PlanID:    s.PlanID,
		Status:    string(s.Status),
		StartAt:   s.StartAt,
		EndAt:     s.EndAt,
		AutoRenew: s.AutoRenew,
	}
}

type SubscriptionHistory struct {
	Action    string    `json:"action"`
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	Comment   string    `json:"comment,omitempty"`
	At        time.Time `json:"at"`
}

func toHistory(h *model.SubscriptionHistory) SubscriptionHistory {
	return SubscriptionHistory{
		Action:    string(h.Action),
		OldStatus: string(h.OldStatus),
		NewStatus: string(h.NewStatus),
		Comment:   h.Comment,
		At:        h.At,
	}
}

type Usage struct {
	SubscriptionID  string    `json:"subscription_id"`
	PlanName        string    `json:"plan_name"`
	Tier            string    `json:"tier"`
	Active          bool      `json:"active"`
	EndAt           time.Time `json:"end_at"`
	DaysRemaining   int       `json:"days_remaining"`
	EventsThisMonth int       `json:"events_this_month"`
	EventLimit      *int      `json:"event_limit"` // null means unlimited
	VerifiedBadge   bool      `json:"verified_badge"`
}

func toUsage(u *usecase.SubscriptionUsage) Usage {
	return Usage{
		SubscriptionID:  u.SubscriptionID,
		PlanName:        u.PlanName,
		Tier:            string(u.Tier),
		Active:          u.Active,
		EndAt:           u.EndAt,
		DaysRemaining:   u.DaysRemaining,
		EventsThisMonth: u.EventsThisMonth,
		EventLimit:      u.EventLimit,
		VerifiedBadge:   u.VerifiedBadge,
	}
}

type Quote struct {
	CurrentPlanID string `json:"current_plan_id"`
	NewPlanID     string `json:"new_plan_id"`
	DaysRemaining int    `json:"days_remaining"`
	Credit        string `json:"credit"`
	AmountDue     string `json:"amount_due"`
}

func toQuote(q *usecase.UpgradeQuote) Quote {
	return Quote{
		CurrentPlanID: q.CurrentPlanID,
		NewPlanID:     q.NewPlanID,
		DaysRemaining: q.DaysRemaining,
		Credit:        q.Credit.String(),
		AmountDue:     q.AmountDue.String(),
	}
}

type Event struct {
	ID              string    `json:"id"`
	OrganizerID     string    `json:"organizer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Venue           string    `json:"venue"`
	City            string    `json:"city"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	TicketPrice     string    `json:"ticket_price"`
	TicketCapacity  int       `json:"ticket_capacity"`
	TicketsSold     int       `json:"tickets_sold"`
	CommissionRate  string    `json:"commission_rate,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

func toEvent(e *model.Event) Event {
	rate := ""
	if e.TicketCommissionRate != nil {
		rate = e.TicketCommissionRate.String()
	}
	return Event{
		ID:              e.ID,
		OrganizerID:     e.OrganizerID,
		Title:           e.Title,
		Description:     e.Description,
		Venue:           e.Venue,
		City:            e.City,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		TicketPrice:     e.TicketPrice.String(),
		TicketCapacity:  e.TicketCapacity,
		TicketsSold:     e.TicketsSold,
		CommissionRate:  rate,
		Status:          string(e.Status),
		RejectionReason: e.RejectionReason,
	}
}

type Ticket struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Code      string     `json:"code"`
	Price     string     `json:"price"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func toTicket(t *model.EventTicket) Ticket {
	return Ticket{
		ID:        t.ID,
		EventID:   t.EventID,
		Code:      t.Code,
		Price:     t.Price.String(),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		PaidAt:    t.PaidAt,
	}
}

type Refund struct {
	ID          string     `json:"id"`
	PaymentID   string     `json:"payment_id"`
	Amount      string     `json:"amount"`
	Reason      string     `json:"reason"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func toRefund(r *model.Refund) Refund {
	return Refund{
		ID:          r.ID,
		PaymentID:   r.PaymentID,
		Amount:      r.Amount.String(),
		Reason:      string(r.Reason),
		Description: r.Description,
		Status:      string(r.Status),
		RequestedAt: r.RequestedAt,
		ProcessedAt: r.ProcessedAt,
	}
}

type Notification struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	RelatedKind string     `json:"related_kind,omitempty"`
	RelatedID   string     `json:"related_id,omitempty"`
	Escalated   bool       `json:"escalated"`
	CreatedAt   time.Time  `json:"created_at"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`
}

func toNotification(n *model.Notification) Notification {
	return Notification{
		ID:          n.ID,
		Kind:        string(n.Kind),
		Priority:    string(n.Priority),
		Status:      string(n.Status),
		Title:       n.Title,
		Message:     n.Message,
		RelatedKind: string(n.RelatedKind),
		RelatedID:   n.RelatedID,
		Escalated:   n.Escalated,
		CreatedAt:   n.CreatedAt,
		ViewedAt:    n.ViewedAt,
	}
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
