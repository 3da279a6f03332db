package model

import (
	"time"

	"github.com/shopspring/decimal"

	"spotvibe/internal/domain"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "BROUILLON"
	EventStatusSubmitted EventStatus = "EN_ATTENTE"
	EventStatusApproved  EventStatus = "APPROUVE"
	EventStatusRejected  EventStatus = "REJETE"
	EventStatusFinished  EventStatus = "TERMINE"
	EventStatusCancelled EventStatus = "ANNULE"
)

// Event is an organizer's listing. Only approved events sell tickets.
type Event struct {
	ID          string
	OrganizerID string
	Title       string
	Description string
	Venue       string
	City        string
	StartAt     time.Time
	EndAt       time.Time

	TicketPrice    decimal.Decimal
	TicketCapacity int
	TicketsSold    int

	// TicketCommissionRate overrides the organizer's plan rate for this
	// event when set; nil defers to the subscription/config lookup.
	TicketCommissionRate *decimal.Decimal

	Status          EventStatus
	RejectionReason string
	ReviewedByID    *string
	ReviewedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEvent(id, organizerID, title, venue, city string, startAt, endAt time.Time, price decimal.Decimal, capacity int) (*Event, error) {
	if id == "" || organizerID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !endAt.After(startAt) {
		return nil, domain.ErrInvalidArgument
	}
	if price.IsNegative() || capacity < 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Event{
		ID:             id,
		OrganizerID:    organizerID,
		Title:          title,
		Venue:          venue,
		City:           city,
		StartAt:        startAt,
		EndAt:          endAt,
		TicketPrice:    price,
		TicketCapacity: capacity,
		Status:         EventStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Submit moves a draft into the moderation queue.
func (e *Event) Submit() error {
	if e.Status != EventStatusDraft && e.Status != EventStatusRejected {
		return domain.ErrEventNotEditable
	}
	e.Status = EventStatusSubmitted
	e.UpdatedAt = time.Now()
	return nil
}

func (e *Event) Approve(adminID string) error {
	if e.Status != EventStatusSubmitted {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now()
	e.Status = EventStatusApproved
	e.ReviewedByID = &adminID
	e.ReviewedAt = &now
	e.UpdatedAt = now
	return nil
}

func (e *Event) Reject(adminID, reason string) error {
	if e.Status != EventStatusSubmitted {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now()
	e.Status = EventStatusRejected
	e.RejectionReason = reason
	e.ReviewedByID = &adminID
	e.ReviewedAt = &now
	e.UpdatedAt = now
	return nil
}

// Terminate closes an approved event once it is over.
func (e *Event) Terminate() error {
	if e.Status != EventStatusApproved {
		return domain.ErrInvalidStatusTransition
	}
	e.Status = EventStatusFinished
	e.UpdatedAt = time.Now()
	return nil
}

func (e *Event) Cancel() error {
	switch e.Status {
	case EventStatusFinished, EventStatusCancelled:
		return domain.ErrInvalidStatusTransition
	}
	e.Status = EventStatusCancelled
	e.UpdatedAt = time.Now()
	return nil
}

// CanSellTicket holds while the event is approved, not started and has
// remaining capacity.
func (e *Event) CanSellTicket(now time.Time) bool {
	if e.Status != EventStatusApproved {
		return false
	}
	if !now.Before(e.StartAt) {
		return false
	}
	return e.TicketsSold < e.TicketCapacity
}

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "EN_ATTENTE"
	TicketStatusPaid      TicketStatus = "PAYE"
	TicketStatusUsed      TicketStatus = "UTILISE"
	TicketStatusCancelled TicketStatus = "ANNULE"
	TicketStatusRefunded  TicketStatus = "REMBOURSE"
)

// EventTicket links a buyer to an event through a payment.
type EventTicket struct {
	ID        string
	EventID   string
	BuyerID   string
	PaymentID string
	Price     decimal.Decimal
	Status    TicketStatus
	Code      string

	CreatedAt time.Time
	PaidAt    *time.Time
	UsedAt    *time.Time
}

// NewEventTicket reserves a seat; the payment is attached once it opens.
func NewEventTicket(id string, event *Event, buyerID, code string) (*EventTicket, error) {
	if id == "" || event == nil || buyerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &EventTicket{
		ID:        id,
		EventID:   event.ID,
		BuyerID:   buyerID,
		Price:     event.TicketPrice,
		Status:    TicketStatusPending,
		Code:      code,
		CreatedAt: time.Now(),
	}, nil
}

func (t *EventTicket) MarkPaid() error {
	if t.Status != TicketStatusPending {
		return domain.ErrTicketNotPending
	}
	now := time.Now()
	t.Status = TicketStatusPaid
	t.PaidAt = &now
	return nil
}

func (t *EventTicket) Cancel() error {
	if t.Status != TicketStatusPending {
		return domain.ErrTicketNotPending
	}
	t.Status = TicketStatusCancelled
	return nil
}

func (t *EventTicket) MarkRefunded() error {
	if t.Status != TicketStatusPaid {
		return domain.ErrInvalidStatusTransition
	}
	t.Status = TicketStatusRefunded
	return nil
}
