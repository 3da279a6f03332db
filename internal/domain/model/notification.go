package model

import (
	"time"

	"spotvibe/internal/domain"
)

type NotificationPriority string

const (
	PriorityLow      NotificationPriority = "BASSE"
	PriorityNormal   NotificationPriority = "NORMALE"
	PriorityHigh     NotificationPriority = "HAUTE"
	PriorityCritical NotificationPriority = "CRITIQUE"
	PriorityUrgent   NotificationPriority = "URGENTE"
)

type NotificationStatus string

const (
	NotificationStatusNew        NotificationStatus = "NOUVEAU"
	NotificationStatusViewed     NotificationStatus = "VU"
	NotificationStatusInProgress NotificationStatus = "EN_COURS"
	NotificationStatusResolved   NotificationStatus = "RESOLU"
	NotificationStatusIgnored    NotificationStatus = "IGNORE"
	NotificationStatusArchived   NotificationStatus = "ARCHIVE"
)

type NotificationKind string

const (
	NotificationKindPayment      NotificationKind = "PAIEMENT"
	NotificationKindRefund       NotificationKind = "REMBOURSEMENT"
	NotificationKindSubscription NotificationKind = "ABONNEMENT"
	NotificationKindEvent        NotificationKind = "EVENEMENT"
	NotificationKindSystem       NotificationKind = "SYSTEME"
)

// RelatedKind tags what RelatedID points at, so a notification can reference
// any aggregate without a foreign key per type.
type RelatedKind string

const (
	RelatedPayment      RelatedKind = "payment"
	RelatedRefund       RelatedKind = "refund"
	RelatedSubscription RelatedKind = "subscription"
	RelatedEvent        RelatedKind = "event"
)

// escalationDelay is how long a notification may sit unhandled at a given
// priority before it is bumped one rung up the ladder.
var escalationDelay = map[NotificationPriority]time.Duration{
	PriorityCritical: 15 * time.Minute,
	PriorityUrgent:   30 * time.Minute,
	PriorityHigh:     2 * time.Hour,
	PriorityNormal:   8 * time.Hour,
	PriorityLow:      24 * time.Hour,
}

var escalationNext = map[NotificationPriority]NotificationPriority{
	PriorityLow:      PriorityNormal,
	PriorityNormal:   PriorityHigh,
	PriorityHigh:     PriorityCritical,
	PriorityCritical: PriorityUrgent,
	PriorityUrgent:   PriorityUrgent,
}

type Notification struct {
	ID       string
	UserID   string
	Kind     NotificationKind
	Priority NotificationPriority
	Status   NotificationStatus
	Title    string
	Message  string

	RelatedKind RelatedKind
	RelatedID   string

	Escalated   bool
	EscalatedAt *time.Time

	CreatedAt  time.Time
	ViewedAt   *time.Time
	ResolvedAt *time.Time
}

func NewNotification(id, userID string, kind NotificationKind, priority NotificationPriority, title, message string) (*Notification, error) {
	if id == "" || userID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, ok := escalationDelay[priority]; !ok {
		return nil, domain.ErrInvalidArgument
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Kind:      kind,
		Priority:  priority,
		Status:    NotificationStatusNew,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}, nil
}

func (n *Notification) Relate(kind RelatedKind, id string) {
	n.RelatedKind = kind
	n.RelatedID = id
}

func (n *Notification) MarkViewed(now time.Time) {
	if n.Status == NotificationStatusNew {
		n.Status = NotificationStatusViewed
		n.ViewedAt = &now
	}
}

// MarkInProgress flags a notification an operator has started handling.
// It stays on the escalation ladder until resolved.
func (n *Notification) MarkInProgress() {
	switch n.Status {
	case NotificationStatusNew, NotificationStatusViewed:
		n.Status = NotificationStatusInProgress
	}
}

func (n *Notification) Resolve(now time.Time) {
	n.Status = NotificationStatusResolved
	n.ResolvedAt = &now
}

// needsAttention reports whether the notification is still actionable;
// resolved, ignored and archived notifications never escalate.
func (n *Notification) needsAttention() bool {
	switch n.Status {
	case NotificationStatusResolved, NotificationStatusIgnored, NotificationStatusArchived:
		return false
	}
	return true
}

// EscalateIfNeeded bumps the priority one level once the current level's
// delay has elapsed without resolution. A notification escalates at most
// once; URGENTE is the top of the ladder. Returns true when a bump happened.
func (n *Notification) EscalateIfNeeded(now time.Time) bool {
	if n.Escalated || !n.needsAttention() {
		return false
	}
	delay, ok := escalationDelay[n.Priority]
	if !ok {
		return false
	}
	if now.Sub(n.CreatedAt) < delay {
		return false
	}
	next := escalationNext[n.Priority]
	if next == n.Priority {
		return false
	}
	n.Priority = next
	n.Escalated = true
	n.EscalatedAt = &now
	return true
}
