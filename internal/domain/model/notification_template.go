package model

import "strings"

// NotificationTemplate is a reusable notification body. Placeholders use the
// `{{name}}` form and are substituted by Render; unknown placeholders are
// left in place so a missing variable is visible instead of silent.
type NotificationTemplate struct {
	Kind     NotificationKind
	Priority NotificationPriority
	Title    string
	Message  string
}

// Render fills the template's placeholders and returns the title and message.
func (t NotificationTemplate) Render(vars map[string]string) (title, message string) {
	title, message = t.Title, t.Message
	for k, v := range vars {
		ph := "{{" + k + "}}"
		title = strings.ReplaceAll(title, ph, v)
		message = strings.ReplaceAll(message, ph, v)
	}
	return title, message
}

// Payment outcome templates sent from the webhook pipeline.
var (
	TemplatePaymentConfirmed = NotificationTemplate{
		Kind:     NotificationKindPayment,
		Priority: PriorityNormal,
		Title:    "Paiement confirmé",
		Message:  "Référence {{reference}}",
	}
	TemplatePaymentFailed = NotificationTemplate{
		Kind:     NotificationKindPayment,
		Priority: PriorityHigh,
		Title:    "Paiement échoué",
		Message:  "Référence {{reference}}",
	}
	TemplatePaymentCancelled = NotificationTemplate{
		Kind:     NotificationKindPayment,
		Priority: PriorityNormal,
		Title:    "Paiement annulé",
		Message:  "Référence {{reference}}",
	}
)
