package model

import "time"

// EscalationAction is the decision emitted for a classification
type EscalationAction string

const (
	ActionAlertGuardian EscalationAction = "alert_guardian"
	ActionShowResources EscalationAction = "show_resources"
	ActionLogOnly       EscalationAction = "log_only"
	ActionNone          EscalationAction = "none"
)

// DeliveryStatus records the outcome of a notifier call
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped" // no guardian contact or no consent
)

// EscalationState is the per-user cooldown state. It is owned exclusively by
// the escalation controller; all reads and writes go through its store so
// concurrent messages cannot both observe "not in cooldown".
type EscalationState struct {
	LastAlertAt   *time.Time `json:"last_alert_at,omitempty"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// InCooldown reports whether the user is inside the alert cooldown window
func (s EscalationState) InCooldown(now time.Time) bool {
	return s.CooldownUntil != nil && now.Before(*s.CooldownUntil)
}

// EscalationDecision is the outcome of running one classification through
// the escalation controller
type EscalationDecision struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Action         EscalationAction `json:"action"`
	Tier           CrisisTier       `json:"severity_tier"`
	CrisisScore    int              `json:"crisis_score"`
	CrisisTrigger  bool             `json:"crisis_trigger"`
	DeliveryStatus DeliveryStatus   `json:"delivery_status,omitempty"`
	EmittedAt      time.Time        `json:"emitted_at"`
}
