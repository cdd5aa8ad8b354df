package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/havenhealth/haven/api/internal/model"
)

// casRetryLimit bounds how many times a lost compare-and-set race is retried
// before degrading to show_resources
const casRetryLimit = 4

// EscalationStateStore is the single owner of per-user cooldown state.
// CompareAndSet must be atomic with respect to concurrent callers: of two
// writers that both read the same prior state, at most one succeeds.
type EscalationStateStore interface {
	Get(ctx context.Context, userID string) (model.EscalationState, error)
	CompareAndSet(ctx context.Context, userID string, prev, next model.EscalationState) (bool, error)
}

// Notifier delivers a guardian alert. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// EscalationController turns classifications into escalation decisions,
// enforcing the per-user alert cooldown.
type EscalationController struct {
	store          EscalationStateStore
	notifier       Notifier
	cooldown       time.Duration
	scoreThreshold int
	now            func() time.Time
}

// EscalationControllerConfig holds configuration for the controller
type EscalationControllerConfig struct {
	Store          EscalationStateStore
	Notifier       Notifier
	Cooldown       time.Duration // default 24h
	ScoreThreshold int           // default 70, crisis score at or above escalates
}

// NewEscalationController creates a controller with defaults applied
func NewEscalationController(cfg EscalationControllerConfig) *EscalationController {
	cooldown := cfg.Cooldown
	if cooldown == 0 {
		cooldown = 24 * time.Hour
	}
	threshold := cfg.ScoreThreshold
	if threshold == 0 {
		threshold = 70
	}
	return &EscalationController{
		store:          cfg.Store,
		notifier:       cfg.Notifier,
		cooldown:       cooldown,
		scoreThreshold: threshold,
		now:            time.Now,
	}
}

// EscalationInput is one classification outcome to run through the controller.
// GuardianPhone is empty when the user has no guardian on file or has not
// consented to alerts.
type EscalationInput struct {
	UserID        string
	Tier          model.CrisisTier
	CrisisScore   int
	CrisisTrigger bool
	GuardianPhone string
}

// Decide runs the escalation policy for one classification. A high tier, a
// crisis trigger, or a score at or above the threshold escalates; whether
// that becomes a guardian alert depends on guardian availability and the
// cooldown. The cooldown is committed through the state store before the
// notifier is called, so a delivery failure never re-arms the alert; the
// decision records the failed delivery instead.
func (c *EscalationController) Decide(ctx context.Context, in EscalationInput) (*model.EscalationDecision, error) {
	decision := &model.EscalationDecision{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		Tier:          in.Tier,
		CrisisScore:   in.CrisisScore,
		CrisisTrigger: in.CrisisTrigger,
		EmittedAt:     c.now(),
	}

	if !c.shouldEscalate(in) {
		if in.Tier == model.TierNone {
			decision.Action = model.ActionNone
		} else {
			decision.Action = model.ActionShowResources
		}
		return decision, nil
	}

	if in.GuardianPhone == "" {
		decision.Action = model.ActionLogOnly
		decision.DeliveryStatus = model.DeliverySkipped
		return decision, nil
	}

	for attempt := 0; attempt < casRetryLimit; attempt++ {
		prev, err := c.store.Get(ctx, in.UserID)
		if err != nil {
			return nil, &CollaboratorError{Collaborator: "escalation state store", Err: err}
		}

		now := c.now()
		if prev.InCooldown(now) {
			decision.Action = model.ActionShowResources
			return decision, nil
		}

		until := now.Add(c.cooldown)
		next := model.EscalationState{LastAlertAt: &now, CooldownUntil: &until}
		ok, err := c.store.CompareAndSet(ctx, in.UserID, prev, next)
		if err != nil {
			return nil, &CollaboratorError{Collaborator: "escalation state store", Err: err}
		}
		if !ok {
			// Lost the race; re-read and re-evaluate the cooldown
			continue
		}

		decision.Action = model.ActionAlertGuardian
		decision.DeliveryStatus = model.DeliverySent
		if err := c.notifier.Send(ctx, in.GuardianPhone, guardianAlertMessage); err != nil {
			slog.Error("guardian alert delivery failed",
				slog.String("user_id", in.UserID),
				slog.String("error", err.Error()))
			decision.DeliveryStatus = model.DeliveryFailed
		}
		return decision, nil
	}

	// Persistent contention means another writer alerted moments ago
	decision.Action = model.ActionShowResources
	return decision, nil
}

func (c *EscalationController) shouldEscalate(in EscalationInput) bool {
	return in.Tier == model.TierHigh || in.CrisisTrigger || in.CrisisScore >= c.scoreThreshold
}

// The alert body deliberately carries no message content or score; the
// guardian only learns that a check-in is needed.
const guardianAlertMessage = "Haven alert: a person in your care may need support right now. " +
	"Please check in with them as soon as you can."

// MemoryStateStore is an in-process EscalationStateStore for tests and
// single-instance deployments
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]model.EscalationState
}

// NewMemoryStateStore creates an empty in-memory state store
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]model.EscalationState)}
}

// Get returns the current state for a user, zero-valued when absent
func (s *MemoryStateStore) Get(_ context.Context, userID string) (model.EscalationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[userID], nil
}

// CompareAndSet swaps the state only if it still equals prev
func (s *MemoryStateStore) CompareAndSet(_ context.Context, userID string, prev, next model.EscalationState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !statesEqual(s.states[userID], prev) {
		return false, nil
	}
	s.states[userID] = next
	return true, nil
}

func statesEqual(a, b model.EscalationState) bool {
	return timePtrEqual(a.LastAlertAt, b.LastAlertAt) &&
		timePtrEqual(a.CooldownUntil, b.CooldownUntil)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
