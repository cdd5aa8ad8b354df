package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/havenhealth/haven/api/internal/model"
)

const escalationKeyPrefix = "escalation:"

// retained after the cooldown expires so a decision racing the expiry still
// sees the prior state instead of a fresh zero value
const escalationRetention = time.Hour

var errStateChanged = errors.New("escalation state changed")

// EscalationStateCache is a Redis-backed escalation state store. WATCH-based
// transactions give the compare-and-set the atomicity the escalation
// controller relies on: of two concurrent writers, at most one commits.
type EscalationStateCache struct {
	client *redis.Client
}

// NewEscalationStateCache creates a state store on an existing Redis client
func NewEscalationStateCache(client *redis.Client) *EscalationStateCache {
	return &EscalationStateCache{client: client}
}

// Get returns the current state for a user, zero-valued when absent
func (c *EscalationStateCache) Get(ctx context.Context, userID string) (model.EscalationState, error) {
	data, err := c.client.Get(ctx, escalationKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return model.EscalationState{}, nil
	}
	if err != nil {
		return model.EscalationState{}, err
	}
	var state model.EscalationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return model.EscalationState{}, err
	}
	return state, nil
}

// CompareAndSet writes next only if the stored state still equals prev.
// A lost race returns (false, nil); the caller re-reads and retries.
func (c *EscalationStateCache) CompareAndSet(ctx context.Context, userID string, prev, next model.EscalationState) (bool, error) {
	key := escalationKeyPrefix + userID

	data, err := json.Marshal(next)
	if err != nil {
		return false, err
	}

	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if !isZeroState(prev) {
				return errStateChanged
			}
		case err != nil:
			return err
		default:
			var stored model.EscalationState
			if err := json.Unmarshal([]byte(current), &stored); err != nil {
				return err
			}
			if !statesEqual(stored, prev) {
				return errStateChanged
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttlFor(next))
			return nil
		})
		return err
	}

	err = c.client.Watch(ctx, txn, key)
	if errors.Is(err, errStateChanged) || errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func ttlFor(state model.EscalationState) time.Duration {
	if state.CooldownUntil == nil {
		return escalationRetention
	}
	ttl := time.Until(*state.CooldownUntil) + escalationRetention
	if ttl < escalationRetention {
		ttl = escalationRetention
	}
	return ttl
}

func isZeroState(s model.EscalationState) bool {
	return s.LastAlertAt == nil && s.CooldownUntil == nil
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
