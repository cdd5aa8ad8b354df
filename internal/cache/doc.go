// Package cache provides Redis-backed stores for short-lived and
// concurrency-sensitive state.
//
// Two stores live here:
//
//   - EscalationStateCache: per-user alert cooldown state with a WATCH-based
//     compare-and-set so concurrent crisis messages produce at most one
//     guardian alert
//   - OTPCache: email verification codes with Redis-managed expiry
//
// Both take an already-connected *redis.Client; connection setup and
// shutdown belong to the caller.
package cache
