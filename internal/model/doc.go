// Package model defines domain entities and data structures for the Haven API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - User: Application user with guardian contact and consent flags
//   - Assessment: A scored PHQ-9 / GAD-7 / stress questionnaire submission
//   - Conversation: A single chat message row (user or assistant)
//   - CrisisLog: Record of a crisis classification and the action taken
//   - EscalationState: Per-user cooldown state owned by the escalation controller
//
// # Scoring Types
//
// Pure value types carry classification results between layers:
//
//	score, _ := scorer.Score(answers, model.QuestionnairePHQ9)
//	// score.RawSum, score.Band, score.CrisisTrigger
//
// Severity bands, crisis tiers, and risk levels are ordered enums; comparisons
// use their integer ordinals so "highest signal wins" logic stays monotonic.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
