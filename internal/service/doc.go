// Package service implements the business logic layer for the Haven API.
//
// The service package contains the risk classification engine and all domain
// logic around it: questionnaire scoring, crisis keyword classification,
// score aggregation, and the cooldown-gated escalation controller. Services
// are the primary abstraction between HTTP handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own repository interfaces, allowing:
//
//   - Easy mocking for unit tests
//   - Decoupling from specific database implementations
//   - Clear contracts for data access requirements
//
// # Error Handling
//
// Services return domain-specific errors defined as package-level variables:
//
//	var (
//	    ErrEmptyMessage  = errors.New("message is empty")
//	    ErrAnswerCount   = errors.New("wrong number of answers")
//	)
//
// Failures of external collaborators (the escalation state store, the OTP
// store) are wrapped in CollaboratorError so callers can distinguish an
// outage from a domain rejection and degrade instead of failing.
//
// # Example Usage
//
//	classifier := NewCrisisClassifier(CrisisClassifierConfig{
//	    Engine:    engineConfig,
//	    Sentiment: NewLexiconSentiment(),
//	})
//	result, err := classifier.Classify("feeling hopeless today")
//	score := classifier.Aggregate(result)
package service
