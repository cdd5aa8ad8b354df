package service

import (
	"errors"
	"fmt"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidPhone       = errors.New("invalid phone number format")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== OTP Errors =====
var (
	ErrOTPInvalid = errors.New("invalid verification code")
	ErrOTPExpired = errors.New("verification code expired")
)

// ===== Assessment Validation Errors =====
var (
	ErrUnknownQuestionnaire = errors.New("unknown questionnaire kind")
	ErrAnswerCount          = errors.New("wrong number of answers")
	ErrAnswerOutOfRange     = errors.New("answers must be between 0 and 3")
	ErrStressOutOfRange     = errors.New("stress level must be between 0 and 10")
)

// ===== Message Validation Errors =====
var (
	ErrEmptyMessage   = errors.New("message is required")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

// CollaboratorError wraps a failed downstream dependency (state store,
// notifier, resource lookup) so callers can tell transient dependency
// failures apart from bad input. Classification results are never changed
// by a collaborator outage; callers degrade to safe defaults instead.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
