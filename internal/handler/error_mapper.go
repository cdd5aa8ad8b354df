package handler

import (
	"errors"

	"github.com/havenhealth/haven/api/internal/model"
	"github.com/havenhealth/haven/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Collaborator outages map to 503 regardless of which sentinel they wrap.
	var collabErr *service.CollaboratorError
	if errors.As(err, &collabErr) {
		return model.NewCollaboratorError(collabErr.Error())
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidPhone):
		return model.NewValidationError([]model.FieldError{{Field: "guardian_phone", Message: err.Error()}})

	case errors.Is(err, service.ErrUnknownQuestionnaire):
		return model.NewValidationError([]model.FieldError{{Field: "kind", Message: err.Error()}})
	case errors.Is(err, service.ErrAnswerCount),
		errors.Is(err, service.ErrAnswerOutOfRange):
		return model.NewValidationError([]model.FieldError{{Field: "answers", Message: err.Error()}})
	case errors.Is(err, service.ErrStressOutOfRange):
		return model.NewValidationError([]model.FieldError{{Field: "stress_level", Message: err.Error()}})

	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrMessageTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "message", Message: err.Error()}})

	// ===== Verification Code Errors → 400 =====
	case errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired):
		return model.NewBadRequestError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
