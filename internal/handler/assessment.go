package handler

import (
	"net/http"
	"strconv"

	"github.com/havenhealth/haven/api/internal/middleware"
	"github.com/havenhealth/haven/api/internal/model"
	"github.com/havenhealth/haven/api/internal/service"
)

// AssessmentHandler handles questionnaire endpoints
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
	}
}

// Submit handles POST /v1/assessments
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SubmitAssessmentRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.assessmentService.Submit(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, result, map[string]string{
		"history": "/v1/assessments",
	})
}

// History handles GET /v1/assessments
func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit := parseLimit(r, 0)
	assessments, err := h.assessmentService.History(r.Context(), userID, limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list assessments"))
		return
	}

	WriteCollection(w, http.StatusOK, assessments, nil, map[string]string{
		"self": "/v1/assessments",
	})
}

// parseLimit reads an optional ?limit= query parameter, returning fallback
// when absent or malformed. Services clamp to their own bounds.
func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}
