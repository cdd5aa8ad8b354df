package handler

import (
	"net/http"

	"github.com/havenhealth/haven/api/internal/middleware"
	"github.com/havenhealth/haven/api/internal/model"
	"github.com/havenhealth/haven/api/internal/service"
)

// ChatHandler handles chat classification endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessage handles POST /v1/chat/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SendMessageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	result, err := h.chatService.SendMessage(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, map[string]string{
		"history": "/v1/chat/sessions/" + result.SessionID,
	})
}

// History handles GET /v1/chat/sessions/{sessionID}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "sessionID", Message: "session ID is required"},
		}))
		return
	}

	limit := parseLimit(r, 0)
	messages, err := h.chatService.History(r.Context(), userID, sessionID, limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list messages"))
		return
	}

	WriteCollection(w, http.StatusOK, messages, nil, map[string]string{
		"self": "/v1/chat/sessions/" + sessionID,
	})
}

// CrisisHistory handles GET /v1/chat/crisis-events
func (h *ChatHandler) CrisisHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit := parseLimit(r, 0)
	logs, err := h.chatService.CrisisHistory(r.Context(), userID, limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list crisis events"))
		return
	}

	WriteCollection(w, http.StatusOK, logs, nil, map[string]string{
		"self": "/v1/chat/crisis-events",
	})
}
