package repository

import (
	"context"
	"errors"

	"github.com/havenhealth/haven/api/internal/database"
	"github.com/havenhealth/haven/api/internal/model"
)

// ConversationRepository handles chat message data access
type ConversationRepository struct {
	db database.Database
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db database.Database) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create stores one chat message row
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	query := `
		CREATE conversation CONTENT {
			user: type::record($user),
			session_id: $session_id,
			sender: $sender,
			message_text: $message_text,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":         conversation.UserID,
		"session_id":   conversation.SessionID,
		"sender":       conversation.Sender,
		"message_text": conversation.Text,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	conversation.ID = created.ID
	conversation.CreatedOn = created.CreatedOn
	return nil
}

// GetBySessionID returns the messages of one session, oldest first
func (r *ConversationRepository) GetBySessionID(ctx context.Context, userID, sessionID string, limit int) ([]*model.Conversation, error) {
	query := `
		SELECT * FROM conversation
		WHERE user = type::record($user) AND session_id = $session_id
		ORDER BY created_on ASC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"user":       userID,
		"session_id": sessionID,
		"limit":      limit,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	conversations := make([]*model.Conversation, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		conversation := &model.Conversation{
			ID:        convertSurrealID(data["id"]),
			UserID:    convertSurrealID(data["user"]),
			SessionID: getString(data, "session_id"),
			Sender:    getString(data, "sender"),
			Text:      getString(data, "message_text"),
		}
		if t := getTime(data, "created_on"); t != nil {
			conversation.CreatedOn = *t
		}
		conversations = append(conversations, conversation)
	}
	return conversations, nil
}
