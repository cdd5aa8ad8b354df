package repository

import (
	"context"
	"errors"

	"github.com/havenhealth/haven/api/internal/database"
	"github.com/havenhealth/haven/api/internal/model"
)

// CrisisLogRepository handles crisis audit log data access. Entries are
// append-only; there is no update or delete path.
type CrisisLogRepository struct {
	db database.Database
}

// NewCrisisLogRepository creates a new crisis log repository
func NewCrisisLogRepository(db database.Database) *CrisisLogRepository {
	return &CrisisLogRepository{db: db}
}

// Create appends one crisis log entry
func (r *CrisisLogRepository) Create(ctx context.Context, log *model.CrisisLog) error {
	query := `
		CREATE crisis_log CONTENT {
			user: type::record($user),
			conversation: IF $conversation IS NOT NULL THEN type::record($conversation) ELSE NONE END,
			crisis_score: $crisis_score,
			severity_tier: $severity_tier,
			keywords_matched: $keywords_matched,
			action_taken: $action_taken,
			delivery_status: $delivery_status,
			created_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"user":             log.UserID,
		"conversation":     ptrToNone(log.ConversationID),
		"crisis_score":     log.CrisisScore,
		"severity_tier":    log.Tier.String(),
		"keywords_matched": log.MatchedKeywords,
		"action_taken":     string(log.Action),
		"delivery_status":  string(log.DeliveryStatus),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	log.ID = created.ID
	log.CreatedOn = created.CreatedOn
	return nil
}

// GetByUserID returns the user's crisis history, newest first
func (r *CrisisLogRepository) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.CrisisLog, error) {
	query := `
		SELECT * FROM crisis_log
		WHERE user = type::record($user)
		ORDER BY created_on DESC
		LIMIT $limit
	`
	vars := map[string]interface{}{
		"user":  userID,
		"limit": limit,
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

	entries := make([]*model.CrisisLog, 0, len(rows))
	for _, row := range rows {
		data, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		entries = append(entries, parseCrisisLog(data))
	}
	return entries, nil
}

func parseCrisisLog(data map[string]interface{}) *model.CrisisLog {
	entry := &model.CrisisLog{
		ID:              convertSurrealID(data["id"]),
		UserID:          convertSurrealID(data["user"]),
		CrisisScore:     getInt(data, "crisis_score"),
		Tier:            tierFromString(getString(data, "severity_tier")),
		MatchedKeywords: getStringSlice(data, "keywords_matched"),
		Action:          model.EscalationAction(getString(data, "action_taken")),
		DeliveryStatus:  model.DeliveryStatus(getString(data, "delivery_status")),
	}
	if conversation, ok := data["conversation"]; ok && conversation != nil {
		id := convertSurrealID(conversation)
		if id != "" {
			entry.ConversationID = &id
		}
	}
	if t := getTime(data, "created_on"); t != nil {
		entry.CreatedOn = *t
	}
	return entry
}

func tierFromString(s string) model.CrisisTier {
	switch s {
	case "low":
		return model.TierLow
	case "medium":
		return model.TierMedium
	case "high":
		return model.TierHigh
	}
	return model.TierNone
}
