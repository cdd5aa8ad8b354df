package model

import "time"

// CrisisTier is the discrete keyword-based classification of a message.
// Tiers are ordered; resolution always picks the highest matching tier.
type CrisisTier int

const (
	TierNone CrisisTier = iota
	TierLow
	TierMedium
	TierHigh
)

// String returns the API representation of the tier
func (t CrisisTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	}
	return "none"
}

// MarshalText implements encoding.TextMarshaler for JSON serialization
func (t CrisisTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Sentiment compound thresholds used by the score aggregator
const (
	SentimentStrongNegative   = -0.7
	SentimentModerateNegative = -0.5
)

// CrisisScore bounds
const (
	MinCrisisScore = 0
	MaxCrisisScore = 100
)

// CrisisClassification is the result of classifying one free-text message.
// MatchedKeywords contains only the matches from the tier that determined
// the result; lower-tier matches are not recorded.
type CrisisClassification struct {
	Tier              CrisisTier `json:"severity_tier"`
	CrisisTrigger     bool       `json:"crisis_trigger"`
	MatchedKeywords   []string   `json:"matched_keywords"`
	SentimentCompound float64    `json:"sentiment_compound"`
}

// IsCrisis reports whether any crisis signal is present
func (c *CrisisClassification) IsCrisis() bool {
	return c.Tier != TierNone || c.CrisisTrigger
}

// CrisisLog records a crisis classification and the action taken for audit
type CrisisLog struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	ConversationID  *string          `json:"conversation_id,omitempty"`
	CrisisScore     int              `json:"crisis_score"`
	Tier            CrisisTier       `json:"severity_tier"`
	MatchedKeywords []string         `json:"keywords_matched"`
	Action          EscalationAction `json:"action_taken"`
	DeliveryStatus  DeliveryStatus   `json:"delivery_status,omitempty"`
	CreatedOn       time.Time        `json:"created_on"`
}

// ResourceContact is a crisis helpline entry shown to users
type ResourceContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Kind  string `json:"kind,omitempty"` // hotline, text, chat
}

// SendMessageRequest represents an incoming chat message
type SendMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResult is the classification outcome returned for a chat message
type ChatResult struct {
	SessionID         string            `json:"session_id"`
	Tier              CrisisTier        `json:"severity_tier"`
	CrisisScore       int               `json:"crisis_score"`
	MatchedKeywords   []string          `json:"matched_keywords"`
	Action            EscalationAction  `json:"action"`
	SentimentCompound float64           `json:"sentiment_compound"`
	Resources         []ResourceContact `json:"resources,omitempty"`
}
