package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/havenhealth/haven/api/internal/model"
)

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	GetBySessionID(ctx context.Context, userID, sessionID string, limit int) ([]*model.Conversation, error)
}

// CrisisLogRepository defines the interface for crisis audit log storage
type CrisisLogRepository interface {
	Create(ctx context.Context, log *model.CrisisLog) error
	GetByUserID(ctx context.Context, userID string, limit int) ([]*model.CrisisLog, error)
}

// ChatService runs incoming messages through classification, scoring, and
// escalation. Classification is the primary obligation: storage and
// escalation collaborators failing degrades the response rather than
// dropping it.
type ChatService struct {
	classifier    *CrisisClassifier
	escalation    *EscalationController
	resources     *ResourceDirectory
	conversations ConversationRepository
	crisisLogs    CrisisLogRepository
	userRepo      UserRepository
}

// ChatServiceConfig holds configuration for the chat service
type ChatServiceConfig struct {
	Classifier    *CrisisClassifier
	Escalation    *EscalationController
	Resources     *ResourceDirectory
	Conversations ConversationRepository
	CrisisLogs    CrisisLogRepository
	UserRepo      UserRepository
}

// NewChatService creates a new chat service
func NewChatService(cfg ChatServiceConfig) *ChatService {
	return &ChatService{
		classifier:    cfg.Classifier,
		escalation:    cfg.Escalation,
		resources:     cfg.Resources,
		conversations: cfg.Conversations,
		crisisLogs:    cfg.CrisisLogs,
		userRepo:      cfg.UserRepo,
	}
}

// SendMessage classifies one chat message and decides the escalation action.
// Invalid messages fail fast; after classification succeeds every downstream
// step is best-effort.
func (s *ChatService) SendMessage(ctx context.Context, userID string, req model.SendMessageRequest) (*model.ChatResult, error) {
	classification, err := s.classifier.Classify(req.Message)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	conversation := &model.Conversation{
		UserID:    userID,
		SessionID: sessionID,
		Sender:    model.SenderUser,
		Text:      req.Message,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		slog.Error("failed to persist conversation message",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}

	score := s.classifier.Aggregate(classification)

	user := s.lookupUser(ctx, userID)

	input := EscalationInput{
		UserID:        userID,
		Tier:          classification.Tier,
		CrisisScore:   score,
		CrisisTrigger: classification.CrisisTrigger,
	}
	if user != nil && user.HasGuardian() {
		input.GuardianPhone = *user.GuardianPhone
	}

	decision, err := s.escalation.Decide(ctx, input)
	if err != nil {
		var collab *CollaboratorError
		if !errors.As(err, &collab) {
			return nil, err
		}
		slog.Error("escalation degraded to resource display",
			slog.String("user_id", userID),
			slog.String("collaborator", collab.Collaborator),
			slog.String("error", collab.Err.Error()))
		decision = s.fallbackDecision(userID, classification, score)
	}

	if classification.IsCrisis() || decision.Action != model.ActionNone {
		s.recordCrisis(ctx, userID, conversation.ID, classification, score, decision)
	}

	result := &model.ChatResult{
		SessionID:         sessionID,
		Tier:              classification.Tier,
		CrisisScore:       score,
		MatchedKeywords:   classification.MatchedKeywords,
		Action:            decision.Action,
		SentimentCompound: classification.SentimentCompound,
	}
	// Every non-none decision carries helpline contacts. In particular a
	// crisis from a user without a consented guardian (log_only) must still
	// surface resources to the person at risk.
	if decision.Action != model.ActionNone {
		region := ""
		if user != nil {
			region = user.Region
		}
		result.Resources = s.resources.ContactsFor(region)
	}
	return result, nil
}

// History returns the messages of one chat session, oldest first
func (s *ChatService) History(ctx context.Context, userID, sessionID string, limit int) ([]*model.Conversation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.conversations.GetBySessionID(ctx, userID, sessionID, limit)
}

// CrisisHistory returns the user's recent crisis log entries, newest first
func (s *ChatService) CrisisHistory(ctx context.Context, userID string, limit int) ([]*model.CrisisLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.crisisLogs.GetByUserID(ctx, userID, limit)
}

func (s *ChatService) lookupUser(ctx context.Context, userID string) *model.User {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		slog.Error("user lookup failed during chat classification",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
		return nil
	}
	return user
}

// fallbackDecision stands in when the escalation state store is unreachable.
// A crisis still shows resources; it never silently becomes a non-event.
func (s *ChatService) fallbackDecision(userID string, cl *model.CrisisClassification, score int) *model.EscalationDecision {
	action := model.ActionNone
	if cl.IsCrisis() {
		action = model.ActionShowResources
	}
	return &model.EscalationDecision{
		ID:            uuid.NewString(),
		UserID:        userID,
		Action:        action,
		Tier:          cl.Tier,
		CrisisScore:   score,
		CrisisTrigger: cl.CrisisTrigger,
	}
}

func (s *ChatService) recordCrisis(ctx context.Context, userID, conversationID string, cl *model.CrisisClassification, score int, decision *model.EscalationDecision) {
	entry := &model.CrisisLog{
		UserID:          userID,
		CrisisScore:     score,
		Tier:            cl.Tier,
		MatchedKeywords: cl.MatchedKeywords,
		Action:          decision.Action,
		DeliveryStatus:  decision.DeliveryStatus,
	}
	if conversationID != "" {
		entry.ConversationID = &conversationID
	}
	if err := s.crisisLogs.Create(ctx, entry); err != nil {
		slog.Error("failed to persist crisis log entry",
			slog.String("user_id", userID),
			slog.String("error", err.Error()))
	}
}
