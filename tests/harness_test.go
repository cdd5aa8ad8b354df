package tests

// Shared in-memory fixtures for the acceptance suites. Each harness wires
// the full service stack against in-process stores so scenarios run without
// a live SurrealDB or Redis.

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/model"
	"github.com/havenhealth/haven/api/internal/service"
	"github.com/havenhealth/haven/api/pkg/jwt"
)

// ============================================================================
// In-memory stores
// ============================================================================

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = "user:" + uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedOn = now
	user.UpdatedOn = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return nil
	}
	stored.Email = user.Email
	stored.Name = user.Name
	stored.Region = user.Region
	stored.EmailVerified = user.EmailVerified
	stored.UpdatedOn = time.Now().UTC()
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[userID]; ok {
		stored.Hash = &hash
	}
	return nil
}

func (r *memUserRepo) UpdateGuardian(ctx context.Context, userID string, phone *string, consent bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[userID]; ok {
		stored.GuardianPhone = phone
		stored.GuardianConsent = consent
	}
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) SetEmailVerified(ctx context.Context, userID string, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[userID]; ok {
		stored.EmailVerified = verified
	}
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*service.RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*service.RefreshToken)}
}

func (r *memTokenRepo) CreateRefreshToken(ctx context.Context, token *service.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = "token:" + uuid.NewString()
	}
	copied := *token
	r.tokens[token.TokenHash] = &copied
	return nil
}

func (r *memTokenRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (*service.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[hash]
	if !ok {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

func (r *memTokenRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.tokens[hash]; ok {
		token.Revoked = true
	}
	return nil
}

func (r *memTokenRepo) RevokeAllUserTokens(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (r *memTokenRepo) DeleteExpiredTokens(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for hash, token := range r.tokens {
		if token.ExpiresAt.Before(now) {
			delete(r.tokens, hash)
		}
	}
	return nil
}

type memOTPStore struct {
	mu    sync.Mutex
	codes map[string]string
}

func newMemOTPStore() *memOTPStore {
	return &memOTPStore{codes: make(map[string]string)}
}

func (s *memOTPStore) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = code
	return nil
}

func (s *memOTPStore) Get(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email], nil
}

func (s *memOTPStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

type memAssessmentRepo struct {
	mu          sync.Mutex
	assessments []*model.Assessment
}

func newMemAssessmentRepo() *memAssessmentRepo {
	return &memAssessmentRepo{}
}

func (r *memAssessmentRepo) Create(ctx context.Context, assessment *model.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assessment.ID == "" {
		assessment.ID = "assessment:" + uuid.NewString()
	}
	assessment.CreatedOn = time.Now().UTC()
	copied := *assessment
	r.assessments = append(r.assessments, &copied)
	return nil
}

func (r *memAssessmentRepo) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Assessment
	for _, a := range r.assessments {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memConversationRepo struct {
	mu       sync.Mutex
	messages []*model.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{}
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *model.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conversation.ID == "" {
		conversation.ID = "conversation:" + uuid.NewString()
	}
	conversation.CreatedOn = time.Now().UTC()
	copied := *conversation
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *memConversationRepo) GetBySessionID(ctx context.Context, userID, sessionID string, limit int) ([]*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Conversation
	for _, m := range r.messages {
		if m.UserID == userID && m.SessionID == sessionID {
			copied := *m
			out = append(out, &copied)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCrisisLogRepo struct {
	mu   sync.Mutex
	logs []*model.CrisisLog
}

func newMemCrisisLogRepo() *memCrisisLogRepo {
	return &memCrisisLogRepo{}
}

func (r *memCrisisLogRepo) Create(ctx context.Context, log *model.CrisisLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = "crisis_log:" + uuid.NewString()
	}
	log.CreatedOn = time.Now().UTC()
	copied := *log
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *memCrisisLogRepo) GetByUserID(ctx context.Context, userID string, limit int) ([]*model.CrisisLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.CrisisLog
	for _, l := range r.logs {
		if l.UserID == userID {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// captureNotifier records every guardian alert it is asked to deliver
type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *captureNotifier) Send(ctx context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, phone)
	return nil
}

func (n *captureNotifier) alerts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

// ============================================================================
// Harness
// ============================================================================

type harness struct {
	users         *memUserRepo
	tokens        *memTokenRepo
	otps          *memOTPStore
	assessments   *memAssessmentRepo
	conversations *memConversationRepo
	crisisLogs    *memCrisisLogRepo
	notifier      *captureNotifier

	auth       *service.AuthService
	assessment *service.AssessmentService
	chat       *service.ChatService
	resources  *service.ResourceDirectory
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	h := &harness{
		users:         newMemUserRepo(),
		tokens:        newMemTokenRepo(),
		otps:          newMemOTPStore(),
		assessments:   newMemAssessmentRepo(),
		conversations: newMemConversationRepo(),
		crisisLogs:    newMemCrisisLogRepo(),
		notifier:      &captureNotifier{},
	}

	engine := config.DefaultEngine()

	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwt.NewTestService(privateKey, "test.havenhealth.app", 15*time.Minute),
		TokenRepo:  h.tokens,
	})

	h.auth = service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     h.users,
		TokenService: tokenService,
		OTPStore:     h.otps,
	})

	classifier := service.NewCrisisClassifier(service.CrisisClassifierConfig{
		Engine:    engine,
		Sentiment: service.NewLexiconSentiment(),
	})

	escalation := service.NewEscalationController(service.EscalationControllerConfig{
		Store:    service.NewMemoryStateStore(),
		Notifier: h.notifier,
	})

	h.resources = service.NewResourceDirectory(engine)

	h.assessment = service.NewAssessmentService(service.AssessmentServiceConfig{
		Engine:     engine,
		Repo:       h.assessments,
		UserRepo:   h.users,
		Escalation: escalation,
	})

	h.chat = service.NewChatService(service.ChatServiceConfig{
		Classifier:    classifier,
		Escalation:    escalation,
		Resources:     h.resources,
		Conversations: h.conversations,
		CrisisLogs:    h.crisisLogs,
		UserRepo:      h.users,
	})

	return h
}

// registerUser creates an account through the auth service and returns the
// persisted user.
func (h *harness) registerUser(t *testing.T, email, guardianPhone string, consent bool) *model.User {
	t.Helper()
	result, err := h.auth.Register(context.Background(), service.RegisterRequest{
		Email:           email,
		Password:        "correct-horse-battery",
		Name:            "Test User",
		Region:          "india",
		GuardianPhone:   guardianPhone,
		GuardianConsent: consent,
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	return result.User
}
