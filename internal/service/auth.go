package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/havenhealth/haven/api/internal/model"
	"github.com/havenhealth/haven/api/pkg/jwt"
)

const (
	// bcrypt cost factor (10-14 recommended for production)
	bcryptCost = 12

	// Password constraints
	minPasswordLength = 8
	maxPasswordLength = 128

	otpLength = 6
	otpTTL    = 10 * time.Minute
)

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID, hash string) error
	UpdateGuardian(ctx context.Context, userID string, phone *string, consent bool) error
	Delete(ctx context.Context, id string) error
	SetEmailVerified(ctx context.Context, userID string, verified bool) error
}

// OTPStore holds short-lived email verification codes
type OTPStore interface {
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error) // empty when absent or expired
	Delete(ctx context.Context, email string) error
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo     UserRepository
	tokenService *TokenService
	otpStore     OTPStore
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
	OTPStore     OTPStore
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
		otpStore:     cfg.OTPStore,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email           string
	Password        string
	Name            string
	Region          string
	GuardianPhone   string
	GuardianConsent bool
}

// RegisterResult represents a successful registration
type RegisterResult struct {
	User      *model.User
	TokenPair *TokenPair
}

// Register creates a new user account with email/password. A guardian phone
// is optional at registration; when present it is validated, but alerts stay
// off until consent is recorded alongside it.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	// Validate email
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	// Validate password
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	guardianPhone := strings.TrimSpace(req.GuardianPhone)
	if guardianPhone != "" && !isValidPhone(guardianPhone) {
		return nil, ErrInvalidPhone
	}

	// Check if email already exists
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, ErrEmailAlreadyExists
	}

	// Hash password
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Create user
	user := &model.User{
		Email:           email,
		Hash:            &hash,
		Name:            stringPtr(strings.TrimSpace(req.Name)),
		Region:          strings.TrimSpace(strings.ToLower(req.Region)),
		GuardianPhone:   stringPtr(guardianPhone),
		GuardianConsent: req.GuardianConsent && guardianPhone != "",
		EmailVerified:   false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Issue a verification code; registration succeeds even if the OTP store
	// is down, the code can be re-requested
	if err := s.issueVerificationCode(ctx, email); err != nil {
		slog.Error("failed to issue verification code",
			slog.String("email", email),
			slog.String("error", err.Error()))
	}

	// Generate tokens
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult represents a successful login
type LoginResult struct {
	User      *model.User
	TokenPair *TokenPair
}

// Login authenticates a user with email/password
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	// Find user by email
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if user.Hash == nil || *user.Hash == "" {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if !checkPassword(req.Password, *user.Hash) {
		return nil, ErrInvalidCredentials
	}

	// Generate tokens
	tokenPair, err := s.tokenService.GenerateTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:      user,
		TokenPair: tokenPair,
	}, nil
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// RequestEmailVerification issues a fresh verification code for a user
func (s *AuthService) RequestEmailVerification(ctx context.Context, userID string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.issueVerificationCode(ctx, user.Email)
}

// VerifyEmail checks a verification code and marks the user's email verified.
// Codes are single-use.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, code string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	stored, err := s.otpStore.Get(ctx, user.Email)
	if err != nil {
		return &CollaboratorError{Collaborator: "otp store", Err: err}
	}
	if stored == "" {
		return ErrOTPExpired
	}
	if stored != strings.TrimSpace(code) {
		return ErrOTPInvalid
	}

	if err := s.otpStore.Delete(ctx, user.Email); err != nil {
		slog.Warn("failed to delete used verification code",
			slog.String("error", err.Error()))
	}
	return s.userRepo.SetEmailVerified(ctx, userID, true)
}

// UpdateGuardian sets or clears the user's guardian contact. A nil phone
// clears the guardian and withdraws consent.
func (s *AuthService) UpdateGuardian(ctx context.Context, userID string, phone *string, consent bool) (*model.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var normalized *string
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		if trimmed != "" {
			if !isValidPhone(trimmed) {
				return nil, ErrInvalidPhone
			}
			normalized = &trimmed
		}
	}
	if normalized == nil {
		consent = false
	}

	if err := s.userRepo.UpdateGuardian(ctx, userID, normalized, consent); err != nil {
		return nil, err
	}

	user.GuardianPhone = normalized
	user.GuardianConsent = consent
	return user, nil
}

// RefreshTokens validates a refresh token and issues new tokens
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	// Get stored token to find user ID
	tokenHash := hashToken(refreshToken)
	storedToken, err := s.tokenService.tokenRepo.GetRefreshTokenByHash(ctx, tokenHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if storedToken == nil {
		return nil, ErrInvalidRefreshToken
	}

	// Get user
	user, err := s.userRepo.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Refresh tokens (handles validation and rotation)
	return s.tokenService.RefreshTokens(ctx, refreshToken, user)
}

// Logout revokes the user's refresh tokens
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}

// ValidateAccessToken validates an access token and returns the claims
func (s *AuthService) ValidateAccessToken(token string) (*jwt.Claims, error) {
	return s.tokenService.ValidateAccessToken(token)
}

// DeleteAccount permanently erases the user and everything stored about
// them. The repository removes dependent records in the same transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	_ = s.otpStore.Delete(ctx, user.Email)
	slog.Info("account deleted", slog.String("user_id", userID))
	return nil
}

// ChangePassword changes a user's password
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	// Verify old password if user has one
	if user.Hash != nil && *user.Hash != "" {
		if !checkPassword(oldPassword, *user.Hash) {
			return ErrInvalidCredentials
		}
	}

	// Validate new password
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	// Hash new password
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	// Update password and revoke all tokens (force re-login)
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	return s.tokenService.RevokeAllUserTokens(ctx, userID)
}

// issueVerificationCode generates and stores an OTP, then "delivers" it via
// the log. A mail gateway replaces the log line in production.
func (s *AuthService) issueVerificationCode(ctx context.Context, email string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otpStore.Set(ctx, email, code, otpTTL); err != nil {
		return &CollaboratorError{Collaborator: "otp store", Err: err}
	}
	slog.Info("verification code issued", slog.String("email", email))
	return nil
}

// Helper functions

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

func isValidEmail(email string) bool {
	// Basic email validation
	if email == "" {
		return false
	}
	if len(email) > 254 {
		return false
	}
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	dotIndex := strings.LastIndex(email, ".")
	if dotIndex < atIndex+2 {
		return false
	}
	if dotIndex >= len(email)-1 {
		return false
	}
	return true
}

// isValidPhone accepts E.164-ish numbers with common separators
func isValidPhone(phone string) bool {
	if len(phone) < 7 || len(phone) > 20 {
		return false
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}

func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
