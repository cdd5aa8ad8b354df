package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/havenhealth/haven/api/internal/cache"
	"github.com/havenhealth/haven/api/internal/config"
	"github.com/havenhealth/haven/api/internal/database"
	"github.com/havenhealth/haven/api/internal/handler"
	"github.com/havenhealth/haven/api/internal/middleware"
	"github.com/havenhealth/haven/api/internal/repository"
	"github.com/havenhealth/haven/api/internal/service"
	"github.com/havenhealth/haven/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Load the risk engine configuration. A missing file at the default path
	// falls back to the built-in defaults; a present but invalid file is fatal
	// so a broken deploy never runs with the wrong keyword tiers.
	engine := loadEngine(cfg.Engine.Path)

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize Redis for the escalation state store and OTP store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	slog.Info("connected to redis", slog.String("addr", cfg.Redis.Addr))

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	crisisLogRepo := repository.NewCrisisLogRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		TokenRepo:  tokenRepo,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
		OTPStore:     cache.NewOTPCache(redisClient),
	})

	classifier := service.NewCrisisClassifier(service.CrisisClassifierConfig{
		Engine:    engine,
		Sentiment: service.NewLexiconSentiment(),
	})

	escalation := service.NewEscalationController(service.EscalationControllerConfig{
		Store:          cache.NewEscalationStateCache(redisClient),
		Notifier:       service.NewLogNotifier(),
		Cooldown:       cfg.Escalation.CooldownDuration,
		ScoreThreshold: cfg.Escalation.ScoreThreshold,
	})

	resources := service.NewResourceDirectory(engine)

	assessmentService := service.NewAssessmentService(service.AssessmentServiceConfig{
		Engine:     engine,
		Repo:       assessmentRepo,
		UserRepo:   userRepo,
		Escalation: escalation,
	})

	chatService := service.NewChatService(service.ChatServiceConfig{
		Classifier:    classifier,
		Escalation:    escalation,
		Resources:     resources,
		Conversations: conversationRepo,
		CrisisLogs:    crisisLogRepo,
		UserRepo:      userRepo,
	})

	// Periodically prune refresh tokens that expired or stayed revoked
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-janitorCtx.Done():
				return
			case <-ticker.C:
				if err := tokenRepo.DeleteExpiredTokens(janitorCtx); err != nil {
					slog.Error("expired token cleanup failed", slog.String("error", err.Error()))
				}
				if err := tokenRepo.CleanupRevokedTokens(janitorCtx); err != nil {
					slog.Error("revoked token cleanup failed", slog.String("error", err.Error()))
				}
			}
		}
	}()

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100,
		Window: time.Minute,
		Burst:  20,
	})
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService)
	chatHandler := handler.NewChatHandler(chatService)
	resourceHandler := handler.NewResourceHandler(resources)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.Health)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// Auth endpoints (protected)
	authMiddleware := middleware.Auth(authService)
	mux.Handle("POST /v1/auth/logout", authMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("DELETE /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.DeleteAccount)))
	mux.Handle("POST /v1/auth/verify-email", authMiddleware(http.HandlerFunc(authHandler.VerifyEmail)))
	mux.Handle("POST /v1/auth/verify-email/request", authMiddleware(http.HandlerFunc(authHandler.RequestEmailVerification)))
	mux.Handle("PUT /v1/auth/guardian", authMiddleware(http.HandlerFunc(authHandler.UpdateGuardian)))

	// Assessment endpoints
	mux.Handle("POST /v1/assessments", authMiddleware(http.HandlerFunc(assessmentHandler.Submit)))
	mux.Handle("GET /v1/assessments", authMiddleware(http.HandlerFunc(assessmentHandler.History)))

	// Chat classification endpoints
	mux.Handle("POST /v1/chat/messages", authMiddleware(http.HandlerFunc(chatHandler.SendMessage)))
	mux.Handle("GET /v1/chat/sessions/{sessionID}", authMiddleware(http.HandlerFunc(chatHandler.History)))
	mux.Handle("GET /v1/chat/crisis-events", authMiddleware(http.HandlerFunc(chatHandler.CrisisHistory)))

	// Resource directory (public; callers in crisis may not be logged in)
	mux.HandleFunc("GET /v1/resources", resourceHandler.List)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

func loadEngine(path string) *config.EngineConfig {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		slog.Warn("engine config not found, using built-in defaults",
			slog.String("path", path))
		return config.DefaultEngine()
	}

	engine, err := config.LoadEngine(path)
	if err != nil {
		slog.Error("failed to load engine config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("loaded engine config", slog.String("path", path))
	return engine
}
