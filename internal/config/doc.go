// Package config manages application configuration for the Haven API.
//
// The config package loads and validates configuration from environment variables,
// plus the static classification engine configuration from a YAML file.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Environment configuration is loaded once at startup:
//
//	cfg, _ := config.Load()
//	if err := cfg.Validate(); err != nil { ... } // refuse to start
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts)
//   - DatabaseConfig: SurrealDB connection settings
//   - RedisConfig: Redis settings for the escalation state and OTP stores
//   - JWTConfig: JWT signing and validation settings
//   - EscalationConfig: cooldown duration and crisis-score threshold
//
// # Engine Configuration
//
// The classification engine's keyword tiers, severity breakpoints, scoring
// weights, and resource directory live in a YAML file loaded via LoadEngine.
// The result is immutable after startup; a missing or malformed file is an
// EngineError and fatal. DefaultEngine provides the built-in configuration
// with the published PHQ-9/GAD-7 cutoffs.
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT                 - HTTP server port (default: 8080)
//	DB_HOST / DB_PORT           - SurrealDB endpoint
//	REDIS_ADDR                  - Redis endpoint (default: localhost:6379)
//	JWT_PRIVATE_KEY_PATH        - RSA private key for token signing
//	ESCALATION_COOLDOWN         - minimum time between guardian alerts (default: 24h)
//	ESCALATION_SCORE_THRESHOLD  - crisis score that triggers escalation (default: 70)
//	ENGINE_CONFIG_PATH          - path to the engine YAML file
package config
