// Package middleware provides HTTP middleware for the Haven API.
//
// The middleware package contains reusable middleware components for
// authentication, rate limiting, and request processing.
//
// # Available Middleware
//
// Core middleware components:
//
//   - Auth: JWT token validation and user extraction
//   - RateLimit: per-user (or per-IP) request rate limiting
//   - RequestID: unique request identifier propagation
//   - Logger: structured request logging via slog
//   - Recovery: panic recovery with a JSON 500 response
//   - CORS: cross-origin request handling
//
// # Authentication
//
// The auth middleware validates JWT access tokens and places the
// authenticated user in the request context:
//
//	handler = middleware.Chain(handler, middleware.Auth(authService))
//
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//
// # Rate Limiting
//
// Rate limiting protects the chat and assessment endpoints from abuse.
// Authenticated requests are keyed by user ID, anonymous requests by
// remote address:
//
//	handler = middleware.Chain(handler, middleware.RateLimit(limiter))
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): returns the authenticated user ID
//   - GetUserEmail(ctx): returns the authenticated user email
//   - GetRequestID(ctx): returns the unique request identifier
package middleware
