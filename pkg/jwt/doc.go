// Package jwt provides JSON Web Token utilities for the Haven API.
//
// The jwt package handles token generation, validation, and claims
// extraction for authentication. Tokens are signed with RS256.
//
// # Token Generation
//
// Generate tokens for authenticated users:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/private.pem",
//	    Issuer:         "haven-api",
//	    ExpirationMins: 15,
//	})
//
//	token, err := service.Sign(jwt.Claims{UserID: userID, Email: email})
//
// # Token Validation
//
// Validate and extract claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// Validation-only deployments may configure just PublicKeyPath.
package jwt
