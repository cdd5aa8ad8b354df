package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:"

// OTPCache stores email verification codes with a TTL. Expiry is delegated
// to Redis; an expired code simply reads back as absent.
type OTPCache struct {
	client *redis.Client
}

// NewOTPCache creates an OTP store on an existing Redis client
func NewOTPCache(client *redis.Client) *OTPCache {
	return &OTPCache{client: client}
}

// Set stores a verification code, replacing any previous one
func (c *OTPCache) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	return c.client.Set(ctx, otpKeyPrefix+email, code, ttl).Err()
}

// Get returns the stored code, empty when absent or expired
func (c *OTPCache) Get(ctx context.Context, email string) (string, error) {
	code, err := c.client.Get(ctx, otpKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Delete removes a code after successful verification
func (c *OTPCache) Delete(ctx context.Context, email string) error {
	return c.client.Del(ctx, otpKeyPrefix+email).Err()
}
