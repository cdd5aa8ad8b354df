package jwt

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate RSA key: %v", err)
	}
	return key
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewTestService(testKey(t), "test-issuer", 15*time.Minute)
}

// forgeToken signs arbitrary claims without Sign's stamping of iat/nbf/exp,
// for exercising Validate against claims Sign would never produce.
func forgeToken(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	headerB64 := base64URLEncode([]byte(`{"alg":"RS256","typ":"JWT"}`))
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	message := headerB64 + "." + base64URLEncode(claimsJSON)
	hash := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return message + "." + base64URLEncode(sig)
}

func TestClaims_Valid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		claims  Claims
		wantErr error
	}{
		{"zero times", Claims{UserID: "user:1"}, nil},
		{"live token", Claims{ExpiresAt: now.Add(time.Hour).Unix(), NotBefore: now.Add(-time.Hour).Unix()}, nil},
		{"expired", Claims{ExpiresAt: now.Add(-time.Minute).Unix()}, ErrTokenExpired},
		{"not yet valid", Claims{NotBefore: now.Add(time.Hour).Unix()}, ErrTokenNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.claims.Valid(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Valid() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSign_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Sign(Claims{
		Subject:  "user:1",
		Audience: "haven-app",
		JWTID:    "jti-1",
		Email:    "a@example.com",
		UserID:   "user:1",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Fatalf("token has %d parts, want 3", len(parts))
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Email != "a@example.com" || claims.UserID != "user:1" {
		t.Errorf("custom claims lost: %+v", claims)
	}
	if claims.Subject != "user:1" || claims.Audience != "haven-app" || claims.JWTID != "jti-1" {
		t.Errorf("standard claims lost: %+v", claims)
	}
	if claims.Issuer != "test-issuer" {
		t.Errorf("issuer = %q, want test-issuer", claims.Issuer)
	}
	if claims.IssuedAt == 0 || claims.NotBefore == 0 {
		t.Error("iat/nbf should be stamped by Sign")
	}
}

func TestSign_Expiration(t *testing.T) {
	t.Run("defaults to service expiration", func(t *testing.T) {
		svc := NewTestService(testKey(t), "test-issuer", 30*time.Minute)
		token, err := svc.Sign(Claims{UserID: "user:1"})
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		claims, err := svc.Validate(token)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		want := time.Now().Add(30 * time.Minute).Unix()
		if diff := claims.ExpiresAt - want; diff < -5 || diff > 5 {
			t.Errorf("exp = %d, want about %d", claims.ExpiresAt, want)
		}
	})

	t.Run("keeps explicit expiry", func(t *testing.T) {
		svc := newTestService(t)
		exp := time.Now().Add(2 * time.Hour).Unix()
		token, err := svc.Sign(Claims{UserID: "user:1", ExpiresAt: exp})
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		claims, err := svc.Validate(token)
		if err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if claims.ExpiresAt != exp {
			t.Errorf("exp = %d, want %d", claims.ExpiresAt, exp)
		}
	})
}

func TestSign_NoPrivateKey(t *testing.T) {
	svc := &Service{issuer: "test-issuer"}
	if _, err := svc.Sign(Claims{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Sign without key = %v, want ErrInvalidKey", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	key := testKey(t)
	svc := NewTestService(key, "test-issuer", 15*time.Minute)
	good, err := svc.Sign(Claims{UserID: "user:1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	parts := strings.Split(good, ".")

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", ErrInvalidToken},
		{"two parts", parts[0] + "." + parts[1], ErrInvalidToken},
		{"four parts", good + ".extra", ErrInvalidToken},
		{"garbage signature", parts[0] + "." + parts[1] + ".!!!", ErrInvalidToken},
		{"tampered claims", parts[0] + "." + base64URLEncode([]byte(`{"user_id":"user:999"}`)) + "." + parts[2], ErrInvalidSignature},
		{"expired", forgeToken(t, key, Claims{Issuer: "test-issuer", ExpiresAt: time.Now().Add(-time.Minute).Unix()}), ErrTokenExpired},
		{"not yet valid", forgeToken(t, key, Claims{Issuer: "test-issuer", NotBefore: time.Now().Add(time.Hour).Unix()}), ErrTokenNotYetValid},
		{"wrong issuer", forgeToken(t, key, Claims{Issuer: "someone-else"}), ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.token); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_WrongKey(t *testing.T) {
	signer := newTestService(t)
	verifier := newTestService(t) // different key pair

	token, err := signer.Sign(Claims{UserID: "user:1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("Validate with wrong key = %v, want ErrInvalidSignature", err)
	}
}

func TestValidate_NoPublicKey(t *testing.T) {
	svc := &Service{issuer: "test-issuer"}
	if _, err := svc.Validate("a.b.c"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Validate without key = %v, want ErrInvalidKey", err)
	}
}

func TestGetExpiration(t *testing.T) {
	svc := NewTestService(testKey(t), "test-issuer", 45*time.Minute)
	if got := svc.GetExpiration(); got != 45*time.Minute {
		t.Errorf("GetExpiration = %v, want 45m", got)
	}
}

func TestBase64URL(t *testing.T) {
	t.Run("strips padding", func(t *testing.T) {
		for _, in := range []string{"", "a", "ab", "abc", "abcd"} {
			enc := base64URLEncode([]byte(in))
			if strings.Contains(enc, "=") {
				t.Errorf("encoding of %q contains padding: %q", in, enc)
			}
			dec, err := base64URLDecode(enc)
			if err != nil {
				t.Fatalf("decode %q: %v", enc, err)
			}
			if string(dec) != in {
				t.Errorf("round trip of %q = %q", in, dec)
			}
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		if _, err := base64URLDecode("!!not base64!!"); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestGenerateKeyPair_And_NewService(t *testing.T) {
	dir := t.TempDir()
	privPath := filepath.Join(dir, "jwt_private.pem")
	pubPath := filepath.Join(dir, "jwt_public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	signer, err := NewService(Config{PrivateKeyPath: privPath, Issuer: "haven-api", ExpirationMins: 15})
	if err != nil {
		t.Fatalf("NewService with private key: %v", err)
	}
	token, err := signer.Sign(Claims{UserID: "user:1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// A verification-only service built from the public key alone.
	verifier, err := NewService(Config{PublicKeyPath: pubPath, Issuer: "haven-api"})
	if err != nil {
		t.Fatalf("NewService with public key: %v", err)
	}
	claims, err := verifier.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user:1" {
		t.Errorf("UserID = %q, want user:1", claims.UserID)
	}
	if _, err := verifier.Sign(Claims{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Sign on verification-only service = %v, want ErrInvalidKey", err)
	}
}

func TestNewService_KeyErrors(t *testing.T) {
	dir := t.TempDir()
	badPEM := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(badPEM, []byte("not a pem file"), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing private key file", Config{PrivateKeyPath: filepath.Join(dir, "absent.pem")}},
		{"missing public key file", Config{PublicKeyPath: filepath.Join(dir, "absent.pem")}},
		{"malformed private key", Config{PrivateKeyPath: badPEM}},
		{"malformed public key", Config{PublicKeyPath: badPEM}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewService(tt.cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBase64URLDecode_PaddingVariants(t *testing.T) {
	// len%4 == 2 and == 3 take different padding branches
	for _, raw := range [][]byte{{0x01}, {0x01, 0x02}} {
		enc := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(raw)
		dec, err := base64URLDecode(enc)
		if err != nil {
			t.Fatalf("decode %q: %v", enc, err)
		}
		if len(dec) != len(raw) {
			t.Errorf("decoded %d bytes, want %d", len(dec), len(raw))
		}
	}
}
