package arenaxauth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/arenax-gg/arenax-auth/jwt"
)

func newTestService(t *testing.T, mutate func(*Config)) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := defaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithSigningKey([]byte("test-signing-key-0123456789abcd")).
		Build()
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, mr
}

// mintToken signs arbitrary claims under the service's current key so tests
// can craft tokens the public API would never produce.
func mintToken(t *testing.T, s *Service, claims *jwt.Claims) string {
	t.Helper()
	token, err := s.codec.Issue(claims, s.keyring.SigningKey())
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func craftedClaims(s *Service, tokenType jwt.TokenType, issuedAt, expiresAt time.Time) *jwt.Claims {
	return &jwt.Claims{
		TokenType:   tokenType,
		SessionID:   uuid.NewString(),
		DeviceID:    "device-1",
		Permissions: []string{"play"},
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "u-crafted",
			ID:        uuid.NewString(),
			Issuer:    s.config.JWT.Issuer,
			Audience:  jwtlib.ClaimStrings{s.config.JWT.Audience},
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
	}
}
