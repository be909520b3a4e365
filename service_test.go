package arenaxauth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arenax-gg/arenax-auth/jwt"
)

func TestIssueTokenPairClaims(t *testing.T) {
	svc, _ := newTestService(t, nil)

	pair, err := svc.IssueTokenPair("u-1", "device-1", []string{"play", "chat"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Fatalf("expected Bearer scheme, got %q", pair.TokenType)
	}
	if pair.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("expected expires_in 3600, got %d", pair.ExpiresIn)
	}

	key := svc.keyring.SigningKey()
	access, err := svc.codec.Verify(pair.AccessToken, key)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	refresh, err := svc.codec.Verify(pair.RefreshToken, key)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}

	if access.TokenType != jwt.TokenTypeAccess || refresh.TokenType != jwt.TokenTypeRefresh {
		t.Fatalf("token types wrong: %q / %q", access.TokenType, refresh.TokenType)
	}
	if access.SessionID == "" || access.SessionID != refresh.SessionID {
		t.Fatalf("pair must share a session id: %q / %q", access.SessionID, refresh.SessionID)
	}
	if access.ID == refresh.ID {
		t.Fatal("pair must carry distinct jtis")
	}
	if access.RefreshCount != 0 || refresh.RefreshCount != 0 {
		t.Fatalf("fresh pair must start at refresh count 0: %d / %d", access.RefreshCount, refresh.RefreshCount)
	}
	if access.Subject != "u-1" || access.DeviceID != "device-1" {
		t.Fatalf("identity fields lost: %+v", access)
	}
	if len(access.Permissions) != 2 {
		t.Fatalf("permissions lost: %v", access.Permissions)
	}
	if access.Issuer != "arenax" || len(access.Audience) != 1 || access.Audience[0] != "arenax-users" {
		t.Fatalf("issuer/audience wrong: %q %v", access.Issuer, access.Audience)
	}

	accessTTL := access.ExpiresAt.Sub(access.IssuedAt.Time)
	refreshTTL := refresh.ExpiresAt.Sub(refresh.IssuedAt.Time)
	if accessTTL != time.Hour {
		t.Fatalf("expected 1h access lifetime, got %s", accessTTL)
	}
	if refreshTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d refresh lifetime, got %s", refreshTTL)
	}
}

func TestIssuePersistsSession(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, info, err := svc.Issue(ctx, "u-1", "device-1", []string{"play"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if info.UserID != "u-1" || !info.IsActive || info.RefreshCount != 0 {
		t.Fatalf("unexpected session record: %+v", info)
	}

	got, err := svc.GetSession(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.SessionID != info.SessionID {
		t.Fatalf("session id mismatch: %q vs %q", got.SessionID, info.SessionID)
	}

	claims, err := svc.Validate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.SessionID != info.SessionID {
		t.Fatalf("token and record disagree on session id")
	}
}

func TestValidateAcceptsBothKinds(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	access, err := svc.Validate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access: %v", err)
	}
	if access.TokenType != jwt.TokenTypeAccess {
		t.Fatalf("expected Access kind, got %q", access.TokenType)
	}

	refresh, err := svc.Validate(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if refresh.TokenType != jwt.TokenTypeRefresh {
		t.Fatalf("expected Refresh kind, got %q", refresh.TokenType)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if _, err := svc.Validate(context.Background(), "not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	now := time.Now()

	token := mintToken(t, svc, craftedClaims(svc, jwt.TokenTypeAccess,
		now.Add(-2*time.Hour), now.Add(-time.Hour)))

	if _, err := svc.Validate(context.Background(), token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateRevokedToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Validate(ctx, pair.AccessToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted, got %v", err)
	}
}

func TestRevokedWinsOverExpired(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	token := mintToken(t, svc, craftedClaims(svc, jwt.TokenTypeAccess,
		now.Add(-2*time.Hour), now.Add(-time.Hour)))

	// Revocation accepts expired-but-authentic tokens.
	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke expired token: %v", err)
	}
	if _, err := svc.Validate(ctx, token); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted for revoked expired token, got %v", err)
	}
}

func TestRotationKeepsPreviousGenerationValid(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.RotateKeys([]byte("generation-two-0123456789abcdef")); err != nil {
		t.Fatalf("first rotation: %v", err)
	}
	if _, err := svc.Validate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("token from previous generation must validate, got %v", err)
	}

	if err := svc.RotateKeys([]byte("generation-three-0123456789abcde")); err != nil {
		t.Fatalf("second rotation: %v", err)
	}
	if _, err := svc.Validate(ctx, pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("token two generations back must be invalid, got %v", err)
	}
}

func TestRevocationSurvivesRotation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, pair.AccessToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := svc.RotateKeys([]byte("generation-two-0123456789abcdef")); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := svc.Validate(ctx, pair.AccessToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted after rotation, got %v", err)
	}
}

func TestRotateKeysRejectsEmptyKey(t *testing.T) {
	svc, _ := newTestService(t, nil)

	if err := svc.RotateKeys(nil); !errors.Is(err, ErrKeyRotationInvalid) {
		t.Fatalf("expected ErrKeyRotationInvalid, got %v", err)
	}
}

func TestShouldRotateKeys(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.Rotation.Interval = time.Nanosecond
	})
	time.Sleep(time.Millisecond)
	if !svc.ShouldRotateKeys() {
		t.Fatal("expected rotation due after interval elapsed")
	}

	fresh, _ := newTestService(t, nil)
	if fresh.ShouldRotateKeys() {
		t.Fatal("expected no rotation due inside a 30d interval")
	}
}

func TestNewTokensSignedWithRotatedKey(t *testing.T) {
	svc, _ := newTestService(t, nil)
	newKey := []byte("generation-two-0123456789abcdef")

	if err := svc.RotateKeys(newKey); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	pair, err := svc.IssueTokenPair("u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.codec.Verify(pair.AccessToken, newKey); err != nil {
		t.Fatalf("new tokens must be signed with the rotated key: %v", err)
	}
}
