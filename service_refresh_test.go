package arenaxauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arenax-gg/arenax-auth/jwt"
)

func TestRefreshMintsNewPair(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, info, err := svc.Issue(ctx, "u-1", "device-1", []string{"play"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.AccessToken == pair.AccessToken || next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh must mint new tokens")
	}

	claims, err := svc.Validate(ctx, next.AccessToken)
	if err != nil {
		t.Fatalf("validate new access token: %v", err)
	}
	if claims.SessionID != info.SessionID {
		t.Fatal("refreshed pair must keep the session id")
	}
	if claims.RefreshCount != 1 {
		t.Fatalf("expected refresh count 1, got %d", claims.RefreshCount)
	}
	if claims.DeviceID != "device-1" || len(claims.Permissions) != 1 {
		t.Fatalf("refresh must carry device and permissions forward: %+v", claims)
	}

	sess, err := svc.GetSession(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.RefreshCount != 1 {
		t.Fatalf("session mirror not updated, got %d", sess.RefreshCount)
	}
}

func TestRefreshBurnsPresentedToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted on replay, got %v", err)
	}
	if _, err := svc.Validate(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected burned token to fail validation, got %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token on the refresh path, got %v", err)
	}
}

func TestRefreshRevokedExpiredTokenReportsBlacklisted(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	now := time.Now()

	token := mintToken(t, svc, craftedClaims(svc, jwt.TokenTypeRefresh,
		now.Add(-8*24*time.Hour), now.Add(-time.Hour)))

	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// Revocation wins over expiry on the refresh path too.
	if _, err := svc.Refresh(ctx, token); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted for revoked expired token, got %v", err)
	}
}

func TestRefreshExhaustedTokenReplayReportsBlacklisted(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.JWT.MaxRefreshCount = 1
	})
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// The first attempt at the limit burns the token and reports the limit.
	if _, err := svc.Refresh(ctx, second.RefreshToken); !errors.Is(err, ErrMaxRefreshExceeded) {
		t.Fatalf("expected ErrMaxRefreshExceeded, got %v", err)
	}
	// Every later attempt sees the burned token, not the limit again.
	if _, err := svc.Refresh(ctx, second.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected ErrTokenBlacklisted on replay, got %v", err)
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	now := time.Now()

	token := mintToken(t, svc, craftedClaims(svc, jwt.TokenTypeRefresh,
		now.Add(-8*24*time.Hour), now.Add(-time.Hour)))

	if _, err := svc.Refresh(context.Background(), token); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefreshChainExhaustsAtLimit(t *testing.T) {
	svc, _ := newTestService(t, func(cfg *Config) {
		cfg.JWT.MaxRefreshCount = 2
	})
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Two exchanges reach the limit.
	second, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	third, err := svc.Refresh(ctx, second.RefreshToken)
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	if _, err := svc.Refresh(ctx, third.RefreshToken); !errors.Is(err, ErrMaxRefreshExceeded) {
		t.Fatalf("expected ErrMaxRefreshExceeded, got %v", err)
	}

	// The exhausted token is revoked on the way out.
	if _, err := svc.Validate(ctx, third.RefreshToken); !errors.Is(err, ErrTokenBlacklisted) {
		t.Fatalf("expected exhausted token blacklisted, got %v", err)
	}
}

func TestRefreshConcurrentSingleUse(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const workers = 16
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		successes   int
		blacklisted int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrTokenBlacklisted):
				blacklisted++
			default:
				t.Errorf("unexpected refresh error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}
	if blacklisted != workers-1 {
		t.Fatalf("expected %d blacklisted losers, got %d", workers-1, blacklisted)
	}
}

func TestRefreshedTokenValidAcrossRotation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	pair, _, err := svc.Issue(ctx, "u-1", "device-1", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.RotateKeys([]byte("generation-two-0123456789abcdef")); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	// The old refresh token still verifies under the previous key and the
	// replacement is signed with the new one.
	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh across rotation: %v", err)
	}
	if _, err := svc.Validate(ctx, next.AccessToken); err != nil {
		t.Fatalf("validate refreshed token: %v", err)
	}
}
