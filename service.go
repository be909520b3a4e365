package arenaxauth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/arenax-gg/arenax-auth/jwt"
	"github.com/arenax-gg/arenax-auth/session"
)

// Service is the credential issuance and session-lifecycle engine. Construct
// it through [Builder.Build]; the zero value is not usable.
//
// All methods are safe for concurrent use.
type Service struct {
	config    Config
	codec     *jwt.Codec
	keyring   *jwt.Keyring
	sessions  *session.Store
	blacklist *session.Blacklist
	analytics *analytics
}

// IssueTokenPair mints an access and refresh token bound to the given
// user, device, and permission set. The two tokens share a freshly minted
// session id and carry distinct jtis; refresh_count starts at zero.
//
// Issuance is pure computation plus signing. Nothing is persisted; use
// [Service.Issue] when the session record should be created alongside.
func (s *Service) IssueTokenPair(userID, deviceID string, permissions []string) (*TokenPair, error) {
	if s == nil || s.codec == nil || s.keyring == nil {
		return nil, ErrServiceNotReady
	}
	template := &jwt.Claims{
		SessionID:   uuid.NewString(),
		DeviceID:    deviceID,
		Permissions: permissions,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject: userID,
		},
	}
	return s.mintPair(template)
}

// Issue mints a token pair and persists the matching session record so the
// session is immediately visible to listing, invalidation, and abuse
// monitoring. The record's TTL is the refresh lifetime.
func (s *Service) Issue(ctx context.Context, userID, deviceID string, permissions []string) (*TokenPair, *session.SessionInfo, error) {
	pair, err := s.IssueTokenPair(userID, deviceID, permissions)
	if err != nil {
		return nil, nil, err
	}

	claims, verr := s.codec.Verify(pair.AccessToken, s.keyring.SigningKey())
	if verr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, verr)
	}

	now := time.Now().UTC()
	info := &session.SessionInfo{
		SessionID:    claims.SessionID,
		UserID:       userID,
		DeviceID:     deviceID,
		CreatedAt:    now,
		LastAccessed: now,
		RefreshCount: 0,
		IsActive:     true,
	}
	if err := s.sessions.Save(ctx, info, s.config.JWT.RefreshTTL); err != nil {
		return nil, nil, err
	}
	return pair, info, nil
}

// Validate verifies a token of either kind end to end: signature under the
// current key with one-generation fallback, revocation, and expiry. Kind
// enforcement belongs to the call sites; the refresh path and the HTTP
// guard each accept only their own kind. On success the session's
// last_accessed is bumped best-effort; a failed bump never fails the
// validation.
func (s *Service) Validate(ctx context.Context, tokenStr string) (*jwt.Claims, error) {
	if s == nil || s.codec == nil || s.keyring == nil {
		return nil, ErrServiceNotReady
	}

	claims, expired, err := s.verifyWithFallback(tokenStr)
	if err != nil {
		s.analytics.failedValidation()
		return nil, err
	}

	// Revocation is checked before expiry so a revoked token reports
	// blacklisted consistently for its whole natural lifetime.
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		s.analytics.failedValidation()
		return nil, ErrTokenBlacklisted
	}

	if expired {
		s.analytics.failedValidation()
		return nil, ErrTokenExpired
	}

	if err := s.sessions.Touch(ctx, claims.SessionID, s.config.JWT.RefreshTTL); err != nil {
		log.Print("arenaxauth: session touch failed: ", err)
	}

	return claims, nil
}

// Refresh exchanges a valid, unused refresh token for a fresh pair. The
// presented token is burned atomically before the replacement is minted, so
// of N concurrent refreshes with the same token exactly one succeeds and
// the rest observe [ErrTokenBlacklisted].
//
// The new pair keeps the session id, device id, and permissions of the old
// one; refresh_count increments by one. When the presented token has
// already reached the configured limit it is revoked and
// [ErrMaxRefreshExceeded] returned, ending the chain.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if s == nil || s.codec == nil || s.keyring == nil {
		return nil, ErrServiceNotReady
	}
	s.analytics.refreshAttempt()

	claims, expired, err := s.verifyWithFallback(refreshToken)
	if err != nil {
		return nil, err
	}

	// A previously revoked token reports blacklisted ahead of the kind,
	// expiry, and limit checks, same as the validation path.
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenBlacklisted
	}

	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: wrong token type %q", ErrTokenInvalid, claims.TokenType)
	}
	if expired {
		return nil, ErrRefreshTokenExpired
	}

	if claims.RefreshCount >= s.config.JWT.MaxRefreshCount {
		// Burn the exhausted token so the chain cannot be retried.
		if rerr := s.blacklist.Revoke(ctx, claims.ID, s.config.JWT.RefreshTTL); rerr != nil {
			return nil, rerr
		}
		return nil, ErrMaxRefreshExceeded
	}

	// Single-use enforcement: burning the presented token is the first
	// store write, so concurrent exchanges race on one SETNX and the loser
	// never reaches minting.
	first, err := s.blacklist.RevokeOnce(ctx, claims.ID, s.config.JWT.RefreshTTL)
	if err != nil {
		return nil, err
	}
	if !first {
		return nil, ErrTokenBlacklisted
	}

	template := &jwt.Claims{
		SessionID:    claims.SessionID,
		DeviceID:     claims.DeviceID,
		RefreshCount: claims.RefreshCount + 1,
		Permissions:  claims.Permissions,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject: claims.Subject,
		},
	}
	pair, err := s.mintPair(template)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SetRefreshCount(ctx, claims.SessionID, claims.RefreshCount+1, s.config.JWT.RefreshTTL); err != nil {
		log.Print("arenaxauth: refresh count mirror update failed: ", err)
	}

	return pair, nil
}

// Revoke blacklists a token until its natural expiry window closes. The
// token must be authentic under one of the current verification keys;
// expired-but-authentic tokens are still accepted so a stolen token can be
// revoked at any time.
func (s *Service) Revoke(ctx context.Context, tokenStr string) error {
	if s == nil || s.codec == nil || s.keyring == nil {
		return ErrServiceNotReady
	}

	claims, _, err := s.verifyWithFallback(tokenStr)
	if err != nil {
		return err
	}
	return s.blacklist.Revoke(ctx, claims.ID, s.config.JWT.RefreshTTL)
}

// mintPair signs an access and a refresh token from the shared claims
// template under the current signing key.
func (s *Service) mintPair(template *jwt.Claims) (*TokenPair, error) {
	now := time.Now()
	key := s.keyring.SigningKey()

	access := *template
	access.TokenType = jwt.TokenTypeAccess
	access.ID = uuid.NewString()
	access.Issuer = s.config.JWT.Issuer
	access.Audience = jwtlib.ClaimStrings{s.config.JWT.Audience}
	access.IssuedAt = jwtlib.NewNumericDate(now)
	access.ExpiresAt = jwtlib.NewNumericDate(now.Add(s.config.JWT.AccessTTL))

	refresh := *template
	refresh.TokenType = jwt.TokenTypeRefresh
	refresh.ID = uuid.NewString()
	refresh.Issuer = s.config.JWT.Issuer
	refresh.Audience = jwtlib.ClaimStrings{s.config.JWT.Audience}
	refresh.IssuedAt = jwtlib.NewNumericDate(now)
	refresh.ExpiresAt = jwtlib.NewNumericDate(now.Add(s.config.JWT.RefreshTTL))

	accessToken, err := s.codec.Issue(&access, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	refreshToken, err := s.codec.Issue(&refresh, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	s.analytics.tokenIssued(2)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTTL.Seconds()),
		TokenType:    schemeBearer,
	}, nil
}

// verifyWithFallback decodes and authenticates a token against the ordered
// verification keys: current first, then the previous key when one exists.
// It stops at the first key that authenticates the token, even when the
// token turns out to be expired, so an expired-but-authentic token is never
// misreported as invalid. The boolean reports expiry.
func (s *Service) verifyWithFallback(tokenStr string) (*jwt.Claims, bool, error) {
	var lastErr error
	for _, key := range s.keyring.VerificationKeys() {
		claims, err := s.codec.Verify(tokenStr, key)
		switch {
		case err == nil:
			return claims, false, nil
		case errors.Is(err, jwt.ErrExpired):
			return claims, true, nil
		default:
			lastErr = err
		}
	}
	return nil, false, fmt.Errorf("%w: %v", ErrTokenInvalid, lastErr)
}
