package arenaxauth

import (
	"context"
	"errors"
	"time"

	"github.com/arenax-gg/arenax-auth/session"
)

// CreateSession persists a session record for a pair that was minted with
// [Service.IssueTokenPair]. The record's TTL is the refresh lifetime; once
// it expires the session drops out of listing and monitoring on its own.
func (s *Service) CreateSession(ctx context.Context, sessionID, userID, deviceID string) (*session.SessionInfo, error) {
	if s == nil || s.sessions == nil {
		return nil, ErrServiceNotReady
	}

	now := time.Now().UTC()
	info := &session.SessionInfo{
		SessionID:    sessionID,
		UserID:       userID,
		DeviceID:     deviceID,
		CreatedAt:    now,
		LastAccessed: now,
		RefreshCount: 0,
		IsActive:     true,
	}
	if err := s.sessions.Save(ctx, info, s.config.JWT.RefreshTTL); err != nil {
		return nil, err
	}
	return info, nil
}

// GetSession retrieves a session record by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*session.SessionInfo, error) {
	if s == nil || s.sessions == nil {
		return nil, ErrServiceNotReady
	}

	info, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return info, nil
}

// ListUserSessions returns the user's active sessions. An unknown user
// yields an empty slice, not an error.
func (s *Service) ListUserSessions(ctx context.Context, userID string) ([]session.SessionInfo, error) {
	if s == nil || s.sessions == nil {
		return nil, ErrServiceNotReady
	}
	return s.sessions.ListByUser(ctx, userID)
}

// InvalidateSession removes a single session record. Access tokens already
// issued against it stay cryptographically valid until expiry; revoke them
// individually with [Service.Revoke] when that matters.
func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	if s == nil || s.sessions == nil {
		return ErrServiceNotReady
	}
	return s.sessions.Invalidate(ctx, sessionID)
}

// InvalidateAllUserSessions removes every session owned by the user and
// returns how many were deleted. The logout-everywhere operation.
func (s *Service) InvalidateAllUserSessions(ctx context.Context, userID string) (int, error) {
	if s == nil || s.sessions == nil {
		return 0, ErrServiceNotReady
	}
	return s.sessions.InvalidateAll(ctx, userID)
}

// CleanupExpired sweeps session records idle longer than the refresh
// lifetime and removes them, returning the count. Store TTLs expire records
// on their own; this manual pass exists for reconciliation after TTL
// configuration changes.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	if s == nil || s.sessions == nil {
		return 0, ErrServiceNotReady
	}
	return s.sessions.CleanupStale(ctx, s.config.JWT.RefreshTTL)
}
