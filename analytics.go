package arenaxauth

import (
	"context"
	"sync/atomic"
	"time"
)

// Abuse-detection policy constants. These are deliberately not
// configuration: thresholds chosen by callers would hand abusers a knob.
const (
	maxConcurrentSessions = 10
	rapidRefreshThreshold = 5
	rapidRefreshWindow    = 5 * time.Minute
)

// analytics carries the service's usage counters and gauges. Counters are
// independently synchronized atomics so concurrent request handlers never
// serialize on a shared lock; gauges are only ever reconciled against the
// authoritative store, since revocation and cleanup can happen outside the
// issuing process.
type analytics struct {
	tokensIssued      atomic.Uint64
	refreshAttempts   atomic.Uint64
	failedValidations atomic.Uint64
	activeSessions    atomic.Uint64
	blacklistedTokens atomic.Uint64
	lastUpdated       atomic.Int64 // unix seconds
}

func newAnalytics() *analytics {
	a := &analytics{}
	a.lastUpdated.Store(time.Now().Unix())
	return a
}

func (a *analytics) tokenIssued(n uint64) {
	a.tokensIssued.Add(n)
	a.lastUpdated.Store(time.Now().Unix())
}

func (a *analytics) refreshAttempt() {
	a.refreshAttempts.Add(1)
	a.lastUpdated.Store(time.Now().Unix())
}

func (a *analytics) failedValidation() {
	a.failedValidations.Add(1)
	a.lastUpdated.Store(time.Now().Unix())
}

// AnalyticsSnapshot is a point-in-time view of the service's counters and
// gauges.
type AnalyticsSnapshot struct {
	TokensIssued      uint64
	RefreshAttempts   uint64
	FailedValidations uint64
	ActiveSessions    uint64
	BlacklistedTokens uint64
	LastUpdated       time.Time
}

// AnalyticsSnapshot returns the current counters and the gauges as of the
// last reconciliation.
func (s *Service) AnalyticsSnapshot() AnalyticsSnapshot {
	if s == nil || s.analytics == nil {
		return AnalyticsSnapshot{}
	}
	a := s.analytics
	return AnalyticsSnapshot{
		TokensIssued:      a.tokensIssued.Load(),
		RefreshAttempts:   a.refreshAttempts.Load(),
		FailedValidations: a.failedValidations.Load(),
		ActiveSessions:    a.activeSessions.Load(),
		BlacklistedTokens: a.blacklistedTokens.Load(),
		LastUpdated:       time.Unix(a.lastUpdated.Load(), 0),
	}
}

// RefreshAnalytics recomputes the active-session and blacklisted-token
// gauges by re-enumerating the store. Reconciliation is authoritative, not
// incremental: the gauges can drift whenever sessions expire or another
// process revokes tokens.
func (s *Service) RefreshAnalytics(ctx context.Context) error {
	if s == nil || s.sessions == nil || s.blacklist == nil {
		return ErrServiceNotReady
	}

	active, err := s.sessions.CountSessions(ctx)
	if err != nil {
		return err
	}
	revoked, err := s.blacklist.Count(ctx)
	if err != nil {
		return err
	}

	s.analytics.activeSessions.Store(uint64(active))
	s.analytics.blacklistedTokens.Store(uint64(revoked))
	s.analytics.lastUpdated.Store(time.Now().Unix())
	return nil
}

// MonitorSuspiciousActivity flags a user with more than 10 concurrently
// active sessions, or more than 5 sessions touched within the last five
// minutes (a rapid-refresh abuse signature).
func (s *Service) MonitorSuspiciousActivity(ctx context.Context, userID string) (bool, error) {
	if s == nil || s.sessions == nil {
		return false, ErrServiceNotReady
	}

	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if len(sessions) > maxConcurrentSessions {
		return true, nil
	}

	recent := 0
	cutoff := time.Now().Add(-rapidRefreshWindow)
	for _, sess := range sessions {
		if sess.LastAccessed.After(cutoff) {
			recent++
		}
	}
	return recent > rapidRefreshThreshold, nil
}
