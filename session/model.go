package session

import "time"

// SessionInfo is the server-side record for one logical session. It is
// created when a token pair is first issued, touched on every successful
// validation, and deleted on logout, refresh abuse, or staleness cleanup.
// Access and refresh tokens of a pair both reference it by SessionID.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	RefreshCount uint32    `json:"refresh_count"`
	IsActive     bool      `json:"is_active"`
}
