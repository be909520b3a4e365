package arenaxauth

import (
	"errors"
	"time"

	"github.com/arenax-gg/arenax-auth/jwt"
)

// Config fixes the service's token and session policy. It is supplied once
// at construction and immutable for the process lifetime; only key material
// changes afterwards, through [Service.RotateKeys].
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Rotation RotationConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls token lifetimes, signing, and the refresh limit.
type JWTConfig struct {
	AccessTTL     time.Duration     // default 1 hour
	RefreshTTL    time.Duration     // default 7 days
	SigningMethod jwt.SigningMethod // default hs256
	Issuer        string            // default "arenax"
	Audience      string            // default "arenax-users"

	// MaxRefreshCount caps completed refresh cycles per session. Zero is
	// the unset sentinel and normalizes to the default of 5; a no-refresh
	// policy is expressed by never exposing the refresh token, not by a
	// zero limit.
	MaxRefreshCount uint32
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session-level security policy.
type SessionConfig struct {
	// MaxSessionSpan caps exp-iat on access-token claims, independent of
	// the refresh-lifetime TTL used for storage. Default 24 hours.
	MaxSessionSpan time.Duration
}

/*
====================================
ROTATION CONFIG
====================================
*/

// RotationConfig controls the signing-key rotation cadence.
type RotationConfig struct {
	Interval time.Duration // default 30 days
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:       time.Hour,
			RefreshTTL:      7 * 24 * time.Hour,
			SigningMethod:   jwt.MethodHS256,
			Issuer:          "arenax",
			Audience:        "arenax-users",
			MaxRefreshCount: 5,
		},
		Session: SessionConfig{
			MaxSessionSpan: 24 * time.Hour,
		},
		Rotation: RotationConfig{
			Interval: jwt.DefaultRotationInterval,
		},
	}
}

// normalized fills zero-valued fields from the defaults so partial configs
// stay usable.
func (c Config) normalized() Config {
	def := defaultConfig()
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = def.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = def.JWT.RefreshTTL
	}
	if c.JWT.SigningMethod == "" {
		c.JWT.SigningMethod = def.JWT.SigningMethod
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = def.JWT.Issuer
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = def.JWT.Audience
	}
	if c.JWT.MaxRefreshCount == 0 {
		c.JWT.MaxRefreshCount = def.JWT.MaxRefreshCount
	}
	if c.Session.MaxSessionSpan == 0 {
		c.Session.MaxSessionSpan = def.Session.MaxSessionSpan
	}
	if c.Rotation.Interval == 0 {
		c.Rotation.Interval = def.Rotation.Interval
	}
	return c
}

func (c Config) validate() error {
	if c.JWT.AccessTTL < 0 || c.JWT.RefreshTTL < 0 {
		return errors.New("invalid TTL configuration")
	}
	if c.JWT.RefreshTTL > 0 && c.JWT.AccessTTL > c.JWT.RefreshTTL {
		return errors.New("access TTL must not exceed refresh TTL")
	}
	if c.Session.MaxSessionSpan < 0 {
		return errors.New("invalid max session span")
	}
	if c.Rotation.Interval < 0 {
		return errors.New("invalid rotation interval")
	}
	return nil
}
