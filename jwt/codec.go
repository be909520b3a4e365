package jwt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the symmetric signature algorithm fixed at service
// construction.
type SigningMethod string

const (
	// MethodHS256 is the default signing method.
	MethodHS256 SigningMethod = "hs256"
	// MethodHS384 selects HMAC-SHA384.
	MethodHS384 SigningMethod = "hs384"
	// MethodHS512 selects HMAC-SHA512.
	MethodHS512 SigningMethod = "hs512"
)

// TokenType distinguishes short-lived access tokens from long-lived,
// single-use refresh tokens.
type TokenType string

const (
	// TokenTypeAccess marks a token that authorizes API calls.
	TokenTypeAccess TokenType = "Access"
	// TokenTypeRefresh marks a token exchanged for a new pair.
	TokenTypeRefresh TokenType = "Refresh"
)

var (
	// ErrInvalid is returned for malformed input, signature mismatches, and
	// issuer or audience violations.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned for authentic tokens past their expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the payload embedded in and cryptographically bound to every
// token. Access and refresh tokens minted together share session_id and
// permissions but differ in token_type, jti, and expiry.
type Claims struct {
	TokenType    TokenType `json:"token_type"`
	SessionID    string    `json:"session_id"`
	DeviceID     string    `json:"device_id,omitempty"`
	RefreshCount uint32    `json:"refresh_count"`
	Permissions  []string  `json:"permissions"`
	jwt.RegisteredClaims
}

// Config fixes the codec's verification policy. All fields are required and
// immutable for the process lifetime.
type Config struct {
	SigningMethod SigningMethod
	Issuer        string
	Audience      string
}

// Codec encodes and decodes signed compact tokens. Safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a ready codec.
func NewCodec(cfg Config) (*Codec, error) {
	switch cfg.SigningMethod {
	case MethodHS256, MethodHS384, MethodHS512:
	default:
		return nil, errors.New("unsupported signing method")
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("audience is required")
	}
	return &Codec{config: cfg}, nil
}

// Issue serializes claims and signs them with key, returning the compact
// three-segment representation.
func (c *Codec) Issue(claims *Claims, key []byte) (string, error) {
	if len(key) == 0 {
		return "", errors.New("empty signing key")
	}
	return jwt.NewWithClaims(c.method(), claims).SignedString(key)
}

// Verify checks structure, signature, issuer, and audience under key.
//
// Expired-but-authentic tokens return the decoded claims alongside
// [ErrExpired] so callers can distinguish expiry from forgery; every other
// failure is [ErrInvalid]. Expiry is additionally re-checked by the lifecycle
// layer against its own clock.
func (c *Codec) Verify(tokenStr string, key []byte) (*Claims, error) {
	// Fail fast on anything that is not three dot-separated segments.
	if strings.Count(tokenStr, ".") != 2 {
		return nil, fmt.Errorf("%w: malformed compact serialization", ErrInvalid)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithIssuer(c.config.Issuer),
		jwt.WithAudience(c.config.Audience),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		// A joined error can carry expiry alongside a signature or claim
		// violation; anything beyond pure expiry means the token is invalid.
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenInvalidIssuer),
			errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return claims, ErrExpired
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	if !token.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (c *Codec) method() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodHS384:
		return jwt.SigningMethodHS384
	case MethodHS512:
		return jwt.SigningMethodHS512
	default:
		return jwt.SigningMethodHS256
	}
}
