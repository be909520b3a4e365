package arenaxauth

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/arenax-gg/arenax-auth/jwt"
	"github.com/arenax-gg/arenax-auth/session"
)

// Builder assembles a [Service]. Configure it once during initialization;
// a Builder is single-use and not safe for concurrent configuration.
type Builder struct {
	config     Config
	redis      redis.UniversalClient
	signingKey []byte

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. Zero-valued fields are filled from
// the defaults at Build time.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the session store and blacklist.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSigningKey sets the initial HMAC signing key.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.signingKey = key
	return b
}

// Build validates the configuration and dependencies and returns a ready
// [Service]. A Builder can build at most once.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := b.config.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if len(b.signingKey) == 0 {
		return nil, errors.New("signing key required")
	}

	// -------- TOKEN CODEC --------
	codec, err := jwt.NewCodec(jwt.Config{
		SigningMethod: cfg.JWT.SigningMethod,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
	})
	if err != nil {
		return nil, err
	}

	// -------- KEYRING --------
	keyring, err := jwt.NewKeyring(b.signingKey, cfg.Rotation.Interval)
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	return &Service{
		config:    cfg,
		codec:     codec,
		keyring:   keyring,
		sessions:  session.NewStore(b.redis),
		blacklist: session.NewBlacklist(b.redis),
		analytics: newAnalytics(),
	}, nil
}
