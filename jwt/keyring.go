package jwt

import (
	"errors"
	"sync"
	"time"
)

// DefaultRotationInterval is the cadence after which ShouldRotate reports
// true.
const DefaultRotationInterval = 30 * 24 * time.Hour

// Rotation keeps at most the current key plus one predecessor.
const maxVerificationKeys = 2

// ErrEmptyKey rejects rotation or construction with empty key material.
var ErrEmptyKey = errors.New("empty signing key")

// Keyring holds the active signing key and, after a rotation, the
// immediately preceding one. Verification tries the keys in order, which is
// what keeps tokens signed before a rotation valid until the next rotation
// overwrites the previous slot.
//
// Reads are lock-shared and frequent; Rotate is the single writer and a
// reader always observes a consistent (current, previous) pair.
type Keyring struct {
	mu           sync.RWMutex
	keys         [][]byte // keys[0] is current; keys[1], when present, the previous key
	interval     time.Duration
	lastRotation time.Time
}

// NewKeyring seeds the ring with the initial signing key. A non-positive
// interval falls back to [DefaultRotationInterval].
func NewKeyring(initial []byte, interval time.Duration) (*Keyring, error) {
	if len(initial) == 0 {
		return nil, ErrEmptyKey
	}
	if interval <= 0 {
		interval = DefaultRotationInterval
	}
	return &Keyring{
		keys:         [][]byte{cloneKey(initial)},
		interval:     interval,
		lastRotation: time.Now(),
	}, nil
}

// ShouldRotate reports whether the rotation interval has elapsed since the
// last rotation.
func (k *Keyring) ShouldRotate() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return time.Since(k.lastRotation) > k.interval
}

// Rotate installs newKey as current, shifts the old current key into the
// previous slot (overwriting whatever was there), and resets the rotation
// clock. Rotation does not revoke outstanding tokens; the verify fallback
// keeps them valid until their natural expiry or the next rotation.
func (k *Keyring) Rotate(newKey []byte) error {
	if len(newKey) == 0 {
		return ErrEmptyKey
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	next := make([][]byte, 0, maxVerificationKeys)
	next = append(next, cloneKey(newKey))
	next = append(next, k.keys[0])
	k.keys = next
	k.lastRotation = time.Now()
	return nil
}

// SigningKey returns a copy of the current signing key.
func (k *Keyring) SigningKey() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return cloneKey(k.keys[0])
}

// PreviousKey returns a copy of the previous signing key, or nil before the
// first rotation.
func (k *Keyring) PreviousKey() []byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.keys) < maxVerificationKeys {
		return nil
	}
	return cloneKey(k.keys[1])
}

// VerificationKeys returns the keys to try in order: current first, then the
// previous key when one exists. The snapshot is taken under the read lock so
// a concurrent Rotate can never produce a half-updated pair.
func (k *Keyring) VerificationKeys() [][]byte {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([][]byte, len(k.keys))
	for i, key := range k.keys {
		out[i] = cloneKey(key)
	}
	return out
}

// LastRotation returns when the ring was last rotated (or created).
func (k *Keyring) LastRotation() time.Time {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.lastRotation
}

func cloneKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)
	return out
}
