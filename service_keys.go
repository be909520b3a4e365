package arenaxauth

import (
	"errors"
	"fmt"

	"github.com/arenax-gg/arenax-auth/jwt"
)

// RotateKeys installs newKey as the signing key and demotes the current key
// to verification-only. Tokens signed under the demoted key stay valid until
// their expiry or the next rotation, whichever comes first; a second
// rotation drops it entirely.
func (s *Service) RotateKeys(newKey []byte) error {
	if s == nil || s.keyring == nil {
		return ErrServiceNotReady
	}
	if err := s.keyring.Rotate(newKey); err != nil {
		if errors.Is(err, jwt.ErrEmptyKey) {
			return fmt.Errorf("%w: %v", ErrKeyRotationInvalid, err)
		}
		return err
	}
	return nil
}

// ShouldRotateKeys reports whether the configured rotation interval has
// elapsed since the last rotation. Advisory only; the caller decides when
// to actually rotate.
func (s *Service) ShouldRotateKeys() bool {
	if s == nil || s.keyring == nil {
		return false
	}
	return s.keyring.ShouldRotate()
}
