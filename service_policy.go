package arenaxauth

import (
	"fmt"
	"log"

	"github.com/arenax-gg/arenax-auth/jwt"
)

// EnforceSecurityPolicy applies claim-level policy beyond cryptographic
// validity. It assumes claims already passed [Service.Validate].
//
// Policy violations are terminal; an empty permission list is suspicious
// but legitimate for freshly registered users, so it is only logged.
func (s *Service) EnforceSecurityPolicy(claims *jwt.Claims) error {
	if s == nil {
		return ErrServiceNotReady
	}
	if claims == nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return fmt.Errorf("%w: missing timestamps", ErrInvalidClaims)
	}

	span := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if span > s.config.Session.MaxSessionSpan {
		return fmt.Errorf("%w: session span %s exceeds maximum %s",
			ErrInvalidClaims, span, s.config.Session.MaxSessionSpan)
	}

	if claims.RefreshCount > s.config.JWT.MaxRefreshCount {
		return fmt.Errorf("%w: refresh count %d", ErrMaxRefreshExceeded, claims.RefreshCount)
	}

	if len(claims.Permissions) == 0 {
		log.Print("arenaxauth: token with empty permissions for user ", claims.Subject)
	}

	return nil
}
