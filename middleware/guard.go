package middleware

import (
	"context"
	"net/http"
	"strings"

	arenaxauth "github.com/arenax-gg/arenax-auth"
	"github.com/arenax-gg/arenax-auth/jwt"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the validated claims injected by [Guard], if
// any.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok
}

// Guard returns middleware that rejects requests without a valid bearer
// access token. Validated claims additionally pass the service's claim
// policy before the request proceeds.
func Guard(service *arenaxauth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if service == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := service.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// Only access tokens authorize API calls.
			if claims.TokenType != jwt.TokenTypeAccess {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if err := service.EnforceSecurityPolicy(claims); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
