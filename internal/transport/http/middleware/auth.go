package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwtinfra "github.com/workstation-tools/internal/infrastructure/jwt"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

type clientKey struct{}

// RequireToken rejects requests without a valid bearer token. The token's
// client name is available downstream through Client.
func RequireToken(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				reject(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := v.Verify(tok)
			if err != nil {
				slog.Debug("rejected queue token", "path", r.URL.Path, "error", err)
				reject(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, claims.Client)))
		})
	}
}

// Client returns the client name of the authenticated caller, or "".
func Client(ctx context.Context) string {
	c, _ := ctx.Value(clientKey{}).(string)
	return c
}

// bearer extracts the token from an Authorization header. The scheme is
// case-insensitive.
func bearer(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
