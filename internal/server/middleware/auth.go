package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// CredentialVerifier resolves a bearer credential to an identity or fails.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (state.Identity, error)
}

// NewAuthMiddleware gates the websocket handshake: a connection is admitted
// only once its credential resolves to a live identity. Every failure is a
// plain 401 before any session state exists.
func NewAuthMiddleware(logger *slog.Logger, verifier CredentialVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// couldn't extract metadata from request so something went wrong with previous middlewares
			reqMeta, ok := ReqMetadataFrom(r.Context())
			if !ok {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			token := bearerToken(r)
			if token == "" {
				logger.Warn("No credential attached to request", slog.String("ip", reqMeta.IP))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("Rejected connection attempt",
					slog.String("ip", reqMeta.IP),
					slog.Any("error", err),
				)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			reqMeta.Identity = identity
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential from the Authorization header, or from
// the token query parameter since browsers cannot set headers on a websocket
// handshake.
func bearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
