package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

// ErrUnauthenticated covers every admission failure: missing, malformed,
// expired or forged credentials, and credentials whose subject no longer
// exists. Callers must reject the connection before any session is created.
var ErrUnauthenticated = errors.New("unauthenticated")

// IdentityResolver confirms that the token subject still refers to a live
// user and returns its public identity fragment. Implemented by the store.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID string) (state.Identity, error)
}

// Claims is the JWT claims structure issued at login and verified at
// connection admission.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates opaque bearer credentials and resolves them to
// identities. Verification is read-only.
type Verifier struct {
	secret   []byte
	resolver IdentityResolver
	logger   *slog.Logger
}

func NewVerifier(logger *slog.Logger, secret string, resolver IdentityResolver) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		resolver: resolver,
		logger:   logger.With(slog.String("component", "credential_verifier")),
	}
}

// Verify parses and validates a bearer token and resolves its subject to a
// full identity. Every failure collapses into ErrUnauthenticated; the cause
// is logged, not returned, so the client learns nothing beyond the rejection.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (state.Identity, error) {
	if tokenString == "" {
		return state.Identity{}, ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		v.logger.Warn("Rejected invalid credential", slog.Any("error", err))
		return state.Identity{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		v.logger.Warn("Valid token missing 'sub' claim")
		return state.Identity{}, ErrUnauthenticated
	}

	identity, err := v.resolver.ResolveIdentity(ctx, claims.Subject)
	if err != nil {
		v.logger.Warn("Credential subject no longer resolvable",
			slog.String("userID", claims.Subject),
			slog.Any("error", err),
		)
		return state.Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// Issue signs a token for the given user. Used by the login endpoint; the
// realtime layer only ever verifies.
func (v *Verifier) Issue(userID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
