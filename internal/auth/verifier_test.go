package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/internal/auth"
	"github.com/MuskanHaryah/Intern-Collaboration-Hub-sub001/pkg/state"
)

const testSecret = "test-secret"

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

// fakeResolver resolves a fixed set of users.
type fakeResolver struct {
	users map[string]state.Identity
}

func (f *fakeResolver) ResolveIdentity(_ context.Context, userID string) (state.Identity, error) {
	id, ok := f.users[userID]
	if !ok {
		return state.Identity{}, errors.New("user not found")
	}
	return id, nil
}

func newVerifier() *auth.Verifier {
	resolver := &fakeResolver{users: map[string]state.Identity{
		"user-1": {ID: "user-1", Name: "Ada", Avatar: "ada.png"},
	}}
	return auth.NewVerifier(newTestLogger(), testSecret, resolver)
}

func TestVerifyRoundTrip(t *testing.T) {
	v := newVerifier()
	token, err := v.Issue("user-1", "Ada", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	identity, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if identity.ID != "user-1" || identity.Name != "Ada" || identity.Avatar != "ada.png" {
		t.Errorf("Resolved identity mismatch: %+v", identity)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	v := newVerifier()
	if _, err := v.Verify(context.Background(), ""); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for empty token, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	v := newVerifier()
	token, err := v.Issue("user-1", "Ada", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestVerifyForgedToken(t *testing.T) {
	v := newVerifier()

	claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("failed to sign forged token: %v", err)
	}
	if _, err := v.Verify(context.Background(), forged); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for forged token, got %v", err)
	}
}

func TestVerifyUnknownSubject(t *testing.T) {
	v := newVerifier()
	token, err := v.Issue("deleted-user", "Ghost", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for unknown subject, got %v", err)
	}
}

func TestVerifyMissingSubject(t *testing.T) {
	v := newVerifier()
	claims := auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := v.Verify(context.Background(), token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("Expected ErrUnauthenticated for subject-less token, got %v", err)
	}
}
