package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chartsight/internal/cache"
	"chartsight/internal/config"
)

func testSessionManager() *SessionManager {
	return NewSessionManager(cache.NewMemoryStore(), config.SessionConfig{
		Secret:      "test-secret",
		CookieName:  "cs_session",
		TTL:         time.Hour,
		RememberTTL: 720 * time.Hour,
	})
}

func TestSession_CreateAndResolve(t *testing.T) {
	m := testSessionManager()
	value, ttl, err := m.Create(context.Background(), 42, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ttl != time.Hour {
		t.Fatalf("ttl=%v want=1h", ttl)
	}
	if !strings.Contains(value, ".") {
		t.Fatalf("cookie value=%q want token.signature shape", value)
	}

	userID, err := m.Resolve(context.Background(), value)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if userID != 42 {
		t.Fatalf("userID=%d want=42", userID)
	}
}

func TestSession_RememberExtendsTTL(t *testing.T) {
	m := testSessionManager()
	_, ttl, err := m.Create(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ttl != 720*time.Hour {
		t.Fatalf("ttl=%v want=720h for remember", ttl)
	}
}

func TestSession_TamperedCookieRejected(t *testing.T) {
	m := testSessionManager()
	value, _, err := m.Create(context.Background(), 42, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	token, _, _ := strings.Cut(value, ".")

	cases := []string{
		token,
		token + ".",
		token + ".deadbeef",
		"aaaa" + value[4:],
		".only-signature",
		"",
	}
	for _, c := range cases {
		if _, err := m.Resolve(context.Background(), c); !errors.Is(err, ErrNoSession) {
			t.Fatalf("Resolve(%q) err=%v want=ErrNoSession", c, err)
		}
	}
}

func TestSession_SignatureFromOtherSecretRejected(t *testing.T) {
	m := testSessionManager()
	value, _, err := m.Create(context.Background(), 42, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	token, _, _ := strings.Cut(value, ".")

	other := testSessionManager()
	other.Secret = "different-secret"
	forged := token + "." + other.sign(token)
	if _, err := m.Resolve(context.Background(), forged); !errors.Is(err, ErrNoSession) {
		t.Fatalf("forged cookie resolved, err=%v", err)
	}
}

func TestSession_Destroy(t *testing.T) {
	m := testSessionManager()
	value, _, err := m.Create(context.Background(), 42, false)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Destroy(context.Background(), value); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := m.Resolve(context.Background(), value); !errors.Is(err, ErrNoSession) {
		t.Fatalf("destroyed session still resolves, err=%v", err)
	}
	// Destroying again is a no-op.
	if err := m.Destroy(context.Background(), value); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
}
