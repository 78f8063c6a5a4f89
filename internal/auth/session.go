package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"chartsight/internal/cache"
	"chartsight/internal/config"
)

const sessionKeyPrefix = "sess:"

var ErrNoSession = errors.New("session not found")

// SessionManager issues opaque session tokens backed by the cache store and
// delivers them as HMAC-signed cookie values ("<token>.<signature>"). The
// store's TTL is the single source of session expiry.
type SessionManager struct {
	Store       cache.Store
	Secret      string
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

func NewSessionManager(store cache.Store, cfg config.SessionConfig) *SessionManager {
	return &SessionManager{
		Store:       store,
		Secret:      cfg.Secret,
		CookieName:  cfg.CookieName,
		TTL:         cfg.TTL,
		RememberTTL: cfg.RememberTTL,
		Secure:      cfg.Secure,
	}
}

// Create opens a session for the user and returns the signed cookie value
// together with the TTL the cookie should carry.
func (m *SessionManager) Create(ctx context.Context, userID uint64, remember bool) (string, time.Duration, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", 0, err
	}
	token := hex.EncodeToString(raw)

	ttl := m.TTL
	if remember && m.RememberTTL > ttl {
		ttl = m.RememberTTL
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	value := []byte(strconv.FormatUint(userID, 10))
	if err := m.Store.Set(ctx, sessionKeyPrefix+token, value, ttl); err != nil {
		return "", 0, err
	}
	return token + "." + m.sign(token), ttl, nil
}

// Resolve maps a signed cookie value back to the owning user id.
// Tampered or unknown cookies yield ErrNoSession, never a store lookup.
func (m *SessionManager) Resolve(ctx context.Context, cookieValue string) (uint64, error) {
	token, sig, ok := strings.Cut(cookieValue, ".")
	if !ok || token == "" {
		return 0, ErrNoSession
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(token))) {
		return 0, ErrNoSession
	}
	value, found, err := m.Store.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNoSession
	}
	userID, err := strconv.ParseUint(string(value), 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrNoSession
	}
	return userID, nil
}

// Destroy drops the session behind a cookie value. Unknown cookies are a no-op.
func (m *SessionManager) Destroy(ctx context.Context, cookieValue string) error {
	token, _, ok := strings.Cut(cookieValue, ".")
	if !ok || token == "" {
		return nil
	}
	return m.Store.Delete(ctx, sessionKeyPrefix+token)
}

func (m *SessionManager) sign(token string) string {
	mac := hmac.New(sha256.New, []byte(m.Secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
