package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/schooldesk/schooldesk/config"
)

var (
	// ErrNoSession means the id is unknown or the session already expired.
	ErrNoSession = errors.New("session: no such session")
	// ErrExpired means the idle timeout elapsed; the caller must re-authenticate.
	ErrExpired = errors.New("session: idle timeout exceeded")
)

// Manager owns the session lifecycle: creation on login, idle-timeout
// enforcement, periodic id rotation against fixation, and destruction on
// logout. The CSRF token is bound to the session and survives id rotation.
type Manager struct {
	store      Store
	idle       time.Duration
	rotate     time.Duration
	cookieName string
	secure     bool
}

func NewManager(store Store, cfg *config.Config) *Manager {
	return &Manager{
		store:      store,
		idle:       cfg.SessionIdle,
		rotate:     cfg.SessionRotate,
		cookieName: cfg.SessionCookieName,
		secure:     cfg.CookieSecure,
	}
}

// NewStore picks the session backend from config.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.SessionBackend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

func newSessionID() string {
	return uuid.NewString()
}

// newCSRFToken returns 32 bytes of entropy, hex encoded.
func newCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create opens a fresh session after a successful login.
func (m *Manager) Create(ctx context.Context, userID uint, username, role string) (string, *Data, error) {
	csrf, err := newCSRFToken()
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	d := &Data{
		UserID:    userID,
		Username:  username,
		Role:      role,
		CSRFToken: csrf,
		CreatedAt: now,
		LastSeen:  now,
		RotatedAt: now,
	}
	id := newSessionID()
	if err := m.store.Save(ctx, id, d, m.idle); err != nil {
		return "", nil, err
	}
	return id, d, nil
}

// Resolve validates the session id, enforces the idle timeout, refreshes the
// last-activity timestamp and rotates the id when due. The returned id differs
// from the input after a rotation; the caller must re-set the cookie then.
func (m *Manager) Resolve(ctx context.Context, id string) (string, *Data, error) {
	d, err := m.store.Load(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if d == nil {
		return "", nil, ErrNoSession
	}

	now := time.Now()
	if now.Sub(d.LastSeen) > m.idle {
		_ = m.store.Delete(ctx, id)
		return "", nil, ErrExpired
	}
	d.LastSeen = now

	if now.Sub(d.RotatedAt) >= m.rotate {
		newID := newSessionID()
		d.RotatedAt = now
		if err := m.store.Save(ctx, newID, d, m.idle); err != nil {
			return "", nil, err
		}
		_ = m.store.Delete(ctx, id)
		return newID, d, nil
	}

	if err := m.store.Save(ctx, id, d, m.idle); err != nil {
		return "", nil, err
	}
	return id, d, nil
}

// Destroy drops all stored state for the session.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

func (m *Manager) CookieName() string { return m.cookieName }

// Cookie builds the HTTP-only session cookie with lifetime = idle timeout.
func (m *Manager) Cookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.idle / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie tells the browser to drop the session cookie.
func (m *Manager) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
