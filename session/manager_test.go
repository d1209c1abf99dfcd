package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/schooldesk/config"
)

func newTestManager(idle, rotate time.Duration) *Manager {
	return NewManager(NewMemoryStore(), &config.Config{
		SessionIdle:       idle,
		SessionRotate:     rotate,
		SessionCookieName: "test_session",
	})
}

func TestManagerCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(30*time.Minute, 10*time.Minute)

	id, d, err := mgr.Create(ctx, 7, "alice", "teacher")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, d.CSRFToken, 64) // 32 bytes hex encoded

	got, d2, err := mgr.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, uint(7), d2.UserID)
	assert.Equal(t, "teacher", d2.Role)
	assert.Equal(t, d.CSRFToken, d2.CSRFToken)
}

func TestManagerUnknownSession(t *testing.T) {
	mgr := newTestManager(30*time.Minute, 10*time.Minute)
	_, _, err := mgr.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerIdleTimeout(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(30*time.Minute, 10*time.Minute)

	id, _, err := mgr.Create(ctx, 1, "bob", "student")
	require.NoError(t, err)

	// age the session past the idle timeout
	store := mgr.store.(*MemoryStore)
	store.mu.Lock()
	e := store.sessions[id]
	e.data.LastSeen = time.Now().Add(-31 * time.Minute)
	store.sessions[id] = e
	store.mu.Unlock()

	_, _, err = mgr.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrExpired)

	// expired session is gone for good
	_, _, err = mgr.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManagerRotation(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(30*time.Minute, 10*time.Minute)

	id, d, err := mgr.Create(ctx, 1, "bob", "student")
	require.NoError(t, err)

	store := mgr.store.(*MemoryStore)
	store.mu.Lock()
	e := store.sessions[id]
	e.data.RotatedAt = time.Now().Add(-11 * time.Minute)
	store.sessions[id] = e
	store.mu.Unlock()

	newID, d2, err := mgr.Resolve(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, id, newID, "session id must rotate")
	assert.Equal(t, d.CSRFToken, d2.CSRFToken, "csrf token survives rotation")

	// old id no longer resolves
	_, _, err = mgr.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)

	// new id does
	_, _, err = mgr.Resolve(ctx, newID)
	assert.NoError(t, err)
}

func TestManagerDestroy(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(30*time.Minute, 10*time.Minute)

	id, _, err := mgr.Create(ctx, 1, "bob", "student")
	require.NoError(t, err)
	require.NoError(t, mgr.Destroy(ctx, id))

	_, _, err = mgr.Resolve(ctx, id)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCookie(t *testing.T) {
	mgr := newTestManager(30*time.Minute, 10*time.Minute)

	ck := mgr.Cookie("abc")
	assert.Equal(t, "test_session", ck.Name)
	assert.Equal(t, 1800, ck.MaxAge)
	assert.True(t, ck.HttpOnly)

	gone := mgr.ExpiredCookie()
	assert.Equal(t, -1, gone.MaxAge)
	assert.Empty(t, gone.Value)
}
