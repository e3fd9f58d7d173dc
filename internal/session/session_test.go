package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "sessions", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"bolt":   bolt,
	}
}

func TestStore_Contract(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set("live", now.Add(time.Hour)))
			require.NoError(t, store.Set("old", now.Add(-time.Minute)))

			exp, ok, err := store.Get("live")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.True(t, exp.Equal(now.Add(time.Hour)))

			_, ok, err = store.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			removed, err := store.Sweep(now)
			require.NoError(t, err)
			assert.Equal(t, 1, removed)

			_, ok, _ = store.Get("old")
			assert.False(t, ok)

			require.NoError(t, store.Delete("live"))
			_, ok, _ = store.Get("live")
			assert.False(t, ok)
		})
	}
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	exp := time.Now().Add(time.Hour)

	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("token", exp))
	require.NoError(t, store.Close())

	store, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, ok, err := store.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour, zaptest.NewLogger(t))
	now := time.Now()
	m.now = func() time.Time { return now }

	token, err := m.Create()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	require.NoError(t, m.Authenticate(token))
	assert.ErrorIs(t, m.Authenticate(""), ErrInvalidSession)
	assert.ErrorIs(t, m.Authenticate("deadbeef"), ErrInvalidSession)

	// по истечении TTL токен недействителен
	now = now.Add(time.Hour)
	assert.ErrorIs(t, m.Authenticate(token), ErrSessionExpired)
	assert.ErrorIs(t, m.Authenticate(token), ErrInvalidSession)

	require.NoError(t, m.Revoke(other))
	assert.ErrorIs(t, m.Authenticate(other), ErrInvalidSession)
}
