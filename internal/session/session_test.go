package session

import (
	"errors"
	"testing"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	m, err := New(s, nil)
	require.NoError(t, err)
	return m, s
}

func TestNewWithoutSavedSession(t *testing.T) {
	m, _ := newManager(t)

	assert.False(t, m.Authenticated())
	assert.Empty(t, m.Token())
	assert.Nil(t, m.Current())
	assert.Equal(t, LoginPath, m.Landing())
}

func TestNewRestoresSavedSession(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.SaveSession(&domain.Session{Token: "t", FullName: "Sam", Roles: []string{"USER"}}))

	m, err := New(s, nil)

	require.NoError(t, err)
	assert.Equal(t, "t", m.Token())
	assert.Equal(t, "Sam", m.FullName())
	assert.Equal(t, ShopLanding, m.Landing())
}

func TestBeginSavesAndRoutesAdmins(t *testing.T) {
	m, s := newManager(t)

	require.NoError(t, m.Begin(&domain.Session{Token: "a", Roles: []string{"ADMIN", "USER"}}))

	assert.True(t, m.HasRole(domain.RoleAdmin))
	assert.True(t, m.HasRole("user"))
	assert.Equal(t, []string{"ADMIN", "USER"}, m.Roles())
	assert.Equal(t, AdminLanding, m.Landing())

	saved, err := s.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "a", saved.Token)
}

func TestHandleUnauthorizedClearsAndNotifies(t *testing.T) {
	m, s := newManager(t)
	require.NoError(t, m.Begin(&domain.Session{Token: "a"}))

	var seen []error
	m.OnUnauthorized(func(err error) { seen = append(seen, err) })

	m.HandleUnauthorized(domain.ErrUnauthorized)

	assert.False(t, m.Authenticated())
	_, err := s.LoadSession()
	assert.ErrorIs(t, err, domain.ErrNoSession)
	require.Len(t, seen, 1)
	assert.True(t, errors.Is(seen[0], domain.ErrUnauthorized))
}

func TestOnUnauthorizedKeepsOneObserver(t *testing.T) {
	m, _ := newManager(t)
	var first, second int
	m.OnUnauthorized(func(error) { first++ })
	m.OnUnauthorized(func(error) { second++ })

	m.HandleUnauthorized(domain.ErrUnauthorized)

	assert.Zero(t, first)
	assert.Equal(t, 1, second)
}
