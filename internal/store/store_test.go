package store

import (
	"path/filepath"
	"testing"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both implementations must behave the same.
func localStores(t *testing.T) map[string]domain.LocalStore {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "shopfront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]domain.LocalStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	for name, s := range localStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.LoadSession()
			assert.ErrorIs(t, err, domain.ErrNoSession)

			want := &domain.Session{
				Token:    "abc",
				UserName: "ada",
				FullName: "Ada Admin",
				Roles:    []string{"ADMIN", "USER"},
			}
			require.NoError(t, s.SaveSession(want))

			got, err := s.LoadSession()
			require.NoError(t, err)
			assert.Equal(t, want, got)

			want.Token = "def"
			want.Roles = []string{"USER"}
			require.NoError(t, s.SaveSession(want))
			got, err = s.LoadSession()
			require.NoError(t, err)
			assert.Equal(t, "def", got.Token)
			assert.Equal(t, []string{"USER"}, got.Roles)

			require.NoError(t, s.ClearSession())
			_, err = s.LoadSession()
			assert.ErrorIs(t, err, domain.ErrNoSession)
		})
	}
}

func TestCart(t *testing.T) {
	for name, s := range localStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.AddCartItem(&domain.Product{ID: 7, Title: "Sneaker", Price: 59.5})
			require.NoError(t, err)
			second, err := s.AddCartItem(&domain.Product{ID: 9, Title: "Beanie", Price: 12})
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, second.ID)
			assert.Less(t, first.Position, second.Position)

			items, err := s.GetCart()
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, "Sneaker", items[0].Title)
			assert.InDelta(t, 71.5, domain.CartTotal(items), 0.001)

			removed, err := s.RemoveCartItem(first.ID)
			require.NoError(t, err)
			assert.Equal(t, 7, removed.ProductID)

			_, err = s.RemoveCartItem(first.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, s.ClearCart())
			items, err = s.GetCart()
			require.NoError(t, err)
			assert.Empty(t, items)
		})
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopfront.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSession(&domain.Session{Token: "tok", Roles: []string{"USER"}}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, []string{"USER"}, got.Roles)
}
