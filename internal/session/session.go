// Package session holds the signed-in user's token and roles and reacts to
// the backend rejecting them.
package session

import (
	"errors"
	"sync"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"go.uber.org/zap"
)

const (
	AdminLanding = "/admin"
	ShopLanding  = "/shop"
	LoginPath    = "/login"
)

// Manager is the single source of truth for the current session. It is safe
// for concurrent use; background persists read the token while a request
// handler may be clearing it.
type Manager struct {
	mu       sync.RWMutex
	store    domain.LocalStore
	current  *domain.Session
	observer func(error)
	logger   *zap.Logger
}

// New restores any session previously saved in store.
func New(store domain.LocalStore, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{store: store, logger: logger}

	s, err := store.LoadSession()
	switch {
	case errors.Is(err, domain.ErrNoSession):
	case err != nil:
		return nil, err
	default:
		m.current = s
	}
	return m, nil
}

// Begin replaces the current session and saves it.
func (m *Manager) Begin(s *domain.Session) error {
	if err := m.store.SaveSession(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	m.logger.Info("session started", zap.String("user", s.UserName), zap.Strings("roles", s.Roles))
	return nil
}

// Clear drops the session locally and from the store.
func (m *Manager) Clear() error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return m.store.ClearSession()
}

func (m *Manager) Current() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// Token satisfies api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) Roles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	return append([]string(nil), m.current.Roles...)
}

func (m *Manager) FullName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.FullName
}

func (m *Manager) HasRole(role string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.HasRole(role)
}

// Landing is where a freshly signed-in user is sent.
func (m *Manager) Landing() string {
	switch {
	case !m.Authenticated():
		return LoginPath
	case m.HasRole(domain.RoleAdmin):
		return AdminLanding
	default:
		return ShopLanding
	}
}

// OnUnauthorized registers the observer told about rejected credentials.
// Only one observer is kept; a later call replaces the earlier one.
func (m *Manager) OnUnauthorized(fn func(error)) {
	m.mu.Lock()
	m.observer = fn
	m.mu.Unlock()
}

// HandleUnauthorized clears the session and notifies the observer. It
// satisfies order.AuthObserver.
func (m *Manager) HandleUnauthorized(err error) {
	m.logger.Warn("credentials rejected, clearing session", zap.Error(err))
	if clearErr := m.Clear(); clearErr != nil {
		m.logger.Error("failed to clear session", zap.Error(clearErr))
	}

	m.mu.RLock()
	fn := m.observer
	m.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}
