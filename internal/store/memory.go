package store

import (
	"slices"
	"sync"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore is a LocalStore that forgets everything on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	session *domain.Session
	cart    []*domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cart: []*domain.CartItem{},
	}
}

func (s *MemoryStore) LoadSession() (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, domain.ErrNoSession
	}
	cp := *s.session
	cp.Roles = slices.Clone(s.session.Roles)
	return &cp, nil
}

func (s *MemoryStore) SaveSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	cp.Roles = slices.Clone(session.Roles)
	s.session = &cp
	return nil
}

func (s *MemoryStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *MemoryStore) GetCart() ([]*domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*domain.CartItem, len(s.cart))
	for i, item := range s.cart {
		cp := *item
		items[i] = &cp
	}
	return items, nil
}

func (s *MemoryStore) AddCartItem(p *domain.Product) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos := 0
	if n := len(s.cart); n > 0 {
		pos = s.cart[n-1].Position + 1
	}
	item := &domain.CartItem{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Position:  pos,
	}
	s.cart = append(s.cart, item)
	cp := *item
	return &cp, nil
}

func (s *MemoryStore) RemoveCartItem(id string) (*domain.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.cart {
		if item.ID == id {
			removed := item
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return removed, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *MemoryStore) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = []*domain.CartItem{}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
