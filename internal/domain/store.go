package domain

import "errors"

var (
	// ErrUnauthorized marks a 401 from the backend. It ends the session.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = errors.New("no session")
	ErrNotFound     = errors.New("not found")
)

// LocalStore is the client's local storage: the login session and the
// shopper's cart.
type LocalStore interface {
	LoadSession() (*Session, error)
	SaveSession(s *Session) error
	ClearSession() error

	GetCart() ([]*CartItem, error)
	AddCartItem(p *Product) (*CartItem, error)
	RemoveCartItem(id string) (*CartItem, error)
	ClearCart() error

	Close() error
}
