package domain

import "strings"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type Category struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PositionOrder int    `json:"positionOrder"`
}

type Product struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      *Category `json:"category,omitempty"`
	PositionOrder int       `json:"positionOrder"`
}

type Role struct {
	RoleName        string `json:"roleName"`
	RoleDescription string `json:"roleDescription,omitempty"`
}

type User struct {
	UserName string `json:"userName"`
	FullName string `json:"fullName"`
	Roles    []Role `json:"role"`
}

// Session is what the client keeps between calls after a successful login.
type Session struct {
	Token    string   `json:"token"`
	UserName string   `json:"user_name"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

type CartItem struct {
	ID        string  `json:"id"`
	ProductID int     `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Position  int     `json:"position"`
}

// Helper methods

func (c Category) EntityID() int       { return c.ID }
func (c Category) EntityPosition() int { return c.PositionOrder }

func (p Product) EntityID() int       { return p.ID }
func (p Product) EntityPosition() int { return p.PositionOrder }

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.RoleName)
	}
	return names
}

func (s *Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

func (s *Session) IsAdmin() bool {
	return s.HasRole(RoleAdmin)
}

// CartTotal sums the price of every item in the cart.
func CartTotal(items []*CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price
	}
	return total
}
