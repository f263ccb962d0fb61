package web

import (
	"io"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

type CartItemView struct {
	ID    string
	Title string
	Price string
}

type CartView struct {
	Items []CartItemView
	Total string
	Empty bool
}

type CartPage struct {
	PageView
	Cart CartView
}

func NewCartView(items []*domain.CartItem) CartView {
	view := CartView{
		Items: make([]CartItemView, len(items)),
		Total: formatPrice(domain.CartTotal(items)),
		Empty: len(items) == 0,
	}
	for i, item := range items {
		view.Items[i] = CartItemView{
			ID:    item.ID,
			Title: item.Title,
			Price: formatPrice(item.Price),
		}
	}
	return view
}

func (p *Presentation) RenderCart(w io.Writer, page CartPage) error {
	return p.tmpl.ExecuteTemplate(w, "cart.html", page)
}

// RenderCartItems renders the cart fragment for HTMX swaps
func (p *Presentation) RenderCartItems(w io.Writer, view CartView) error {
	return p.tmpl.ExecuteTemplate(w, "cart_items", view)
}
