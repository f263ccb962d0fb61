package web

import (
	"io"
	"strconv"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
)

// ProductView is the view model for Product
type ProductView struct {
	ID           int
	Title        string
	Description  string
	Price        string
	Amount       string // price without currency, for form inputs
	Category     string
	EditURL      string
	MoveURL      string
	UpTarget     int
	DownTarget   int
	DeleteButton DeleteButtonView
}

type ProductListView struct {
	Category string
	State    string
	Error    string
	Banner   *BannerView
	Items    []ProductView
	BaseURL  string
	MoveURL  string
}

type ProductsPage struct {
	PageView
	Category string
	List     ProductListView
}

type EditProductView struct {
	PageView
	Category string
	SaveURL  string
	Product  ProductView
}

func NewProductView(category string, p domain.Product) ProductView {
	base := productsURL(category)
	return ProductView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       formatPrice(p.Price),
		Amount:      strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:    category,
		EditURL:     base + "/edit?id=" + itoa(p.ID),
		DeleteButton: DeleteButtonView{
			URL:            base + "/delete",
			ID:             p.ID,
			ConfirmMessage: "Delete this product?",
			ButtonText:     "Delete",
		},
	}
}

func NewProductViews(category string, products []domain.Product) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = NewProductView(category, p)
		if i > 0 {
			views[i].UpTarget = products[i-1].ID
		}
		if i < len(products)-1 {
			views[i].DownTarget = products[i+1].ID
		}
	}
	return views
}

func NewProductListView(category string, snap order.Snapshot[domain.Product]) ProductListView {
	view := ProductListView{
		Category: category,
		State:    snap.State.String(),
		Banner:   newBannerView(snap.Banner, productsURL(category)+"/dismiss"),
		BaseURL:  productsURL(category),
		MoveURL:  productsURL(category) + "/move",
	}
	if snap.Err != nil {
		view.Error = snap.Err.Message()
		return view
	}
	view.Items = NewProductViews(category, snap.Items)
	for i := range view.Items {
		view.Items[i].MoveURL = view.MoveURL
	}
	return view
}

func (p *Presentation) RenderProductsPage(w io.Writer, page ProductsPage) error {
	return p.tmpl.ExecuteTemplate(w, "products.html", page)
}

// RenderProductList renders only the list fragment for HTMX swaps
func (p *Presentation) RenderProductList(w io.Writer, view ProductListView) error {
	return p.tmpl.ExecuteTemplate(w, "product_list", view)
}

func (p *Presentation) RenderEditProduct(w io.Writer, view EditProductView) error {
	return p.tmpl.ExecuteTemplate(w, "edit_product.html", view)
}

func formatPrice(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
