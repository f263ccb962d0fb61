package web

import (
	"io"
	"net/url"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
)

// SectionView is one category of the shop front with its products.
type SectionView struct {
	Title       string
	Description string
	URL         string
	Products    []ProductView
}

type ShopPage struct {
	PageView
	Error    string
	Sections []SectionView
}

type ShopCategoryPage struct {
	PageView
	Category string
	Error    string
	Products []ProductView
}

func NewCatalogViews(sections []api.CatalogSection) []SectionView {
	views := make([]SectionView, len(sections))
	for i, sec := range sections {
		views[i] = SectionView{
			Title:       sec.Category.Title,
			Description: sec.Category.Description,
			URL:         "/shop/categories/" + url.PathEscape(sec.Category.Title),
			Products:    NewProductViews(sec.Category.Title, sec.Products),
		}
	}
	return views
}

func (p *Presentation) RenderShop(w io.Writer, page ShopPage) error {
	return p.tmpl.ExecuteTemplate(w, "shop.html", page)
}

func (p *Presentation) RenderShopCategory(w io.Writer, page ShopCategoryPage) error {
	return p.tmpl.ExecuteTemplate(w, "shop_category.html", page)
}
