package web

import (
	"io"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
)

// CategoryView is the view model for Category
type CategoryView struct {
	ID           int
	Title        string
	Description  string
	ProductsURL  string
	EditURL      string
	MoveURL      string
	UpTarget     int // id of the row above, zero for the first row
	DownTarget   int // id of the row below, zero for the last row
	DeleteButton DeleteButtonView
}

// CategoryListView is the swappable list fragment of the categories page.
type CategoryListView struct {
	State   string
	Error   string // blocking fetch error; no rows are shown
	Banner  *BannerView
	Items   []CategoryView
	MoveURL string
}

type CategoriesPage struct {
	PageView
	List CategoryListView
}

type EditCategoryView struct {
	PageView
	Category CategoryView
}

func NewCategoryView(c domain.Category) CategoryView {
	return CategoryView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ProductsURL: productsURL(c.Title),
		EditURL:     categoriesURL + "/edit?id=" + itoa(c.ID),
		DeleteButton: DeleteButtonView{
			URL:            categoriesURL + "/delete",
			ID:             c.ID,
			ConfirmMessage: "Delete this category?",
			ButtonText:     "Delete",
		},
	}
}

func NewCategoryListView(snap order.Snapshot[domain.Category]) CategoryListView {
	view := CategoryListView{
		State:   snap.State.String(),
		Banner:  newBannerView(snap.Banner, categoriesURL+"/dismiss"),
		MoveURL: categoriesURL + "/move",
	}
	if snap.Err != nil {
		view.Error = snap.Err.Message()
		return view
	}
	view.Items = make([]CategoryView, len(snap.Items))
	for i, c := range snap.Items {
		view.Items[i] = NewCategoryView(c)
		view.Items[i].MoveURL = view.MoveURL
		if i > 0 {
			view.Items[i].UpTarget = snap.Items[i-1].ID
		}
		if i < len(snap.Items)-1 {
			view.Items[i].DownTarget = snap.Items[i+1].ID
		}
	}
	return view
}

func (p *Presentation) RenderCategoriesPage(w io.Writer, page CategoriesPage) error {
	return p.tmpl.ExecuteTemplate(w, "categories.html", page)
}

// RenderCategoryList renders only the list fragment for HTMX swaps
func (p *Presentation) RenderCategoryList(w io.Writer, view CategoryListView) error {
	return p.tmpl.ExecuteTemplate(w, "category_list", view)
}

func (p *Presentation) RenderEditCategory(w io.Writer, view EditCategoryView) error {
	return p.tmpl.ExecuteTemplate(w, "edit_category.html", view)
}
