package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"github.com/go-chi/chi/v5"
)

const categoriesURL = "/admin/categories"

func productsURL(category string) string {
	return categoriesURL + "/" + url.PathEscape(category) + "/products"
}

// Categories

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)

	var (
		v   *order.View[domain.Category]
		err error
	)
	if ctx.Live {
		v, err = s.liveCategories(r.Context())
	} else {
		v, err = s.openCategories(r.Context())
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		s.expire(w, r, ctx, err)
		return
	}

	page := CategoriesPage{
		PageView: s.page("Categories"),
		List:     NewCategoryListView(v.Snapshot()),
	}
	s.render(w, s.presentation.RenderCategoriesPage(w, page))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	in := api.CategoryInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := s.client.CreateCategory(r.Context(), in); err != nil {
		s.failForm(w, r, ctx, err, "Failed to add category")
		return
	}
	// A new category changes the list, so navigate in fresh.
	s.redirect(w, r, ctx, categoriesURL)
}

func (s *Server) handleMoveCategory(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	source, ok1 := formInt(r, "source")
	target, ok2 := formInt(r, "target")
	if !ok1 || !ok2 {
		http.Error(w, "Invalid source or target", http.StatusBadRequest)
		return
	}

	v, err := s.liveCategories(r.Context())
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	if err := v.OnMoveRequested(r.Context(), source, target); err != nil {
		s.fail(w, r, ctx, err, http.StatusConflict)
		return
	}
	s.respondCategories(w, r, ctx, v)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, ok := formInt(r, "id")
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	v, err := s.liveCategories(r.Context())
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	err = v.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		s.expire(w, r, ctx, err)
		return
	case errors.Is(err, domain.ErrNotFound) && !order.IsKind(err, order.DeleteError):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, order.ErrNotReady):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	// A failed delete is shown as a banner on the list.
	s.respondCategories(w, r, ctx, v)
}

func (s *Server) handleDismissCategoryBanner(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	v, err := s.liveCategories(r.Context())
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	v.DismissBanner()
	s.respondCategories(w, r, ctx, v)
}

func (s *Server) respondCategories(w http.ResponseWriter, r *http.Request, ctx RequestContext, v *order.View[domain.Category]) {
	if !ctx.IsHTMX {
		http.Redirect(w, r, categoriesURL+"?live=1", http.StatusSeeOther)
		return
	}
	s.render(w, s.presentation.RenderCategoryList(w, NewCategoryListView(v.Snapshot())))
}

func (s *Server) handleEditCategoryPage(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	cat, err := s.client.GetCategory(r.Context(), id)
	if err != nil {
		s.fail(w, r, ctx, err, statusFor(err))
		return
	}
	view := EditCategoryView{
		PageView: s.page("Edit category"),
		Category: NewCategoryView(*cat),
	}
	s.render(w, s.presentation.RenderEditCategory(w, view))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, ok := formInt(r, "id")
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	in := api.CategoryInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := s.client.UpdateCategory(r.Context(), id, in); err != nil {
		s.failForm(w, r, ctx, err, "Failed to update category")
		return
	}
	s.redirect(w, r, ctx, categoriesURL)
}

// Products

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")

	var (
		v   *order.View[domain.Product]
		err error
	)
	if ctx.Live {
		v, err = s.liveProducts(r.Context(), category)
	} else {
		v, err = s.openProducts(r.Context(), category)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		s.expire(w, r, ctx, err)
		return
	}

	page := ProductsPage{
		PageView: s.page(category),
		Category: category,
		List:     NewProductListView(category, v.Snapshot()),
	}
	s.render(w, s.presentation.RenderProductsPage(w, page))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	in, err := s.productInput(r, category)
	if err != nil {
		s.failForm(w, r, ctx, err, "Failed to add product")
		return
	}
	if err := s.client.CreateProduct(r.Context(), in); err != nil {
		s.failForm(w, r, ctx, err, "Failed to add product")
		return
	}
	s.redirect(w, r, ctx, productsURL(category))
}

func (s *Server) handleMoveProduct(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	source, ok1 := formInt(r, "source")
	target, ok2 := formInt(r, "target")
	if !ok1 || !ok2 {
		http.Error(w, "Invalid source or target", http.StatusBadRequest)
		return
	}

	v, err := s.liveProducts(r.Context(), category)
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	if err := v.OnMoveRequested(r.Context(), source, target); err != nil {
		s.fail(w, r, ctx, err, http.StatusConflict)
		return
	}
	s.respondProducts(w, r, ctx, category, v)
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, ok := formInt(r, "id")
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	v, err := s.liveProducts(r.Context(), category)
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	err = v.Delete(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		s.expire(w, r, ctx, err)
		return
	case errors.Is(err, domain.ErrNotFound) && !order.IsKind(err, order.DeleteError):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, order.ErrNotReady):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.respondProducts(w, r, ctx, category, v)
}

func (s *Server) handleDismissProductBanner(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	v, err := s.liveProducts(r.Context(), category)
	if err != nil {
		s.fail(w, r, ctx, err, http.StatusBadGateway)
		return
	}
	v.DismissBanner()
	s.respondProducts(w, r, ctx, category, v)
}

func (s *Server) respondProducts(w http.ResponseWriter, r *http.Request, ctx RequestContext, category string, v *order.View[domain.Product]) {
	if !ctx.IsHTMX {
		http.Redirect(w, r, productsURL(category)+"?live=1", http.StatusSeeOther)
		return
	}
	s.render(w, s.presentation.RenderProductList(w, NewProductListView(category, v.Snapshot())))
}

func (s *Server) handleEditProductPage(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	p, err := s.client.GetProduct(r.Context(), id)
	if err != nil {
		s.fail(w, r, ctx, err, statusFor(err))
		return
	}
	view := EditProductView{
		PageView: s.page("Edit product"),
		Category: category,
		SaveURL:  productsURL(category) + "/edit",
		Product:  NewProductView(category, *p),
	}
	s.render(w, s.presentation.RenderEditProduct(w, view))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	id, ok := formInt(r, "id")
	if !ok {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	in, err := s.productInput(r, category)
	if err != nil {
		s.failForm(w, r, ctx, err, "Failed to update product")
		return
	}
	if err := s.client.UpdateProduct(r.Context(), id, in); err != nil {
		s.failForm(w, r, ctx, err, "Failed to update product")
		return
	}
	s.redirect(w, r, ctx, productsURL(category))
}

// productInput reads the product form. The category is resolved by title
// so the backend gets its id.
func (s *Server) productInput(r *http.Request, category string) (api.ProductInput, error) {
	if err := r.ParseForm(); err != nil {
		return api.ProductInput{}, err
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		return api.ProductInput{}, fmt.Errorf("%w: price must be a number", api.ErrInvalidInput)
	}
	cat, err := s.client.FindCategoryByTitle(r.Context(), category)
	if err != nil {
		return api.ProductInput{}, err
	}
	return api.ProductInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
		CategoryID:  cat.ID,
	}, nil
}

// failForm reports a create or update failure with the backend's message
// when it has one.
func (s *Server) failForm(w http.ResponseWriter, r *http.Request, ctx RequestContext, err error, fallback string) {
	if errors.Is(err, domain.ErrUnauthorized) {
		s.expire(w, r, ctx, err)
		return
	}
	http.Error(w, api.UserMessage(err, fallback), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, api.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
