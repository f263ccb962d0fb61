package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const cartURL = "/shop/cart"

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	page := ShopPage{PageView: s.page("Shop")}

	sections, err := s.client.Catalog(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.expire(w, r, ctx, err)
			return
		}
		s.log.Warn("catalog fetch failed", zap.Error(err))
		page.Error = (&order.Error{Kind: order.FetchError, Err: err}).Message()
	}
	page.Sections = NewCatalogViews(sections)
	s.render(w, s.presentation.RenderShop(w, page))
}

func (s *Server) handleShopCategory(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	category := chi.URLParam(r, "category")
	page := ShopCategoryPage{
		PageView: s.page(category),
		Category: category,
	}

	products, err := s.client.ListProducts(r.Context(), category)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.expire(w, r, ctx, err)
			return
		}
		s.log.Warn("product fetch failed", zap.String("category", category), zap.Error(err))
		page.Error = (&order.Error{Kind: order.FetchError, Err: err}).Message()
	} else {
		list := order.NewList[domain.Product]()
		list.Load(products)
		page.Products = NewProductViews(category, list.Current())
	}
	s.render(w, s.presentation.RenderShopCategory(w, page))
}

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.GetCart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page := CartPage{
		PageView: s.page("Cart"),
		Cart:     NewCartView(items),
	}
	s.render(w, s.presentation.RenderCart(w, page))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, ok := formInt(r, "product_id")
	if !ok {
		http.Error(w, "Invalid product", http.StatusBadRequest)
		return
	}

	p, err := s.client.GetProduct(r.Context(), id)
	if err != nil {
		s.fail(w, r, ctx, err, statusFor(err))
		return
	}
	item, err := s.store.AddCartItem(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Debug("added to cart", zap.String("item", item.ID), zap.Int("product", p.ID))

	back := cartURL
	if category := strings.TrimSpace(r.FormValue("category")); category != "" {
		back = "/shop/categories/" + url.PathEscape(category)
	}
	s.redirect(w, r, ctx, back)
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := s.store.RemoveCartItem(r.FormValue("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	s.respondCart(w, r, ctx)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := parseRequestContext(r)
	if err := s.store.ClearCart(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.respondCart(w, r, ctx)
}

func (s *Server) respondCart(w http.ResponseWriter, r *http.Request, ctx RequestContext) {
	if !ctx.IsHTMX {
		http.Redirect(w, r, cartURL, http.StatusSeeOther)
		return
	}
	items, err := s.store.GetCart()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, s.presentation.RenderCartItems(w, NewCartView(items)))
}
