// Package backendtest is an in-memory stand-in for the storefront backend,
// served over httptest for client, console, and CLI tests.
package backendtest

import (
	"cmp"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/go-chi/chi/v5"
)

const (
	AdminToken = "admin-token"
	UserToken  = "user-token"
)

type account struct {
	password string
	token    string
	user     domain.User
}

// Backend is a fake of the REST contract. Zero value is not usable; use
// New or Start.
type Backend struct {
	mu         sync.Mutex
	categories []domain.Category
	products   []domain.Product
	accounts   map[string]*account
	nextID     int
	failures   map[string]int // "METHOD /path" -> status
	orders     map[string][][]int
	requests   []*http.Request
}

func New() *Backend {
	b := &Backend{
		accounts: map[string]*account{},
		nextID:   100,
		failures: map[string]int{},
		orders:   map[string][][]int{},
	}
	b.accounts["admin"] = &account{
		password: "secret",
		token:    AdminToken,
		user: domain.User{
			UserName: "admin",
			FullName: "Ada Admin",
			Roles:    []domain.Role{{RoleName: domain.RoleAdmin}, {RoleName: domain.RoleUser}},
		},
	}
	b.accounts["shopper"] = &account{
		password: "secret",
		token:    UserToken,
		user: domain.User{
			UserName: "shopper",
			FullName: "Sam Shopper",
			Roles:    []domain.Role{{RoleName: domain.RoleUser}},
		},
	}
	return b
}

// Start serves a new Backend and closes it when the test ends.
func Start(t testing.TB) (*Backend, *httptest.Server) {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(b.record, b.inject)

	r.Post("/login", b.handleLogin)
	r.Post("/registerNewUser", b.handleRegister)

	r.Route("/api", func(r chi.Router) {
		r.Use(b.authenticate)

		r.Get("/categories", b.handleListCategories)
		r.Get("/categories/{id}", b.handleGetCategory)
		r.With(b.requireAdmin).Post("/categories/admin", b.handleCreateCategory)
		r.With(b.requireAdmin).Put("/categories/admin/update-order", b.handleUpdateOrder("categories"))
		r.With(b.requireAdmin).Put("/categories/admin/{id}", b.handleUpdateCategory)
		r.With(b.requireAdmin).Delete("/categories/admin/{id}", b.handleDeleteCategory)

		r.Get("/products/category/{name}", b.handleListProducts)
		r.Get("/products/{id}", b.handleGetProduct)
		r.With(b.requireAdmin).Post("/products/admin", b.handleCreateProduct)
		r.With(b.requireAdmin).Put("/products/admin/update-order", b.handleUpdateOrder("products"))
		r.With(b.requireAdmin).Put("/products/admin/{id}", b.handleUpdateProduct)
		r.With(b.requireAdmin).Delete("/products/admin/{id}", b.handleDeleteProduct)
	})
	return r
}

// Seeding and inspection

func (b *Backend) AddCategory(c domain.Category) domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == 0 {
		c.ID = b.allocID()
	}
	b.categories = append(b.categories, c)
	return c
}

func (b *Backend) AddProduct(p domain.Product) domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == 0 {
		p.ID = b.allocID()
	}
	b.products = append(b.products, p)
	return p
}

// Fail makes every request matching "METHOD /path" answer with status
// until Recover is called.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = status
}

func (b *Backend) Recover(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// Orders returns every id list PUT to the update-order endpoint of kind
// ("categories" or "products").
func (b *Backend) Orders(kind string) [][]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.orders[kind])
}

func (b *Backend) Categories() []domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.categories)
}

func (b *Backend) Products() []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.products)
}

// Requests returns the requests seen so far.
func (b *Backend) Requests() []*http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

func (b *Backend) allocID() int {
	b.nextID++
	return b.nextID
}

// Middleware

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Clone(r.Context()))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, ok := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if ok {
			writeJSON(w, status, map[string]any{"status": status, "message": "injected failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey struct{}

func withAccount(ctx context.Context, a *account) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func accountFrom(ctx context.Context) *account {
	a, _ := ctx.Value(ctxKey{}).(*account)
	if a == nil {
		return &account{}
	}
	return a
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "missing token"})
			return
		}
		b.mu.Lock()
		var acct *account
		for _, a := range b.accounts {
			if a.token == token {
				acct = a
			}
		}
		b.mu.Unlock()
		if acct == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), acct)))
	})
}

func (b *Backend) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct := accountFrom(r.Context())
		for _, role := range acct.user.Roles {
			if role.RoleName == domain.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
		}
		writeJSON(w, http.StatusForbidden, map[string]any{"status": 403, "message": "admin only"})
	})
}

// Handlers

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		UserName string `json:"userName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	acct, ok := b.accounts[creds.UserName]
	b.mu.Unlock()
	if !ok || acct.password != creds.Password {
		// failure reported inside a 200 envelope
		writeJSON(w, http.StatusOK, map[string]any{"status": 401, "message": "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  200,
		"message": "Login successful",
		"data":    map[string]any{"token": acct.token, "user": acct.user},
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg struct {
		UserName string        `json:"userName"`
		FullName string        `json:"fullName"`
		Password string        `json:"password"`
		Roles    []domain.Role `json:"roles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[reg.UserName]; exists {
		writeJSON(w, http.StatusOK, map[string]any{"status": 409, "message": "User name already taken"})
		return
	}
	b.accounts[reg.UserName] = &account{
		password: reg.Password,
		token:    "token-" + reg.UserName,
		user:     domain.User{UserName: reg.UserName, FullName: reg.FullName, Roles: reg.Roles},
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": 201, "message": "User registered"})
}

func (b *Backend) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeData(w, b.Categories())
}

func (b *Backend) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.categories {
		if c.ID == id {
			writeData(w, c)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Category not found"})
}

func (b *Backend) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	c.ID = b.allocID()
	c.PositionOrder = len(b.categories)
	b.categories = append(b.categories, c)
	b.mu.Unlock()
	writeData(w, c)
}

func (b *Backend) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in domain.Category
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.categories {
		if b.categories[i].ID == id {
			b.categories[i].Title = in.Title
			b.categories[i].Description = in.Description
			writeData(w, b.categories[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Category not found"})
}

func (b *Backend) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.categories, func(c domain.Category) bool { return c.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Category not found"})
		return
	}
	b.categories = slices.Delete(b.categories, i, i+1)
	writeJSON(w, http.StatusOK, map[string]any{"status": 200, "message": "Category deleted"})
}

func (b *Backend) handleListProducts(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	b.mu.Lock()
	var out []domain.Product
	for _, p := range b.products {
		if p.Category != nil && strings.EqualFold(p.Category.Title, name) {
			out = append(out, p)
		}
	}
	b.mu.Unlock()
	if out == nil {
		out = []domain.Product{}
	}
	writeData(w, out)
}

func (b *Backend) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			writeData(w, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Product not found"})
}

type productInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int     `json:"categoryId"`
}

func (b *Backend) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if strings.EqualFold(p.Title, in.Title) {
			writeJSON(w, http.StatusConflict, map[string]any{"status": 409})
			return
		}
	}
	cat := b.categoryLocked(in.CategoryID)
	if cat == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Category not found"})
		return
	}
	p := domain.Product{
		ID:            b.allocID(),
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		Category:      cat,
		PositionOrder: len(b.products),
	}
	b.products = append(b.products, p)
	writeData(w, p)
}

func (b *Backend) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.products {
		if b.products[i].ID == id {
			b.products[i].Title = in.Title
			b.products[i].Description = in.Description
			b.products[i].Price = in.Price
			if cat := b.categoryLocked(in.CategoryID); cat != nil {
				b.products[i].Category = cat
			}
			writeData(w, b.products[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Product not found"})
}

func (b *Backend) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"status": 404, "message": "Product not found"})
		return
	}
	b.products = slices.Delete(b.products, i, i+1)
	writeJSON(w, http.StatusOK, map[string]any{"status": 200, "message": "Product deleted"})
}

// handleUpdateOrder rewrites positionOrder from the posted id list, the way
// the backend keeps its canonical order.
func (b *Backend) handleUpdateOrder(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ids []int
		if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "bad request"})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.orders[kind] = append(b.orders[kind], ids)
		rank := make(map[int]int, len(ids))
		for i, id := range ids {
			rank[id] = i
		}
		switch kind {
		case "categories":
			for i := range b.categories {
				if pos, ok := rank[b.categories[i].ID]; ok {
					b.categories[i].PositionOrder = pos
				}
			}
			slices.SortStableFunc(b.categories, func(x, y domain.Category) int {
				return cmp.Compare(x.PositionOrder, y.PositionOrder)
			})
		case "products":
			for i := range b.products {
				if pos, ok := rank[b.products[i].ID]; ok {
					b.products[i].PositionOrder = pos
				}
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": 200, "message": "Order updated"})
	}
}

func (b *Backend) categoryLocked(id int) *domain.Category {
	for i := range b.categories {
		if b.categories[i].ID == id {
			c := b.categories[i]
			return &c
		}
	}
	return nil
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"status": 200, "message": "ok", "data": data})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
