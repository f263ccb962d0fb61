package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/backendtest"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/session"
	"git.sr.ht/~jakintosh/shopfront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	srv      *Server
	backend  *backendtest.Backend
	sessions *session.Manager
	store    *store.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	b, backend := backendtest.Start(t)
	st := store.NewMemoryStore()
	sessions, err := session.New(st, nil)
	require.NoError(t, err)

	client := api.NewClient(backend.URL, api.Options{
		HTTPClient: backend.Client(),
		Tokens:     sessions,
	})
	srv, err := NewServer(Options{
		Client:   client,
		Sessions: sessions,
		Store:    st,
	})
	require.NoError(t, err)
	t.Cleanup(srv.Wait)

	return &testEnv{srv: srv, backend: b, sessions: sessions, store: st}
}

func (e *testEnv) signIn(t *testing.T, token string, roles ...string) {
	t.Helper()
	require.NoError(t, e.sessions.Begin(&domain.Session{
		Token:    token,
		UserName: "tester",
		FullName: "Tess Tester",
		Roles:    roles,
	}))
}

func (e *testEnv) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func assertOrder(t *testing.T, body string, words ...string) {
	t.Helper()
	last := -1
	for _, w := range words {
		i := strings.Index(body, w)
		require.GreaterOrEqual(t, i, 0, "%q not in body", w)
		assert.Greater(t, i, last, "%q out of order", w)
		last = i
	}
}

func moveForm(source, target int) url.Values {
	return url.Values{
		"source": {strconv.Itoa(source)},
		"target": {strconv.Itoa(target)},
	}
}

func TestGuards(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/admin/categories", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/shop", nil, true)
	assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))

	e.signIn(t, backendtest.UserToken, domain.RoleUser)
	rec = e.do(http.MethodGet, "/admin/categories", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/shop", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/", nil, false)
	assert.Equal(t, "/shop", rec.Header().Get("Location"))
}

func TestLoginRoutesByRole(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/login", url.Values{"userName": {"admin"}, "password": {"secret"}}, false)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))
	assert.Equal(t, backendtest.AdminToken, e.sessions.Token())

	rec = e.do(http.MethodPost, "/logout", nil, false)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, e.sessions.Authenticated())
}

func TestLoginFailureShowsMessage(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/login", url.Values{"userName": {"admin"}, "password": {"nope"}}, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
	assert.False(t, e.sessions.Authenticated())
}

func TestRegisterThenLogin(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/register", url.Values{
		"userName": {"newbie"},
		"fullName": {"New Bie"},
		"password": {"pw"},
	}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = e.do(http.MethodPost, "/login", url.Values{"userName": {"newbie"}, "password": {"pw"}}, false)
	assert.Equal(t, "/shop", rec.Header().Get("Location"))

	rec = e.do(http.MethodPost, "/register", url.Values{"userName": {"x"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "All fields are required.")
}

func TestCategoriesRenderSortedByPosition(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	e.backend.AddCategory(domain.Category{Title: "Hats", PositionOrder: 2})
	e.backend.AddCategory(domain.Category{Title: "Shoes", PositionOrder: 0})
	e.backend.AddCategory(domain.Category{Title: "Gloves", PositionOrder: 1})

	rec := e.do(http.MethodGet, "/admin/categories", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	assertOrder(t, rec.Body.String(), "Shoes", "Gloves", "Hats")
}

func TestMoveCategoryIsOptimisticAndPersisted(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	a := e.backend.AddCategory(domain.Category{Title: "Alpha", PositionOrder: 0})
	b := e.backend.AddCategory(domain.Category{Title: "Bravo", PositionOrder: 1})
	c := e.backend.AddCategory(domain.Category{Title: "Charlie", PositionOrder: 2})
	e.do(http.MethodGet, "/admin/categories", nil, false)

	rec := e.do(http.MethodPost, "/admin/categories/move", moveForm(c.ID, a.ID), true)

	require.Equal(t, http.StatusOK, rec.Code)
	assertOrder(t, rec.Body.String(), "Charlie", "Alpha", "Bravo")
	e.srv.Wait()
	assert.Equal(t, [][]int{{c.ID, a.ID, b.ID}}, e.backend.Orders("categories"))
}

func TestMoveCategoryPersistFailureKeepsOrderWithBanner(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	a := e.backend.AddCategory(domain.Category{Title: "Alpha", PositionOrder: 0})
	b := e.backend.AddCategory(domain.Category{Title: "Bravo", PositionOrder: 1})
	e.backend.Fail(http.MethodPut, "/api/categories/admin/update-order", http.StatusInternalServerError)
	e.do(http.MethodGet, "/admin/categories", nil, false)

	rec := e.do(http.MethodPost, "/admin/categories/move", moveForm(b.ID, a.ID), false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/categories?live=1", rec.Header().Get("Location"))
	e.srv.Wait()

	rec = e.do(http.MethodGet, "/admin/categories?live=1", nil, false)
	body := rec.Body.String()
	assert.Contains(t, body, "Error updating order")
	assertOrder(t, body, "Bravo", "Alpha")

	rec = e.do(http.MethodPost, "/admin/categories/dismiss", nil, true)
	assert.NotContains(t, rec.Body.String(), "Error updating order")
}

func TestMoveBeforeLoadFails(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	e.backend.Fail(http.MethodGet, "/api/categories", http.StatusInternalServerError)

	rec := e.do(http.MethodGet, "/admin/categories", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error fetching list")

	rec = e.do(http.MethodPost, "/admin/categories/move", moveForm(1, 2), true)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, e.backend.Orders("categories"))
}

func TestDeleteCategoryRepersistsRemaining(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	a := e.backend.AddCategory(domain.Category{Title: "Alpha", PositionOrder: 0})
	b := e.backend.AddCategory(domain.Category{Title: "Bravo", PositionOrder: 1})
	c := e.backend.AddCategory(domain.Category{Title: "Charlie", PositionOrder: 2})
	e.do(http.MethodGet, "/admin/categories", nil, false)

	rec := e.do(http.MethodPost, "/admin/categories/delete", url.Values{"id": {strconv.Itoa(b.ID)}}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Bravo")
	e.srv.Wait()
	assert.Equal(t, [][]int{{a.ID, c.ID}}, e.backend.Orders("categories"))
	assert.Len(t, e.backend.Categories(), 2)
}

func TestDeleteCategoryFailureShowsBanner(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	a := e.backend.AddCategory(domain.Category{Title: "Alpha"})
	e.backend.Fail(http.MethodDelete, "/api/categories/admin/"+strconv.Itoa(a.ID), http.StatusInternalServerError)
	e.do(http.MethodGet, "/admin/categories", nil, false)

	rec := e.do(http.MethodPost, "/admin/categories/delete", url.Values{"id": {strconv.Itoa(a.ID)}}, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error deleting item")
	assert.Contains(t, body, "Alpha")
	assert.Empty(t, e.backend.Orders("categories"))
}

func TestDeleteUnknownCategory(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	e.backend.AddCategory(domain.Category{Title: "Alpha"})
	e.do(http.MethodGet, "/admin/categories", nil, false)

	rec := e.do(http.MethodPost, "/admin/categories/delete", url.Values{"id": {"999"}}, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpiredTokenSignsOut(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, "stale", domain.RoleAdmin)

	rec := e.do(http.MethodGet, "/admin/categories", nil, false)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.False(t, e.sessions.Authenticated())

	rec = e.do(http.MethodGet, "/login", nil, false)
	assert.Contains(t, rec.Body.String(), sessionExpiredMessage)
	rec = e.do(http.MethodGet, "/login", nil, false)
	assert.NotContains(t, rec.Body.String(), sessionExpiredMessage)
}

func TestRejectedFormSubmitSignsOut(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		target string
		form   url.Values
	}{
		{
			name:   "create category",
			method: http.MethodPost,
			path:   "/api/categories/admin",
			target: "/admin/categories",
			form:   url.Values{"title": {"Hats"}, "description": {"Heads"}},
		},
		{
			name:   "create product resolving category",
			method: http.MethodGet,
			path:   "/api/categories",
			target: "/admin/categories/Shoes/products",
			form:   url.Values{"title": {"Clog"}, "description": {"Wooden"}, "price": {"20"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.backend.AddCategory(domain.Category{Title: "Shoes"})
			e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
			e.backend.Fail(tt.method, tt.path, http.StatusUnauthorized)

			rec := e.do(http.MethodPost, tt.target, tt.form, false)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, session.LoginPath, rec.Header().Get("Location"))
			assert.False(t, e.sessions.Authenticated())

			rec = e.do(http.MethodGet, session.LoginPath, nil, false)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), sessionExpiredMessage)
		})
	}
}

func TestProductsMoveAndCreate(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.AdminToken, domain.RoleAdmin)
	shoes := e.backend.AddCategory(domain.Category{Title: "Shoes"})
	boot := e.backend.AddProduct(domain.Product{Title: "Boot", Category: &shoes, PositionOrder: 0})
	clog := e.backend.AddProduct(domain.Product{Title: "Clog", Category: &shoes, PositionOrder: 1})

	rec := e.do(http.MethodGet, "/admin/categories/Shoes/products", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assertOrder(t, rec.Body.String(), "Boot", "Clog")

	rec = e.do(http.MethodPost, "/admin/categories/Shoes/products/move", moveForm(clog.ID, boot.ID), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assertOrder(t, rec.Body.String(), "Clog", "Boot")
	e.srv.Wait()
	assert.Equal(t, [][]int{{clog.ID, boot.ID}}, e.backend.Orders("products"))

	rec = e.do(http.MethodPost, "/admin/categories/Shoes/products", url.Values{
		"title":       {"Sneaker"},
		"description": {"Fast"},
		"price":       {"59.5"},
	}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/categories/Shoes/products", rec.Header().Get("Location"))
	assert.Len(t, e.backend.Products(), 3)

	rec = e.do(http.MethodPost, "/admin/categories/Shoes/products", url.Values{
		"title":       {"Sneaker"},
		"description": {"Fast"},
		"price":       {"59.5"},
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product title must be unique.")

	rec = e.do(http.MethodPost, "/admin/categories/Shoes/products", url.Values{
		"title":       {"Loafer"},
		"description": {"Comfy"},
		"price":       {"cheap"},
	}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShopAndCart(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, backendtest.UserToken, domain.RoleUser)
	shoes := e.backend.AddCategory(domain.Category{Title: "Shoes"})
	sneaker := e.backend.AddProduct(domain.Product{Title: "Sneaker", Price: 59.5, Category: &shoes})

	rec := e.do(http.MethodGet, "/shop", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sneaker")

	rec = e.do(http.MethodGet, "/shop/categories/Shoes", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add to cart")

	rec = e.do(http.MethodPost, "/shop/cart", url.Values{
		"product_id": {strconv.Itoa(sneaker.ID)},
		"category":   {"Shoes"},
	}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/shop/categories/Shoes", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/shop/cart", nil, false)
	body := rec.Body.String()
	assert.Contains(t, body, "Sneaker")
	assert.Contains(t, body, "Total: $59.50")

	items, err := e.store.GetCart()
	require.NoError(t, err)
	require.Len(t, items, 1)

	rec = e.do(http.MethodPost, "/shop/cart/remove", url.Values{"id": {items[0].ID}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your cart is empty.")
}
