package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"git.sr.ht/~jakintosh/shopfront/internal/backendtest"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, token string) (*Client, *backendtest.Backend) {
	t.Helper()
	b, srv := backendtest.Start(t)
	c := NewClient(srv.URL+"/", Options{
		HTTPClient: srv.Client(),
		Tokens:     staticToken(token),
	})
	return c, b
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, "")

	s, err := c.Login(context.Background(), Credentials{UserName: "admin", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, backendtest.AdminToken, s.Token)
	assert.Equal(t, "Ada Admin", s.FullName)
	assert.Equal(t, []string{"ADMIN", "USER"}, s.Roles)
	assert.True(t, s.IsAdmin())
}

func TestLoginFailureCarriesMessage(t *testing.T) {
	c, _ := newTestClient(t, "")

	_, err := c.Login(context.Background(), Credentials{UserName: "admin", Password: "wrong"})

	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", UserMessage(err, "Login failed. Please try again."))
}

func TestLoginRequiresCredentials(t *testing.T) {
	c, b := newTestClient(t, "")

	_, err := c.Login(context.Background(), Credentials{UserName: " "})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, b.Requests())
}

func TestRegister(t *testing.T) {
	c, _ := newTestClient(t, "")
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, NewRegistration("newbie", "New Bie", "pw", domain.RoleAdmin)))

	err := c.Register(ctx, NewRegistration("newbie", "New Bie", "pw"))
	require.Error(t, err)
	assert.Equal(t, "User name already taken", UserMessage(err, ""))

	s, err := c.Login(ctx, Credentials{UserName: "newbie", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, s.Roles)
}

func TestNewRegistrationDefaultsToUser(t *testing.T) {
	reg := NewRegistration("a", "b", "c")

	assert.Equal(t, []domain.Role{{RoleName: "USER", RoleDescription: "User role"}}, reg.Roles)
}

func TestRequestsCarryBearerAndRequestID(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)

	_, err := c.ListCategories(context.Background())
	require.NoError(t, err)

	reqs := b.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+backendtest.AdminToken, reqs[0].Header.Get("Authorization"))
	_, err = uuid.Parse(reqs[0].Header.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, "stale-token")

	_, err := c.ListCategories(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCategoryCRUDAndOrder(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)
	ctx := context.Background()

	require.NoError(t, c.CreateCategory(ctx, CategoryInput{Title: "Shoes", Description: "Feet"}))
	require.NoError(t, c.CreateCategory(ctx, CategoryInput{Title: "Hats", Description: "Heads"}))

	cats, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)

	require.NoError(t, c.UpdateCategory(ctx, cats[0].ID, CategoryInput{Title: "Boots", Description: "Feet"}))
	got, err := c.GetCategory(ctx, cats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Boots", got.Title)

	require.NoError(t, c.UpdateCategoryOrder(ctx, []int{cats[1].ID, cats[0].ID}))
	assert.Equal(t, [][]int{{cats[1].ID, cats[0].ID}}, b.Orders("categories"))

	require.NoError(t, c.DeleteCategory(ctx, cats[1].ID))
	_, err = c.GetCategory(ctx, cats[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCategoryRequiresFields(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)

	err := c.UpdateCategory(context.Background(), 1, CategoryInput{Title: "x"})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, b.Requests())
}

func TestEmptyOrderIsSentAsArray(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)

	require.NoError(t, c.UpdateProductOrder(context.Background(), nil))

	assert.Equal(t, [][]int{{}}, b.Orders("products"))
}

func TestProductsByCategoryAndConflict(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)
	ctx := context.Background()
	shoes := b.AddCategory(domain.Category{Title: "Shoes", Description: "Feet"})

	cat, err := c.FindCategoryByTitle(ctx, "shoes")
	require.NoError(t, err)
	assert.Equal(t, shoes.ID, cat.ID)

	in := ProductInput{Title: "Sneaker", Description: "Fast", Price: 59.5, CategoryID: cat.ID}
	require.NoError(t, c.CreateProduct(ctx, in))

	err = c.CreateProduct(ctx, in)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "Product title must be unique.", UserMessage(err, "Something went wrong"))

	products, err := c.ListProducts(ctx, "Shoes")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Sneaker", products[0].Title)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, shoes.ID, products[0].Category.ID)

	in.Price = 49
	require.NoError(t, c.UpdateProduct(ctx, products[0].ID, in))
	p, err := c.GetProduct(ctx, products[0].ID)
	require.NoError(t, err)
	assert.InDelta(t, 49.0, p.Price, 0.001)

	_, err = c.FindCategoryByTitle(ctx, "Gloves")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateProductValidates(t *testing.T) {
	c, _ := newTestClient(t, backendtest.AdminToken)

	err := c.CreateProduct(context.Background(), ProductInput{Title: "x", Description: "y", Price: 1})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScopesImplementOrderInterfaces(t *testing.T) {
	c, b := newTestClient(t, backendtest.AdminToken)
	ctx := context.Background()
	a := b.AddCategory(domain.Category{Title: "A", PositionOrder: 1})
	z := b.AddCategory(domain.Category{Title: "Z", PositionOrder: 0})

	scope := c.Categories()
	cats, err := scope.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	require.NoError(t, scope.Persist(ctx, []int{a.ID, z.ID}))
	require.NoError(t, scope.Delete(ctx, z.ID))
	assert.Len(t, b.Categories(), 1)

	products := c.Products("A")
	assert.Equal(t, "A", products.Category())
	list, err := products.Fetch(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogFetchesEveryCategory(t *testing.T) {
	c, b := newTestClient(t, backendtest.UserToken)
	hats := b.AddCategory(domain.Category{Title: "Hats", PositionOrder: 2})
	shoes := b.AddCategory(domain.Category{Title: "Shoes", PositionOrder: 1})
	b.AddProduct(domain.Product{Title: "Beanie", Category: &hats, PositionOrder: 1})
	b.AddProduct(domain.Product{Title: "Fedora", Category: &hats, PositionOrder: 0})
	b.AddProduct(domain.Product{Title: "Loafer", Category: &shoes})

	sections, err := c.Catalog(context.Background())

	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Shoes", sections[0].Category.Title)
	assert.Equal(t, "Hats", sections[1].Category.Title)
	require.Len(t, sections[1].Products, 2)
	assert.Equal(t, "Fedora", sections[1].Products[0].Title)
}

func TestCatalogFailsOnAnyCategory(t *testing.T) {
	c, b := newTestClient(t, backendtest.UserToken)
	b.AddCategory(domain.Category{Title: "Hats"})
	b.AddCategory(domain.Category{Title: "Shoes"})
	b.Fail(http.MethodGet, "/api/products/category/Shoes", http.StatusInternalServerError)

	_, err := c.Catalog(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "injected failure", apiErr.Message)
}
