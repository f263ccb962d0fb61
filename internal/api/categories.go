package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

type CategoryInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: both title and description are required", ErrInvalidInput)
	}
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	_, err := c.do(ctx, http.MethodGet, apiPrefix+"/categories", nil, &cats)
	if err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func (c *Client) GetCategory(ctx context.Context, id int) (*domain.Category, error) {
	var cat domain.Category
	if _, err := c.do(ctx, http.MethodGet, apiPrefix+"/categories/"+strconv.Itoa(id), nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// FindCategoryByTitle resolves a category from its display title, ignoring
// case.
func (c *Client) FindCategoryByTitle(ctx context.Context, title string) (*domain.Category, error) {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Title, title) {
			return &cats[i], nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", title, ErrNotFound)
}

func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, apiPrefix+"/categories/admin", in, nil)
	return err
}

func (c *Client) UpdateCategory(ctx context.Context, id int, in CategoryInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, apiPrefix+"/categories/admin/"+strconv.Itoa(id), in, nil)
	return err
}

func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, apiPrefix+"/categories/admin/"+strconv.Itoa(id), nil, nil)
	return err
}

// UpdateCategoryOrder replaces the backend's category order with ids.
func (c *Client) UpdateCategoryOrder(ctx context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	_, err := c.do(ctx, http.MethodPut, apiPrefix+"/categories/admin/update-order", ids, nil)
	return err
}
