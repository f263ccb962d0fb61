package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

type ProductInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int     `json:"categoryId"`
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case in.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case in.CategoryID == 0:
		return fmt.Errorf("%w: category not found", ErrInvalidInput)
	}
	return nil
}

func (c *Client) ListProducts(ctx context.Context, categoryName string) ([]domain.Product, error) {
	var products []domain.Product
	path := apiPrefix + "/products/category/" + url.PathEscape(categoryName)
	_, err := c.do(ctx, http.MethodGet, path, nil, &products)
	if err != nil && !errors.Is(err, errNoData) {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	var p domain.Product
	if _, err := c.do(ctx, http.MethodGet, apiPrefix+"/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPost, apiPrefix+"/products/admin", in, nil)
	return err
}

func (c *Client) UpdateProduct(ctx context.Context, id int, in ProductInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, apiPrefix+"/products/admin/"+strconv.Itoa(id), in, nil)
	return err
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, apiPrefix+"/products/admin/"+strconv.Itoa(id), nil, nil)
	return err
}

// UpdateProductOrder replaces the backend's product order with ids.
func (c *Client) UpdateProductOrder(ctx context.Context, ids []int) error {
	if ids == nil {
		ids = []int{}
	}
	_, err := c.do(ctx, http.MethodPut, apiPrefix+"/products/admin/update-order", ids, nil)
	return err
}
