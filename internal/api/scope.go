package api

import (
	"context"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

// CategoryScope is the category list as an order.Source and order.Syncer.
type CategoryScope struct {
	client *Client
}

func (c *Client) Categories() CategoryScope {
	return CategoryScope{client: c}
}

func (s CategoryScope) Fetch(ctx context.Context) ([]domain.Category, error) {
	return s.client.ListCategories(ctx)
}

func (s CategoryScope) Delete(ctx context.Context, id int) error {
	return s.client.DeleteCategory(ctx, id)
}

func (s CategoryScope) Persist(ctx context.Context, ids []int) error {
	return s.client.UpdateCategoryOrder(ctx, ids)
}

// ProductScope is the product list of one category.
type ProductScope struct {
	client   *Client
	category string
}

func (c *Client) Products(category string) ProductScope {
	return ProductScope{client: c, category: category}
}

func (s ProductScope) Category() string {
	return s.category
}

func (s ProductScope) Fetch(ctx context.Context) ([]domain.Product, error) {
	return s.client.ListProducts(ctx, s.category)
}

func (s ProductScope) Delete(ctx context.Context, id int) error {
	return s.client.DeleteProduct(ctx, id)
}

func (s ProductScope) Persist(ctx context.Context, ids []int) error {
	return s.client.UpdateProductOrder(ctx, ids)
}
