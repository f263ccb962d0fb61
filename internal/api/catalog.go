package api

import (
	"cmp"
	"context"
	"slices"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"golang.org/x/sync/errgroup"
)

const catalogFetchLimit = 4

type CatalogSection struct {
	Category domain.Category
	Products []domain.Product
}

// Catalog fetches every category and its products. Product lists are
// fetched concurrently, at most catalogFetchLimit at a time, and the first
// failure cancels the rest.
func (c *Client) Catalog(ctx context.Context) ([]CatalogSection, error) {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(cats, func(a, b domain.Category) int {
		return cmp.Compare(a.PositionOrder, b.PositionOrder)
	})

	sections := make([]CatalogSection, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogFetchLimit)
	for i, cat := range cats {
		i, cat := i, cat // per-iteration copy: go.mod targets go1.21 loop semantics
		sections[i].Category = cat
		g.Go(func() error {
			products, err := c.ListProducts(gctx, cat.Title)
			if err != nil {
				return err
			}
			slices.SortStableFunc(products, func(a, b domain.Product) int {
				return cmp.Compare(a.PositionOrder, b.PositionOrder)
			})
			sections[i].Products = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sections, nil
}
