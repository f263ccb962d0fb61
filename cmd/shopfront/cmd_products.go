package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"prod"},
		Short:   "Manage the products of a category",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.requireSession()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list CATEGORY",
			Short: "List a category's products in display order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v := a.productView(args[0])
				if err := v.Load(cmd.Context()); err != nil {
					return err
				}
				printProducts(cmd.OutOrStdout(), v.Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "add CATEGORY TITLE DESCRIPTION PRICE",
			Short: "Create a product",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(domain.RoleAdmin); err != nil {
					return err
				}
				in, err := a.productInput(cmd.Context(), args[0], args[1], args[2], args[3])
				if err != nil {
					return err
				}
				if err := a.client.CreateProduct(cmd.Context(), in); err != nil {
					return a.apiError(err, "Failed to add product")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[1], args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "update CATEGORY ID TITLE DESCRIPTION PRICE",
			Short: "Change a product",
			Args:  cobra.ExactArgs(5),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(domain.RoleAdmin); err != nil {
					return err
				}
				id, err := parseID(args[1])
				if err != nil {
					return err
				}
				in, err := a.productInput(cmd.Context(), args[0], args[2], args[3], args[4])
				if err != nil {
					return err
				}
				if err := a.client.UpdateProduct(cmd.Context(), id, in); err != nil {
					return a.apiError(err, "Failed to update product")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete CATEGORY ID",
			Short: "Delete a product and close the gap in the order",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(domain.RoleAdmin); err != nil {
					return err
				}
				id, err := parseID(args[1])
				if err != nil {
					return err
				}
				v := a.productView(args[0])
				if err := v.Load(cmd.Context()); err != nil {
					return err
				}
				if err := v.Delete(cmd.Context(), id); err != nil {
					return err
				}
				v.Wait()
				if b := v.Banner(); b != nil {
					return b
				}
				printProducts(cmd.OutOrStdout(), v.Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "move CATEGORY SOURCE TARGET",
			Short: "Move product SOURCE to where TARGET is",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(domain.RoleAdmin); err != nil {
					return err
				}
				source, target, err := parseMove(args[1:])
				if err != nil {
					return err
				}
				v := a.productView(args[0])
				if err := v.Load(cmd.Context()); err != nil {
					return err
				}
				return runMove(cmd, v, source, target, printProducts)
			},
		},
	)
	return cmd
}

func (a *app) productView(category string) *order.View[domain.Product] {
	scope := a.client.Products(category)
	return order.NewView[domain.Product](scope, scope, order.ViewOptions{
		Name:   "products/" + category,
		Auth:   a.sessions,
		Logger: a.logger,
	})
}

func (a *app) productInput(ctx context.Context, category, title, description, price string) (api.ProductInput, error) {
	p, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return api.ProductInput{}, fmt.Errorf("invalid price %q", price)
	}
	cat, err := a.client.FindCategoryByTitle(ctx, category)
	if err != nil {
		return api.ProductInput{}, fmt.Errorf("category %q: %w", category, err)
	}
	return api.ProductInput{
		Title:       title,
		Description: description,
		Price:       p,
		CategoryID:  cat.ID,
	}, nil
}

func printProducts(w io.Writer, products []domain.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", p.ID, p.Title, p.Price, p.Description)
	}
	tw.Flush()
}
