package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Show every category with its products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			sections, err := a.client.Catalog(cmd.Context())
			if err != nil {
				a.reportUnauthorized(err)
				return err
			}
			w := cmd.OutOrStdout()
			for i, sec := range sections {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s\n%s\n", sec.Category.Title, strings.Repeat("-", len(sec.Category.Title)))
				if len(sec.Products) == 0 {
					fmt.Fprintln(w, "  (empty)")
				}
				for _, p := range sec.Products {
					fmt.Fprintf(w, "  %-6d %-24s %8.2f\n", p.ID, p.Title, p.Price)
				}
			}
			return nil
		},
	}
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart and its total",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				items, err := a.store.GetCart()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(w, "Your cart is empty.")
					return nil
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ITEM\tTITLE\tPRICE")
				total := 0.0
				for _, item := range items {
					total += item.Price
					fmt.Fprintf(tw, "%s\t%s\t%.2f\n", item.ID, item.Title, item.Price)
				}
				fmt.Fprintf(tw, "\tTOTAL\t%.2f\n", total)
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "add PRODUCT_ID",
			Short: "Add a product to the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				p, err := a.client.GetProduct(cmd.Context(), id)
				if err != nil {
					a.reportUnauthorized(err)
					return err
				}
				item, err := a.store.AddCartItem(p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", item.Title, item.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove ITEM_ID",
			Short: "Remove one item from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				item, err := a.store.RemoveCartItem(args[0])
				if err != nil {
					return fmt.Errorf("cart item %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", item.Title)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.store.ClearCart(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
				return nil
			},
		},
	)
	return cmd
}
