package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"git.sr.ht/~jakintosh/shopfront/internal/order"
	"github.com/spf13/cobra"
)

func newCategoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage categories and their display order",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.requireSession(domain.RoleAdmin)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories in display order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				v := a.categoryView()
				if err := v.Load(cmd.Context()); err != nil {
					return err
				}
				printCategories(cmd.OutOrStdout(), v.Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "add TITLE DESCRIPTION",
			Short: "Create a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				in := api.CategoryInput{Title: args[0], Description: args[1]}
				if err := a.client.CreateCategory(cmd.Context(), in); err != nil {
					return a.apiError(err, "Failed to add category")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "update ID TITLE DESCRIPTION",
			Short: "Change a category's title and description",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				in := api.CategoryInput{Title: args[1], Description: args[2]}
				if err := a.client.UpdateCategory(cmd.Context(), id, in); err != nil {
					return a.apiError(err, "Failed to update category")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %d\n", id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a category and close the gap in the order",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				v := a.categoryView()
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
				printCategories(cmd.OutOrStdout(), v.Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "move SOURCE TARGET",
			Short: "Move category SOURCE to where TARGET is",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				source, target, err := parseMove(args)
				if err != nil {
					return err
				}
				v := a.categoryView()
				if err := v.Load(cmd.Context()); err != nil {
					return err
				}
				return runMove(cmd, v, source, target, printCategories)
			},
		},
	)
	return cmd
}

func (a *app) categoryView() *order.View[domain.Category] {
	scope := a.client.Categories()
	return order.NewView[domain.Category](scope, scope, order.ViewOptions{
		Name:   "categories",
		Auth:   a.sessions,
		Logger: a.logger,
	})
}

// runMove applies one move and waits for the persist, so a failed persist
// is reported before the process exits.
func runMove[E order.Entity](cmd *cobra.Command, v *order.View[E], source, target int, print func(io.Writer, []E)) error {
	moved, err := v.Move(cmd.Context(), source, target)
	if err != nil {
		return err
	}
	v.Wait()
	if !moved {
		fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to move")
	}
	print(cmd.OutOrStdout(), v.Items())
	if b := v.Banner(); b != nil {
		return fmt.Errorf("%s: %w", b.Message(), b.Err)
	}
	return nil
}

func printCategories(w io.Writer, cats []domain.Category) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Title, c.Description)
	}
	tw.Flush()
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseMove(args []string) (int, int, error) {
	source, err := parseID(args[0])
	if err != nil {
		return 0, 0, err
	}
	target, err := parseID(args[1])
	if err != nil {
		return 0, 0, err
	}
	return source, target, nil
}
