package main

import (
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/shopfront/internal/api"
	"git.sr.ht/~jakintosh/shopfront/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login USER PASSWORD",
		Short: "Sign in and keep the session locally",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.client.Login(cmd.Context(), api.Credentials{
				UserName: args[0],
				Password: args[1],
			})
			if err != nil {
				return errors.New(api.UserMessage(err, "Login failed. Please try again."))
			}
			if err := a.sessions.Begin(sess); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.FullName, strings.Join(sess.Roles, ", "))
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			s := a.sessions.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\nroles: %s\nhome: %s\n",
				s.FullName, s.UserName, strings.Join(s.Roles, ", "), a.sessions.Landing())
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "register USER FULLNAME PASSWORD",
		Short: "Create a backend account",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleUser
			if admin {
				role = domain.RoleAdmin
			}
			reg := api.NewRegistration(args[0], args[1], args[2], role)
			if err := a.client.Register(cmd.Context(), reg); err != nil {
				return errors.New(api.UserMessage(err, "Registration failed. Please try again."))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s; sign in with \"shopfront login\"\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "register with the ADMIN role")
	return cmd
}
