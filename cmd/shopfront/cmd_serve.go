package main

import (
	"git.sr.ht/~jakintosh/shopfront/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := web.NewServer(web.Options{
				Client:   a.client,
				Sessions: a.sessions,
				Store:    a.store,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("starting web console",
				zap.String("addr", a.cfg.Server.Addr),
				zap.String("api", a.client.BaseURL()),
			)
			return srv.Run(cmd.Context(), a.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (env: SHOPFRONT_ADDR)")
	return cmd
}
