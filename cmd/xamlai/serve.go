package main

import (
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/xamlai/web"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web translation form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closeFn, err := a.newProvider(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			srv, err := web.New(web.Options{
				Provider:       p,
				SourceLang:     a.cfg.SourceLang,
				Concurrency:    a.cfg.Concurrency,
				CallTimeout:    a.cfg.CallTimeout,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
				Logger:         a.logger,
			})
			if err != nil {
				return err
			}

			return web.ListenAndServe(cmd.Context(), a.cfg.Server.Addr, srv, a.logger)
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Int("concurrency", 1, "Maximum translation requests in flight per upload")
	return cmd
}
