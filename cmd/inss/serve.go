package main

import (
	"github.com/rgehrsitz/inss-calc/internal/config"
	"github.com/rgehrsitz/inss-calc/internal/server"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initializeLogger(config.DefaultConfiguration().Logging, a.settings)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			addr, _ := cmd.Flags().GetString("addr")
			return server.New(logger).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	return cmd
}
