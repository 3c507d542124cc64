package main

import (
	"github.com/spf13/cobra"

	"solvecheck/internal/logging"
	"solvecheck/internal/server"
)

func newServeCommand(cli *CLI) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the verify pipeline over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cli.cfg.Server.Addr = addr
			}

			container, cleanup, err := cli.buildContainer()
			if err != nil {
				return err
			}
			defer cleanup()

			serverCfg := server.DefaultConfig()
			serverCfg.Addr = cli.cfg.Server.Addr
			serverCfg.AllowedOrigins = cli.cfg.Server.AllowedOrigins
			serverCfg.Debug = cli.cfg.Observability.Logging.Level == "debug"

			srv, err := server.New(server.Deps{
				Pipeline: container.Pipeline,
				Tools:    container.Tools,
				Metrics:  container.Observability.Metrics.Handler(),
				Tracer:   container.Observability.Tracer,
				Logger:   logging.NewComponentLogger("HTTPServer"),
				Version:  appVersion(),
			}, serverCfg)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}
