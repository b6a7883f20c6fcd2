package main

import (
	"github.com/spf13/cobra"

	"mediastudio/internal/demo"
)

func newDemoCommand(ctx *commandContext) *cobra.Command {
	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Local demo backend",
	}
	demoCmd.AddCommand(newDemoServeCommand(ctx))
	return demoCmd
}

func newDemoServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every backend endpoint with fixture data until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if bind == "" {
				bind = cfg.Demo.Bind
			}
			server := demo.NewServer(demo.Options{
				EventInterval: cfg.DemoEventInterval(),
				Logger:        ctx.loggerValue(),
			})
			return server.ListenAndServe(cmd.Context(), bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to demo.bind)")
	return cmd
}
