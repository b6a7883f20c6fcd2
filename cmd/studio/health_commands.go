package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediastudio/internal/preflight"
	"mediastudio/internal/telemetry"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.apiClient()
			start := time.Now()
			healthy := client.Health(cmd.Context())
			elapsed := time.Since(start).Round(time.Millisecond)

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"base_url":   client.BaseURL(),
					"healthy":    healthy,
					"elapsed_ms": elapsed.Milliseconds(),
				})
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			kind, message := statusOK, fmt.Sprintf("%s reachable (%s)", client.BaseURL(), elapsed)
			if !healthy {
				kind, message = statusError, fmt.Sprintf("%s unreachable", client.BaseURL())
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatusLine("Backend", kind, message, colorize))
			if !healthy {
				return fmt.Errorf("backend unreachable")
			}
			return nil
		},
	}
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run readiness checks for backend, telemetry, and local directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := preflight.RunAll(cmd.Context(), ctx.configValue(), ctx.apiClient(), telemetry.WebSocketDialer{})
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
			}
			if failed := preflight.Failed(results); failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(results))
			}
			return nil
		},
	}
}
