package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediastudio/internal/admin"
)

func newAdminCommand(ctx *commandContext) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Backend statistics and pipeline health",
	}
	adminCmd.AddCommand(newAdminStatsCommand(ctx))
	adminCmd.AddCommand(newAdminPipelineCommand(ctx))
	adminCmd.AddCommand(newAdminTriggerCommand(ctx))
	return adminCmd
}

func (c *commandContext) adminService() *admin.Service {
	return admin.NewService(c.apiClient(),
		admin.WithDemoMode(c.configValue().DemoMode),
		admin.WithLogger(c.loggerValue()),
	)
}

func newAdminStatsCommand(ctx *commandContext) *cobra.Command {
	var events int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the system overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := ctx.adminService().Overview(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"demo":  overview.Demo,
					"stats": overview.Stats,
				})
			}
			out := cmd.OutOrStdout()
			if overview.Demo {
				fmt.Fprintln(out, renderStatusLine("Data source", statusWarn, "demo fixtures (backend unavailable)", shouldColorize(out)))
			}
			stats := overview.Stats
			pipeline := stats.AIPipelineStats
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"Uptime", stats.Uptime},
				{"Total requests", strconv.Itoa(stats.TotalRequests)},
				{"Active connections", strconv.Itoa(stats.ActiveConnections)},
				{"Processed", strconv.Itoa(pipeline.TotalProcessed)},
				{"Avg processing", fmt.Sprintf("%.2fs", pipeline.AvgProcessingTime)},
				{"Success rate", fmt.Sprintf("%.0f%%", pipeline.SuccessRate*100)},
				{"Top intent", pipeline.MostCommonIntent},
			}))
			recent := overview.RecentEvents(events)
			if len(recent) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(recent))
			for _, event := range recent {
				rows = append(rows, []string{event.Timestamp, event.Type, event.Summary()})
			}
			fmt.Fprintln(out, renderTable([]string{"Time", "Event", "Data"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVar(&events, "events", 10, "Number of recent events to show")
	return cmd
}

func newAdminPipelineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Show pipeline component and external service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := ctx.adminService().Overview(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"demo":     overview.Demo,
					"pipeline": overview.Pipeline,
				})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			sections := []struct {
				title   string
				entries []admin.Entry
			}{
				{"Pipeline components", admin.SortedStatus(overview.Pipeline.Components)},
				{"External services", admin.SortedStatus(overview.Pipeline.ExternalServices)},
			}
			for _, section := range sections {
				for _, line := range renderSectionHeader(section.title, colorize) {
					fmt.Fprintln(out, line)
				}
				for _, entry := range section.entries {
					fmt.Fprintln(out, renderStatusLine(entry.Name, componentKind(entry.Status), entry.Status, colorize))
				}
			}
			if overview.Demo {
				fmt.Fprintln(out, renderStatusLine("Data source", statusWarn, "demo fixtures", colorize))
			}
			return nil
		},
	}
}

func newAdminTriggerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ask the backend to broadcast a test telemetry event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ctx.adminService().TriggerTestEvent(cmd.Context()) {
				return fmt.Errorf("trigger test event failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test event triggered")
			return nil
		},
	}
}
