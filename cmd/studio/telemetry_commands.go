package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mediastudio/internal/journal"
	"mediastudio/internal/telemetry"
)

func newTelemetryCommand(ctx *commandContext) *cobra.Command {
	telemetryCmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Live pipeline telemetry",
	}
	telemetryCmd.AddCommand(newTelemetryWatchCommand(ctx))
	return telemetryCmd
}

func newTelemetryWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		record   bool
		count    int
		duration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream telemetry events, reconnecting until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger := ctx.loggerValue()
			record = record || cfg.Telemetry.Record

			runCtx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if duration > 0 {
				runCtx, cancel = context.WithTimeout(runCtx, duration)
				defer cancel()
			}

			var recorder *journal.Recorder
			if record {
				store, err := ctx.openJournal()
				if err != nil {
					return err
				}
				defer store.Close()
				recorder, err = journal.NewRecorder(store, logger)
				if err != nil {
					return err
				}
				defer recorder.Close()
			}

			out := cmd.OutOrStdout()
			jsonOut := ctx.jsonOutput()
			var (
				mu       sync.Mutex
				received int
			)
			onEvent := func(event telemetry.Event) {
				if recorder != nil {
					recorder.Record(event)
				}
				mu.Lock()
				defer mu.Unlock()
				if count > 0 && received >= count {
					return
				}
				received++
				if jsonOut {
					_ = writeJSON(cmd, event)
				} else {
					fmt.Fprintf(out, "%s  %-36s %s\n", event.Timestamp, event.Type, event.Summary())
				}
				if count > 0 && received >= count {
					cancel()
				}
			}
			colorize := shouldColorize(out)
			onState := func(state telemetry.State) {
				if jsonOut {
					return
				}
				kind := statusInfo
				switch state {
				case telemetry.StateConnected:
					kind = statusOK
				case telemetry.StateDisconnected:
					kind = statusWarn
				}
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine("Telemetry", kind, string(state), colorize))
			}

			channel := telemetry.NewChannel(telemetry.Options{
				URL:            ctx.apiClient().TelemetryURL(),
				ReconnectDelay: cfg.ReconnectDelay(),
				BufferSize:     cfg.Telemetry.BufferSize,
				Logger:         logger,
				OnEvent:        onEvent,
				OnState:        onState,
			})
			if err := channel.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()
			_ = channel.Close()

			if recorder != nil && !jsonOut {
				fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %d events (%d failed)\n", recorder.Recorded(), recorder.Failed())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "Append received events to the local journal")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many events (0 = unlimited)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Exit after this long (0 = until interrupted)")
	return cmd
}

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect locally recorded telemetry and conversations",
	}
	journalCmd.AddCommand(newJournalEventsCommand(ctx))
	journalCmd.AddCommand(newJournalConversationCommand(ctx))
	journalCmd.AddCommand(newJournalPruneCommand(ctx))
	return journalCmd
}

func newJournalEventsCommand(ctx *commandContext) *cobra.Command {
	var (
		limit     int
		eventType string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recorded telemetry events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			records, err := store.RecentEvents(cmd.Context(), eventType, limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				events := make([]telemetry.Event, 0, len(records))
				for _, rec := range records {
					events = append(events, rec.Event)
				}
				return writeJSON(cmd, events)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.Event.Timestamp,
					rec.Event.Type,
					rec.Event.Summary(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Time", "Event", "Data"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum events to list")
	cmd.Flags().StringVar(&eventType, "type", "", "Only list events of this type")
	return cmd
}

func newJournalConversationCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "List recorded voice turns for the configured user",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			turns, err := store.Conversation(cmd.Context(), ctx.configValue().API.UserID, limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, turns)
			}
			if len(turns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No conversation recorded")
				return nil
			}
			rows := make([][]string, 0, len(turns))
			for _, turn := range turns {
				rows = append(rows, []string{turn.CreatedAt.Local().Format("2006-01-02 15:04:05"), turn.Role, turn.Text, turn.Intent})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Time", "Role", "Text", "Intent"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum turns to list")
	return cmd
}

func newJournalPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest telemetry events",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.PruneEvents(cmd.Context(), keep); err != nil {
				return err
			}
			remaining, err := store.CountEvents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d events kept\n", remaining)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 1000, "Number of newest events to keep")
	return cmd
}
