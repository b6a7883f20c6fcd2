package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediastudio/internal/journal"
	"mediastudio/internal/logging"
	"mediastudio/internal/voice"
)

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	voiceCmd := &cobra.Command{
		Use:   "voice",
		Short: "Talk to the voice assistant",
	}
	voiceCmd.AddCommand(newVoiceSayCommand(ctx))
	voiceCmd.AddCommand(newVoiceRecordCommand(ctx))
	return voiceCmd
}

// newAssistant wires an assistant whose turns are appended to the journal.
func (c *commandContext) newAssistant(cmdCtx context.Context, maxRecord time.Duration) (*voice.Assistant, func(), error) {
	cfg := c.configValue()
	logger := c.loggerValue()
	store, err := c.openJournal()
	if err != nil {
		return nil, nil, err
	}
	assistant := voice.NewAssistant(c.apiClient(), voice.Config{
		UserID:    cfg.API.UserID,
		Language:  cfg.API.Language,
		MaxRecord: maxRecord,
		Logger:    logger,
		OnTurn: func(turn voice.Turn) {
			if err := store.RecordTurn(cmdCtx, journal.Turn{
				UserID:         cfg.API.UserID,
				Role:           string(turn.Role),
				Text:           turn.Text,
				Intent:         turn.Intent,
				ProcessingTime: turn.ProcessingTime,
				CreatedAt:      turn.At,
			}); err != nil {
				logger.Warn("journal turn write failed", logging.Error(err))
			}
		},
	})
	return assistant, func() { _ = store.Close() }, nil
}

func newVoiceSayCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>",
		Short: "Send typed input to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assistant, done, err := ctx.newAssistant(cmd.Context(), 0)
			if err != nil {
				return err
			}
			defer done()
			submitErr := assistant.SubmitText(cmd.Context(), strings.Join(args, " "))
			return printAssistant(cmd, ctx, assistant, submitErr)
		},
	}
}

func newVoiceRecordCommand(ctx *commandContext) *cobra.Command {
	var limit time.Duration
	cmd := &cobra.Command{
		Use:   "record <audio-file>",
		Short: "Capture an audio clip from a file and submit it",
		Long: "Captures audio from the given file as if it were a microphone. Recording stops at the\n" +
			"configured limit (voice.max_record_seconds) or on interrupt, then the clip is submitted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				limit = ctx.configValue().MaxRecordDuration()
			}
			assistant, done, err := ctx.newAssistant(cmd.Context(), limit)
			if err != nil {
				return err
			}
			defer done()

			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)
			go func() {
				for range interrupts {
					assistant.Stop()
				}
			}()

			device := voice.NewFileDevice(args[0])
			if !ctx.jsonOutput() {
				fmt.Fprintf(cmd.ErrOrStderr(), "Recording for up to %s (Ctrl-C to stop early)\n", limit)
			}
			recordErr := assistant.Record(context.WithoutCancel(cmd.Context()), device)
			return printAssistant(cmd, ctx, assistant, recordErr)
		},
	}
	cmd.Flags().DurationVar(&limit, "limit", 0, "Recording limit (defaults to voice.max_record_seconds)")
	return cmd
}

func printAssistant(cmd *cobra.Command, ctx *commandContext, assistant *voice.Assistant, actionErr error) error {
	state := assistant.State()
	history := assistant.History()
	if ctx.jsonOutput() {
		if err := writeJSON(cmd, map[string]any{
			"state":   state,
			"history": history,
		}); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, turn := range history {
			label := "You"
			if turn.Role == voice.RoleAssistant {
				label = "Assistant"
			}
			line := fmt.Sprintf("%s: %s", label, turn.Text)
			if turn.Intent != "" {
				line += fmt.Sprintf("  (intent: %s, %.2fs)", turn.Intent, turn.ProcessingTime)
			}
			fmt.Fprintln(out, line)
		}
	}
	if actionErr != nil {
		if state.Error != "" {
			return fmt.Errorf("%s", state.Error)
		}
		return actionErr
	}
	if state.Error != "" {
		return fmt.Errorf("%s", state.Error)
	}
	return nil
}
