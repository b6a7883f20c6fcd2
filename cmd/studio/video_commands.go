package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/wizard"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Video upload, analysis, and export workflow",
	}
	videoCmd.AddCommand(newVideoProcessCommand(ctx))
	videoCmd.AddCommand(newVideoPlatformsCommand())
	return videoCmd
}

func newVideoProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		platforms []string
		noExport  bool
	)
	cmd := &cobra.Command{
		Use:   "process <video-file>",
		Short: "Upload, analyze, and export a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read video: %w", err)
			}
			if len(platforms) == 0 {
				platforms = ctx.configValue().Videos.DefaultPlatforms
			}

			w := wizard.New(ctx.apiClient(), wizard.WithLogger(ctx.loggerValue()))
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			colorize := shouldColorize(errOut)
			progress := func(step wizard.Step, message string) {
				if !ctx.jsonOutput() {
					fmt.Fprintln(errOut, renderStatusLine(step.Label(), statusOK, message, colorize))
				}
			}
			fail := func(step wizard.Step, err error) error {
				if msg := w.Error(); msg != "" {
					return fmt.Errorf("%s: %s", step.Label(), msg)
				}
				return fmt.Errorf("%s: %w", step.Label(), err)
			}

			if err := w.Upload(cmd.Context(), apiclient.Upload{Filename: filepath.Base(args[0]), Content: content}); err != nil {
				return fail(wizard.StepUpload, err)
			}
			progress(wizard.StepUpload, w.Session().VideoID)

			if err := w.Analyze(cmd.Context()); err != nil {
				return fail(wizard.StepAnalyze, err)
			}
			session := w.Session()
			progress(wizard.StepAnalyze, fmt.Sprintf("%d scenes, %d captions, %d thumbnails",
				len(session.Scenes), len(session.Captions), len(session.Thumbnails)))

			if !noExport {
				if err := w.ProceedToExport(); err != nil {
					return fail(wizard.StepEdit, err)
				}
				if err := w.Export(cmd.Context(), platforms); err != nil {
					return fail(wizard.StepExport, err)
				}
				session = w.Session()
				progress(wizard.StepExport, fmt.Sprintf("%s (%s)", session.ExportStatus, strings.Join(session.Platforms, ", ")))
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"session":  session,
					"exported": w.Exported(),
				})
			}
			renderSession(out, session, colorize && shouldColorize(out))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Export platforms (defaults to videos.default_platforms)")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "Stop after analysis")
	return cmd
}

func renderSession(out io.Writer, session wizard.Session, colorize bool) {
	fmt.Fprintln(out, renderKeyValues([][2]string{
		{"Video", session.VideoID},
		{"File", session.Filename},
		{"Duration", wizard.FormatTimestamp(session.Duration)},
		{"Step", session.Step.Label()},
	}))

	if groups := wizard.SummarizeScenes(session.Scenes); len(groups) > 0 {
		for _, line := range renderSectionHeader("Scenes", colorize) {
			fmt.Fprintln(out, line)
		}
		rows := make([][]string, 0, len(groups))
		for _, group := range groups {
			rows = append(rows, []string{group.Label, fmt.Sprint(group.Count), wizard.Percent(group.MaxImportance)})
		}
		fmt.Fprintln(out, renderTable([]string{"Type", "Count", "Peak importance"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	}

	if len(session.Captions) > 0 {
		rows := make([][]string, 0, len(session.Captions))
		for _, caption := range session.Captions {
			rows = append(rows, []string{
				wizard.FormatTimestamp(caption.StartTime) + "-" + wizard.FormatTimestamp(caption.EndTime),
				caption.Text,
				wizard.Percent(caption.Confidence),
			})
		}
		fmt.Fprintln(out, renderTable([]string{"Time", "Caption", "Confidence"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	}

	if len(session.Thumbnails) > 0 {
		rows := make([][]string, 0, len(session.Thumbnails))
		for _, thumb := range session.Thumbnails {
			rows = append(rows, []string{thumb.VariantID, thumb.Style, wizard.Percent(thumb.CTRPotential), yesNo(thumb.HasText)})
		}
		fmt.Fprintln(out, renderTable([]string{"Variant", "Style", "CTR potential", "Text"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	}
}

func newVideoPlatformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "platforms",
		Short:       "List export platforms",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(wizard.Platforms))
			for _, platform := range wizard.Platforms {
				rows = append(rows, []string{platform, wizard.PlatformLabel(platform)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Platform", "Format"}, rows, nil))
			return nil
		},
	}
}
