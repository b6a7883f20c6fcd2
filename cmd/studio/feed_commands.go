package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediastudio/internal/apiclient"
	"mediastudio/internal/feed"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Personalized article feed",
	}
	feedCmd.AddCommand(newFeedListCommand(ctx))
	feedCmd.AddCommand(newFeedTrackCommand(ctx, "like", feed.ActionLike, "Like an article"))
	feedCmd.AddCommand(newFeedTrackCommand(ctx, "click", feed.ActionClick, "Record that an article was opened"))
	feedCmd.AddCommand(newFeedTrackCommand(ctx, "share", feed.ActionShare, "Record that an article was shared"))
	return feedCmd
}

func (c *commandContext) newFeed() *feed.Feed {
	cfg := c.configValue()
	return feed.New(c.apiClient(), feed.Config{
		UserID:          cfg.API.UserID,
		Limit:           cfg.Feed.Limit,
		ReadTimeSeconds: cfg.Feed.ReadTimeSeconds,
		ScrollDepth:     cfg.Feed.ScrollDepth,
		Logger:          c.loggerValue(),
	})
}

func newFeedListCommand(ctx *commandContext) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feed articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ctx.newFeed()
			if _, err := f.Refresh(cmd.Context()); err != nil {
				return err
			}
			articles := f.Articles(category)
			if ctx.jsonOutput() {
				return writeJSON(cmd, articles)
			}
			if len(articles) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No articles in %s\n", category)
				return nil
			}
			rows := make([][]string, 0, len(articles))
			for _, article := range articles {
				title := article.Title
				if article.IsExploratory {
					title += " *"
				}
				rows = append(rows, []string{
					article.ID,
					article.Category,
					title,
					article.Source,
					fmt.Sprintf("%.0f%%", article.RecommendationScore*100),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Category", "Title", "Source", "Match"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", feed.CategoryAll, "Filter by category ("+strings.Join(feed.Categories, ", ")+")")
	return cmd
}

func newFeedTrackCommand(ctx *commandContext, use, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <article-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			article := apiclient.Article{ID: strings.TrimSpace(args[0])}
			if err := ctx.newFeed().TrackClick(cmd.Context(), article, action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s\n", action, article.ID)
			return nil
		},
	}
}
