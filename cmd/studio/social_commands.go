package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediastudio/internal/social"
)

func newSocialCommand(ctx *commandContext) *cobra.Command {
	socialCmd := &cobra.Command{
		Use:   "social",
		Short: "Brand content generation",
	}
	socialCmd.AddCommand(newSocialBrandsCommand(ctx))
	socialCmd.AddCommand(newSocialGenerateCommand(ctx))
	return socialCmd
}

func newSocialBrandsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List brand profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ctx.configValue().Paths.BrandsDir
			brands, err := social.LoadBrands(dir)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, brands)
			}
			if len(brands) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No brand profiles in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(brands))
			for _, brand := range brands {
				rows = append(rows, []string{brand.ID, brand.Name, brand.Tone, strings.Join(brand.Platforms, ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Tone", "Platforms"}, rows, nil))
			return nil
		},
	}
}

func newSocialGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		brandID   string
		topic     string
		platforms []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate posts about a topic for a brand",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if strings.TrimSpace(brandID) == "" {
				brandID = cfg.Social.DefaultBrand
			}
			brands, err := social.LoadBrands(cfg.Paths.BrandsDir)
			if err != nil {
				return err
			}
			brand, err := social.FindBrand(brands, brandID)
			if err != nil {
				return err
			}

			gen := social.NewGenerator(ctx.apiClient(), cfg.Social.CampaignGoal, ctx.loggerValue())
			pkg, err := gen.Generate(cmd.Context(), brand, topic, platforms...)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, pkg)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, name := range social.PlatformNames(pkg) {
				post := pkg.Platforms[name]
				for _, line := range renderSectionHeader(name, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, post.Caption)
				if len(post.Hashtags) > 0 {
					fmt.Fprintln(out, strings.Join(post.Hashtags, " "))
				}
				fmt.Fprintln(out, renderStatusLine("Status", statusInfo, post.Status, colorize))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&brandID, "brand", "", "Brand profile id (defaults to social.default_brand)")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic to write about")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Override the brand's platforms")
	return cmd
}
