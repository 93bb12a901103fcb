package main

import (
	"fmt"

	"slipway/config"
	"slipway/internal/recipe"

	"github.com/spf13/cobra"
)

func recipeCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "recipe",
		Short: "Print the rendered Dockerfile for the configured recipe",
		Long: `Recipe renders the exact Dockerfile slipway feeds to the image
builder, with the configured health probe schedule applied. Useful for
inspecting what a build would do, or for building by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}
			df, err := recipe.Render(cfg.Recipe())
			if err != nil {
				return err
			}
			fmt.Print(df.Content)
			return nil
		},
	}
}
