package main

import (
	"fmt"
	"os"

	"slipway/cmd/slipway/ui"
	"slipway/internal/logging"
	"slipway/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug   bool
		noColor bool
		dir     string
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "slipway",
		Short:         "One-command launcher for the supplier matcher web app",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}
			ui.ConfigureInteraction(noColor)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colors and animation")
	root.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "App directory holding the project files")

	root.AddCommand(upCmd(&dir))
	root.AddCommand(downCmd(&dir))
	root.AddCommand(statusCmd(&dir))
	root.AddCommand(logsCmd(&dir))
	root.AddCommand(historyCmd(&dir))
	root.AddCommand(recipeCmd(&dir))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
