package main

import (
	"fmt"
	"os"
	"time"

	"slipway/cmd/slipway/ui"
	"slipway/config"
	"slipway/internal/adapter/sqlite"

	"github.com/spf13/cobra"
)

const errColumnWidth = 48

func historyCmd(dir *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded launch sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}

			journal, err := sqlite.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open session journal: %w", err)
			}
			defer journal.Close()

			sessions, err := journal.List(cmd.Context(), cfg.App, limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(os.Stderr, ui.InfoMsg("no launches recorded yet; run slipway up"))
				return nil
			}

			rows := make([][]string, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, []string{
					humanTime(s.StartedAt),
					s.Phase.String(),
					s.FinishedAt.Sub(s.StartedAt).Round(100 * time.Millisecond).String(),
					s.Image,
					truncate(s.Error, errColumnWidth),
				})
			}
			fmt.Println(ui.Table([]string{"Started", "Result", "Duration", "Image", "Error"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to list")
	return cmd
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
