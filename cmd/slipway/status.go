package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"slipway/cmd/slipway/ui"
	"slipway/config"
	"slipway/internal/adapter/docker"
	"slipway/internal/adapter/sqlite"
	"slipway/internal/launch"

	"github.com/spf13/cobra"
)

func statusCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the instance state and the last launch outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}

			var (
				info    launch.InstanceInfo
				pingErr error
			)
			err = ui.RunWithSpinner(cmd.Context(), "Inspecting", func(ctx context.Context) error {
				rt, err := docker.NewRuntime()
				if err != nil {
					return err
				}
				defer rt.Close()

				if pingErr = rt.Ping(ctx); pingErr != nil {
					return nil
				}
				info, err = rt.InstanceInspect(ctx, cfg.Instance)
				return err
			})
			if err != nil {
				return err
			}

			pairs := []ui.Pair{
				ui.KV("App", cfg.App),
				ui.KV("Instance", cfg.Instance),
			}
			switch {
			case pingErr != nil:
				pairs = append(pairs, ui.KV("Runtime", ui.ErrorStyle.Render("unreachable")))
			case !info.Exists:
				pairs = append(pairs, ui.KV("State", ui.Muted("absent")))
			default:
				pairs = append(pairs,
					ui.KV("State", renderState(info)),
					ui.KV("Health", renderHealth(info.Health)),
				)
				if info.Running {
					pairs = append(pairs, ui.KV("Endpoint", fmt.Sprintf("http://localhost:%d", cfg.Port)))
				}
			}
			pairs = append(pairs, lastLaunchPairs(cmd.Context(), cfg)...)

			fmt.Println(ui.KeyValues("  ", pairs...))
			return nil
		},
	}
}

// lastLaunchPairs reads the most recent journal entry. A missing or
// unreadable journal just means fewer lines.
func lastLaunchPairs(ctx context.Context, cfg config.Config) []ui.Pair {
	journal, err := sqlite.Open(cfg.JournalPath())
	if err != nil {
		slog.Debug("session journal unavailable", "path", cfg.JournalPath(), "error", err)
		return nil
	}
	defer journal.Close()

	last, ok, err := journal.Latest(ctx, cfg.App)
	if err != nil || !ok {
		return nil
	}

	pairs := []ui.Pair{
		ui.KV("Image", last.Image),
		ui.KV("Last Launch", renderOutcome(last.Phase)+" "+ui.Muted(humanTime(last.FinishedAt))),
	}
	if last.Error != "" {
		pairs = append(pairs, ui.KV("Last Error", ui.ErrorStyle.Render(last.Error)))
	}
	return pairs
}

func renderState(info launch.InstanceInfo) string {
	if info.Running {
		return ui.Success(info.Status)
	}
	return ui.Muted(info.Status)
}

func renderHealth(h launch.HealthState) string {
	switch h {
	case launch.HealthHealthy:
		return ui.Success(h.String())
	case launch.HealthUnhealthy:
		return ui.ErrorStyle.Render(h.String())
	case launch.HealthStarting:
		return ui.Warn(h.String())
	default:
		return ui.Muted(h.String())
	}
}

func renderOutcome(p launch.Phase) string {
	if p == launch.Running {
		return ui.Success(p.String())
	}
	return ui.ErrorStyle.Render(p.String())
}

func humanTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
