package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slipway/cmd/slipway/ui"
	"slipway/config"
	"slipway/internal/adapter/docker"

	"github.com/spf13/cobra"
)

func downCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the supplier matcher instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}

			rt, err := docker.NewRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.Ping(ctx); err != nil {
				return fmt.Errorf("container runtime unreachable (is Docker running?): %w", err)
			}

			name := cfg.Instance
			var existed bool
			err = ui.RunWithSpinner(ctx, "Removing "+name, func(ctx context.Context) error {
				info, err := rt.InstanceInspect(ctx, name)
				if err != nil {
					return err
				}
				if !info.Exists {
					return nil
				}
				existed = true
				if info.Running {
					if err := rt.InstanceStop(ctx, name); err != nil {
						return err
					}
				}
				return rt.InstanceRemove(ctx, name, true)
			})
			if err != nil {
				return err
			}

			if existed {
				fmt.Fprintln(os.Stderr, ui.SuccessMsg("%s stopped and removed", name))
			} else {
				fmt.Fprintln(os.Stderr, ui.InfoMsg("%s is not running; nothing to remove", name))
			}
			return nil
		},
	}
}
