package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"slipway/config"
	"slipway/internal/adapter/docker"

	"github.com/spf13/cobra"
)

func logsCmd(dir *string) *cobra.Command {
	var (
		follow bool
		tail   int
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the instance logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if follow {
				err := rt.InstanceLogsFollow(ctx, cfg.Instance, tail, os.Stdout)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			out, err := rt.InstanceLogs(ctx, cfg.Instance, tail)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Println(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new log output")
	cmd.Flags().IntVarP(&tail, "tail", "n", 120, "Number of trailing lines to show")
	return cmd
}
