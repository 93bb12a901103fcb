package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"slipway/cmd/slipway/ui"
	"slipway/config"
	"slipway/internal/adapter/docker"
	"slipway/internal/adapter/sqlite"
	"slipway/internal/browser"
	"slipway/internal/build"
	"slipway/internal/health"
	"slipway/internal/launch"
	"slipway/internal/recipe"
	"slipway/internal/timesync"

	"github.com/spf13/cobra"
)

// restartPolicy keeps the instance alive across daemon and host
// restarts once a launch has succeeded.
const restartPolicy = "unless-stopped"

func upCmd(dir *string) *cobra.Command {
	var (
		noBrowser bool
		port      uint16
	)
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Build the image and launch the supplier matcher",
		Long: `Up runs the full launch pipeline: verify the environment, clear any
previous instance, build the image, start a fresh container, and wait
until it answers its health endpoint. The exit code is zero exactly
when the app ends up running.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(*dir)
			if err != nil {
				return err
			}

			opts, err := assembleOptions(ctx, *dir, cfg, port)
			if err != nil {
				return err
			}

			rt, err := docker.NewRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			runner := &launch.Runner{
				Runtime:  rt,
				Builder:  build.NewFromClient(rt.Client()),
				Verifier: health.NewVerifier(rt),
				Clock:    launch.RealClock{},
			}
			if journal, err := sqlite.Open(cfg.JournalPath()); err != nil {
				slog.Warn("session journal unavailable", "path", cfg.JournalPath(), "error", err)
			} else {
				defer journal.Close()
				runner.Journal = journal
			}
			if cfg.ClockCheck {
				runner.Skew = timesync.NewChecker()
			}

			reporter := ui.NewLaunchReporter()
			events := make(chan launch.ProgressEvent, 64)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ev := range events {
					reporter.OnEvent(ev)
				}
			}()

			session, runErr := runner.Run(ctx, opts, events)
			close(events)
			wg.Wait()
			reporter.Close()

			if runErr != nil {
				fmt.Fprintln(os.Stderr)
				if errors.Is(runErr, context.Canceled) {
					fmt.Fprintln(os.Stderr, ui.WarnMsg("Launch cancelled"))
					return runErr
				}
				fmt.Fprintln(os.Stderr, "  "+launch.Remediation(runErr))
				return runErr
			}

			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, ui.SuccessMsg("%s is running at %s", cfg.App, ui.Link(session.Endpoint)))
			fmt.Fprintln(os.Stderr, ui.Muted(fmt.Sprintf("  logs: slipway logs -f (or docker logs -f %s)", cfg.Instance)))
			fmt.Fprintln(os.Stderr, ui.Muted(fmt.Sprintf("  stop: slipway down (or docker stop %s)", cfg.Instance)))
			if cfg.OpenBrowser && !noBrowser {
				if err := browser.Open(session.Endpoint); err != nil {
					slog.Debug("browser open failed", "url", session.Endpoint, "error", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the browser on success")
	cmd.Flags().Uint16Var(&port, "port", 0, "Override the published host port")
	return cmd
}

// assembleOptions resolves the launch parameters from configuration,
// the optional compose overlay, and flags. Precedence for the host
// port: flag over overlay over config.
func assembleOptions(ctx context.Context, dir string, cfg config.Config, flagPort uint16) (launch.Options, error) {
	rcp := cfg.Recipe()

	opts := launch.Options{
		App:           cfg.App,
		Dir:           dir,
		EnvFile:       cfg.EnvFile,
		ImageTag:      cfg.Image,
		Instance:      cfg.Instance,
		HostPort:      cfg.Port,
		Recipe:        rcp,
		RestartPolicy: restartPolicy,
		Verify: launch.VerifySpec{
			Grace:    cfg.Verify.Grace.Std(),
			Interval: cfg.Verify.Interval.Std(),
			Timeout:  cfg.Verify.Timeout.Std(),
		},
	}

	overlay, err := recipe.LoadOverlay(ctx, dir, cfg.App, rcp.Port)
	if err != nil {
		return launch.Options{}, err
	}
	if overlay != nil {
		if overlay.HostPort != 0 {
			opts.HostPort = overlay.HostPort
		}
		opts.ExtraEnv = overlay.Env
		switch {
		case overlay.DisableProbe:
			opts.Health = &launch.InstanceHealth{Test: []string{"NONE"}}
		case overlay.Probe != nil:
			p := overlay.Probe
			opts.Health = &launch.InstanceHealth{
				Test:        p.Test(rcp.Port, rcp.HealthPath),
				Interval:    p.Interval,
				Timeout:     p.Timeout,
				StartPeriod: p.StartPeriod,
				Retries:     p.Retries,
			}
		}
	}

	if flagPort != 0 {
		opts.HostPort = flagPort
	}
	return opts, nil
}
