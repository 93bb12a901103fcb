// Package health confirms a launched instance actually serves traffic.
// Readiness is decided by probing the published endpoint from the host,
// independent of the probe baked into the image; the runtime's own view
// is only consulted to describe the instance when verification fails.
package health

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"slipway/internal/check"
	"slipway/internal/launch"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultVerifyTimeout = 60 * time.Second
	probeRequestTimeout  = 5 * time.Second
)

var _ launch.HealthVerifier = (*Verifier)(nil)

// Verifier implements launch.HealthVerifier by polling the instance's
// HTTP endpoint until it answers or the verification window closes.
type Verifier struct {
	Runtime launch.ContainerRuntime // optional, enriches failure state
	Client  *http.Client
}

// NewVerifier creates a Verifier that consults runtime for instance
// state alongside its endpoint polls.
func NewVerifier(runtime launch.ContainerRuntime) *Verifier {
	return &Verifier{
		Runtime: runtime,
		Client:  &http.Client{Timeout: probeRequestTimeout},
	}
}

func (v *Verifier) WaitHealthy(ctx context.Context, instance string, spec launch.VerifySpec) error {
	check.Assert(spec.Endpoint != "", "WaitHealthy: endpoint must be set")
	log := slog.With("component", "health", "instance", instance)

	interval := spec.Interval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}

	started := time.Now()
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	timedOut := func(lastState string) error {
		return &launch.HealthTimeoutError{
			Instance:  instance,
			Waited:    time.Since(started).Round(time.Second),
			LastState: lastState,
		}
	}

	if spec.Grace > 0 {
		log.Debug("grace period before first poll", "grace", spec.Grace)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return timedOut("")
		case <-time.After(spec.Grace):
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastState := ""
	for {
		state, healthy := v.observe(ctx, instance, spec.Endpoint)
		if state != "" {
			lastState = state
		}
		if healthy {
			log.Debug("instance healthy", "waited", time.Since(started))
			return nil
		}
		if state == "absent" {
			// The instance is gone; no amount of waiting brings it back.
			return timedOut(lastState)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return timedOut(lastState)
		case <-ticker.C:
		}
	}
}

// observe performs one verification round. The endpoint answer decides
// readiness; the returned state describes what the runtime saw, for the
// failure message.
func (v *Verifier) observe(ctx context.Context, instance, endpoint string) (state string, healthy bool) {
	state = ""
	if v.Runtime != nil {
		info, err := v.Runtime.InstanceInspect(ctx, instance)
		switch {
		case err != nil:
			// Transient daemon trouble; the endpoint poll still decides.
		case !info.Exists:
			return "absent", false
		case info.Health != 0 && info.Health != launch.HealthNone:
			state = info.Health.String()
		default:
			state = info.Status
		}
	}
	return state, v.probeEndpoint(ctx, endpoint)
}

func (v *Verifier) probeEndpoint(ctx context.Context, endpoint string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, probeRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := v.client().Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func (v *Verifier) client() *http.Client {
	if v.Client != nil {
		return v.Client
	}
	return http.DefaultClient
}
