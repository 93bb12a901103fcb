package launch

import (
	"errors"
	"fmt"
	"time"

	"slipway/internal/recipe"
)

// PreflightReason identifies which environment precondition failed.
type PreflightReason uint8

const (
	RuntimeUnavailable PreflightReason = iota + 1
	ConfigMissing
)

func (r PreflightReason) String() string {
	switch r {
	case RuntimeUnavailable:
		return "runtime_unavailable"
	case ConfigMissing:
		return "config_missing"
	default:
		return "unknown"
	}
}

// PreflightError aborts a session before any mutating action runs.
type PreflightError struct {
	Reason PreflightReason
	Path   string // config artifact path, set for ConfigMissing
	Detail string
}

func (e *PreflightError) Error() string {
	switch e.Reason {
	case RuntimeUnavailable:
		if e.Detail != "" {
			return "preflight: container runtime unreachable: " + e.Detail
		}
		return "preflight: container runtime unreachable"
	case ConfigMissing:
		return fmt.Sprintf("preflight: required configuration missing at %s", e.Path)
	default:
		return "preflight failed"
	}
}

// Remediation tells the operator what to fix, not just what broke.
func (e *PreflightError) Remediation() string {
	switch e.Reason {
	case RuntimeUnavailable:
		return "Docker does not appear to be running. Start Docker Desktop (or the docker daemon) and run slipway up again."
	case ConfigMissing:
		return fmt.Sprintf("Create %s with the upstream API credentials (GOOGLE_API_KEY, SERPAPI_KEY) and run slipway up again.", e.Path)
	default:
		return "Fix the reported environment problem and run slipway up again."
	}
}

// BuildError reports an image build failure attributed to the logical
// recipe step whose instruction broke. Step is zero when the failure
// happened before the builder reached any instruction.
type BuildError struct {
	Step   recipe.Step
	Detail string
}

func (e *BuildError) Error() string {
	if e.Step == 0 {
		return "image build failed: " + e.Detail
	}
	return fmt.Sprintf("image build failed at step %q: %s", e.Step, e.Detail)
}

func (e *BuildError) Remediation() string {
	if e.Step == 0 {
		return "The image build failed. Inspect the build output above for the underlying cause, then run slipway up again."
	}
	return fmt.Sprintf("The image build failed during the %s step. Inspect the build output above for the underlying cause, then run slipway up again.", e.Step)
}

// LaunchError reports a container create or start failure.
type LaunchError struct {
	Op       string // create, start, configure
	Instance string
	Detail   string
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("instance %s %s failed: %s", e.Instance, e.Op, e.Detail)
}

func (e *LaunchError) Remediation() string {
	return fmt.Sprintf("The container could not be launched. Check `docker ps -a` and `docker logs %s` for details.", e.Instance)
}

// HealthTimeoutError means the instance never reported healthy within
// the verification window. The container may still be up; this is a
// softer failure than a build or launch error and its messaging must
// stay distinguishable from both.
type HealthTimeoutError struct {
	Instance  string
	Waited    time.Duration
	LastState string
}

func (e *HealthTimeoutError) Error() string {
	if e.LastState != "" {
		return fmt.Sprintf("instance %s not healthy after %s (last state: %s)", e.Instance, e.Waited, e.LastState)
	}
	return fmt.Sprintf("instance %s not healthy after %s", e.Instance, e.Waited)
}

func (e *HealthTimeoutError) Remediation() string {
	return fmt.Sprintf("The app may not have started correctly. Inspect `docker logs %s`; if it is only slow to warm up, it may still become ready.", e.Instance)
}

// Remediation maps any session error to its operator hint. Each failure
// kind keeps a distinct message; unknown errors get a generic line so
// the reporter always has something actionable to print.
func Remediation(err error) string {
	var pre *PreflightError
	if errors.As(err, &pre) {
		return pre.Remediation()
	}
	var build *BuildError
	if errors.As(err, &build) {
		return build.Remediation()
	}
	var launch *LaunchError
	if errors.As(err, &launch) {
		return launch.Remediation()
	}
	var health *HealthTimeoutError
	if errors.As(err, &health) {
		return health.Remediation()
	}
	return "Fix the reported error and run slipway up again."
}
