package launch

import (
	"context"
	"io"
	"time"

	"slipway/internal/recipe"
)

// Clock supplies the current time so session timestamps and phase
// durations stay testable.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ContainerRuntime abstracts the container engine operations the
// launcher needs.
// Production: adapter/docker.Runtime (a Docker *client.Client)
// Testing: adapter/fake.ContainerRuntime
type ContainerRuntime interface {
	// Engine reachability
	Ping(ctx context.Context) error

	// Instance lifecycle. Stop and Remove of an absent instance succeed:
	// teardown must stay idempotent even when the instance disappears
	// between inspect and stop.
	InstanceInspect(ctx context.Context, name string) (InstanceInfo, error)
	InstanceCreate(ctx context.Context, spec CreateSpec) error
	InstanceStart(ctx context.Context, name string) error
	InstanceStop(ctx context.Context, name string) error
	InstanceRemove(ctx context.Context, name string, force bool) error

	// Diagnostics
	InstanceLogs(ctx context.Context, name string, lines int) (string, error)
	InstanceLogsFollow(ctx context.Context, name string, lines int, out io.Writer) error

	Close() error
}

// ImageBuilder turns a recipe plus a build context directory into a
// runnable image.
// Production: build.Builder (Docker Engine image build)
// Testing: adapter/fake.ImageBuilder
type ImageBuilder interface {
	Build(ctx context.Context, rcp recipe.Recipe, contextDir, tag string, progress func(line string)) (ImageRef, error)
}

// HealthVerifier confirms a started instance becomes healthy within a
// bounded window. It observes only; it never restarts anything.
// Production: health.Verifier
// Testing: adapter/fake.HealthVerifier
type HealthVerifier interface {
	WaitHealthy(ctx context.Context, instance string, spec VerifySpec) error
}

// Journal records finished sessions for later inspection.
// Production: adapter/sqlite.Journal
// Testing: adapter/fake.Journal
type Journal interface {
	Record(ctx context.Context, s Session) error
}

// SkewProbe reports whether the local clock is drifting from a
// reference time source. Advisory only; failures never stop a launch.
// Production: timesync.Checker
// Testing: adapter/fake.SkewProbe
type SkewProbe interface {
	Check(ctx context.Context) error
}

// ImageRef identifies a built image.
type ImageRef struct {
	Tag string
	ID  string
}

// HealthState is the runtime's view of the instance's periodic probe.
type HealthState uint8

const (
	HealthNone HealthState = iota + 1 // no probe configured
	HealthStarting
	HealthHealthy
	HealthUnhealthy
)

func (s HealthState) String() string {
	switch s {
	case HealthNone:
		return "none"
	case HealthStarting:
		return "starting"
	case HealthHealthy:
		return "healthy"
	case HealthUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// InstanceInfo describes the observed state of the named instance.
type InstanceInfo struct {
	Exists  bool
	ID      string
	Running bool
	Health  HealthState
	Status  string // engine status line, informational
}

// InstanceHealth overrides the image's built-in probe at create time.
// Test of ["NONE"] disables probing entirely.
type InstanceHealth struct {
	Test        []string
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}

// CreateSpec holds parameters for creating the instance container.
type CreateSpec struct {
	Name          string
	Image         string
	HostPort      uint16
	ContainerPort uint16
	Env           []string
	RestartPolicy string
	Health        *InstanceHealth // nil inherits the image probe
	Labels        map[string]string
}

// VerifySpec bounds the launch-time health verification.
type VerifySpec struct {
	// Grace is slept before the first poll, covering cold start.
	Grace time.Duration

	// Interval separates polls.
	Interval time.Duration

	// Timeout bounds the whole verification, grace included.
	Timeout time.Duration

	// Endpoint is the URL polled from the host. A 2xx or 3xx answer
	// means healthy, regardless of what the in-container probe says.
	Endpoint string
}
