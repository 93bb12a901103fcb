package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"slipway/internal/launch"
)

var _ launch.ContainerRuntime = (*Runtime)(nil)

// Runtime implements launch.ContainerRuntime using the Docker Engine API.
type Runtime struct {
	cli *client.Client
}

// NewRuntime connects to the daemon using DOCKER_HOST and friends.
func NewRuntime() (*Runtime, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &Runtime{cli: cli}, nil
}

// NewRuntimeFromClient reuses an already constructed Docker client.
func NewRuntimeFromClient(cli *client.Client) *Runtime {
	return &Runtime{cli: cli}
}

// Client returns the underlying Docker client for callers that need
// low-level access (the image builder shares one connection).
func (r *Runtime) Client() *client.Client {
	return r.cli
}

func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}
	return nil
}

func (r *Runtime) InstanceInspect(ctx context.Context, name string) (launch.InstanceInfo, error) {
	info, err := r.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return launch.InstanceInfo{Exists: false}, nil
		}
		return launch.InstanceInfo{}, fmt.Errorf("inspect instance %q: %w", name, err)
	}

	out := launch.InstanceInfo{Exists: true, ID: info.ID, Health: launch.HealthNone}
	if info.State != nil {
		out.Running = info.State.Running
		out.Status = info.State.Status
		if info.State.Health != nil {
			out.Health = healthState(info.State.Health.Status)
		}
	}
	return out, nil
}

func healthState(status string) launch.HealthState {
	switch status {
	case container.Starting:
		return launch.HealthStarting
	case container.Healthy:
		return launch.HealthHealthy
	case container.Unhealthy:
		return launch.HealthUnhealthy
	default:
		return launch.HealthNone
	}
}

func (r *Runtime) InstanceCreate(ctx context.Context, spec launch.CreateSpec) error {
	port, err := nat.NewPort("tcp", strconv.Itoa(int(spec.ContainerPort)))
	if err != nil {
		return fmt.Errorf("container port %d: %w", spec.ContainerPort, err)
	}

	cc := &container.Config{
		Image:        spec.Image,
		Env:          spec.Env,
		Labels:       spec.Labels,
		ExposedPorts: nat.PortSet{port: struct{}{}},
	}
	if spec.Health != nil {
		cc.Healthcheck = &container.HealthConfig{
			Test:        spec.Health.Test,
			Interval:    spec.Health.Interval,
			Timeout:     spec.Health.Timeout,
			StartPeriod: spec.Health.StartPeriod,
			Retries:     spec.Health.Retries,
		}
	}

	hc := &container.HostConfig{
		PortBindings: nat.PortMap{
			port: []nat.PortBinding{{
				HostIP:   "0.0.0.0",
				HostPort: strconv.Itoa(int(spec.HostPort)),
			}},
		},
		RestartPolicy: restartPolicy(spec.RestartPolicy),
	}

	if _, err := r.cli.ContainerCreate(ctx, cc, hc, nil, nil, spec.Name); err != nil {
		return fmt.Errorf("create instance %q: %w", spec.Name, err)
	}
	return nil
}

func restartPolicy(name string) container.RestartPolicy {
	if name == "" {
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
	return container.RestartPolicy{Name: container.RestartPolicyMode(name)}
}

func (r *Runtime) InstanceStart(ctx context.Context, name string) error {
	if err := r.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return fmt.Errorf("start instance %q: %w", name, err)
	}
	return nil
}

// InstanceStop succeeds when the instance is already gone, keeping
// teardown idempotent.
func (r *Runtime) InstanceStop(ctx context.Context, name string) error {
	if err := r.cli.ContainerStop(ctx, name, container.StopOptions{}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("stop instance %q: %w", name, err)
	}
	return nil
}

// InstanceRemove succeeds when the instance is already gone.
func (r *Runtime) InstanceRemove(ctx context.Context, name string, force bool) error {
	if err := r.cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: force}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("remove instance %q: %w", name, err)
	}
	return nil
}

func (r *Runtime) InstanceLogs(ctx context.Context, name string, lines int) (string, error) {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(lines),
	}
	rc, err := r.cli.ContainerLogs(ctx, name, opts)
	if err != nil {
		return "", fmt.Errorf("instance logs %q: %w", name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return "", fmt.Errorf("instance logs %q: %w", name, err)
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

// InstanceLogsFollow streams demultiplexed log output to out until the
// context ends or the container stops.
func (r *Runtime) InstanceLogsFollow(ctx context.Context, name string, lines int, out io.Writer) error {
	opts := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
		Tail:       strconv.Itoa(lines),
	}
	rc, err := r.cli.ContainerLogs(ctx, name, opts)
	if err != nil {
		return fmt.Errorf("follow instance logs %q: %w", name, err)
	}
	defer rc.Close()

	if _, err := stdcopy.StdCopy(out, out, rc); err != nil && ctx.Err() == nil {
		return fmt.Errorf("follow instance logs %q: %w", name, err)
	}
	return ctx.Err()
}

func (r *Runtime) Close() error {
	return r.cli.Close()
}
