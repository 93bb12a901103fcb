package fake

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"slipway/internal/launch"
)

var _ launch.ContainerRuntime = (*ContainerRuntime)(nil)

type instanceState struct {
	Spec    launch.CreateSpec
	Running bool
	Health  launch.HealthState
}

// ContainerRuntime is an in-memory implementation of
// launch.ContainerRuntime.
type ContainerRuntime struct {
	CallRecorder
	mu        sync.Mutex
	reachable bool
	instances map[string]*instanceState
	logs      map[string]string

	PingErr            func(ctx context.Context) error
	InstanceInspectErr func(ctx context.Context, name string) error
	InstanceCreateErr  func(ctx context.Context, spec launch.CreateSpec) error
	InstanceStartErr   func(ctx context.Context, name string) error
	InstanceStopErr    func(ctx context.Context, name string) error
	InstanceRemoveErr  func(ctx context.Context, name string, force bool) error
	InstanceLogsErr    func(ctx context.Context, name string, lines int) error
}

// NewContainerRuntime creates a ContainerRuntime that is reachable and
// empty.
func NewContainerRuntime() *ContainerRuntime {
	return &ContainerRuntime{
		reachable: true,
		instances: make(map[string]*instanceState),
		logs:      make(map[string]string),
	}
}

func (r *ContainerRuntime) Ping(ctx context.Context) error {
	r.record("Ping")
	if r.PingErr != nil {
		if err := r.PingErr(ctx); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.reachable {
		return fmt.Errorf("container runtime unreachable")
	}
	return nil
}

func (r *ContainerRuntime) InstanceInspect(ctx context.Context, name string) (launch.InstanceInfo, error) {
	r.record("InstanceInspect", name)
	if r.InstanceInspectErr != nil {
		if err := r.InstanceInspectErr(ctx, name); err != nil {
			return launch.InstanceInfo{}, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[name]
	if !ok {
		return launch.InstanceInfo{Exists: false}, nil
	}
	status := "exited"
	if inst.Running {
		status = "running"
	}
	return launch.InstanceInfo{
		Exists:  true,
		ID:      "fake-" + name,
		Running: inst.Running,
		Health:  inst.Health,
		Status:  status,
	}, nil
}

func (r *ContainerRuntime) InstanceCreate(ctx context.Context, spec launch.CreateSpec) error {
	r.record("InstanceCreate", spec)
	if r.InstanceCreateErr != nil {
		if err := r.InstanceCreateErr(ctx, spec); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[spec.Name]; ok {
		return fmt.Errorf("container name %q already in use", spec.Name)
	}
	r.instances[spec.Name] = &instanceState{Spec: spec, Health: launch.HealthNone}
	return nil
}

func (r *ContainerRuntime) InstanceStart(ctx context.Context, name string) error {
	r.record("InstanceStart", name)
	if r.InstanceStartErr != nil {
		if err := r.InstanceStartErr(ctx, name); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[name]
	if !ok {
		return fmt.Errorf("instance %q not found", name)
	}
	inst.Running = true
	return nil
}

// InstanceStop simulates idempotent stop: absent instances succeed.
func (r *ContainerRuntime) InstanceStop(ctx context.Context, name string) error {
	r.record("InstanceStop", name)
	if r.InstanceStopErr != nil {
		if err := r.InstanceStopErr(ctx, name); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[name]; ok {
		inst.Running = false
	}
	return nil
}

// InstanceRemove simulates idempotent remove: absent instances succeed.
func (r *ContainerRuntime) InstanceRemove(ctx context.Context, name string, force bool) error {
	r.record("InstanceRemove", name, force)
	if r.InstanceRemoveErr != nil {
		if err := r.InstanceRemoveErr(ctx, name, force); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[name]
	if !ok {
		return nil
	}
	if inst.Running && !force {
		return fmt.Errorf("instance %q is running, use force to remove", name)
	}
	delete(r.instances, name)
	return nil
}

func (r *ContainerRuntime) InstanceLogs(ctx context.Context, name string, lines int) (string, error) {
	r.record("InstanceLogs", name, lines)
	if r.InstanceLogsErr != nil {
		if err := r.InstanceLogsErr(ctx, name, lines); err != nil {
			return "", err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return tailLines(r.logs[name], lines), nil
}

func (r *ContainerRuntime) InstanceLogsFollow(ctx context.Context, name string, lines int, out io.Writer) error {
	r.record("InstanceLogsFollow", name, lines)
	if r.InstanceLogsErr != nil {
		if err := r.InstanceLogsErr(ctx, name, lines); err != nil {
			return err
		}
	}
	r.mu.Lock()
	content := tailLines(r.logs[name], lines)
	r.mu.Unlock()

	_, err := io.WriteString(out, content)
	return err
}

func (r *ContainerRuntime) Close() error {
	r.record("Close")
	return nil
}

// SetReachable controls whether Ping succeeds.
func (r *ContainerRuntime) SetReachable(reachable bool) {
	r.mu.Lock()
	r.reachable = reachable
	r.mu.Unlock()
}

// SetRunning seeds or flips an instance's running state without going
// through the lifecycle methods.
func (r *ContainerRuntime) SetRunning(name string, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[name]
	if !ok {
		inst = &instanceState{Health: launch.HealthNone}
		r.instances[name] = inst
	}
	inst.Running = running
}

// SetHealth sets the runtime-reported probe state of an instance.
func (r *ContainerRuntime) SetHealth(name string, health launch.HealthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[name]; ok {
		inst.Health = health
	}
}

// SetLogs sets the canned log content returned for an instance.
func (r *ContainerRuntime) SetLogs(name, content string) {
	r.mu.Lock()
	r.logs[name] = content
	r.mu.Unlock()
}

// Instance returns the create spec of a live instance.
func (r *ContainerRuntime) Instance(name string) (launch.CreateSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[name]
	if !ok {
		return launch.CreateSpec{}, false
	}
	return inst.Spec, true
}

func tailLines(content string, lines int) string {
	if content == "" || lines <= 0 {
		return ""
	}
	all := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(all) > lines {
		all = all[len(all)-lines:]
	}
	return strings.Join(all, "\n") + "\n"
}
