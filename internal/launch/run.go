package launch

import (
	"context"
	"fmt"
	"log/slog"

	"slipway/internal/check"
	"slipway/internal/recipe"
)

const (
	labelApp     = "slipway.app"
	labelSession = "slipway.session"
)

// Options carries the resolved parameters for one launch. The cmd layer
// builds it from configuration plus the optional compose overlay; the
// runner treats every field as final.
type Options struct {
	App           string
	Dir           string
	EnvFile       string
	ImageTag      string
	Instance      string
	HostPort      uint16
	ExtraEnv      []string
	Recipe        recipe.Recipe
	Health        *InstanceHealth
	RestartPolicy string
	Verify        VerifySpec
}

// Runner executes one launch session end to end: preflight, teardown of
// the previous instance, image build, start, health verification.
type Runner struct {
	Runtime  ContainerRuntime
	Builder  ImageBuilder
	Verifier HealthVerifier
	Journal  Journal   // optional; write failures are logged, never fatal
	Skew     SkewProbe // optional advisory
	Clock    Clock
}

// pipelineStep pairs a phase with its action. Every step runs through
// the same loop so failure short-circuits uniformly and each outcome is
// recorded the same way.
type pipelineStep struct {
	phase Phase
	run   func(ctx context.Context, st *runState) error
}

type runState struct {
	opts    Options
	session *Session
	events  chan<- ProgressEvent
	log     *slog.Logger
	image   ImageRef
}

// Run executes the ordered launch pipeline. The returned session is
// always non-nil and terminal; err is nil exactly when the session
// reached Running. The events channel is optional and never closed by
// Run; sends are non-blocking and may be dropped if the consumer lags.
func (r *Runner) Run(ctx context.Context, opts Options, events chan<- ProgressEvent) (*Session, error) {
	check.Assert(r.Runtime != nil, "Run: container runtime must not be nil")
	check.Assert(r.Builder != nil, "Run: image builder must not be nil")
	check.Assert(r.Verifier != nil, "Run: health verifier must not be nil")
	check.Assert(r.Clock != nil, "Run: clock must not be nil")

	log := slog.With("component", "launch", "app", opts.App)
	session := NewSession(opts.App, r.Clock.Now())
	st := &runState{opts: opts, session: session, events: events, log: log}

	steps := []pipelineStep{
		{PreflightChecking, r.preflight},
		{Stopping, r.stopExisting},
		{Building, r.buildImage},
		{Starting, r.startInstance},
		{HealthChecking, r.verifyHealth},
	}

	for _, step := range steps {
		session.Phase = session.Phase.Transition(step.phase)
		emit(events, ProgressEvent{Type: EventPhaseStarted, Phase: step.phase})

		if err := ctx.Err(); err != nil {
			session.Steps = append(session.Steps, StepResult{Phase: step.phase, Error: err.Error()})
			return r.fail(ctx, st, err)
		}

		began := r.Clock.Now()
		err := step.run(ctx, st)
		session.Steps = append(session.Steps, StepResult{
			Phase:    step.phase,
			Duration: r.Clock.Now().Sub(began),
			Error:    errString(err),
		})
		if err != nil {
			return r.fail(ctx, st, err)
		}
		emit(events, ProgressEvent{Type: EventPhaseComplete, Phase: step.phase})
	}

	session.Phase = session.Phase.Transition(Running)
	session.FinishedAt = r.Clock.Now()
	emit(events, ProgressEvent{Type: EventLaunchComplete, Phase: Running, Message: session.Endpoint})
	r.record(ctx, session)
	log.Info("launch complete", "instance", opts.Instance, "endpoint", session.Endpoint)
	return session, nil
}

func (r *Runner) fail(ctx context.Context, st *runState, err error) (*Session, error) {
	s := st.session
	s.Phase = s.Phase.Transition(Failed)
	s.Error = err.Error()
	s.FinishedAt = r.Clock.Now()
	emit(st.events, ProgressEvent{Type: EventLaunchFailed, Phase: Failed, Message: err.Error()})
	r.record(ctx, s)
	st.log.Error("launch failed", "error", err)
	return s, err
}

// record journals the finished session. The journal is best-effort: a
// launch outcome is already decided by the time this runs.
func (r *Runner) record(ctx context.Context, s *Session) {
	if r.Journal == nil {
		return
	}
	if err := r.Journal.Record(context.WithoutCancel(ctx), *s); err != nil {
		slog.Warn("session journal write failed", "session", s.ID, "error", err)
	}
}

// stopExisting tears down any previous instance with the same name.
// Absence is success, not error. Errors from tearing down a live
// instance are logged and swallowed: a half-removed container surfaces
// loudly at create time, so nothing that matters is masked here.
func (r *Runner) stopExisting(ctx context.Context, st *runState) error {
	name := st.opts.Instance
	info, err := r.Runtime.InstanceInspect(ctx, name)
	if err != nil {
		r.teardownWarning(st, fmt.Sprintf("inspect %s: %v", name, err))
		return nil
	}
	if !info.Exists {
		st.log.Debug("no existing instance to stop", "instance", name)
		return nil
	}

	if info.Running {
		if err := r.Runtime.InstanceStop(ctx, name); err != nil {
			r.teardownWarning(st, fmt.Sprintf("stop %s: %v", name, err))
		}
	}
	if err := r.Runtime.InstanceRemove(ctx, name, true); err != nil {
		r.teardownWarning(st, fmt.Sprintf("remove %s: %v", name, err))
	}
	return nil
}

func (r *Runner) teardownWarning(st *runState, msg string) {
	st.log.Warn("teardown issue ignored", "detail", msg)
	emit(st.events, ProgressEvent{Type: EventWarning, Phase: Stopping, Message: msg})
}

func (r *Runner) buildImage(ctx context.Context, st *runState) error {
	progress := func(line string) {
		emit(st.events, ProgressEvent{Type: EventBuildOutput, Phase: Building, Message: line})
	}
	ref, err := r.Builder.Build(ctx, st.opts.Recipe, st.opts.Dir, st.opts.ImageTag, progress)
	if err != nil {
		return err
	}
	st.image = ref
	st.session.Image = ref.Tag
	return nil
}

func (r *Runner) startInstance(ctx context.Context, st *runState) error {
	opts := st.opts
	check.Assert(st.image.Tag != "", "startInstance: image must be built first")

	env, err := ReadEnvFile(opts.EnvFile)
	if err != nil {
		return &LaunchError{Op: "configure", Instance: opts.Instance, Detail: err.Error()}
	}
	env = append(env, opts.ExtraEnv...)

	spec := CreateSpec{
		Name:          opts.Instance,
		Image:         st.image.Tag,
		HostPort:      opts.HostPort,
		ContainerPort: opts.Recipe.Port,
		Env:           env,
		RestartPolicy: opts.RestartPolicy,
		Health:        opts.Health,
		Labels: map[string]string{
			labelApp:     opts.App,
			labelSession: st.session.ID,
		},
	}
	if err := r.Runtime.InstanceCreate(ctx, spec); err != nil {
		return &LaunchError{Op: "create", Instance: opts.Instance, Detail: err.Error()}
	}
	if err := r.Runtime.InstanceStart(ctx, opts.Instance); err != nil {
		return &LaunchError{Op: "start", Instance: opts.Instance, Detail: err.Error()}
	}

	st.session.Endpoint = fmt.Sprintf("http://localhost:%d", opts.HostPort)
	return nil
}

func (r *Runner) verifyHealth(ctx context.Context, st *runState) error {
	spec := st.opts.Verify
	if spec.Endpoint == "" {
		spec.Endpoint = fmt.Sprintf("http://localhost:%d%s", st.opts.HostPort, st.opts.Recipe.HealthPath)
	}
	return r.Verifier.WaitHealthy(ctx, st.opts.Instance, spec)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
