package fake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"slipway/internal/launch"
)

func TestContainerRuntime_Lifecycle(t *testing.T) {
	ctx := t.Context()
	r := NewContainerRuntime()

	spec := launch.CreateSpec{Name: "supplier-matcher", Image: "supplier-matcher:latest", HostPort: 8501}
	if err := r.InstanceCreate(ctx, spec); err != nil {
		t.Fatalf("InstanceCreate() error = %v", err)
	}
	if err := r.InstanceCreate(ctx, spec); err == nil {
		t.Fatal("InstanceCreate() with a taken name succeeded, want error")
	}
	if err := r.InstanceStart(ctx, "supplier-matcher"); err != nil {
		t.Fatalf("InstanceStart() error = %v", err)
	}

	info, err := r.InstanceInspect(ctx, "supplier-matcher")
	if err != nil {
		t.Fatalf("InstanceInspect() error = %v", err)
	}
	if !info.Exists || !info.Running {
		t.Fatalf("InstanceInspect() = %+v, want existing and running", info)
	}

	if err := r.InstanceStop(ctx, "supplier-matcher"); err != nil {
		t.Fatalf("InstanceStop() error = %v", err)
	}
	if err := r.InstanceRemove(ctx, "supplier-matcher", false); err != nil {
		t.Fatalf("InstanceRemove() error = %v", err)
	}

	info, err = r.InstanceInspect(ctx, "supplier-matcher")
	if err != nil {
		t.Fatalf("InstanceInspect() error = %v", err)
	}
	if info.Exists {
		t.Fatal("instance still exists after remove")
	}
}

func TestContainerRuntime_TeardownIsIdempotent(t *testing.T) {
	ctx := t.Context()
	r := NewContainerRuntime()

	if err := r.InstanceStop(ctx, "ghost"); err != nil {
		t.Fatalf("InstanceStop() on absent instance = %v, want nil", err)
	}
	if err := r.InstanceRemove(ctx, "ghost", true); err != nil {
		t.Fatalf("InstanceRemove() on absent instance = %v, want nil", err)
	}
}

func TestContainerRuntime_RemoveRunningNeedsForce(t *testing.T) {
	ctx := t.Context()
	r := NewContainerRuntime()
	r.SetRunning("supplier-matcher", true)

	if err := r.InstanceRemove(ctx, "supplier-matcher", false); err == nil {
		t.Fatal("InstanceRemove() without force on a running instance succeeded")
	}
	if err := r.InstanceRemove(ctx, "supplier-matcher", true); err != nil {
		t.Fatalf("InstanceRemove() with force error = %v", err)
	}
}

func TestContainerRuntime_ErrorHooks(t *testing.T) {
	ctx := t.Context()
	r := NewContainerRuntime()
	boom := errors.New("boom")
	r.PingErr = func(_ context.Context) error { return boom }

	if err := r.Ping(ctx); !errors.Is(err, boom) {
		t.Fatalf("Ping() error = %v, want %v", err, boom)
	}
	if got := r.CallCount("Ping"); got != 1 {
		t.Fatalf("Ping CallCount = %d, want 1", got)
	}
}

func TestContainerRuntime_LogsTail(t *testing.T) {
	ctx := t.Context()
	r := NewContainerRuntime()
	r.SetLogs("supplier-matcher", "one\ntwo\nthree\n")

	out, err := r.InstanceLogs(ctx, "supplier-matcher", 2)
	if err != nil {
		t.Fatalf("InstanceLogs() error = %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("InstanceLogs() = %q, want last two lines", out)
	}

	var sb strings.Builder
	if err := r.InstanceLogsFollow(ctx, "supplier-matcher", 10, &sb); err != nil {
		t.Fatalf("InstanceLogsFollow() error = %v", err)
	}
	if !strings.Contains(sb.String(), "one") {
		t.Fatalf("followed logs = %q, want full tail", sb.String())
	}
}
