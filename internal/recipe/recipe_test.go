package recipe

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Recipe)
		want   string
	}{
		{"missing base image", func(r *Recipe) { r.BaseImage = " " }, "base image"},
		{"zero port", func(r *Recipe) { r.Port = 0 }, "port"},
		{"no command", func(r *Recipe) { r.Command = nil }, "startup command"},
		{"relative health path", func(r *Recipe) { r.HealthPath = "health" }, "health path"},
		{"empty env flag name", func(r *Recipe) { r.EnvFlags = []EnvFlag{{Name: "", Value: "1"}} }, "environment flag"},
		{"zero probe interval", func(r *Recipe) { r.Probe.Interval = 0 }, "interval"},
		{"zero probe retries", func(r *Recipe) { r.Probe.Retries = 0 }, "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default()
			tt.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestHealthProbeCovers(t *testing.T) {
	tests := []struct {
		name      string
		probe     HealthProbe
		coldStart time.Duration
		want      bool
	}{
		{
			name:      "default probe covers a minute of cold start",
			probe:     Default().Probe,
			coldStart: time.Minute,
			want:      true,
		},
		{
			name:      "tight probe misses slow cold start",
			probe:     HealthProbe{Interval: 5 * time.Second, Timeout: time.Second, StartPeriod: 5 * time.Second, Retries: 1},
			coldStart: 30 * time.Second,
			want:      false,
		},
		{
			name:      "zero retries still counts one window",
			probe:     HealthProbe{Interval: 10 * time.Second, Timeout: time.Second, StartPeriod: 5 * time.Second, Retries: 0},
			coldStart: 12 * time.Second,
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.probe.Covers(tt.coldStart); got != tt.want {
				t.Fatalf("Covers(%v) = %v, want %v", tt.coldStart, got, tt.want)
			}
		})
	}
}

func TestHealthProbeTest(t *testing.T) {
	got := HealthProbe{}.Test(8501, "/_stcore/health")
	want := []string{"CMD-SHELL", "curl -f http://localhost:8501/_stcore/health || exit 1"}
	if len(got) != len(want) {
		t.Fatalf("Test() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Test()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStepRoundTrip(t *testing.T) {
	for s := StepBaseImage; s <= StepCommand; s++ {
		parsed, ok := ParseStep(s.String())
		if !ok || parsed != s {
			t.Fatalf("ParseStep(%q) = %v, %v, want %v, true", s.String(), parsed, ok, s)
		}
	}
	if _, ok := ParseStep("no-such-step"); ok {
		t.Fatal("ParseStep accepted an unknown step name")
	}
	if Step(0).IsValid() || Step(200).IsValid() {
		t.Fatal("IsValid() accepted an out-of-range step")
	}
}
