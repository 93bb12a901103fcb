// Package recipe describes how the application image is built: the base
// runtime, the ordered setup steps, the exposed port, the periodic health
// probe, and the startup command. A Recipe is authored once and never
// mutated at runtime; rendering it yields the Dockerfile handed to the
// image builder.
package recipe

import (
	"fmt"
	"strings"
	"time"
)

// Recipe is the immutable build description for one application image.
type Recipe struct {
	// BaseImage is the runtime base, pinned to a version tag.
	BaseImage string

	// EnvFlags are injected into the image environment in order.
	EnvFlags []EnvFlag

	// WorkDir is the in-image application directory.
	WorkDir string

	// SystemPackages are installed with the distribution package manager
	// before any application dependencies.
	SystemPackages []string

	// ManifestFile is the application dependency manifest staged and
	// installed as its own step.
	ManifestFile string

	// ExtraPackages are dependencies the manifest under-declares. They
	// are installed as an explicit separate step so the true requirement
	// set stays visible in the build.
	ExtraPackages []string

	// StageAll copies the whole build context into WorkDir after
	// dependency installation, so source edits do not bust the
	// dependency layers.
	StageAll bool

	// Port is the single port the application serves on.
	Port uint16

	// HealthPath is the HTTP path probed for liveness, relative to the
	// application port.
	HealthPath string

	// Probe is the periodic in-container health check registered in the
	// image metadata. The runtime evaluates it for the lifetime of the
	// instance, independent of launch-time verification.
	Probe HealthProbe

	// Command is the default startup command in exec form.
	Command []string
}

// EnvFlag is one NAME=VALUE pair injected into the image environment.
type EnvFlag struct {
	Name  string
	Value string
}

// HealthProbe configures the recurring container-runtime health check.
type HealthProbe struct {
	Interval    time.Duration
	Timeout     time.Duration
	StartPeriod time.Duration
	Retries     int
}

// Covers reports whether the probe tolerates the given worst-case
// cold-start latency: an instance must get at least StartPeriod plus one
// full retry window before it can be marked unhealthy.
func (p HealthProbe) Covers(coldStart time.Duration) bool {
	retries := p.Retries
	if retries < 1 {
		retries = 1
	}
	return p.StartPeriod+p.Interval*time.Duration(retries) > coldStart
}

// Test returns the probe command in CMD-SHELL form for the given port and
// path.
func (p HealthProbe) Test(port uint16, path string) []string {
	return []string{
		"CMD-SHELL",
		fmt.Sprintf("curl -f http://localhost:%d%s || exit 1", port, path),
	}
}

// Default returns the supplier-matcher build recipe. The values here are
// load-bearing: launch, health verification, and the rendered Dockerfile
// all derive from them.
func Default() Recipe {
	return Recipe{
		BaseImage: "python:3.11-slim",
		EnvFlags: []EnvFlag{
			{Name: "PYTHONUNBUFFERED", Value: "1"},
			{Name: "PYTHONDONTWRITEBYTECODE", Value: "1"},
			{Name: "PIP_NO_CACHE_DIR", Value: "1"},
		},
		WorkDir:        "/app",
		SystemPackages: []string{"build-essential", "curl"},
		ManifestFile:   "requirements.txt",
		// knowledge_base pulls in faiss at runtime and the search tool
		// imports serpapi; neither is listed in requirements.txt.
		ExtraPackages: []string{"faiss-cpu", "google-search-results"},
		StageAll:      true,
		Port:          8501,
		HealthPath:    "/_stcore/health",
		Probe: HealthProbe{
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			StartPeriod: 30 * time.Second,
			Retries:     3,
		},
		Command: []string{
			"streamlit", "run", "streamlit_app/app.py",
			"--server.address", "0.0.0.0",
			"--server.port", "8501",
			"--server.headless", "true",
		},
	}
}

// Validate checks structural soundness. It does not cover the cold-start
// invariant; callers with a cold-start budget use Probe.Covers for that.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.BaseImage) == "" {
		return fmt.Errorf("recipe: base image is required")
	}
	if r.Port == 0 {
		return fmt.Errorf("recipe: port is required")
	}
	if len(r.Command) == 0 {
		return fmt.Errorf("recipe: startup command is required")
	}
	if !strings.HasPrefix(r.HealthPath, "/") {
		return fmt.Errorf("recipe: health path %q must start with /", r.HealthPath)
	}
	for _, flag := range r.EnvFlags {
		if strings.TrimSpace(flag.Name) == "" {
			return fmt.Errorf("recipe: environment flag with empty name")
		}
	}
	if r.Probe.Interval <= 0 || r.Probe.Timeout <= 0 {
		return fmt.Errorf("recipe: probe interval and timeout must be positive")
	}
	if r.Probe.Retries < 1 {
		return fmt.Errorf("recipe: probe needs at least one retry, got %d", r.Probe.Retries)
	}
	return nil
}
