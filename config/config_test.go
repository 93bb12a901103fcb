package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(Path(dir), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App != "supplier-matcher" {
		t.Errorf("App = %q, want supplier-matcher", cfg.App)
	}
	if cfg.Image != "supplier-matcher:latest" {
		t.Errorf("Image = %q, want supplier-matcher:latest", cfg.Image)
	}
	if cfg.Instance != "supplier-matcher" {
		t.Errorf("Instance = %q, want supplier-matcher", cfg.Instance)
	}
	if cfg.Port != 8501 {
		t.Errorf("Port = %d, want 8501", cfg.Port)
	}
	if cfg.EnvFile != filepath.Join(dir, ".env") {
		t.Errorf("EnvFile = %q, want app-dir .env", cfg.EnvFile)
	}
	if cfg.Verify.Grace.Std() != 5*time.Second || cfg.Verify.Timeout.Std() != 60*time.Second {
		t.Errorf("Verify = %+v, want 5s grace and 60s timeout", cfg.Verify)
	}
	if !cfg.OpenBrowser || !cfg.ClockCheck {
		t.Error("OpenBrowser and ClockCheck should default to true")
	}
	if cfg.JournalPath() != filepath.Join(dir, ".slipway", "journal.db") {
		t.Errorf("JournalPath() = %q, want app-dir .slipway/journal.db", cfg.JournalPath())
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := writeConfig(t, `
app: matcher-dev
port: 9000
open_browser: false
verify:
  grace: 1s
  interval: 500ms
  timeout: 30s
probe:
  interval: 10s
  timeout: 5s
  start_period: 20s
  retries: 5
cold_start_budget: 45s
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App != "matcher-dev" {
		t.Errorf("App = %q, want matcher-dev", cfg.App)
	}
	if cfg.Image != "matcher-dev:latest" {
		t.Errorf("Image = %q, want derived matcher-dev:latest", cfg.Image)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.OpenBrowser {
		t.Error("OpenBrowser = true, want false")
	}
	if cfg.ClockCheck != true {
		t.Error("ClockCheck should keep its default when unset")
	}
	if cfg.Verify.Interval.Std() != 500*time.Millisecond {
		t.Errorf("Verify.Interval = %v, want 500ms", cfg.Verify.Interval.Std())
	}
	if cfg.Probe.Retries != 5 {
		t.Errorf("Probe.Retries = %d, want 5", cfg.Probe.Retries)
	}
}

func TestLoadRejectsUncoveredColdStart(t *testing.T) {
	dir := writeConfig(t, `
cold_start_budget: 10m
probe:
  interval: 5s
  timeout: 3s
  start_period: 10s
  retries: 2
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() error = nil, want cold-start coverage failure")
	}
	if !strings.Contains(err.Error(), "cold-start") {
		t.Fatalf("error = %q, want cold-start mention", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero port", "port: 0"},
		{"empty app", `app: ""`},
		{"zero verify interval", "verify:\n  interval: 0s"},
		{"zero probe retries", "probe:\n  retries: 0"},
		{"malformed duration", "verify:\n  timeout: soon"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfig(t, tc.content)
			if _, err := Load(dir); err == nil {
				t.Fatalf("Load() error = nil, want rejection for %s", tc.name)
			}
		})
	}
}

func TestRecipeCarriesConfiguredProbe(t *testing.T) {
	dir := writeConfig(t, `
port: 9000
probe:
  interval: 15s
  timeout: 5s
  start_period: 60s
  retries: 4
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := cfg.Recipe()
	if r.Port != 8501 {
		t.Errorf("Recipe().Port = %d, want the container-side 8501 regardless of host port", r.Port)
	}
	if r.Probe.StartPeriod != 60*time.Second || r.Probe.Retries != 4 {
		t.Errorf("Recipe().Probe = %+v, want configured schedule", r.Probe)
	}
}

func TestEnvFileAbsolutePathKept(t *testing.T) {
	dir := writeConfig(t, "env_file: /etc/matcher/.env\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EnvFile != "/etc/matcher/.env" {
		t.Errorf("EnvFile = %q, want absolute path kept", cfg.EnvFile)
	}
}
