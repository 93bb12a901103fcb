package ui

import "testing"

func TestEnvTruthy(t *testing.T) {
	const key = "SLIPWAY_TEST_TRUTHY"

	for _, v := range []string{"1", "true", "TRUE", "yes", "on", "  on  "} {
		t.Setenv(key, v)
		if !envTruthy(key) {
			t.Errorf("envTruthy(%q) = false, want true", v)
		}
	}

	for _, v := range []string{"", "0", "false", "off", "no", "maybe"} {
		t.Setenv(key, v)
		if envTruthy(key) {
			t.Errorf("envTruthy(%q) = true, want false", v)
		}
	}
}

func TestDetectInteractiveModeRespectsOverrides(t *testing.T) {
	t.Setenv("NO_INTERACTION", "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "xterm-256color")

	if detectInteractiveMode(true) {
		t.Fatal("detectInteractiveMode(true) = true, want false")
	}

	t.Setenv("NO_COLOR", "1")
	if detectInteractiveMode(false) {
		t.Fatal("detectInteractiveMode() = true with NO_COLOR set, want false")
	}

	t.Setenv("NO_COLOR", "")
	t.Setenv("CI", "true")
	if detectInteractiveMode(false) {
		t.Fatal("detectInteractiveMode() = true with CI set, want false")
	}
}
