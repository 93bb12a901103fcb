package launch

import (
	"errors"
	"strings"
	"testing"
	"time"

	"slipway/internal/recipe"
)

// Each failure kind must keep its own remediation wording so the
// operator can tell a dead engine from a broken build from a slow app.
func TestRemediationMessagesAreDistinct(t *testing.T) {
	hints := map[string]string{
		"runtime_unavailable": Remediation(&PreflightError{Reason: RuntimeUnavailable}),
		"config_missing":      Remediation(&PreflightError{Reason: ConfigMissing, Path: "/srv/app/.env"}),
		"build":               Remediation(&BuildError{Step: recipe.StepManifestInstall, Detail: "exit 1"}),
		"launch":              Remediation(&LaunchError{Op: "create", Instance: "supplier-matcher"}),
		"health_timeout":      Remediation(&HealthTimeoutError{Instance: "supplier-matcher", Waited: time.Minute}),
		"generic":             Remediation(errors.New("surprise")),
	}

	seen := make(map[string]string, len(hints))
	for kind, hint := range hints {
		if hint == "" {
			t.Fatalf("%s remediation is empty", kind)
		}
		if prev, dup := seen[hint]; dup {
			t.Fatalf("%s and %s share remediation %q", kind, prev, hint)
		}
		seen[hint] = kind
	}
}

func TestRemediationContent(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"runtime unavailable names docker", &PreflightError{Reason: RuntimeUnavailable}, "Start Docker"},
		{"config missing names the path", &PreflightError{Reason: ConfigMissing, Path: "/srv/app/.env"}, "/srv/app/.env"},
		{"config missing names the keys", &PreflightError{Reason: ConfigMissing, Path: ".env"}, "GOOGLE_API_KEY"},
		{"build names the step", &BuildError{Step: recipe.StepSystemPackages}, "system-packages"},
		{"launch points at logs", &LaunchError{Op: "start", Instance: "supplier-matcher"}, "docker logs supplier-matcher"},
		{"health timeout is soft", &HealthTimeoutError{Instance: "supplier-matcher"}, "may not have started correctly"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Remediation(tc.err); !strings.Contains(got, tc.want) {
				t.Fatalf("Remediation() = %q, want it to contain %q", got, tc.want)
			}
		})
	}
}

func TestPreflightErrorMessage(t *testing.T) {
	err := &PreflightError{Reason: ConfigMissing, Path: "/srv/app/.env"}
	if !strings.Contains(err.Error(), "/srv/app/.env") {
		t.Fatalf("Error() = %q, want path included", err.Error())
	}

	err = &PreflightError{Reason: RuntimeUnavailable, Detail: "dial unix /var/run/docker.sock: no such file"}
	if !strings.Contains(err.Error(), "docker.sock") {
		t.Fatalf("Error() = %q, want detail included", err.Error())
	}
}

func TestBuildErrorNamesStep(t *testing.T) {
	err := &BuildError{Step: recipe.StepStageFiles, Detail: "COPY failed"}
	if !strings.Contains(err.Error(), "stage-files") {
		t.Fatalf("Error() = %q, want step name", err.Error())
	}
	if !strings.Contains(err.Error(), "COPY failed") {
		t.Fatalf("Error() = %q, want detail", err.Error())
	}
}

func TestHealthTimeoutErrorMessage(t *testing.T) {
	err := &HealthTimeoutError{Instance: "supplier-matcher", Waited: 60 * time.Second, LastState: "starting"}
	msg := err.Error()
	for _, want := range []string{"supplier-matcher", "1m0s", "starting"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}
