package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step identifies one logical build step. Rendered Dockerfile
// instructions map back to a Step so a build failure can name the step
// that broke rather than a raw instruction number.
type Step uint8

const (
	StepBaseImage Step = iota + 1
	StepEnvFlags
	StepWorkDir
	StepSystemPackages
	StepManifestInstall
	StepExtraPackages
	StepStageFiles
	StepExposePort
	StepHealthProbe
	StepCommand
)

func (s Step) String() string {
	switch s {
	case StepBaseImage:
		return "base-image"
	case StepEnvFlags:
		return "env-flags"
	case StepWorkDir:
		return "workdir"
	case StepSystemPackages:
		return "system-packages"
	case StepManifestInstall:
		return "manifest-install"
	case StepExtraPackages:
		return "extra-packages"
	case StepStageFiles:
		return "stage-files"
	case StepExposePort:
		return "expose-port"
	case StepHealthProbe:
		return "health-probe"
	case StepCommand:
		return "startup-command"
	default:
		return "unknown"
	}
}

func (s Step) IsValid() bool {
	switch s {
	case StepBaseImage, StepEnvFlags, StepWorkDir, StepSystemPackages,
		StepManifestInstall, StepExtraPackages, StepStageFiles,
		StepExposePort, StepHealthProbe, StepCommand:
		return true
	default:
		return false
	}
}

func (s Step) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid build step: %d", s)
	}
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	next, ok := parseStep(raw)
	if !ok {
		return fmt.Errorf("invalid build step: %q", raw)
	}
	*s = next
	return nil
}

func parseStep(raw string) (Step, bool) {
	switch strings.TrimSpace(raw) {
	case "base-image":
		return StepBaseImage, true
	case "env-flags":
		return StepEnvFlags, true
	case "workdir":
		return StepWorkDir, true
	case "system-packages":
		return StepSystemPackages, true
	case "manifest-install":
		return StepManifestInstall, true
	case "extra-packages":
		return StepExtraPackages, true
	case "stage-files":
		return StepStageFiles, true
	case "expose-port":
		return StepExposePort, true
	case "health-probe":
		return StepHealthProbe, true
	case "startup-command":
		return StepCommand, true
	default:
		return 0, false
	}
}

func ParseStep(raw string) (Step, bool) {
	return parseStep(raw)
}
