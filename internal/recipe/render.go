package recipe

import (
	"fmt"
	"strings"
)

// Dockerfile is a rendered recipe: the file content plus the mapping
// from builder instruction numbers back to logical steps.
type Dockerfile struct {
	Content string

	steps []Step
}

// Instructions returns how many build instructions the file contains.
func (d Dockerfile) Instructions() int { return len(d.steps) }

// StepAt maps a 1-based builder instruction number (the N in the
// builder's "Step N/M" output) to its logical step.
func (d Dockerfile) StepAt(n int) (Step, bool) {
	if n < 1 || n > len(d.steps) {
		return 0, false
	}
	return d.steps[n-1], true
}

// Render produces the Dockerfile for a recipe. Instructions appear in
// the declared step order; every emitted instruction is recorded so
// build failures can be attributed to the step that produced it.
func Render(r Recipe) (Dockerfile, error) {
	if err := r.Validate(); err != nil {
		return Dockerfile{}, err
	}

	var b strings.Builder
	var steps []Step
	inst := func(step Step, line string) {
		b.WriteString(line)
		b.WriteString("\n")
		steps = append(steps, step)
	}

	inst(StepBaseImage, "FROM "+r.BaseImage)

	if len(r.EnvFlags) > 0 {
		pairs := make([]string, 0, len(r.EnvFlags))
		for _, flag := range r.EnvFlags {
			pairs = append(pairs, flag.Name+"="+flag.Value)
		}
		inst(StepEnvFlags, "ENV "+strings.Join(pairs, " "))
	}

	if r.WorkDir != "" {
		inst(StepWorkDir, "WORKDIR "+r.WorkDir)
	}

	if len(r.SystemPackages) > 0 {
		inst(StepSystemPackages, fmt.Sprintf(
			"RUN apt-get update && apt-get install -y --no-install-recommends %s && rm -rf /var/lib/apt/lists/*",
			strings.Join(r.SystemPackages, " ")))
	}

	if r.ManifestFile != "" {
		inst(StepManifestInstall, fmt.Sprintf("COPY %s ./", r.ManifestFile))
		inst(StepManifestInstall, fmt.Sprintf("RUN pip install -r %s", r.ManifestFile))
	}

	if len(r.ExtraPackages) > 0 {
		inst(StepExtraPackages, "RUN pip install "+strings.Join(r.ExtraPackages, " "))
	}

	if r.StageAll {
		inst(StepStageFiles, "COPY . .")
	}

	inst(StepExposePort, fmt.Sprintf("EXPOSE %d", r.Port))

	inst(StepHealthProbe, fmt.Sprintf(
		"HEALTHCHECK --interval=%s --timeout=%s --start-period=%s --retries=%d CMD curl -f http://localhost:%d%s || exit 1",
		r.Probe.Interval, r.Probe.Timeout, r.Probe.StartPeriod, r.Probe.Retries,
		r.Port, r.HealthPath))

	inst(StepCommand, "CMD "+execForm(r.Command))

	return Dockerfile{Content: b.String(), steps: steps}, nil
}

// execForm renders a command as a Dockerfile JSON array so the runtime
// execs it directly without a shell.
func execForm(cmd []string) string {
	quoted := make([]string, 0, len(cmd))
	for _, arg := range cmd {
		quoted = append(quoted, fmt.Sprintf("%q", arg))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
