package ui

import (
	"fmt"
	"os"
	"sync"

	"slipway/internal/launch"
)

// Reporter consumes launch progress events and renders them for the
// operator. Close flushes any in-place animation.
type Reporter interface {
	OnEvent(ev launch.ProgressEvent)
	Close()
}

// NewLaunchReporter returns the animated checklist on interactive
// terminals and a plain line printer everywhere else, so CI logs stay
// readable.
func NewLaunchReporter() Reporter {
	if IsInteractive() {
		return NewChecklist()
	}
	return &lineReporter{}
}

// lineReporter prints one line per phase transition. Build output is
// passed through indented so a failed build keeps its context in the
// log.
type lineReporter struct {
	mu          sync.Mutex
	lastStarted launch.Phase
}

func (l *lineReporter) OnEvent(ev launch.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Type {
	case launch.EventPhaseStarted:
		l.lastStarted = ev.Phase
		fmt.Fprintln(os.Stderr, formatPhaseLine(stepRunning, phaseTitle(ev.Phase), ""))
	case launch.EventPhaseComplete:
		fmt.Fprintln(os.Stderr, formatPhaseLine(stepDone, phaseTitle(ev.Phase), ""))
	case launch.EventBuildOutput:
		fmt.Fprintln(os.Stderr, "      "+ev.Message)
	case launch.EventWarning:
		fmt.Fprintln(os.Stderr, "  [!] "+ev.Message)
	case launch.EventLaunchFailed:
		fmt.Fprintln(os.Stderr, formatPhaseLine(stepFailed, phaseTitle(l.lastStarted), ev.Message))
	}
}

func (l *lineReporter) Close() {}

func formatPhaseLine(status stepStatus, title, msg string) string {
	prefix := "[..]"
	switch status {
	case stepRunning:
		prefix = "[->]"
	case stepDone:
		prefix = "[ok]"
	case stepFailed:
		prefix = "[x]"
	}

	if msg != "" {
		return fmt.Sprintf("  %s %s (%s)", prefix, title, msg)
	}
	return fmt.Sprintf("  %s %s", prefix, title)
}
