package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"slipway/internal/launch"
)

var spinFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const noteWidth = 80

// Checklist renders launch progress as a terminal checklist. Pending
// phases are muted, the running phase shows a braille spinner with the
// latest build output line, done phases show a checkmark, a failed
// phase shows a red x with the error.
type Checklist struct {
	steps         []launchStep
	renderedLines int
	mu            sync.Mutex
	stop          chan struct{}
	frame         int
	started       bool
	once          sync.Once
}

// NewChecklist creates a Checklist pre-seeded with the launch phases.
func NewChecklist() *Checklist {
	steps := make([]launchStep, len(launchPlan))
	for i, s := range launchPlan {
		steps[i] = launchStep{phase: s.phase, title: s.title, status: stepPending}
	}
	return &Checklist{steps: steps, stop: make(chan struct{})}
}

// OnEvent applies one progress event and repaints.
func (c *Checklist) OnEvent(ev launch.ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case launch.EventPhaseStarted:
		c.apply(ev.Phase, stepRunning, "")
	case launch.EventPhaseComplete:
		c.apply(ev.Phase, stepDone, "")
	case launch.EventBuildOutput:
		c.annotate(ev.Phase, trimNote(ev.Message))
	case launch.EventWarning:
		c.annotate(ev.Phase, trimNote(ev.Message))
	case launch.EventLaunchFailed:
		c.failRunning(ev.Message)
	}

	if !c.started {
		c.started = true
		for _, s := range c.steps {
			icon, label := c.stepStyle(s)
			fmt.Fprintf(os.Stderr, "  %s %s\n", icon, label)
		}
		c.renderedLines = len(c.steps)
		go c.spin()
		return
	}
	c.redraw()
}

// Close stops the spinner and leaves the final checklist in place.
func (c *Checklist) Close() {
	c.once.Do(func() {
		close(c.stop)
	})
	c.mu.Lock()
	c.redraw()
	c.mu.Unlock()
}

func (c *Checklist) apply(phase launch.Phase, status stepStatus, note string) {
	for i := range c.steps {
		if c.steps[i].phase == phase {
			c.steps[i].status = status
			c.steps[i].note = note
			return
		}
	}
}

func (c *Checklist) annotate(phase launch.Phase, note string) {
	for i := range c.steps {
		if c.steps[i].phase == phase {
			c.steps[i].note = note
			return
		}
	}
}

// failRunning marks the phase currently in flight as the failed one.
// The failure event itself carries the terminal phase, not the phase
// that broke.
func (c *Checklist) failRunning(message string) {
	for i := range c.steps {
		if c.steps[i].status == stepRunning {
			c.steps[i].status = stepFailed
			c.steps[i].note = trimNote(message)
			return
		}
	}
}

func (c *Checklist) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.frame = (c.frame + 1) % len(spinFrames)
			c.redraw()
			c.mu.Unlock()
		}
	}
}

// redraw repaints every step line over the previous frame. Caller
// must hold c.mu.
func (c *Checklist) redraw() {
	if !c.started {
		return
	}
	if c.renderedLines > 0 {
		fmt.Fprintf(os.Stderr, "\033[%dA", c.renderedLines)
	}
	for _, s := range c.steps {
		icon, label := c.stepStyle(s)
		line := fmt.Sprintf("  %s %s", icon, label)
		if s.note != "" {
			line += " " + Muted(s.note)
		}
		fmt.Fprintf(os.Stderr, "\r%s\033[K\n", line)
	}
	c.renderedLines = len(c.steps)
}

func (c *Checklist) stepStyle(s launchStep) (icon, label string) {
	switch s.status {
	case stepRunning:
		return Accent(spinFrames[c.frame]), s.title
	case stepDone:
		return Success("✓"), s.title
	case stepFailed:
		return ErrorStyle.Render("✗"), ErrorStyle.Render(s.title)
	default:
		return Muted("●"), Muted(s.title)
	}
}

// trimNote keeps annotations to one physical line so the in-place
// redraw never fights terminal wrapping.
func trimNote(s string) string {
	runes := []rune(s)
	if len(runes) <= noteWidth {
		return s
	}
	return string(runes[:noteWidth-1]) + "…"
}
