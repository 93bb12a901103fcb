package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	envNoInteraction = "NO_INTERACTION"
	envNoColor       = "NO_COLOR"
	envCI            = "CI"
	envTerm          = "TERM"
)

var interaction struct {
	mu      sync.RWMutex
	known   bool
	enabled bool
}

// ConfigureInteraction decides once whether output may use color and
// in-place animation. Pass true to force plain output regardless of
// the environment. Calling it again re-evaluates, so flag parsing may
// override an earlier implicit decision.
func ConfigureInteraction(noInteraction bool) {
	enabled := detectInteractiveMode(noInteraction)

	interaction.mu.Lock()
	interaction.known = true
	interaction.enabled = enabled
	interaction.mu.Unlock()

	profile := termenv.Ascii
	if enabled {
		profile = termenv.ColorProfile()
	}
	lipgloss.SetColorProfile(profile)
}

// IsInteractive reports whether animated, colored output is allowed.
// The first caller triggers detection if ConfigureInteraction has not
// run yet.
func IsInteractive() bool {
	interaction.mu.RLock()
	known, enabled := interaction.known, interaction.enabled
	interaction.mu.RUnlock()
	if known {
		return enabled
	}

	ConfigureInteraction(false)

	interaction.mu.RLock()
	enabled = interaction.enabled
	interaction.mu.RUnlock()
	return enabled
}

func IsNoInteraction() bool {
	return !IsInteractive()
}

func detectInteractiveMode(noInteraction bool) bool {
	switch {
	case noInteraction:
		return false
	case envTruthy(envNoInteraction), envTruthy(envCI):
		return false
	case os.Getenv(envNoColor) != "":
		// NO_COLOR is conventionally "set at all means on".
		return false
	case strings.EqualFold(strings.TrimSpace(os.Getenv(envTerm)), "dumb"):
		return false
	}
	return stderrIsTerminal()
}

func stderrIsTerminal() bool {
	info, err := os.Stderr.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

var truthy = map[string]bool{"1": true, "true": true, "yes": true, "on": true}

func envTruthy(key string) bool {
	return truthy[strings.TrimSpace(strings.ToLower(os.Getenv(key)))]
}
