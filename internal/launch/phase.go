package launch

import (
	"encoding/json"
	"fmt"
	"strings"

	"slipway/internal/check"
)

// Phase is the lifecycle state of one launch session. A session moves
// strictly forward; once Failed is reached no further step executes.
type Phase uint8

const (
	Idle Phase = iota + 1
	PreflightChecking
	Stopping
	Building
	Starting
	HealthChecking
	Running
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PreflightChecking:
		return "preflight"
	case Stopping:
		return "stopping"
	case Building:
		return "building"
	case Starting:
		return "starting"
	case HealthChecking:
		return "health_checking"
	case Running:
		return "running"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) IsValid() bool {
	switch p {
	case Idle, PreflightChecking, Stopping, Building, Starting, HealthChecking, Running, Failed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the phase ends a session.
func (p Phase) Terminal() bool {
	return p == Running || p == Failed
}

// CanTransition reports whether the move from p to to is legal. The
// pipeline only ever moves forward one phase at a time or sideways into
// Failed; terminal phases go nowhere.
func (p Phase) CanTransition(to Phase) bool {
	switch p {
	case Idle:
		return to == PreflightChecking
	case PreflightChecking:
		return to == Stopping || to == Failed
	case Stopping:
		return to == Building || to == Failed
	case Building:
		return to == Starting || to == Failed
	case Starting:
		return to == HealthChecking || to == Failed
	case HealthChecking:
		return to == Running || to == Failed
	default:
		return false
	}
}

func (p Phase) Transition(to Phase) Phase {
	ok := p.CanTransition(to)
	check.Assertf(ok, "launch phase transition: %s -> %s", p, to)
	if !ok {
		return p
	}
	return to
}

func (p Phase) MarshalJSON() ([]byte, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("invalid launch phase: %d", p)
	}
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	next, ok := parsePhase(raw)
	if !ok {
		return fmt.Errorf("invalid launch phase: %q", raw)
	}
	*p = next
	return nil
}

func parsePhase(raw string) (Phase, bool) {
	switch strings.TrimSpace(raw) {
	case "idle":
		return Idle, true
	case "preflight":
		return PreflightChecking, true
	case "stopping":
		return Stopping, true
	case "building":
		return Building, true
	case "starting":
		return Starting, true
	case "health_checking":
		return HealthChecking, true
	case "running":
		return Running, true
	case "failed":
		return Failed, true
	default:
		return 0, false
	}
}

func ParsePhase(raw string) (Phase, bool) {
	return parsePhase(raw)
}
