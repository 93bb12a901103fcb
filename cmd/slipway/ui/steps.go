package ui

import "slipway/internal/launch"

type stepStatus uint8

const (
	stepPending stepStatus = iota + 1
	stepRunning
	stepDone
	stepFailed
)

// launchStep is one checklist row. The five rows mirror the launch
// pipeline order; each row flips pending -> running -> done or failed.
type launchStep struct {
	phase  launch.Phase
	title  string
	status stepStatus
	note   string
}

var launchPlan = []struct {
	phase launch.Phase
	title string
}{
	{launch.PreflightChecking, "Checking environment"},
	{launch.Stopping, "Clearing previous instance"},
	{launch.Building, "Building image"},
	{launch.Starting, "Starting container"},
	{launch.HealthChecking, "Waiting for healthy"},
}

func phaseTitle(p launch.Phase) string {
	for _, s := range launchPlan {
		if s.phase == p {
			return s.title
		}
	}
	return p.String()
}
