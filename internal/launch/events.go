package launch

// Event types carried by ProgressEvent.
const (
	EventPhaseStarted   = "phase_started"
	EventPhaseComplete  = "phase_complete"
	EventBuildOutput    = "build_output"
	EventWarning        = "warning"
	EventLaunchComplete = "launch_complete"
	EventLaunchFailed   = "launch_failed"
)

// ProgressEvent reports one launch transition to the reporter.
type ProgressEvent struct {
	Type    string
	Phase   Phase
	Message string
}

// emit sends without blocking. Events may be dropped if the channel is
// full; the session state, not the event stream, is the source of truth.
func emit(events chan<- ProgressEvent, ev ProgressEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	default:
	}
}
