package launch

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// preflight validates the environment without mutating anything: the
// engine must answer a ping and the credentials file must exist. The
// clock-skew advisory runs last and only ever warns; skew can break the
// deployed app's signed upstream requests, so it is worth surfacing.
func (r *Runner) preflight(ctx context.Context, st *runState) error {
	if err := r.Runtime.Ping(ctx); err != nil {
		return &PreflightError{Reason: RuntimeUnavailable, Detail: err.Error()}
	}

	path := st.opts.EnvFile
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PreflightError{Reason: ConfigMissing, Path: path}
		}
		return &PreflightError{Reason: ConfigMissing, Path: path, Detail: err.Error()}
	}

	if r.Skew != nil {
		if err := r.Skew.Check(ctx); err != nil {
			st.log.Warn("clock skew advisory", "error", err)
			emit(st.events, ProgressEvent{Type: EventWarning, Phase: PreflightChecking, Message: err.Error()})
		}
	}
	return nil
}
