package fake

import (
	"context"
	"sync"

	"slipway/internal/launch"
)

var _ launch.Journal = (*Journal)(nil)

// Journal is an in-memory implementation of launch.Journal.
type Journal struct {
	CallRecorder
	mu       sync.Mutex
	sessions []launch.Session

	RecordErr func(ctx context.Context, s launch.Session) error
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Record(ctx context.Context, s launch.Session) error {
	j.record("Record", s.ID)
	if j.RecordErr != nil {
		if err := j.RecordErr(ctx, s); err != nil {
			return err
		}
	}
	j.mu.Lock()
	j.sessions = append(j.sessions, s)
	j.mu.Unlock()
	return nil
}

// Sessions returns recorded sessions in order.
func (j *Journal) Sessions() []launch.Session {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]launch.Session, len(j.sessions))
	copy(out, j.sessions)
	return out
}
