package launch

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const sessionIDRandomBytes = 4

// Session is the mutable state of one launch run: the current phase,
// the outcome of each executed step, and the endpoint once known. One
// session is created per invocation and journaled when it ends.
type Session struct {
	ID         string        `json:"id"`
	App        string        `json:"app"`
	Phase      Phase         `json:"phase"`
	Image      string        `json:"image,omitempty"`
	Endpoint   string        `json:"endpoint,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Steps      []StepResult  `json:"steps"`
	Error      string        `json:"error,omitempty"`
}

// StepResult records one executed pipeline step.
type StepResult struct {
	Phase    Phase         `json:"phase"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// NewSession starts a session in Idle with a fresh identity.
func NewSession(app string, now time.Time) *Session {
	return &Session{
		ID:        SessionID(app),
		App:       app,
		Phase:     Idle,
		StartedAt: now,
	}
}

// ExitCode is zero exactly when the session terminated in Running.
func (s *Session) ExitCode() int {
	if s.Phase == Running {
		return 0
	}
	return 1
}

// SessionID generates a session identity with a random suffix.
// Format: {app}-{8-char-random}
func SessionID(app string) string {
	return fmt.Sprintf("%s-%s", app, randomSessionSuffix())
}

func randomSessionSuffix() string {
	b := make([]byte, sessionIDRandomBytes)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%0*x", sessionIDRandomBytes*2, 0)
	}
	return hex.EncodeToString(b)
}
