package fake

import "sync"

// Call is one recorded invocation on a fake dependency.
type Call struct {
	Method string
	Args   []any
}

// CallRecorder keeps an ordered log of method invocations so tests can
// assert on what a fake was asked to do. The zero value is ready to use
// and safe for concurrent recording.
type CallRecorder struct {
	mu     sync.RWMutex
	log    []Call
	counts map[string]int
}

func (r *CallRecorder) record(method string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.log = append(r.log, Call{Method: method, Args: args})
	r.counts[method]++
}

// Calls returns the invocations of method in recording order. An empty
// method name selects the whole log.
func (r *CallRecorder) Calls(method string) []Call {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Call, 0, len(r.log))
	for _, c := range r.log {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns how many times method was invoked.
func (r *CallRecorder) CallCount(method string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counts[method]
}

// Reset discards everything recorded so far.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	r.log = nil
	r.counts = nil
	r.mu.Unlock()
}
