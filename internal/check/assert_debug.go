//go:build debug

package check

import "fmt"

// Assert panics when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		fail(msg)
	}
}

// Assertf panics when cond is false, formatting the message fmt.Sprintf
// style.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		fail(fmt.Sprintf(format, args...))
	}
}

func fail(msg string) {
	panic("invariant violated: " + msg)
}
