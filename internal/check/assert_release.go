//go:build !debug

// Package check provides invariant assertions that compile to no-ops
// unless the debug build tag is set.
package check

// Assert does nothing in release builds.
func Assert(bool, string) {}

// Assertf does nothing in release builds.
func Assertf(bool, string, ...any) {}
