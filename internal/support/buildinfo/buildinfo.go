// Package buildinfo carries version metadata stamped at build time.
package buildinfo

// Version is overridden by the release pipeline via
// -ldflags "-X slipway/internal/support/buildinfo.Version=...".
var Version = "dev"
