// Package timesync probes the local clock against an NTP pool. A clock
// that drifts too far breaks the deployed app's signed upstream
// requests, so launches surface the drift as a warning before it turns
// into confusing API failures.
package timesync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/beevik/ntp"

	"slipway/internal/launch"
)

const (
	defaultPool      = "pool.ntp.org"
	defaultThreshold = 2 * time.Second
	queryTimeout     = 2 * time.Second
)

var _ launch.SkewProbe = (*Checker)(nil)

// SkewError reports local clock drift beyond the threshold.
type SkewError struct {
	Offset    time.Duration
	Threshold time.Duration
}

func (e *SkewError) Error() string {
	return fmt.Sprintf("local clock is off by %s (threshold %s); signed API requests may be rejected",
		e.Offset.Round(time.Millisecond), e.Threshold)
}

// Checker implements launch.SkewProbe with a single NTP query per
// check. Query failures are swallowed: an unreachable pool says nothing
// about the clock, and the probe must never block or fail a launch.
type Checker struct {
	Pool      string
	Threshold time.Duration

	// QueryFunc overrides the NTP query in tests. It returns the
	// measured clock offset.
	QueryFunc func(pool string) (time.Duration, error)
}

func NewChecker() *Checker {
	return &Checker{Pool: defaultPool, Threshold: defaultThreshold}
}

func (c *Checker) Check(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	query := c.QueryFunc
	if query == nil {
		query = ntpOffset
	}
	pool := c.Pool
	if pool == "" {
		pool = defaultPool
	}
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	offset, err := query(pool)
	if err != nil {
		slog.Debug("ntp query failed", "component", "timesync", "pool", pool, "error", err)
		return nil
	}
	if offset.Abs() >= threshold {
		return &SkewError{Offset: offset, Threshold: threshold}
	}
	return nil
}

func ntpOffset(pool string) (time.Duration, error) {
	resp, err := ntp.QueryWithOptions(pool, ntp.QueryOptions{Timeout: queryTimeout})
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
