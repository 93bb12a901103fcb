package timesync

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckWithinThreshold(t *testing.T) {
	c := NewChecker()
	c.QueryFunc = func(pool string) (time.Duration, error) {
		return 150 * time.Millisecond, nil
	}

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v, want nil for small offset", err)
	}
}

func TestCheckExcessiveOffset(t *testing.T) {
	c := NewChecker()
	c.QueryFunc = func(pool string) (time.Duration, error) {
		return -3 * time.Second, nil
	}

	err := c.Check(context.Background())
	var skew *SkewError
	if !errors.As(err, &skew) {
		t.Fatalf("Check() error = %T (%v), want *SkewError", err, err)
	}
	if skew.Offset != -3*time.Second {
		t.Fatalf("Offset = %v, want -3s", skew.Offset)
	}
	if !strings.Contains(err.Error(), "3s") {
		t.Fatalf("Error() = %q, want offset in message", err.Error())
	}
}

func TestCheckQueryFailureIsSilent(t *testing.T) {
	c := NewChecker()
	c.QueryFunc = func(pool string) (time.Duration, error) {
		return 0, errors.New("no route to host")
	}

	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v, want nil when the pool is unreachable", err)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewChecker()
	c.QueryFunc = func(pool string) (time.Duration, error) {
		t.Fatal("query ran under a cancelled context")
		return 0, nil
	}

	if err := c.Check(ctx); err != nil {
		t.Fatalf("Check() error = %v, want nil", err)
	}
}
