package ui

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RunWithSpinner runs fn while animating a spinner on stderr. In
// non-interactive mode the function runs synchronously with no output.
// The spinner line is cleared before returning.
func RunWithSpinner(ctx context.Context, msg string, fn func(ctx context.Context) error) error {
	if IsNoInteraction() {
		return fn(ctx)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		frame := 0
		for {
			select {
			case <-stop:
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s %s\033[K", Accent(spinFrames[frame]), msg)
				frame = (frame + 1) % len(spinFrames)
			}
		}
	}()

	err := fn(ctx)
	close(stop)
	<-done
	return err
}
