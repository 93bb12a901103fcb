package fake

import (
	"context"
	"fmt"
	"sync"

	"slipway/internal/launch"
)

var _ launch.HealthVerifier = (*HealthVerifier)(nil)

// HealthVerifier is an in-memory implementation of
// launch.HealthVerifier. Instances must be configured healthy or
// unhealthy explicitly; an unconfigured instance is an error so tests
// cannot pass by accident.
type HealthVerifier struct {
	CallRecorder
	mu      sync.Mutex
	results map[string]error

	WaitHealthyErr func(ctx context.Context, instance string) error
}

func NewHealthVerifier() *HealthVerifier {
	return &HealthVerifier{results: make(map[string]error)}
}

// SetHealthy configures instance to verify as healthy.
func (v *HealthVerifier) SetHealthy(instance string) {
	v.mu.Lock()
	v.results[instance] = nil
	v.mu.Unlock()
}

// SetUnhealthy configures instance to verify with the given error.
func (v *HealthVerifier) SetUnhealthy(instance string, err error) {
	v.mu.Lock()
	v.results[instance] = err
	v.mu.Unlock()
}

func (v *HealthVerifier) WaitHealthy(ctx context.Context, instance string, spec launch.VerifySpec) error {
	v.record("WaitHealthy", instance, spec)
	if v.WaitHealthyErr != nil {
		if err := v.WaitHealthyErr(ctx, instance); err != nil {
			return err
		}
	}

	v.mu.Lock()
	result, ok := v.results[instance]
	v.mu.Unlock()
	if !ok {
		return fmt.Errorf("instance %q: no health result configured", instance)
	}
	return result
}
