package fake

import (
	"context"

	"slipway/internal/launch"
)

var _ launch.SkewProbe = (*SkewProbe)(nil)

// SkewProbe is an in-memory implementation of launch.SkewProbe. It
// reports no skew unless CheckErr is set.
type SkewProbe struct {
	CallRecorder

	CheckErr func(ctx context.Context) error
}

func NewSkewProbe() *SkewProbe {
	return &SkewProbe{}
}

func (p *SkewProbe) Check(ctx context.Context) error {
	p.record("Check")
	if p.CheckErr != nil {
		return p.CheckErr(ctx)
	}
	return nil
}
