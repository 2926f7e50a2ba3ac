package visibility

import (
	"context"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// FixedStepFinder walks [t0, t1] at a constant step, feeding every sample
// through the shared passAccumulator state machine. It is the simple,
// obviously-correct reference strategy that AdaptiveFinder is checked
// against.
type FixedStepFinder struct {
	// Step is the sampling interval. Zero means the default of 1s.
	Step time.Duration
}

// NewFixedStepFinder returns a finder using the default 1-second step.
func NewFixedStepFinder() *FixedStepFinder {
	return &FixedStepFinder{Step: time.Second}
}

func (f *FixedStepFinder) step() time.Duration {
	if f.Step <= 0 {
		return time.Second
	}
	return f.Step
}

// FindPasses implements Finder.
func (f *FixedStepFinder) FindPasses(ctx context.Context, prop *orbit.Propagator, satelliteID string, target domain.GroundTarget, t0, t1 time.Time) ([]PassWindow, error) {
	step := f.step()
	acc := newPassAccumulator(prop, satelliteID, target)

	for t := t0; !t.After(t1); t = t.Add(step) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		s, err := evaluate(prop, target, t)
		if err != nil {
			return nil, err
		}
		if err := acc.feed(s); err != nil {
			return nil, err
		}
	}

	return acc.finish()
}
