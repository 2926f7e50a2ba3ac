package visibility

import (
	"context"
	"math"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/geometry"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// AdaptiveFinder walks [t0, t1] with a step that expands while the
// satellite's ground track is far from the target and contracts as it
// nears the target's visibility circle, bisecting every sampled transition
// down to MinStep precision. It must agree with FixedStepFinder to within
// the required tolerance (same pass count, AOS/LOS within 1s,
// peak elevation within 0.1deg) while visiting far fewer samples per orbit.
type AdaptiveFinder struct {
	// MinStep bounds how fine the bisection and near-target sampling get.
	// Zero means 1 second.
	MinStep time.Duration
	// MaxStepFraction caps the coarse step as a fraction of the orbital
	// period. Zero means 1/4.
	MaxStepFraction float64
}

// NewAdaptiveFinder returns a finder using the default tuning: 1s minimum
// resolution, coarse step capped at orbital_period/4.
func NewAdaptiveFinder() *AdaptiveFinder {
	return &AdaptiveFinder{MinStep: time.Second, MaxStepFraction: 0.25}
}

func (f *AdaptiveFinder) minStep() time.Duration {
	if f.MinStep <= 0 {
		return time.Second
	}
	return f.MinStep
}

func (f *AdaptiveFinder) maxStep(period time.Duration) time.Duration {
	frac := f.MaxStepFraction
	if frac <= 0 {
		frac = 0.25
	}
	if period <= 0 {
		period = 90 * time.Minute
	}
	return time.Duration(float64(period) * frac)
}

// coverageHalfAngleDeg returns the central-angle radius, around the
// sub-satellite point, within which a satellite at altitude altKm can see a
// point on the surface at an elevation of at least minElevDeg. It is the
// threshold the adaptive stepper uses to decide how aggressively to close
// in on a candidate pass.
func coverageHalfAngleDeg(altKm, minElevDeg float64) float64 {
	elev := minElevDeg * math.Pi / 180
	if elev < 0 {
		elev = 0
	}
	ratio := geometry.REarth / (geometry.REarth + altKm) * math.Cos(elev)
	if ratio > 1 {
		ratio = 1
	}
	lambda := math.Acos(ratio) - elev
	if lambda <= 0 || math.IsNaN(lambda) {
		// Degenerate (very low altitude or masked-out elevation): fall
		// back to a conservative wide angle so the stepper never skips a
		// genuine pass.
		return 25
	}
	return lambda * 180 / math.Pi
}

// groundTrackAngleDeg is the geocentric angle between the sub-satellite
// point and the target, used as the adaptive stepper's proximity signal.
func groundTrackAngleDeg(st orbit.State, target domain.GroundTarget) float64 {
	subSat := geometry.ECEF(st.LatDeg, st.LonDeg, 0)
	tgt := geometry.ECEF(target.LatDeg, target.LonDeg, target.AltKm)
	return geometry.GeocentricAngle(subSat, tgt)
}

// nextCoarseStep adjusts the coarse search step based on how far the
// ground track currently is from the target's coverage circle: beyond 2x
// the coverage radius, expand toward maxStep; inside 1.5x, contract toward
// minStep so the transition isn't overshot; in between, keep the step.
func nextCoarseStep(angleDeg, coverageDeg float64, cur, minStep, maxStep time.Duration) time.Duration {
	switch {
	case angleDeg > 2*coverageDeg:
		next := cur * 2
		if next > maxStep {
			next = maxStep
		}
		return next
	case angleDeg < 1.5*coverageDeg:
		next := cur / 2
		if next < minStep {
			next = minStep
		}
		return next
	default:
		return cur
	}
}

// bisect narrows [tLo, tHi] — known to straddle a visibility transition,
// sLo.Visible != sHi.Visible — down to minStep precision and returns the
// two samples that bracket the transition: the last sample with sLo's
// visibility state and the first sample with sHi's.
func bisect(prop *orbit.Propagator, target domain.GroundTarget, tLo, tHi time.Time, sLo, sHi Sample, minStep time.Duration) (Sample, Sample, error) {
	for tHi.Sub(tLo) > minStep {
		mid := tLo.Add(tHi.Sub(tLo) / 2)
		sMid, err := evaluate(prop, target, mid)
		if err != nil {
			return Sample{}, Sample{}, err
		}
		if sMid.Visible == sLo.Visible {
			tLo, sLo = mid, sMid
		} else {
			tHi, sHi = mid, sMid
		}
	}
	return sLo, sHi, nil
}

// FindPasses implements Finder.
func (f *AdaptiveFinder) FindPasses(ctx context.Context, prop *orbit.Propagator, satelliteID string, target domain.GroundTarget, t0, t1 time.Time) ([]PassWindow, error) {
	minStep := f.minStep()
	maxStep := f.maxStep(prop.OrbitalPeriod())

	acc := newPassAccumulator(prop, satelliteID, target)

	prevT := t0
	prevSample, err := evaluate(prop, target, t0)
	if err != nil {
		return nil, err
	}
	if err := acc.feed(prevSample); err != nil {
		return nil, err
	}

	step := maxStep / 4
	if step < minStep {
		step = minStep
	}

	for prevT.Before(t1) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var candidateStep time.Duration
		if acc.cur != nil {
			// Inside a pass: sample finely so TCA is resolved accurately,
			// per the "1-5s interior sampling" guidance.
			candidateStep = minStep
		} else {
			st, err := prop.PositionAt(prevT)
			if err != nil {
				return nil, err
			}
			angle := groundTrackAngleDeg(st, target)
			coverageDeg := coverageHalfAngleDeg(st.AltKm, target.ElevationMaskDeg)
			step = nextCoarseStep(angle, coverageDeg, step, minStep, maxStep)
			candidateStep = step
		}

		next := prevT.Add(candidateStep)
		if next.After(t1) {
			next = t1
		}
		if !next.After(prevT) {
			break
		}

		sNext, err := evaluate(prop, target, next)
		if err != nil {
			return nil, err
		}

		if sNext.Visible != prevSample.Visible {
			enter, exit, err := bisect(prop, target, prevT, next, prevSample, sNext, minStep)
			if err != nil {
				return nil, err
			}
			if err := acc.feed(enter); err != nil {
				return nil, err
			}
			if err := acc.feed(exit); err != nil {
				return nil, err
			}
			prevT, prevSample = exit.T, exit
		} else {
			if err := acc.feed(sNext); err != nil {
				return nil, err
			}
			prevT, prevSample = next, sNext
		}
	}

	return acc.finish()
}
