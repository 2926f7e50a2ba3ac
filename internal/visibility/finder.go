package visibility

import (
	"context"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// Finder finds the ordered sequence of PassWindows for one (satellite,
// target) pair during [t0, t1]. Implementations must produce strictly
// time-ordered passes and respect ctx cancellation between
// candidate windows.
type Finder interface {
	FindPasses(ctx context.Context, prop *orbit.Propagator, satelliteID string, target domain.GroundTarget, t0, t1 time.Time) ([]PassWindow, error)
}

// openWindow accumulates state for a visibility episode that hasn't closed
// yet, tracking the running peak elevation so the final PassWindow's TCA is
// correct regardless of sampling strategy.
type openWindow struct {
	aos          time.Time
	peakElev     float64
	peakT        time.Time
	peakAz       float64
	aosAz        float64
	lastVisibleT time.Time
}

func newOpenWindow(s Sample) *openWindow {
	return &openWindow{
		aos:          s.T,
		peakElev:     s.ElevationDeg,
		peakT:        s.T,
		peakAz:       s.AzimuthDeg,
		aosAz:        s.AzimuthDeg,
		lastVisibleT: s.T,
	}
}

func (w *openWindow) observe(s Sample) {
	if !s.Visible {
		return
	}
	w.lastVisibleT = s.T
	if s.ElevationDeg > w.peakElev {
		w.peakElev = s.ElevationDeg
		w.peakT = s.T
		w.peakAz = s.AzimuthDeg
	}
}

func (w *openWindow) close(losAz float64, satelliteID, targetID string, ascending bool) PassWindow {
	return PassWindow{
		SatelliteID:      satelliteID,
		TargetID:         targetID,
		AOS:              w.aos,
		TCA:              w.peakT,
		LOS:              w.lastVisibleT,
		AOSAzimuthDeg:    w.aosAz,
		TCAAzimuthDeg:    w.peakAz,
		LOSAzimuthDeg:    losAz,
		PeakElevationDeg: w.peakElev,
		Ascending:        ascending,
	}
}

// shouldMerge decides, per the pass-merging rule, whether a gap of
// invisibility should be absorbed into the same pass rather than closing
// it: the gap must be shorter than PassGapThreshold and elevation must
// never have gone negative within it.
func shouldMerge(gap time.Duration, minElevDuringGap float64) bool {
	return gap < PassGapThreshold && minElevDuringGap >= 0
}

// passAccumulator implements the shared not-visible/visible state machine
// that both FixedStepFinder and AdaptiveFinder feed samples through, one at
// a time, in strictly increasing time order. It is the one place the
// merge-vs-split decision is made the same way, so both
// strategies apply it identically.
type passAccumulator struct {
	prop        *orbit.Propagator
	satelliteID string
	target      domain.GroundTarget

	cur        *openWindow
	inGap      bool
	gapMinElev float64
	passes     []PassWindow
}

func newPassAccumulator(prop *orbit.Propagator, satelliteID string, target domain.GroundTarget) *passAccumulator {
	return &passAccumulator{prop: prop, satelliteID: satelliteID, target: target}
}

func (a *passAccumulator) closeCurrent(losAz float64) error {
	ascending, err := ascendingAt(a.prop, a.cur.peakT)
	if err != nil {
		return err
	}
	a.passes = append(a.passes, a.cur.close(losAz, a.satelliteID, a.target.ID, ascending))
	a.cur = nil
	a.inGap = false
	return nil
}

// feed processes one sample. Samples must be fed in non-decreasing time
// order; feed does not itself decide sampling cadence.
func (a *passAccumulator) feed(s Sample) error {
	switch {
	case a.cur == nil && s.Visible:
		a.cur = newOpenWindow(s)

	case a.cur == nil:
		// still searching, nothing to do

	case a.cur != nil && s.Visible && !a.inGap:
		a.cur.observe(s)

	case a.cur != nil && s.Visible && a.inGap:
		gap := s.T.Sub(a.cur.lastVisibleT)
		if shouldMerge(gap, a.gapMinElev) {
			a.cur.observe(s)
			a.inGap = false
		} else {
			if err := a.closeCurrent(s.AzimuthDeg); err != nil {
				return err
			}
			a.cur = newOpenWindow(s)
		}

	case a.cur != nil && !s.Visible:
		if !a.inGap {
			a.inGap = true
			a.gapMinElev = s.ElevationDeg
		} else if s.ElevationDeg < a.gapMinElev {
			a.gapMinElev = s.ElevationDeg
		}
		if s.T.Sub(a.cur.lastVisibleT) >= PassGapThreshold {
			if err := a.closeCurrent(s.AzimuthDeg); err != nil {
				return err
			}
		}
	}
	return nil
}

// finish closes any still-open window at the horizon boundary and returns
// the accumulated passes.
func (a *passAccumulator) finish() ([]PassWindow, error) {
	if a.cur != nil {
		finalSample, err := evaluate(a.prop, a.target, a.cur.lastVisibleT)
		if err != nil {
			return nil, err
		}
		if err := a.closeCurrent(finalSample.AzimuthDeg); err != nil {
			return nil, err
		}
	}
	return a.passes, nil
}
