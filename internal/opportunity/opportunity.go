// Package opportunity converts visibility pass windows into imaging
// opportunity candidates, in roll-only or roll+pitch mode, and scores them
// with the quality package once a per-(satellite,target) group is known.
package opportunity

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
	"github.com/orbitalcue/mission-planner/internal/quality"
	"github.com/orbitalcue/mission-planner/internal/visibility"
)

// dedupGranularityDeg is the quantisation step used to collapse
// near-colinear (roll, pitch) samples within one pass.
const dedupGranularityDeg = 0.5

// Opportunity is one imaging moment candidate: a window, the geometry at
// the chosen instant, and (once scored) its value terms.
type Opportunity struct {
	ID          string
	SatelliteID string
	TargetID    string

	Start time.Time
	End   time.Time

	PeakElevationDeg float64
	RollDeg          float64 // signed off-nadir, positive = right of track
	PitchDeg         float64 // signed along-track, positive = forward-looking
	IncidenceDeg     float64

	Priority int

	BaseValue      float64
	Quality        float64
	CompositeValue float64
}

// Build converts one PassWindow into its opportunity set: a single TCA
// opportunity in roll-only mode, or up to 11 interior samples in
// roll+pitch mode.
//
// Mode is forced to roll-only whenever the effective max_pitch is zero,
// regardless of usePitch: this is what makes the roll+pitch algorithm
// variants produce exactly the roll-only schedule when no pitch is
// permitted, rather than relying on
// every interior sample happening to reject in the feasibility kernel.
func Build(prop *orbit.Propagator, pass visibility.PassWindow, target domain.GroundTarget, sat domain.Satellite, cfg domain.SchedulerConfig, usePitch bool) ([]Opportunity, error) {
	_, maxPitch := effectiveLimits(sat, target, cfg)
	if !usePitch || maxPitch <= 0 {
		opp, err := buildAtTCA(prop, pass, target, cfg)
		if err != nil {
			return nil, err
		}
		return []Opportunity{opp}, nil
	}
	return buildRollPitch(prop, pass, target, sat, cfg)
}

func buildAtTCA(prop *orbit.Propagator, pass visibility.PassWindow, target domain.GroundTarget, cfg domain.SchedulerConfig) (Opportunity, error) {
	s, err := visibility.Evaluate(prop, target, pass.TCA)
	if err != nil {
		return Opportunity{}, err
	}
	tau := time.Duration(cfg.ImagingTimeS * float64(time.Second))
	return Opportunity{
		ID:               uuid.New().String(),
		SatelliteID:      pass.SatelliteID,
		TargetID:         pass.TargetID,
		Start:            pass.TCA,
		End:              pass.TCA.Add(tau),
		PeakElevationDeg: pass.PeakElevationDeg,
		RollDeg:          s.RollDeg,
		PitchDeg:         s.PitchDeg,
		IncidenceDeg:     incidenceOf(s),
		Priority:         target.Priority,
	}, nil
}

func incidenceOf(s visibility.Sample) float64 {
	return math.Hypot(s.RollDeg, s.PitchDeg)
}

// sampleCount picks N in [3,11] for the given pass duration, matching
// the "1-second resolution or the finest that yields N in [3,11]"
// rule: short passes still get 3 samples, long passes are capped at 11.
func sampleCount(duration time.Duration) int {
	n := int(duration.Seconds()) + 1
	if n < 3 {
		return 3
	}
	if n > 11 {
		return 11
	}
	return n
}

func effectiveLimits(sat domain.Satellite, target domain.GroundTarget, cfg domain.SchedulerConfig) (maxRoll, maxPitch float64) {
	maxRoll = target.MaxRollDeg
	if maxRoll <= 0 {
		maxRoll = sat.MaxRollDeg
	}
	if maxRoll <= 0 {
		maxRoll = cfg.MaxSpacecraftRollDeg
	}
	maxPitch = sat.MaxPitchDeg
	if maxPitch <= 0 {
		maxPitch = cfg.MaxSpacecraftPitchDeg
	}
	return maxRoll, maxPitch
}

func buildRollPitch(prop *orbit.Propagator, pass visibility.PassWindow, target domain.GroundTarget, sat domain.Satellite, cfg domain.SchedulerConfig) ([]Opportunity, error) {
	duration := pass.LOS.Sub(pass.AOS)
	n := sampleCount(duration)
	maxRoll, maxPitch := effectiveLimits(sat, target, cfg)
	tau := time.Duration(cfg.ImagingTimeS * float64(time.Second))

	type dedupKey struct {
		roll, pitch float64
	}
	seen := make(map[dedupKey]bool, n)

	opps := make([]Opportunity, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		if n == 1 {
			frac = 0
		}
		t := pass.AOS.Add(time.Duration(frac * float64(duration)))

		s, err := visibility.Evaluate(prop, target, t)
		if err != nil {
			return nil, err
		}
		if math.Abs(s.RollDeg) > maxRoll {
			continue
		}
		if maxPitch > 0 && math.Abs(s.PitchDeg) > maxPitch {
			continue
		}

		key := dedupKey{
			roll:  math.Round(s.RollDeg/dedupGranularityDeg) * dedupGranularityDeg,
			pitch: math.Round(s.PitchDeg/dedupGranularityDeg) * dedupGranularityDeg,
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		opps = append(opps, Opportunity{
			ID:               uuid.New().String(),
			SatelliteID:      pass.SatelliteID,
			TargetID:         pass.TargetID,
			Start:            t,
			End:              t.Add(tau),
			PeakElevationDeg: s.ElevationDeg,
			RollDeg:          s.RollDeg,
			PitchDeg:         s.PitchDeg,
			IncidenceDeg:     incidenceOf(s),
			Priority:         target.Priority,
		})
	}
	return opps, nil
}

// ScoreGroup assigns BaseValue, Quality, and CompositeValue to every
// opportunity in a per-(satellite,target) chronological group, using each
// opportunity's time-ordered rank for the timing term. opps is sorted by
// Start in place.
func ScoreGroup(opps []Opportunity, model quality.Model, weights domain.Weights) {
	sort.Slice(opps, func(i, j int) bool { return opps[i].Start.Before(opps[j].Start) })
	m := len(opps)
	for k := range opps {
		base, q, composite := quality.CompositeValue(opps[k].Priority, opps[k].IncidenceDeg, model, k, m, weights)
		opps[k].BaseValue = base
		opps[k].Quality = q
		opps[k].CompositeValue = composite
	}
}
