// Package visibility finds pass windows between satellites and ground
// targets, using two independent strategies (fixed-step and adaptive) that
// required to agree to within a tight tolerance.
package visibility

import (
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/geometry"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// PassGapThreshold is the maximum gap of invisibility, in seconds, under
// which two visibility episodes for the same target are merged into one
// pass rather than split into two.
const PassGapThreshold = 300 * time.Second

// PassWindow describes one continuous visibility episode for a
// (satellite, target) pair.
type PassWindow struct {
	SatelliteID string
	TargetID    string

	AOS time.Time
	TCA time.Time
	LOS time.Time

	AOSAzimuthDeg float64
	TCAAzimuthDeg float64
	LOSAzimuthDeg float64

	PeakElevationDeg float64
	Ascending        bool
}

// Sample is one instantaneous evaluation of visibility geometry at time t,
// produced while walking or bisecting a window.
type Sample struct {
	T            time.Time
	ElevationDeg float64
	AzimuthDeg   float64
	RollDeg      float64
	PitchDeg     float64
	Visible      bool
}

// Evaluate computes the visibility sample at time t for one (satellite,
// target) pair. Exported so callers downstream of pass-finding (the
// opportunity builder) can resample within an already-found PassWindow
// without re-running a finder.
func Evaluate(prop *orbit.Propagator, target domain.GroundTarget, t time.Time) (Sample, error) {
	return evaluate(prop, target, t)
}

// evaluate computes the full visibility sample at time t for one
// (satellite, target) pair, applying the target-type-specific visibility
// test: elevation + half-FOV off-nadir gate for imaging
// targets.
func evaluate(prop *orbit.Propagator, target domain.GroundTarget, t time.Time) (Sample, error) {
	st, err := prop.PositionAt(t)
	if err != nil {
		return Sample{}, err
	}

	elev := geometry.Elevation(st.ECEF, target.LatDeg, target.LonDeg, target.AltKm)
	az := geometry.Azimuth(st.ECEF, target.LatDeg, target.LonDeg, target.AltKm)

	targetECEF := geometry.ECEF(target.LatDeg, target.LonDeg, target.AltKm)
	roll, pitch := geometry.RollPitch(st.ECEF, st.VelECEFKmS, st.LatDeg, st.LonDeg, st.AltKm, targetECEF)

	slant := geometry.SlantRange(st.ECEF, targetECEF)
	incidence := geometry.OffNadir(st.AltKm, slant)

	// elevation_mask_deg gates communication targets only; OPTICAL/SAR
	// imaging targets are visible whenever elevation is positive and the
	// off-nadir angle fits the sensor's half-FOV. domain.MissionMode has
	// no communication value yet, so every target reaching this point is
	// an imaging target and the mask is not applied.
	visible := elev >= 0 && incidence <= target.HalfFOVDeg

	return Sample{
		T:            t,
		ElevationDeg: elev,
		AzimuthDeg:   az,
		RollDeg:      roll,
		PitchDeg:     pitch,
		Visible:      visible,
	}, nil
}

// ascendingAt reports whether the satellite's sub-latitude is increasing at
// time t, used only to annotate PassWindow.Ascending.
func ascendingAt(prop *orbit.Propagator, t time.Time) (bool, error) {
	const dt = 1 * time.Second
	a, err := prop.PositionAt(t)
	if err != nil {
		return false, err
	}
	b, err := prop.PositionAt(t.Add(dt))
	if err != nil {
		return false, err
	}
	return b.LatDeg > a.LatDeg, nil
}
