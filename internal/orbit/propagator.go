package orbit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/akhenakh/sgp4"

	"github.com/orbitalcue/mission-planner/internal/geometry"
)

// PropagatorError wraps an SGP4 failure: a TLE whose epoch is unusable, or a
// requested time outside the predictor's stable window (surfaced as NaN
// position components).
type PropagatorError struct {
	SatelliteID string
	Time        time.Time
	Err         error
}

func (e *PropagatorError) Error() string {
	return fmt.Sprintf("propagator error for %s at %s: %v", e.SatelliteID, e.Time.Format(time.RFC3339), e.Err)
}
func (e *PropagatorError) Unwrap() error { return e.Err }

// State is the full kinematic state of a satellite at one instant.
type State struct {
	LatDeg, LonDeg float64
	AltKm          float64
	ECEF           geometry.Vec3
	VelECEFKmS     geometry.Vec3
}

// cacheKey quantises a satellite/time pair to 1-second resolution so
// repeated lookups across the visibility engine's sampling hit the cache.
type cacheKey struct {
	satID string
	tUnix int64
}

// Propagator exposes satellite state as a pure function of time, backed by
// github.com/akhenakh/sgp4. A single Propagator instance holds one TLE; the
// caller keeps one per satellite. Safe for concurrent use: the SGP4 state
// itself is read-only once built, and the position cache is guarded by a
// mutex.
type Propagator struct {
	satelliteID string
	tle         *sgp4.TLE

	mu    sync.RWMutex
	cache map[cacheKey]State
}

// NewPropagator parses and validates the given TLE and returns a Propagator
// bound to satelliteID.
func NewPropagator(satelliteID string, t TLE) (*Propagator, error) {
	parsed, err := parseSGP4(t)
	if err != nil {
		return nil, &PropagatorError{SatelliteID: satelliteID, Err: err}
	}
	return &Propagator{
		satelliteID: satelliteID,
		tle:         parsed,
		cache:       make(map[cacheKey]State),
	}, nil
}

// PositionAt returns the satellite's geodetic position, ECEF position, and
// ECEF velocity at time t. Results are cached at 1-second quantisation; the
// cache is a pure optimisation and may be dropped without affecting
// correctness.
func (p *Propagator) PositionAt(t time.Time) (State, error) {
	key := cacheKey{satID: p.satelliteID, tUnix: t.Unix()}

	p.mu.RLock()
	if s, ok := p.cache[key]; ok {
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	eci, err := p.tle.FindPositionAtTime(t)
	if err != nil {
		return State{}, &PropagatorError{SatelliteID: p.satelliteID, Time: t, Err: err}
	}

	lat, lon, alt := eci.ToGeodetic()
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsNaN(alt) {
		return State{}, &PropagatorError{
			SatelliteID: p.satelliteID,
			Time:        t,
			Err:         fmt.Errorf("position contains NaN (orbital decay or TLE outside stable window)"),
		}
	}

	ecefPos, ecefVel := eciToECEF(eci)

	s := State{
		LatDeg:     lat,
		LonDeg:     lon,
		AltKm:      alt,
		ECEF:       ecefPos,
		VelECEFKmS: ecefVel,
	}

	p.mu.Lock()
	p.cache[key] = s
	p.mu.Unlock()

	return s, nil
}

// eciToECEF rotates an ECI (TEME) state into ECEF using the Greenwich
// sidereal time carried by the propagated state, correcting velocity for
// Earth's rotation. Mirrors the ECI->ECEF conversion used by the retrieved
// pack's SGP4-backed trackers.
func eciToECEF(eci *sgp4.ECIState) (geometry.Vec3, geometry.Vec3) {
	gmst := eci.GreenwichSiderealTime()
	cosG, sinG := math.Cos(gmst), math.Sin(gmst)

	px, py, pz := eci.Position.X, eci.Position.Y, eci.Position.Z
	vx, vy, vz := eci.Velocity.X, eci.Velocity.Y, eci.Velocity.Z

	rx := cosG*px + sinG*py
	ry := -sinG*px + cosG*py
	rz := pz

	const omegaEarth = 7.2921150e-5 // rad/s
	vxEcef := cosG*vx + sinG*vy + omegaEarth*ry
	vyEcef := -sinG*vx + cosG*vy - omegaEarth*rx
	vzEcef := vz

	return geometry.Vec3{X: rx, Y: ry, Z: rz}, geometry.Vec3{X: vxEcef, Y: vyEcef, Z: vzEcef}
}

// OrbitalPeriod returns the satellite's orbital period derived from its mean
// motion (revolutions per day, as carried by the parsed TLE).
func (p *Propagator) OrbitalPeriod() time.Duration {
	revsPerDay := p.tle.MeanMotion
	if revsPerDay <= 0 {
		return 0
	}
	periodMinutes := 24 * 60 / revsPerDay
	return time.Duration(periodMinutes * float64(time.Minute))
}
