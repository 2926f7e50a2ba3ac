package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECEF_Equator(t *testing.T) {
	p := ECEF(0, 0, 0)
	assert.InDelta(t, REarth, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Z, 1e-9)
}

func TestECEF_NorthPole(t *testing.T) {
	p := ECEF(90, 0, 0)
	assert.InDelta(t, 0, p.X, 1e-6)
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.InDelta(t, REarth, p.Z, 1e-6)
}

func TestElevation_DirectlyOverhead(t *testing.T) {
	sat := ECEF(10, 20, 500)
	el := Elevation(sat, 10, 20, 0)
	assert.InDelta(t, 90, el, 1e-6)
}

func TestElevation_BelowHorizonOppositeSideOfEarth(t *testing.T) {
	sat := ECEF(0, 180, 500)
	el := Elevation(sat, 0, 0, 0)
	assert.Less(t, el, 0.0)
}

func TestOffNadir_ZeroAtNadir(t *testing.T) {
	// slant range equal to altitude means the target is directly below.
	require.InDelta(t, 0, OffNadir(500, 500), 1e-6)
}

func TestOffNadir_IncreasesWithRange(t *testing.T) {
	a := OffNadir(500, 600)
	b := OffNadir(500, 1200)
	assert.Greater(t, b, a)
}

func TestAzimuth_NorthIsZero(t *testing.T) {
	// Satellite due north of the ground point, same longitude, high up.
	sat := ECEF(10, 0, 2000)
	az := Azimuth(sat, 0, 0, 0)
	assert.InDelta(t, 0, az, 1.0)
}

func TestGeocentricAngle_Antipodal(t *testing.T) {
	a := ECEF(0, 0, 0)
	b := ECEF(0, 180, 0)
	assert.InDelta(t, 180, GeocentricAngle(a, b), 1e-6)
}

func TestRollPitch_MagnitudeMatchesOffNadir(t *testing.T) {
	satLat, satLon, satAlt := 10.0, 20.0, 550.0
	satPos := ECEF(satLat, satLon, satAlt)
	vel := Vec3{X: 0, Y: 7.5, Z: 1.0}
	target := ECEF(10.5, 20.3, 0)

	roll, pitch := RollPitch(satPos, vel, satLat, satLon, satAlt, target)
	mag := math.Hypot(roll, pitch)

	slant := SlantRange(satPos, target)
	want := OffNadir(satAlt, slant)

	assert.InDelta(t, want, mag, 1e-6)
}
