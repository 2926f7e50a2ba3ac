package orbit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A representative ISS TLE (inclination ~51.6 deg, ~92 minute period).
const issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9994"
const issLine2 = "2 25544  51.6416 339.9300 0007390  83.0000 277.0000 15.49560000000010"

func validISS() TLE {
	return TLE{Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2}
}

func TestTLE_Validate_OK(t *testing.T) {
	require.NoError(t, validISS().Validate())
}

func TestTLE_Validate_ShortLine(t *testing.T) {
	tle := validISS()
	tle.Line1 = tle.Line1[:40]
	err := tle.Validate()
	require.Error(t, err)
	assert.IsType(t, &ErrInvalidTLE{}, err)
}

func TestTLE_Validate_WrongPrefix(t *testing.T) {
	tle := validISS()
	tle.Line2 = "1 " + tle.Line2[2:]
	err := tle.Validate()
	require.Error(t, err)
}

func TestTLE_Validate_EmptyName(t *testing.T) {
	tle := validISS()
	tle.Name = "  "
	require.Error(t, tle.Validate())
}

func TestNewPropagator_OrbitalPeriod(t *testing.T) {
	p, err := NewPropagator("ISS", validISS())
	require.NoError(t, err)

	period := p.OrbitalPeriod()
	assert.InDelta(t, 92*time.Minute, period, float64(5*time.Minute))
}

func TestNewPropagator_RejectsMalformedTLE(t *testing.T) {
	bad := validISS()
	bad.Line1 = bad.Line1[:60]
	_, err := NewPropagator("ISS", bad)
	require.Error(t, err)
	var perr *PropagatorError
	require.ErrorAs(t, err, &perr)
}

func TestPositionAt_ReturnsPlausibleGeodeticBounds(t *testing.T) {
	p, err := NewPropagator("ISS", validISS())
	require.NoError(t, err)

	ref := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, err := p.PositionAt(ref)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, s.LatDeg, -51.7)
	assert.LessOrEqual(t, s.LatDeg, 51.7)
	assert.Greater(t, s.AltKm, 300.0)
	assert.Less(t, s.AltKm, 500.0)
}

func TestPositionAt_CacheHitReturnsSameValue(t *testing.T) {
	p, err := NewPropagator("ISS", validISS())
	require.NoError(t, err)

	ref := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	a, err := p.PositionAt(ref)
	require.NoError(t, err)
	b, err := p.PositionAt(ref)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
