package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

const issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9994"
const issLine2 = "2 25544  51.6416 339.9300 0007390  83.0000 277.0000 15.49560000000010"

func issPropagator(t *testing.T) *orbit.Propagator {
	t.Helper()
	p, err := orbit.NewPropagator("ISS", orbit.TLE{Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2})
	require.NoError(t, err)
	return p
}

func equatorialTarget() domain.GroundTarget {
	return domain.GroundTarget{
		ID:               "tgt-1",
		Name:             "equator station",
		LatDeg:           0,
		LonDeg:           0,
		Mode:             domain.ModeOptical,
		ElevationMaskDeg: 5,
		HalfFOVDeg:       55,
		Priority:         1,
	}
}

func TestEvaluate_ProducesConsistentSample(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := evaluate(p, tgt, ref)
	require.NoError(t, err)
	assert.Equal(t, ref, s.T)
}

func TestEvaluate_OpticalTargetIgnoresElevationMask(t *testing.T) {
	p := issPropagator(t)
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	noMask := equatorialTarget()
	noMask.ElevationMaskDeg = 0
	withMask := equatorialTarget()
	withMask.ElevationMaskDeg = 89 // would reject nearly every pass if applied

	sNoMask, err := evaluate(p, noMask, ref)
	require.NoError(t, err)
	sWithMask, err := evaluate(p, withMask, ref)
	require.NoError(t, err)

	assert.Equal(t, sNoMask.Visible, sWithMask.Visible)
}

func TestShouldMerge_ShortGapNonNegativeElevation(t *testing.T) {
	assert.True(t, shouldMerge(100*time.Second, 2.0))
}

func TestShouldMerge_ShortGapButElevationWentNegative(t *testing.T) {
	assert.False(t, shouldMerge(100*time.Second, -3.0))
}

func TestShouldMerge_GapTooLong(t *testing.T) {
	assert.False(t, shouldMerge(PassGapThreshold, 10.0))
}

func TestPassAccumulator_SingleContinuousPass(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()
	acc := newPassAccumulator(p, "iss", tgt)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{T: base, ElevationDeg: 2, AzimuthDeg: 10, Visible: true},
		{T: base.Add(30 * time.Second), ElevationDeg: 20, AzimuthDeg: 15, Visible: true},
		{T: base.Add(60 * time.Second), ElevationDeg: 5, AzimuthDeg: 20, Visible: true},
	}
	for _, s := range samples {
		require.NoError(t, acc.feed(s))
	}
	passes, err := acc.finish()
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, base, passes[0].AOS)
	assert.Equal(t, base.Add(30*time.Second), passes[0].TCA)
	assert.Equal(t, base.Add(60*time.Second), passes[0].LOS)
	assert.InDelta(t, 20, passes[0].PeakElevationDeg, 1e-9)
}

func TestPassAccumulator_SplitsOnLongGap(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()
	acc := newPassAccumulator(p, "iss", tgt)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, acc.feed(Sample{T: base, ElevationDeg: 10, Visible: true}))
	require.NoError(t, acc.feed(Sample{T: base.Add(10 * time.Second), ElevationDeg: -1, Visible: false}))
	require.NoError(t, acc.feed(Sample{T: base.Add(PassGapThreshold + 10*time.Second), ElevationDeg: -1, Visible: false}))
	require.NoError(t, acc.feed(Sample{T: base.Add(PassGapThreshold + 20*time.Second), ElevationDeg: 8, Visible: true}))

	passes, err := acc.finish()
	require.NoError(t, err)
	require.Len(t, passes, 2)
}

func TestPassAccumulator_MergesShortGapWithNonNegativeElevation(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()
	acc := newPassAccumulator(p, "iss", tgt)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, acc.feed(Sample{T: base, ElevationDeg: 10, Visible: true}))
	require.NoError(t, acc.feed(Sample{T: base.Add(10 * time.Second), ElevationDeg: 6, Visible: false}))
	require.NoError(t, acc.feed(Sample{T: base.Add(60 * time.Second), ElevationDeg: 6, Visible: false}))
	require.NoError(t, acc.feed(Sample{T: base.Add(90 * time.Second), ElevationDeg: 9, Visible: true}))

	passes, err := acc.finish()
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, base.Add(90*time.Second), passes[0].LOS)
}
