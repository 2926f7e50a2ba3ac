package opportunity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
	"github.com/orbitalcue/mission-planner/internal/quality"
	"github.com/orbitalcue/mission-planner/internal/visibility"
)

const issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9994"
const issLine2 = "2 25544  51.6416 339.9300 0007390  83.0000 277.0000 15.49560000000010"

func issPropagator(t *testing.T) *orbit.Propagator {
	t.Helper()
	p, err := orbit.NewPropagator("ISS", orbit.TLE{Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2})
	require.NoError(t, err)
	return p
}

func testTarget() domain.GroundTarget {
	return domain.GroundTarget{
		ID: "tgt-1", LatDeg: 0, LonDeg: 0, Mode: domain.ModeOptical,
		ElevationMaskDeg: 5, HalfFOVDeg: 55, MaxRollDeg: 45, Priority: 2,
	}
}

func testSatellite() domain.Satellite {
	return domain.Satellite{ID: "sat-1", Name: "test", MaxRollDeg: 45}
}

func samplePass(satID, targetID string, aos, tca, los time.Time) visibility.PassWindow {
	return visibility.PassWindow{
		SatelliteID:      satID,
		TargetID:         targetID,
		AOS:              aos,
		TCA:              tca,
		LOS:              los,
		PeakElevationDeg: 40,
	}
}

func TestBuild_RollOnlyProducesSingleOpportunityAtTCA(t *testing.T) {
	p := issPropagator(t)
	target := testTarget()
	cfg := domain.DefaultSchedulerConfig()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pass := samplePass("sat-1", target.ID, base, base.Add(30*time.Second), base.Add(60*time.Second))

	opps, err := Build(p, pass, target, testSatellite(), cfg, false)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, pass.TCA, opps[0].Start)
	assert.Equal(t, pass.TCA.Add(time.Duration(cfg.ImagingTimeS)*time.Second), opps[0].End)
	assert.Equal(t, target.Priority, opps[0].Priority)
}

func TestBuild_RollPitchProducesBoundedSampleCount(t *testing.T) {
	p := issPropagator(t)
	target := testTarget()
	cfg := domain.DefaultSchedulerConfig()
	sat := testSatellite()
	sat.MaxPitchDeg = 30

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pass := samplePass("sat-1", target.ID, base, base.Add(30*time.Second), base.Add(60*time.Second))

	opps, err := Build(p, pass, target, sat, cfg, true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(opps), 0)
	assert.LessOrEqual(t, len(opps), 11)
	for _, o := range opps {
		assert.LessOrEqual(t, o.RollDeg, target.MaxRollDeg+1e-6)
		assert.GreaterOrEqual(t, o.RollDeg, -target.MaxRollDeg-1e-6)
	}
}

func TestSampleCount_ClampsToThreeAndEleven(t *testing.T) {
	assert.Equal(t, 3, sampleCount(500*time.Millisecond))
	assert.Equal(t, 11, sampleCount(1*time.Hour))
	assert.Equal(t, 6, sampleCount(5*time.Second))
}

func TestScoreGroup_RanksByTimeAndNormalisesComposite(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opps := []Opportunity{
		{ID: "b", Start: base.Add(2 * time.Minute), Priority: 1, IncidenceDeg: 10},
		{ID: "a", Start: base, Priority: 1, IncidenceDeg: 10},
		{ID: "c", Start: base.Add(4 * time.Minute), Priority: 1, IncidenceDeg: 10},
	}
	model := quality.MonotonicModel{}
	ScoreGroup(opps, model, domain.WeightsBalanced)

	require.Equal(t, "a", opps[0].ID)
	require.Equal(t, "b", opps[1].ID)
	require.Equal(t, "c", opps[2].ID)
	assert.Greater(t, opps[0].CompositeValue, opps[2].CompositeValue)
	for _, o := range opps {
		assert.GreaterOrEqual(t, o.CompositeValue, 0.0)
		assert.LessOrEqual(t, o.CompositeValue, 1.0)
	}
}

func TestScoreGroup_SingletonGroupGetsFullTimingTerm(t *testing.T) {
	opps := []Opportunity{{ID: "only", Start: time.Now(), Priority: 3, IncidenceDeg: 0}}
	ScoreGroup(opps, quality.MonotonicModel{}, domain.WeightsBalanced)
	assert.Greater(t, opps[0].CompositeValue, 0.0)
}
