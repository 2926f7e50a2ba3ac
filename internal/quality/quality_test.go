package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orbitalcue/mission-planner/internal/domain"
)

func TestOffModel_AlwaysOne(t *testing.T) {
	m := OffModel{}
	assert.Equal(t, 1.0, m.Quality(0))
	assert.Equal(t, 1.0, m.Quality(89))
}

func TestMonotonicModel_PeaksAtNadirAndDecays(t *testing.T) {
	m := MonotonicModel{}
	assert.Equal(t, 1.0, m.Quality(0))
	assert.Greater(t, m.Quality(0), m.Quality(10))
	assert.Greater(t, m.Quality(10), m.Quality(40))
	// symmetric in sign
	assert.InDelta(t, m.Quality(20), m.Quality(-20), 1e-12)
}

func TestBandModel_PeaksAtIdeal(t *testing.T) {
	m := BandModel{IdealDeg: 35, WidthDeg: 7.5}
	assert.InDelta(t, 1.0, m.Quality(35), 1e-9)
	assert.Less(t, m.Quality(20), m.Quality(35))
	assert.Less(t, m.Quality(50), m.Quality(35))
}

func TestBandModel_DefaultsWidthWhenZero(t *testing.T) {
	m := BandModel{IdealDeg: 35}
	assert.InDelta(t, 1.0, m.Quality(35), 1e-9)
	assert.False(t, math.IsNaN(m.Quality(10)))
}

func TestNormalize_AllZeroFallsBackToEqualThirds(t *testing.T) {
	n := Normalize(domain.Weights{})
	assert.InDelta(t, 1.0/3, n.Priority, 1e-12)
	assert.InDelta(t, 1.0/3, n.Geometry, 1e-12)
	assert.InDelta(t, 1.0/3, n.Timing, 1e-12)
}

func TestNormalize_NegativeWeightsClampToZero(t *testing.T) {
	n := Normalize(domain.Weights{Priority: -5, Geometry: 1, Timing: 1})
	assert.Equal(t, 0.0, n.Priority)
	assert.InDelta(t, 0.5, n.Geometry, 1e-12)
	assert.InDelta(t, 0.5, n.Timing, 1e-12)
}

func TestNormalize_SumsToOne(t *testing.T) {
	n := Normalize(domain.Weights{Priority: 2, Geometry: 3, Timing: 5})
	assert.InDelta(t, 1.0, n.Priority+n.Geometry+n.Timing, 1e-9)
}

func TestPriorityTerm_BestPriorityScoresHighest(t *testing.T) {
	assert.Equal(t, 1.0, PriorityTerm(1))
	assert.Equal(t, 0.0, PriorityTerm(5))
	assert.InDelta(t, 0.5, PriorityTerm(3), 1e-12)
}

func TestPriorityTerm_ClampsOutOfRange(t *testing.T) {
	assert.Equal(t, PriorityTerm(1), PriorityTerm(0))
	assert.Equal(t, PriorityTerm(5), PriorityTerm(9))
}

func TestTimingTerm_SingletonGroupScoresOne(t *testing.T) {
	assert.Equal(t, 1.0, TimingTerm(0, 1))
}

func TestTimingTerm_EarlierRanksHigher(t *testing.T) {
	assert.Greater(t, TimingTerm(0, 5), TimingTerm(4, 5))
}

func TestCompositeValue_RangeBounded(t *testing.T) {
	_, q, composite := CompositeValue(1, 10, MonotonicModel{}, 0, 3, domain.WeightsBalanced)
	assert.GreaterOrEqual(t, composite, 0.0)
	assert.LessOrEqual(t, composite, 1.0)
	assert.GreaterOrEqual(t, q, 0.0)
	assert.LessOrEqual(t, q, 1.0)
}
