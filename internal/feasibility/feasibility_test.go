package feasibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlewTime_ZeroDeltaIsInstant(t *testing.T) {
	assert.Equal(t, time.Duration(0), SlewTime(0, AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1}))
}

func TestSlewTime_TriangularProfileForSmallMove(t *testing.T) {
	// delta small enough to never reach max rate.
	d := SlewTime(1, AxisLimits{MaxRateDPS: 10, MaxAccelDPS2: 1})
	assert.Greater(t, d, time.Duration(0))
	assert.Less(t, d, 3*time.Second)
}

func TestSlewTime_MatchesSpecExample(t *testing.T) {
	// 40deg at 1 dps rate, 1 dps^2 accel: t_accel=1s, d_accel=0.5deg per
	// side, so 2*d_accel=1deg < 40deg -> trapezoidal.
	// t = 2*1 + (40-1)/1 = 41s, the worked "infeasible slack"
	// scenario.
	d := SlewTime(40, AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1})
	assert.InDelta(t, 41*time.Second, d, float64(200*time.Millisecond))
}

func TestManeuverTime_ParallelAxesTakeTheSlower(t *testing.T) {
	rollLimits := AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1}
	pitchLimits := AxisLimits{MaxRateDPS: 10, MaxAccelDPS2: 10}
	from := Attitude{RollDeg: 0, PitchDeg: 0}
	to := Attitude{RollDeg: 40, PitchDeg: 1}

	rollOnly := SlewTime(40, rollLimits)
	total := ManeuverTime(from, to, rollLimits, pitchLimits, 0)
	assert.Equal(t, rollOnly, total)
}

func TestManeuverTime_AddsSettleTimeWhenSlewing(t *testing.T) {
	limits := AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1}
	to := Attitude{RollDeg: 10}
	withoutSettle := ManeuverTime(Attitude{}, to, limits, limits, 0)
	withSettle := ManeuverTime(Attitude{}, to, limits, limits, 5*time.Second)
	assert.Equal(t, withoutSettle+5*time.Second, withSettle)
}

func TestManeuverTime_ElidesSettleTimeWhenAttitudeUnchanged(t *testing.T) {
	limits := AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1}
	total := ManeuverTime(Attitude{}, Attitude{}, limits, limits, 5*time.Second)
	assert.Equal(t, time.Duration(0), total)
}

func TestKernel_Check_AttitudeLimitRejection(t *testing.T) {
	k := Kernel{
		RollLimits:            AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1},
		PitchLimits:           AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1},
		MaxSpacecraftRollDeg:  30,
		MaxSpacecraftPitchDeg: 0,
	}
	now := time.Now()
	_, _, _, err := k.Check(Attitude{}, 40, 0, now, now, now.Add(time.Minute), time.Second)
	require.Error(t, err)
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonAttitudeLimit, rej.Reason)
}

func TestKernel_Check_InsufficientSlackRejection(t *testing.T) {
	k := Kernel{
		RollLimits:            AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1},
		PitchLimits:           AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1},
		MaxSpacecraftRollDeg:  45,
		MaxSpacecraftPitchDeg: 0,
	}
	now := time.Now()
	// ~41s maneuver but the window starts in only 20s: slack goes negative.
	windowStart := now.Add(20 * time.Second)
	_, _, _, err := k.Check(Attitude{}, 40, 0, now, windowStart, windowStart.Add(time.Minute), time.Second)
	require.Error(t, err)
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonInsufficientSlack, rej.Reason)
}

func TestKernel_Check_ExceedsWindowRejection(t *testing.T) {
	k := Kernel{
		RollLimits:            AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1},
		PitchLimits:           AxisLimits{MaxRateDPS: 1, MaxAccelDPS2: 1},
		MaxSpacecraftRollDeg:  45,
		MaxSpacecraftPitchDeg: 0,
	}
	now := time.Now()
	windowEnd := now.Add(5 * time.Second)
	_, _, _, err := k.Check(Attitude{}, 40, 0, now, now, windowEnd, time.Second)
	require.Error(t, err)
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, ReasonExceedsWindow, rej.Reason)
}

func TestKernel_Check_AcceptsFeasibleOpportunity(t *testing.T) {
	k := Kernel{
		RollLimits:            AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1},
		PitchLimits:           AxisLimits{MaxRateDPS: 2, MaxAccelDPS2: 1},
		MaxSpacecraftRollDeg:  45,
		MaxSpacecraftPitchDeg: 0,
	}
	now := time.Now()
	windowStart := now.Add(time.Minute)
	maneuverTime, slack, newAttitude, err := k.Check(Attitude{}, 10, 0, now, windowStart, windowStart.Add(time.Minute), 10*time.Second)
	require.NoError(t, err)
	assert.Greater(t, maneuverTime, time.Duration(0))
	assert.GreaterOrEqual(t, slack, time.Duration(0))
	assert.Equal(t, 10.0, newAttitude.RollDeg)
}
