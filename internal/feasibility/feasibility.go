// Package feasibility implements the attitude-slew kernel the scheduler
// consults before accepting an opportunity: trapezoidal slew timing and
// the three-way feasibility check.
package feasibility

import (
	"fmt"
	"math"
	"time"
)

// RejectReason is the closed set of feasibility rejection kinds the
// scheduler counts in its metrics.
type RejectReason string

const (
	ReasonAttitudeLimit     RejectReason = "ATTITUDE_LIMIT"
	ReasonInsufficientSlack RejectReason = "INSUFFICIENT_SLACK"
	ReasonExceedsWindow     RejectReason = "EXCEEDS_WINDOW"
)

// RejectError reports why Kernel.Check refused an opportunity.
type RejectError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Attitude is a single-instant (roll, pitch) pointing state.
type Attitude struct {
	RollDeg  float64
	PitchDeg float64
}

// AxisLimits bounds one attitude axis's slew kinematics.
type AxisLimits struct {
	MaxRateDPS   float64
	MaxAccelDPS2 float64
}

// SlewTime returns the trapezoidal (or triangular, for short moves)
// maneuver time to move Δ degrees under the given rate/accel limits. A
// zero Δ always takes zero time regardless of limits.
func SlewTime(deltaDeg float64, limits AxisLimits) time.Duration {
	delta := math.Abs(deltaDeg)
	if delta == 0 {
		return 0
	}
	if limits.MaxAccelDPS2 <= 0 || limits.MaxRateDPS <= 0 {
		return 0
	}

	tAccel := limits.MaxRateDPS / limits.MaxAccelDPS2
	dAccel := 0.5 * limits.MaxAccelDPS2 * tAccel * tAccel

	var tSeconds float64
	if delta <= 2*dAccel {
		tSeconds = 2 * math.Sqrt(delta/limits.MaxAccelDPS2)
	} else {
		tSeconds = 2*tAccel + (delta-2*dAccel)/limits.MaxRateDPS
	}
	return time.Duration(tSeconds * float64(time.Second))
}

// ManeuverTime returns the time to move both axes in parallel (the slower
// axis dominates), plus a fixed settle time. If from and to are the same
// attitude (no slew on either axis), settle is elided entirely rather
// than charged for a maneuver that never happens.
func ManeuverTime(from, to Attitude, rollLimits, pitchLimits AxisLimits, settle time.Duration) time.Duration {
	if from == to {
		return 0
	}
	tRoll := SlewTime(to.RollDeg-from.RollDeg, rollLimits)
	tPitch := SlewTime(to.PitchDeg-from.PitchDeg, pitchLimits)
	t := tRoll
	if tPitch > t {
		t = tPitch
	}
	return t + settle
}

// AttitudeState tracks each satellite's current pointing as the scheduler
// walks opportunities in chronological order.
type AttitudeState map[string]Attitude

// Kernel answers feasibility questions against a fixed set of spacecraft
// attitude limits.
type Kernel struct {
	RollLimits  AxisLimits
	PitchLimits AxisLimits

	MaxSpacecraftRollDeg  float64
	MaxSpacecraftPitchDeg float64

	SettleTime time.Duration
}

// Check evaluates whether moving from `current` to (targetRoll, targetPitch)
// in time to start imaging at windowStart and finish by windowEnd is
// feasible given tNow. On success it returns the maneuver time, the
// resulting slack (gap between maneuver completion and windowStart), and
// the new attitude. On failure it returns a *RejectError.
func (k Kernel) Check(current Attitude, targetRoll, targetPitch float64, tNow, windowStart, windowEnd time.Time, tau time.Duration) (maneuverTime time.Duration, slack time.Duration, newAttitude Attitude, err error) {
	if math.Abs(targetRoll) > k.MaxSpacecraftRollDeg || math.Abs(targetPitch) > k.MaxSpacecraftPitchDeg {
		return 0, 0, Attitude{}, &RejectError{
			Reason: ReasonAttitudeLimit,
			Detail: fmt.Sprintf("roll=%.2f pitch=%.2f exceeds limits roll<=%.2f pitch<=%.2f", targetRoll, targetPitch, k.MaxSpacecraftRollDeg, k.MaxSpacecraftPitchDeg),
		}
	}

	target := Attitude{RollDeg: targetRoll, PitchDeg: targetPitch}
	maneuverTime = ManeuverTime(current, target, k.RollLimits, k.PitchLimits, k.SettleTime)

	if tNow.Add(maneuverTime).Add(tau).After(windowEnd) {
		return 0, 0, Attitude{}, &RejectError{
			Reason: ReasonExceedsWindow,
			Detail: fmt.Sprintf("maneuver+imaging ends %s, after window end %s", tNow.Add(maneuverTime).Add(tau), windowEnd),
		}
	}

	slack = windowStart.Sub(tNow.Add(maneuverTime))
	if slack < 0 {
		return 0, 0, Attitude{}, &RejectError{
			Reason: ReasonInsufficientSlack,
			Detail: fmt.Sprintf("slack %v is negative", slack),
		}
	}

	return maneuverTime, slack, target, nil
}
