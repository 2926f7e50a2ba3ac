// Package domain holds the entity types shared across the planning
// pipeline: satellites, ground targets, the scheduler configuration, and
// the small closed enums (mission mode, quality model, conflict strategy,
// algorithm) that the request boundary translates from strings but the
// rest of the core treats as a sum type.
package domain

import (
	"time"

	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// MissionMode is the imaging mode of a ground target.
type MissionMode string

const (
	ModeOptical MissionMode = "OPTICAL"
	ModeSAR     MissionMode = "SAR"
)

// Satellite is one platform in the planning run: an identifier, display
// name, TLE, and optional sensor parameters. A target's own max roll takes
// precedence over MaxRollDeg; a zero MaxRollDeg or MaxPitchDeg falls back
// to the scheduler config limit. SensorHalfFOVDeg is carried from the
// request, but visibility gates on each target's HalfFOVDeg.
type Satellite struct {
	ID               string
	Name             string
	TLE              orbit.TLE
	SensorHalfFOVDeg float64
	MaxRollDeg       float64
	MaxPitchDeg      float64
}

// GroundTarget is one imaging or communication target.
type GroundTarget struct {
	ID               string
	Name             string
	LatDeg           float64
	LonDeg           float64
	AltKm            float64
	Mode             MissionMode
	ElevationMaskDeg float64
	HalfFOVDeg       float64
	MaxRollDeg       float64
	Priority         int // 1..5, 1 = highest
}

// Validate checks the invariants placed on a ground target.
func (g GroundTarget) Validate() error {
	if g.LatDeg < -90 || g.LatDeg > 90 {
		return errf("target %s: lat %.4f out of range [-90,90]", g.ID, g.LatDeg)
	}
	if g.LonDeg < -180 || g.LonDeg > 180 {
		return errf("target %s: lon %.4f out of range [-180,180]", g.ID, g.LonDeg)
	}
	if g.ElevationMaskDeg < 0 || g.ElevationMaskDeg > 90 {
		return errf("target %s: elevation_mask %.4f out of range [0,90]", g.ID, g.ElevationMaskDeg)
	}
	if g.HalfFOVDeg <= 0 || g.HalfFOVDeg > 90 {
		return errf("target %s: half_fov %.4f out of range (0,90]", g.ID, g.HalfFOVDeg)
	}
	if g.Priority < 1 || g.Priority > 5 {
		return errf("target %s: priority %d out of range [1,5]", g.ID, g.Priority)
	}
	return nil
}

// Horizon is the planning window, end strictly after start.
type Horizon struct {
	Start time.Time
	End   time.Time
}

func (h Horizon) Validate() error {
	if !h.End.After(h.Start) {
		return errf("horizon end %s must be after start %s", h.End, h.Start)
	}
	return nil
}

// QualityModelKind selects the incidence-angle-to-quality mapping.
type QualityModelKind string

const (
	QualityOff       QualityModelKind = "OFF"
	QualityMonotonic QualityModelKind = "MONOTONIC"
	QualityBand      QualityModelKind = "BAND"
)

// Weights are the multi-criteria composite-value coefficients. They need
// not already sum to 1; CompositeValue normalises them.
type Weights struct {
	Priority float64
	Geometry float64
	Timing   float64
}

// Preset weight vectors, configuration rather than semantics.
var (
	WeightsBalanced      = Weights{Priority: 1, Geometry: 1, Timing: 1}
	WeightsPriorityFirst = Weights{Priority: 3, Geometry: 1, Timing: 1}
	WeightsQualityFirst  = Weights{Priority: 1, Geometry: 3, Timing: 1}
	WeightsUrgent        = Weights{Priority: 1, Geometry: 1, Timing: 3}
	WeightsArchival      = Weights{Priority: 1, Geometry: 2, Timing: 0}
)

// ConflictStrategy selects how the conflict resolver breaks ties between
// satellites observing the same target.
type ConflictStrategy string

const (
	BestGeometry   ConflictStrategy = "BEST_GEOMETRY"
	FirstAvailable ConflictStrategy = "FIRST_AVAILABLE"
	LoadBalance    ConflictStrategy = "LOAD_BALANCE"
)

// Algorithm is the closed set of scheduling algorithms, represented as a
// native sum type. The request boundary (internal/missionapi) is the only
// place that translates between this and its string wire form.
type Algorithm int

const (
	FirstFit Algorithm = iota
	BestFit
	RollPitchFirstFit
	RollPitchBestFit
)

func (a Algorithm) String() string {
	switch a {
	case FirstFit:
		return "FIRST_FIT"
	case BestFit:
		return "BEST_FIT"
	case RollPitchFirstFit:
		return "ROLL_PITCH_FIRST_FIT"
	case RollPitchBestFit:
		return "ROLL_PITCH_BEST_FIT"
	default:
		return "UNKNOWN"
	}
}

// UsesPitch reports whether an algorithm's opportunity set includes pitch
// samples (true for the ROLL_PITCH_* variants).
func (a Algorithm) UsesPitch() bool {
	return a == RollPitchFirstFit || a == RollPitchBestFit
}

// IsBestFit reports whether an algorithm uses the look-ahead best-fit
// selection rule rather than first-fit.
func (a Algorithm) IsBestFit() bool {
	return a == BestFit || a == RollPitchBestFit
}

// ParseAlgorithm maps a wire string to its native Algorithm value.
func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "FIRST_FIT":
		return FirstFit, true
	case "BEST_FIT":
		return BestFit, true
	case "ROLL_PITCH_FIRST_FIT":
		return RollPitchFirstFit, true
	case "ROLL_PITCH_BEST_FIT":
		return RollPitchBestFit, true
	default:
		return 0, false
	}
}

// SchedulerConfig holds every tunable of the feasibility kernel, scheduler,
// quality model, and conflict resolver for one planning run.
type SchedulerConfig struct {
	ImagingTimeS float64

	MaxRollRateDPS    float64
	MaxRollAccelDPS2  float64
	MaxPitchRateDPS   float64
	MaxPitchAccelDPS2 float64

	MaxSpacecraftRollDeg  float64
	MaxSpacecraftPitchDeg float64

	SettleTimeS float64

	LookWindowS float64

	QualityModel      QualityModelKind
	IdealIncidenceDeg float64
	BandWidthDeg      float64

	Weights Weights

	ConflictStrategy      ConflictStrategy
	ConflictTimeThreshold float64
}

// DefaultSchedulerConfig returns sane defaults matching the stated
// constants (300s conflict threshold, 600s look-ahead, 35deg/7.5deg SAR
// band).
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ImagingTimeS:          10,
		MaxRollRateDPS:        2,
		MaxRollAccelDPS2:      1,
		MaxPitchRateDPS:       2,
		MaxPitchAccelDPS2:     1,
		MaxSpacecraftRollDeg:  45,
		MaxSpacecraftPitchDeg: 0,
		SettleTimeS:           0,
		LookWindowS:           600,
		QualityModel:          QualityMonotonic,
		IdealIncidenceDeg:     35,
		BandWidthDeg:          7.5,
		Weights:          WeightsBalanced,
		ConflictStrategy: BestGeometry,
		ConflictTimeThreshold: 300,
	}
}

// Validate checks the invariants required before a run may start;
// failures here are SCHEDULER_CONFIG_INVALID, not feasibility rejections.
func (c SchedulerConfig) Validate() error {
	if c.ImagingTimeS <= 0 {
		return errf("imaging_time_s must be > 0, got %v", c.ImagingTimeS)
	}
	if c.MaxRollRateDPS <= 0 || c.MaxRollAccelDPS2 <= 0 {
		return errf("max_roll_rate_dps and max_roll_accel_dps2 must be > 0")
	}
	if c.MaxPitchRateDPS < 0 || c.MaxPitchAccelDPS2 < 0 {
		return errf("max_pitch_rate_dps and max_pitch_accel_dps2 must be >= 0")
	}
	if c.MaxSpacecraftRollDeg < 0 || c.MaxSpacecraftPitchDeg < 0 {
		return errf("max_spacecraft_roll_deg and max_spacecraft_pitch_deg must be >= 0")
	}
	if c.LookWindowS <= 0 {
		return errf("look_window_s must be > 0, got %v", c.LookWindowS)
	}
	return nil
}
