// Package missionapi is the request/response boundary of the planning
// core: wire-shaped types that translate to and from internal/domain, and
// the validation and error taxonomy placed at ingestion. This is
// the only package allowed to parse a string into a domain.Algorithm or
// domain.ConflictStrategy; everything past this boundary treats them as
// native sum types.
package missionapi

import (
	"time"

	"github.com/orbitalcue/mission-planner/internal/conflict"
	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/feasibility"
	"github.com/orbitalcue/mission-planner/internal/orbit"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
)

// SatelliteInput is one platform in a PlanRequest: a name plus its TLE
// lines (69+ chars each, grounded on backend/schemas/tle.py's TLEData).
type SatelliteInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Line1/Line2 may be omitted if NoradID is set and the daemon has a
	// TLE catalog configured; see internal/tlecache.
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	NoradID int    `json:"norad_id,omitempty"`

	SensorHalfFOVDeg float64 `json:"sensor_fov_half_angle_deg,omitempty"`
	MaxRollDeg       float64 `json:"max_roll_deg,omitempty"`
	MaxPitchDeg      float64 `json:"max_pitch_deg,omitempty"`
}

// TargetInput is one ground target in a PlanRequest, grounded on
// backend/schemas/target.py's TargetData.
type TargetInput struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	LatDeg           float64 `json:"latitude"`
	LonDeg           float64 `json:"longitude"`
	AltKm            float64 `json:"altitude_km,omitempty"`
	ElevationMaskDeg float64 `json:"elevation_mask_deg,omitempty"`
	HalfFOVDeg       float64 `json:"half_fov_deg,omitempty"`
	MaxRollDeg       float64 `json:"max_roll_deg,omitempty"`
	Priority         int     `json:"priority"`
}

// HorizonInput is the ISO-8601 planning window; End must be strictly after Start.
type HorizonInput struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MultiCriteriaWeights mirrors domain.Weights at the wire boundary.
type MultiCriteriaWeights struct {
	Priority float64 `json:"priority"`
	Geometry float64 `json:"geometry"`
	Timing   float64 `json:"timing"`
}

// SchedulerConfigInput mirrors domain.SchedulerConfig field-for-field at
// the wire boundary, mirroring PlanRequest.scheduler_config.
type SchedulerConfigInput struct {
	ImagingTimeS float64 `json:"imaging_time_s"`

	MaxRollRateDPS    float64 `json:"max_roll_rate_dps"`
	MaxRollAccelDPS2  float64 `json:"max_roll_accel_dps2"`
	MaxPitchRateDPS   float64 `json:"max_pitch_rate_dps"`
	MaxPitchAccelDPS2 float64 `json:"max_pitch_accel_dps2"`

	MaxSpacecraftRollDeg  float64 `json:"max_spacecraft_roll_deg"`
	MaxSpacecraftPitchDeg float64 `json:"max_spacecraft_pitch_deg"`

	SettleTimeS float64 `json:"settle_time_s,omitempty"`

	LookWindowS float64 `json:"look_window_s"`

	QualityModel      string  `json:"quality_model"`
	IdealIncidenceDeg float64 `json:"ideal_incidence_deg,omitempty"`
	BandWidthDeg      float64 `json:"band_width_deg,omitempty"`

	Weights MultiCriteriaWeights `json:"weights"`

	ConflictStrategy      string  `json:"conflict_strategy"`
	ConflictTimeThreshold float64 `json:"conflict_time_threshold_s,omitempty"`
}

// PlanRequest is the full input to one planning run.
type PlanRequest struct {
	Satellites  []SatelliteInput     `json:"satellites"`
	Targets     []TargetInput        `json:"targets"`
	Horizon     HorizonInput         `json:"horizon"`
	MissionMode string               `json:"mission_mode"`
	Algorithms  []string             `json:"algorithms"`
	Config      SchedulerConfigInput `json:"scheduler_config"`
}

// AlgorithmResult is one algorithm's outcome within a PlanResponse.
type AlgorithmResult struct {
	Schedule   []ScheduledOpportunityOutput         `json:"schedule"`
	Metrics    ScheduleMetricsOutput                `json:"metrics"`
	Invariants []scheduler.InvariantCheck           `json:"invariants"`
	Rejections map[string]feasibility.RejectReason `json:"rejections"`
	Failed     bool                                 `json:"failed"`
	FailReason string                               `json:"fail_reason,omitempty"`
}

// ScheduledOpportunityOutput is the wire projection of a
// scheduler.ScheduledOpportunity, RFC-3339 timestamps.
type ScheduledOpportunityOutput struct {
	ID          string `json:"id"`
	SatelliteID string `json:"satellite_id"`
	TargetID    string `json:"target_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	RollDeg      float64 `json:"roll_deg"`
	PitchDeg     float64 `json:"pitch_deg"`
	IncidenceDeg float64 `json:"incidence_deg"`

	Priority       int     `json:"priority"`
	BaseValue      float64 `json:"base_value"`
	Quality        float64 `json:"quality"`
	CompositeValue float64 `json:"composite_value"`

	DeltaRollDeg  float64 `json:"delta_roll_deg"`
	DeltaPitchDeg float64 `json:"delta_pitch_deg"`
	ManeuverTimeS float64 `json:"maneuver_time_s"`
	SlackTimeS    float64 `json:"slack_time_s"`
}

// ScheduleMetricsOutput is the wire projection of scheduler.ScheduleMetrics.
type ScheduleMetricsOutput struct {
	Considered      int                              `json:"considered"`
	Accepted        int                              `json:"accepted"`
	Rejected        int                              `json:"rejected"`
	RejectionCounts map[feasibility.RejectReason]int `json:"rejection_counts"`
}

// PlanResponse is the full output of one planning run.
type PlanResponse struct {
	PerAlgorithm  map[string]AlgorithmResult `json:"per_algorithm"`
	ConflictAudit []conflict.ConflictRecord  `json:"conflict_audit"`
}

// toScheduledOutput projects one ScheduledOpportunity to its wire form.
func toScheduledOutput(so scheduler.ScheduledOpportunity) ScheduledOpportunityOutput {
	o := so.Opportunity
	return ScheduledOpportunityOutput{
		ID:             o.ID,
		SatelliteID:    o.SatelliteID,
		TargetID:       o.TargetID,
		StartTime:      o.Start,
		EndTime:        o.End,
		RollDeg:        o.RollDeg,
		PitchDeg:       o.PitchDeg,
		IncidenceDeg:   o.IncidenceDeg,
		Priority:       o.Priority,
		BaseValue:      o.BaseValue,
		Quality:        o.Quality,
		CompositeValue: o.CompositeValue,
		DeltaRollDeg:   so.DeltaRollDeg,
		DeltaPitchDeg:  so.DeltaPitchDeg,
		ManeuverTimeS:  so.ManeuverTime.Seconds(),
		SlackTimeS:     so.SlackTime.Seconds(),
	}
}

func toMetricsOutput(m scheduler.ScheduleMetrics) ScheduleMetricsOutput {
	return ScheduleMetricsOutput{
		Considered:      m.Considered,
		Accepted:        m.Accepted,
		Rejected:        m.Rejected,
		RejectionCounts: m.RejectionCounts,
	}
}

// tle builds the orbit.TLE used internally from a wire SatelliteInput.
func (s SatelliteInput) tle() orbit.TLE {
	return orbit.TLE{Name: s.Name, Line1: s.Line1, Line2: s.Line2}
}
