package missionapi

import (
	"strings"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/orbit"
)

// ParsedRequest is a PlanRequest translated and validated into the
// internal domain types the core pipeline operates on.
type ParsedRequest struct {
	Satellites []domain.Satellite
	Targets    []domain.GroundTarget
	Horizon    domain.Horizon
	Algorithms []domain.Algorithm
	Config     domain.SchedulerConfig
}

// TLEResolver looks up a satellite's current TLE by NORAD catalog number.
// Satisfied by *internal/tlecache.Cache; Parse accepts one so a satellite
// entry may omit its TLE lines and reference a catalog number instead.
type TLEResolver interface {
	Lookup(noradID int) (orbit.TLE, error)
}

// Parse validates req against the ingestion invariants and translates it
// into domain types. Validation errors abort before any computation,
// fail-fast, and are returned as *PlanError. resolver may be nil;
// satellites without inline TLE lines then fail validation instead of
// being looked up by NORAD ID.
func Parse(req PlanRequest, resolver TLEResolver) (ParsedRequest, error) {
	satellites, err := parseSatellites(req.Satellites, resolver)
	if err != nil {
		return ParsedRequest{}, err
	}
	mode, err := parseMissionMode(req.MissionMode)
	if err != nil {
		return ParsedRequest{}, err
	}
	targets, err := parseTargets(req.Targets, mode)
	if err != nil {
		return ParsedRequest{}, err
	}
	horizon, err := parseHorizon(req.Horizon)
	if err != nil {
		return ParsedRequest{}, err
	}
	algorithms, err := parseAlgorithms(req.Algorithms)
	if err != nil {
		return ParsedRequest{}, err
	}
	cfg, err := parseConfig(req.Config)
	if err != nil {
		return ParsedRequest{}, err
	}

	return ParsedRequest{
		Satellites: satellites,
		Targets:    targets,
		Horizon:    horizon,
		Algorithms: algorithms,
		Config:     cfg,
	}, nil
}

func parseSatellites(in []SatelliteInput, resolver TLEResolver) ([]domain.Satellite, error) {
	if len(in) == 0 {
		return nil, newFieldError(ErrInvalidTLE, "satellites", "at least one satellite is required")
	}
	out := make([]domain.Satellite, 0, len(in))
	for _, s := range in {
		tle := s.tle()
		if tle.Line1 == "" && tle.Line2 == "" && s.NoradID != 0 {
			if resolver == nil {
				return nil, newFieldError(ErrInvalidTLE, "satellites["+s.Name+"]", "norad_id given but no TLE catalog is configured")
			}
			resolved, err := resolver.Lookup(s.NoradID)
			if err != nil {
				return nil, newFieldError(ErrInvalidTLE, "satellites["+s.Name+"]", "%v", err)
			}
			tle = resolved
			if tle.Name == "" {
				tle.Name = s.Name
			}
		}
		if err := tle.Validate(); err != nil {
			return nil, newFieldError(ErrInvalidTLE, "satellites["+s.Name+"]", "%v", err)
		}
		id := s.ID
		if id == "" {
			id = s.Name
		}
		out = append(out, domain.Satellite{
			ID:               id,
			Name:             s.Name,
			TLE:              tle,
			SensorHalfFOVDeg: s.SensorHalfFOVDeg,
			MaxRollDeg:       s.MaxRollDeg,
			MaxPitchDeg:      s.MaxPitchDeg,
		})
	}
	return out, nil
}

func parseMissionMode(s string) (domain.MissionMode, error) {
	switch strings.ToUpper(s) {
	case "", string(domain.ModeOptical):
		return domain.ModeOptical, nil
	case string(domain.ModeSAR):
		return domain.ModeSAR, nil
	default:
		return "", newFieldError(ErrInvalidTarget, "mission_mode", "unknown mission mode %q", s)
	}
}

// defaultHalfFOVDeg is used when a target omits half_fov_deg (or gives a
// value <= 0); a satellite's sensor_fov_half_angle_deg is not consulted. It
// matches the narrow pushbroom-ish default backend/schemas/satellite.py
// gives optical sensors.
const defaultHalfFOVDeg = 1.0

func parseTargets(in []TargetInput, mode domain.MissionMode) ([]domain.GroundTarget, error) {
	if len(in) == 0 {
		return nil, newFieldError(ErrInvalidTarget, "targets", "at least one target is required")
	}
	out := make([]domain.GroundTarget, 0, len(in))
	for _, t := range in {
		id := t.ID
		if id == "" {
			id = t.Name
		}
		halfFOV := t.HalfFOVDeg
		if halfFOV <= 0 {
			halfFOV = defaultHalfFOVDeg
		}
		priority := t.Priority
		if priority == 0 {
			priority = 1
		}
		g := domain.GroundTarget{
			ID:               id,
			Name:             t.Name,
			LatDeg:           t.LatDeg,
			LonDeg:           t.LonDeg,
			AltKm:            t.AltKm,
			Mode:             mode,
			ElevationMaskDeg: t.ElevationMaskDeg,
			HalfFOVDeg:       halfFOV,
			MaxRollDeg:       t.MaxRollDeg,
			Priority:         priority,
		}
		if err := g.Validate(); err != nil {
			return nil, newFieldError(ErrInvalidTarget, "targets["+id+"]", "%v", err)
		}
		out = append(out, g)
	}
	return out, nil
}

func parseHorizon(in HorizonInput) (domain.Horizon, error) {
	start, err := time.Parse(time.RFC3339, in.Start)
	if err != nil {
		return domain.Horizon{}, newFieldError(ErrInvalidHorizon, "horizon.start", "%v", err)
	}
	end, err := time.Parse(time.RFC3339, in.End)
	if err != nil {
		return domain.Horizon{}, newFieldError(ErrInvalidHorizon, "horizon.end", "%v", err)
	}
	h := domain.Horizon{Start: start, End: end}
	if err := h.Validate(); err != nil {
		return domain.Horizon{}, newFieldError(ErrInvalidHorizon, "horizon", "%v", err)
	}
	return h, nil
}

func parseAlgorithms(in []string) ([]domain.Algorithm, error) {
	if len(in) == 0 {
		return []domain.Algorithm{domain.FirstFit}, nil
	}
	out := make([]domain.Algorithm, 0, len(in))
	for _, s := range in {
		a, ok := domain.ParseAlgorithm(strings.ToUpper(s))
		if !ok {
			return nil, newFieldError(ErrSchedulerConfigInvalid, "algorithms", "unknown algorithm %q", s)
		}
		out = append(out, a)
	}
	return out, nil
}

func parseQualityModel(s string) (domain.QualityModelKind, error) {
	switch strings.ToUpper(s) {
	case "", string(domain.QualityMonotonic):
		return domain.QualityMonotonic, nil
	case string(domain.QualityOff):
		return domain.QualityOff, nil
	case string(domain.QualityBand):
		return domain.QualityBand, nil
	default:
		return "", newFieldError(ErrSchedulerConfigInvalid, "scheduler_config.quality_model", "unknown quality model %q", s)
	}
}

func parseConflictStrategy(s string) (domain.ConflictStrategy, error) {
	switch strings.ToUpper(s) {
	case "", string(domain.BestGeometry):
		return domain.BestGeometry, nil
	case string(domain.FirstAvailable):
		return domain.FirstAvailable, nil
	case string(domain.LoadBalance):
		return domain.LoadBalance, nil
	default:
		return "", newFieldError(ErrSchedulerConfigInvalid, "scheduler_config.conflict_strategy", "unknown conflict strategy %q", s)
	}
}

func parseConfig(in SchedulerConfigInput) (domain.SchedulerConfig, error) {
	qm, err := parseQualityModel(in.QualityModel)
	if err != nil {
		return domain.SchedulerConfig{}, err
	}
	cs, err := parseConflictStrategy(in.ConflictStrategy)
	if err != nil {
		return domain.SchedulerConfig{}, err
	}

	cfg := domain.SchedulerConfig{
		ImagingTimeS:          in.ImagingTimeS,
		MaxRollRateDPS:        in.MaxRollRateDPS,
		MaxRollAccelDPS2:      in.MaxRollAccelDPS2,
		MaxPitchRateDPS:       in.MaxPitchRateDPS,
		MaxPitchAccelDPS2:     in.MaxPitchAccelDPS2,
		MaxSpacecraftRollDeg:  in.MaxSpacecraftRollDeg,
		MaxSpacecraftPitchDeg: in.MaxSpacecraftPitchDeg,
		SettleTimeS:           in.SettleTimeS,
		LookWindowS:           in.LookWindowS,
		QualityModel:          qm,
		IdealIncidenceDeg:     in.IdealIncidenceDeg,
		BandWidthDeg:          in.BandWidthDeg,
		Weights: domain.Weights{
			Priority: in.Weights.Priority,
			Geometry: in.Weights.Geometry,
			Timing:   in.Weights.Timing,
		},
		ConflictStrategy:      cs,
		ConflictTimeThreshold: in.ConflictTimeThreshold,
	}
	if cfg.IdealIncidenceDeg == 0 {
		cfg.IdealIncidenceDeg = 35
	}
	if cfg.BandWidthDeg == 0 {
		cfg.BandWidthDeg = 7.5
	}
	if cfg.LookWindowS == 0 {
		cfg.LookWindowS = 600
	}
	if cfg.ConflictTimeThreshold == 0 {
		cfg.ConflictTimeThreshold = 300
	}
	if err := cfg.Validate(); err != nil {
		return domain.SchedulerConfig{}, newFieldError(ErrSchedulerConfigInvalid, "scheduler_config", "%v", err)
	}
	return cfg, nil
}
