package missionapi

import (
	"sort"

	"github.com/orbitalcue/mission-planner/internal/conflict"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
)

// BuildAlgorithmResult projects one algorithm's scheduler.Result into its
// wire form, sorting the schedule by (satellite_id, start_time) per
// the wire response shape.
func BuildAlgorithmResult(result scheduler.Result) AlgorithmResult {
	out := make([]ScheduledOpportunityOutput, 0, len(result.Schedule))
	for _, so := range result.Schedule {
		out = append(out, toScheduledOutput(so))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SatelliteID != out[j].SatelliteID {
			return out[i].SatelliteID < out[j].SatelliteID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})

	failed := false
	for _, inv := range result.Invariants {
		if !inv.Passed {
			failed = true
			break
		}
	}

	ar := AlgorithmResult{
		Schedule:   out,
		Metrics:    toMetricsOutput(result.Metrics),
		Invariants: result.Invariants,
		Rejections: result.Metrics.Rejections,
		Failed:     failed,
	}
	if failed {
		ar.FailReason = string(ErrInternal)
	}
	return ar
}

// BuildResponse assembles the final PlanResponse from one result per
// requested algorithm plus the constellation conflict audit.
func BuildResponse(results map[string]scheduler.Result, audit []conflict.ConflictRecord) PlanResponse {
	perAlgorithm := make(map[string]AlgorithmResult, len(results))
	for name, result := range results {
		perAlgorithm[name] = BuildAlgorithmResult(result)
	}
	return PlanResponse{
		PerAlgorithm:  perAlgorithm,
		ConflictAudit: audit,
	}
}
