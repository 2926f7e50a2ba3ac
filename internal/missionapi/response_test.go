package missionapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalcue/mission-planner/internal/conflict"
	"github.com/orbitalcue/mission-planner/internal/feasibility"
	"github.com/orbitalcue/mission-planner/internal/opportunity"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
)

func TestBuildAlgorithmResult_SortsBySatelliteThenStart(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := scheduler.Result{
		Schedule: []scheduler.ScheduledOpportunity{
			{Opportunity: opportunity.Opportunity{ID: "b", SatelliteID: "sat-2", Start: base}},
			{Opportunity: opportunity.Opportunity{ID: "a", SatelliteID: "sat-1", Start: base.Add(time.Hour)}},
			{Opportunity: opportunity.Opportunity{ID: "c", SatelliteID: "sat-1", Start: base}},
		},
		Invariants: []scheduler.InvariantCheck{{Name: "no_overlap", Passed: true}},
	}
	ar := BuildAlgorithmResult(result)
	require.Len(t, ar.Schedule, 3)
	assert.Equal(t, "c", ar.Schedule[0].ID)
	assert.Equal(t, "a", ar.Schedule[1].ID)
	assert.Equal(t, "b", ar.Schedule[2].ID)
	assert.False(t, ar.Failed)
}

func TestBuildAlgorithmResult_MarksFailedOnInvariantViolation(t *testing.T) {
	result := scheduler.Result{
		Invariants: []scheduler.InvariantCheck{{Name: "no_overlap", Passed: false, Detail: "bad"}},
	}
	ar := BuildAlgorithmResult(result)
	assert.True(t, ar.Failed)
	assert.Equal(t, string(ErrInternal), ar.FailReason)
}

func TestBuildAlgorithmResult_CarriesRejectionsByID(t *testing.T) {
	result := scheduler.Result{
		Metrics: scheduler.ScheduleMetrics{
			Rejections: map[string]feasibility.RejectReason{"x": feasibility.ReasonInsufficientSlack},
		},
	}
	ar := BuildAlgorithmResult(result)
	assert.Equal(t, feasibility.ReasonInsufficientSlack, ar.Rejections["x"])
}

func TestBuildResponse_MergesPerAlgorithmAndAudit(t *testing.T) {
	results := map[string]scheduler.Result{
		"FIRST_FIT": {},
	}
	audit := []conflict.ConflictRecord{{TargetID: "tgt-1"}}
	resp := BuildResponse(results, audit)
	assert.Contains(t, resp.PerAlgorithm, "FIRST_FIT")
	require.Len(t, resp.ConflictAudit, 1)
}
