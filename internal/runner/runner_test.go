package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalcue/mission-planner/internal/missionapi"
)

const issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9994"
const issLine2 = "2 25544  51.6416 339.9300 0007390  83.0000 277.0000 15.49560000000010"

// fakeHub records every broadcast event for assertions instead of fanning
// out over a real WebSocket connection.
type fakeHub struct {
	mu     sync.Mutex
	events []any
}

func (f *fakeHub) BroadcastJSON(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, v)
}

func scenarioRequest(algorithms []string) missionapi.PlanRequest {
	return missionapi.PlanRequest{
		Satellites: []missionapi.SatelliteInput{{ID: "iss", Name: "ISS", Line1: issLine1, Line2: issLine2}},
		Targets: []missionapi.TargetInput{
			{ID: "dubai", Name: "Dubai", LatDeg: 25.2048, LonDeg: 55.2708, Priority: 5, ElevationMaskDeg: 10, HalfFOVDeg: 30},
			{ID: "athens", Name: "Athens", LatDeg: 37.9838, LonDeg: 23.7275, Priority: 3, ElevationMaskDeg: 10, HalfFOVDeg: 30},
		},
		Horizon:     missionapi.HorizonInput{Start: "2024-01-01T00:00:00Z", End: "2024-01-01T12:00:00Z"},
		MissionMode: "OPTICAL",
		Algorithms:  algorithms,
		Config: missionapi.SchedulerConfigInput{
			ImagingTimeS: 10, MaxRollRateDPS: 2, MaxRollAccelDPS2: 1,
			MaxSpacecraftRollDeg: 45, LookWindowS: 600,
			QualityModel: "MONOTONIC",
			Weights:      missionapi.MultiCriteriaWeights{Priority: 1, Geometry: 1, Timing: 1},
		},
	}
}

func TestRun_ProducesScheduleAndBroadcastsProgress(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub)

	resp, err := r.Run(context.Background(), scenarioRequest([]string{"FIRST_FIT"}))
	require.NoError(t, err)
	require.Contains(t, resp.PerAlgorithm, "FIRST_FIT")

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.NotEmpty(t, hub.events)
}

func TestRun_RejectsInvalidRequestBeforeAnyWork(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub)

	req := scenarioRequest([]string{"FIRST_FIT"})
	req.Targets[0].LatDeg = 200

	_, err := r.Run(context.Background(), req)
	require.Error(t, err)
	var pe *missionapi.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, missionapi.ErrInvalidTarget, pe.Kind)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Empty(t, hub.events)
}

func TestRun_CancelledContextReturnsRunCancelled(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, scenarioRequest([]string{"FIRST_FIT"}))
	require.Error(t, err)
	var pe *missionapi.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, missionapi.ErrRunCancelled, pe.Kind)
}

func TestRun_MultipleAlgorithmsEachProduceAResult(t *testing.T) {
	hub := &fakeHub{}
	r := New(hub)

	resp, err := r.Run(context.Background(), scenarioRequest([]string{"FIRST_FIT", "BEST_FIT"}))
	require.NoError(t, err)
	assert.Contains(t, resp.PerAlgorithm, "FIRST_FIT")
	assert.Contains(t, resp.PerAlgorithm, "BEST_FIT")
}
