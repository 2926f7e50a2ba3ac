package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/opportunity"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
)

func sched(id, sat, target string, start time.Time, dur time.Duration, incidence float64) scheduler.ScheduledOpportunity {
	return scheduler.ScheduledOpportunity{
		Opportunity: opportunity.Opportunity{
			ID: id, SatelliteID: sat, TargetID: target,
			Start: start, End: start.Add(dur), IncidenceDeg: incidence,
		},
	}
}

func TestDetectConflicts_NoConflictWithSingleSatellite(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.BestGeometry, 0)
	records := r.DetectConflicts([]scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 5),
	})
	assert.Empty(t, records)
}

func TestDetectConflicts_SameSatelliteNeverConflicts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.BestGeometry, 0)
	records := r.DetectConflicts([]scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 5),
		sched("b", "sat-1", "tgt-1", base.Add(5*time.Second), 10*time.Second, 7),
	})
	assert.Empty(t, records)
}

func TestDetectConflicts_OverlappingDifferentSatellitesConflict(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.BestGeometry, 300*time.Second)
	records := r.DetectConflicts([]scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 20),
		sched("b", "sat-2", "tgt-1", base.Add(60*time.Second), 10*time.Second, 5),
	})
	require.Len(t, records, 1)
	assert.Equal(t, "tgt-1", records[0].TargetID)
	assert.ElementsMatch(t, []string{"sat-1", "sat-2"}, records[0].ConflictingSatelliteIDs)
}

func TestResolve_BestGeometryKeepsLowestIncidence(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.BestGeometry, 300*time.Second)
	scheduled := []scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 20),
		sched("b", "sat-2", "tgt-1", base.Add(60*time.Second), 10*time.Second, 5),
	}
	resolved, removed, records := r.Resolve(scheduled)
	require.Len(t, resolved, 1)
	assert.Equal(t, "b", resolved[0].Opportunity.ID)
	assert.Equal(t, []string{"a"}, removed)
	require.Len(t, records, 1)
	assert.Equal(t, "sat-2", records[0].WinnerSatelliteID)
}

func TestResolve_FirstAvailableKeepsEarliest(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.FirstAvailable, 300*time.Second)
	scheduled := []scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 20),
		sched("b", "sat-2", "tgt-1", base.Add(60*time.Second), 10*time.Second, 5),
	}
	resolved, _, _ := r.Resolve(scheduled)
	require.Len(t, resolved, 1)
	assert.Equal(t, "a", resolved[0].Opportunity.ID)
}

func TestResolve_LoadBalanceDistributesAcrossSatellites(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.LoadBalance, 300*time.Second)

	first := []scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 10),
		sched("b", "sat-2", "tgt-1", base.Add(60*time.Second), 10*time.Second, 10),
	}
	resolved1, _, _ := r.Resolve(first)
	require.Len(t, resolved1, 1)
	firstWinnerSat := resolved1[0].Opportunity.SatelliteID

	second := []scheduler.ScheduledOpportunity{
		sched("c", "sat-1", "tgt-2", base, 10*time.Second, 10),
		sched("d", "sat-2", "tgt-2", base.Add(60*time.Second), 10*time.Second, 10),
	}
	resolved2, _, _ := r.Resolve(second)
	require.Len(t, resolved2, 1)
	secondWinnerSat := resolved2[0].Opportunity.SatelliteID

	assert.NotEqual(t, firstWinnerSat, secondWinnerSat)
}

func TestResolve_IsIdempotent(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewResolver(domain.BestGeometry, 300*time.Second)
	scheduled := []scheduler.ScheduledOpportunity{
		sched("a", "sat-1", "tgt-1", base, 10*time.Second, 20),
		sched("b", "sat-2", "tgt-1", base.Add(60*time.Second), 10*time.Second, 5),
	}
	resolved, removed, _ := r.Resolve(scheduled)
	require.Len(t, removed, 1)

	resolvedAgain, removedAgain, recordsAgain := r.Resolve(resolved)
	assert.Equal(t, resolved, resolvedAgain)
	assert.Empty(t, removedAgain)
	assert.Empty(t, recordsAgain)
}
