// Package conflict deduplicates scheduled opportunities across satellites
// in a constellation: when more than one satellite has scheduled the same
// target at overlapping or near-overlapping times, exactly one survives.
// Grounded directly on the retrieved constellation conflict-resolution
// reference: group by target, flag cross-satellite overlaps extended by a
// time threshold, resolve by strategy.
package conflict

import (
	"sort"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
)

// DefaultTimeThreshold is the default overlap-extension window: two
// passes on different satellites for the same target conflict if their
// windows overlap or sit within this much of each other.
const DefaultTimeThreshold = 300 * time.Second

// ConflictRecord is the audit entry for one resolved (or unresolved, if no
// winner could be chosen) conflict over a single target.
type ConflictRecord struct {
	TargetID                string
	ConflictingSatelliteIDs []string
	Strategy                domain.ConflictStrategy
	WinnerSatelliteID       string
	ConflictType            string
}

// Resolver groups conflicting scheduled opportunities and picks a winner
// It tracks per-satellite assignment counts across
// calls to support LOAD_BALANCE, mirroring the retrieved Python
// resolver's persistent load table; call Reset between independent runs.
type Resolver struct {
	Strategy      domain.ConflictStrategy
	TimeThreshold time.Duration

	loads map[string]int
}

// NewResolver builds a Resolver with the given strategy and overlap
// threshold; a zero threshold means DefaultTimeThreshold.
func NewResolver(strategy domain.ConflictStrategy, timeThreshold time.Duration) *Resolver {
	if timeThreshold <= 0 {
		timeThreshold = DefaultTimeThreshold
	}
	return &Resolver{Strategy: strategy, TimeThreshold: timeThreshold, loads: make(map[string]int)}
}

// Reset clears the per-satellite load table used by LOAD_BALANCE.
func (r *Resolver) Reset() {
	r.loads = make(map[string]int)
}

func (r *Resolver) overlaps(a, b scheduler.ScheduledOpportunity) bool {
	aStart := a.Opportunity.Start.Add(-r.TimeThreshold)
	aEnd := a.Opportunity.End.Add(r.TimeThreshold)
	return !(b.Opportunity.End.Before(aStart) || b.Opportunity.Start.After(aEnd))
}

// group is one target's conflicting scheduled opportunities, one per
// distinct satellite involved.
type group struct {
	targetID string
	members  []scheduler.ScheduledOpportunity
}

func (r *Resolver) containsSat(g group, satID string) bool {
	for _, m := range g.members {
		if m.Opportunity.SatelliteID == satID {
			return true
		}
	}
	return false
}

// DetectConflicts groups scheduled opportunities by target and flags any
// target observed by more than one satellite with overlapping (or
// near-overlapping) windows. Same-satellite pairs are never conflicts —
// the scheduler already guarantees no overlap there.
func (r *Resolver) DetectConflicts(scheduled []scheduler.ScheduledOpportunity) []ConflictRecord {
	byTarget := make(map[string][]scheduler.ScheduledOpportunity)
	var order []string
	for _, so := range scheduled {
		t := so.Opportunity.TargetID
		if _, ok := byTarget[t]; !ok {
			order = append(order, t)
		}
		byTarget[t] = append(byTarget[t], so)
	}
	sort.Strings(order)

	var records []ConflictRecord
	for _, target := range order {
		passes := byTarget[target]
		if len(passes) < 2 {
			continue
		}

		var g group
		g.targetID = target
		for i := 0; i < len(passes); i++ {
			for j := i + 1; j < len(passes); j++ {
				if passes[i].Opportunity.SatelliteID == passes[j].Opportunity.SatelliteID {
					continue
				}
				if !r.overlaps(passes[i], passes[j]) {
					continue
				}
				if len(g.members) == 0 {
					g.members = append(g.members, passes[i])
				}
				if !r.containsSat(g, passes[j].Opportunity.SatelliteID) {
					g.members = append(g.members, passes[j])
				}
			}
		}

		if len(g.members) == 0 {
			continue
		}
		sats := make([]string, 0, len(g.members))
		for _, m := range g.members {
			sats = append(sats, m.Opportunity.SatelliteID)
		}
		records = append(records, ConflictRecord{
			TargetID:                target,
			ConflictingSatelliteIDs: sats,
			Strategy:                r.Strategy,
			ConflictType:            "temporal_overlap",
		})
	}
	return records
}

func (r *Resolver) selectWinner(members []scheduler.ScheduledOpportunity) scheduler.ScheduledOpportunity {
	switch r.Strategy {
	case domain.FirstAvailable:
		winner := members[0]
		for _, m := range members[1:] {
			if m.Opportunity.Start.Before(winner.Opportunity.Start) {
				winner = m
			}
		}
		return winner
	case domain.LoadBalance:
		winner := members[0]
		for _, m := range members[1:] {
			if r.loads[m.Opportunity.SatelliteID] < r.loads[winner.Opportunity.SatelliteID] {
				winner = m
			} else if r.loads[m.Opportunity.SatelliteID] == r.loads[winner.Opportunity.SatelliteID] &&
				m.Opportunity.IncidenceDeg < winner.Opportunity.IncidenceDeg {
				winner = m
			}
		}
		return winner
	case domain.BestGeometry:
		fallthrough
	default:
		winner := members[0]
		for _, m := range members[1:] {
			if absf(m.Opportunity.IncidenceDeg) < absf(winner.Opportunity.IncidenceDeg) {
				winner = m
			}
		}
		return winner
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Resolve detects and resolves conflicts in one pass, returning the
// deduplicated schedule, the IDs of removed opportunities, and an audit
// record per resolved target. Resolve is idempotent: calling it again on
// its own resolved output detects and removes nothing further, because
// each target is left with at most one satellite's assignment.
func (r *Resolver) Resolve(scheduled []scheduler.ScheduledOpportunity) ([]scheduler.ScheduledOpportunity, []string, []ConflictRecord) {
	records := r.DetectConflicts(scheduled)
	if len(records) == 0 {
		return scheduled, nil, nil
	}

	byTarget := make(map[string][]scheduler.ScheduledOpportunity)
	for _, so := range scheduled {
		byTarget[so.Opportunity.TargetID] = append(byTarget[so.Opportunity.TargetID], so)
	}

	toRemove := make(map[string]bool)
	resolvedRecords := make([]ConflictRecord, 0, len(records))

	for _, rec := range records {
		members := byTarget[rec.TargetID]
		var conflicting []scheduler.ScheduledOpportunity
		satSet := make(map[string]bool, len(rec.ConflictingSatelliteIDs))
		for _, s := range rec.ConflictingSatelliteIDs {
			satSet[s] = true
		}
		for _, m := range members {
			if satSet[m.Opportunity.SatelliteID] {
				conflicting = append(conflicting, m)
			}
		}
		if len(conflicting) == 0 {
			continue
		}

		winner := r.selectWinner(conflicting)
		rec.WinnerSatelliteID = winner.Opportunity.SatelliteID
		r.loads[winner.Opportunity.SatelliteID]++

		for _, m := range conflicting {
			if m.Opportunity.SatelliteID != winner.Opportunity.SatelliteID {
				toRemove[m.Opportunity.ID] = true
			}
		}
		resolvedRecords = append(resolvedRecords, rec)
	}

	resolved := make([]scheduler.ScheduledOpportunity, 0, len(scheduled))
	var removedIDs []string
	for _, so := range scheduled {
		if toRemove[so.Opportunity.ID] {
			removedIDs = append(removedIDs, so.Opportunity.ID)
			continue
		}
		resolved = append(resolved, so)
	}

	return resolved, removedIDs, resolvedRecords
}
