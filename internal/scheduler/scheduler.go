// Package scheduler assigns imaging opportunities to satellites: a single
// skeleton parameterised by a selection rule (first-fit / best-fit) and an
// opportunity-builder mode (roll-only / roll+pitch), never runtime
// polymorphism keyed by strings — that happens only at the request
// boundary, in internal/missionapi. Per-satellite attitude state is
// mutated in chronological order, so the scheduler itself is
// single-threaded and deterministic; only the satellite-to-satellite
// partition is safe to parallelise, and this package leaves that choice to
// its caller.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/feasibility"
	"github.com/orbitalcue/mission-planner/internal/opportunity"
)

// ErrRunCancelled is returned when ctx is cancelled mid-run; partial
// results must be discarded by the caller.
var ErrRunCancelled = errors.New("RUN_CANCELLED")

// ConfigError wraps an invalid SchedulerConfig, surfaced as
// SCHEDULER_CONFIG_INVALID rather than a per-opportunity rejection.
type ConfigError struct{ Err error }

func (e *ConfigError) Error() string { return fmt.Sprintf("SCHEDULER_CONFIG_INVALID: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// ScheduledOpportunity is an accepted opportunity annotated with the
// realised maneuver cost and resulting slack.
type ScheduledOpportunity struct {
	Opportunity opportunity.Opportunity

	DeltaRollDeg  float64
	DeltaPitchDeg float64
	ManeuverTime  time.Duration
	SlackTime     time.Duration
}

// ScheduleMetrics summarises one run's accept/reject counts.
type ScheduleMetrics struct {
	Considered      int
	Accepted        int
	Rejected        int
	RejectionCounts map[feasibility.RejectReason]int

	// Rejections maps each rejected opportunity's ID to why it was
	// rejected, surfaced via PlanResponse.per_algorithm.rejections.
	Rejections map[string]feasibility.RejectReason
}

// InvariantCheck is one post-run self-check result, surfaced to callers
// and in each algorithm's "invariants" in the JSON response rather than
// asserted only in tests.
type InvariantCheck struct {
	Name   string
	Passed bool
	Detail string
}

// Result is the scheduler's full output for one run.
type Result struct {
	Schedule   []ScheduledOpportunity
	Metrics    ScheduleMetrics
	Invariants []InvariantCheck
}

func newMetrics() ScheduleMetrics {
	return ScheduleMetrics{
		RejectionCounts: make(map[feasibility.RejectReason]int),
		Rejections:      make(map[string]feasibility.RejectReason),
	}
}

func (m *ScheduleMetrics) merge(other ScheduleMetrics) {
	m.Considered += other.Considered
	m.Accepted += other.Accepted
	m.Rejected += other.Rejected
	for k, v := range other.RejectionCounts {
		m.RejectionCounts[k] += v
	}
	for id, reason := range other.Rejections {
		m.Rejections[id] = reason
	}
}

func buildKernel(cfg domain.SchedulerConfig) feasibility.Kernel {
	return feasibility.Kernel{
		RollLimits:            feasibility.AxisLimits{MaxRateDPS: cfg.MaxRollRateDPS, MaxAccelDPS2: cfg.MaxRollAccelDPS2},
		PitchLimits:           feasibility.AxisLimits{MaxRateDPS: cfg.MaxPitchRateDPS, MaxAccelDPS2: cfg.MaxPitchAccelDPS2},
		MaxSpacecraftRollDeg:  cfg.MaxSpacecraftRollDeg,
		MaxSpacecraftPitchDeg: cfg.MaxSpacecraftPitchDeg,
		SettleTime:            time.Duration(cfg.SettleTimeS * float64(time.Second)),
	}
}

// Run schedules opportunities across every satellite they reference. Input
// opportunities need not be pre-grouped or pre-sorted; Run partitions by
// SatelliteID internally and visits satellites in a fixed (sorted) order so
// results are deterministic: identical inputs and identical algorithm flags
// produce a bit-identical schedule.
func Run(ctx context.Context, opps []opportunity.Opportunity, algo domain.Algorithm, cfg domain.SchedulerConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, &ConfigError{Err: err}
	}

	bySat := make(map[string][]opportunity.Opportunity)
	for _, o := range opps {
		bySat[o.SatelliteID] = append(bySat[o.SatelliteID], o)
	}
	satIDs := make([]string, 0, len(bySat))
	for id := range bySat {
		satIDs = append(satIDs, id)
	}
	sort.Strings(satIDs)

	kernel := buildKernel(cfg)
	tau := time.Duration(cfg.ImagingTimeS * float64(time.Second))
	lookWindow := time.Duration(cfg.LookWindowS * float64(time.Second))

	var schedule []ScheduledOpportunity
	metrics := newMetrics()

	for _, sat := range satIDs {
		if ctx.Err() != nil {
			return Result{}, ErrRunCancelled
		}

		candidates := preFilter(bySat[sat], algo)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Start.Before(candidates[j].Start) })

		satScheduled, satMetrics, err := scheduleSatellite(ctx, candidates, algo, kernel, tau, lookWindow)
		if err != nil {
			return Result{}, err
		}
		schedule = append(schedule, satScheduled...)
		metrics.merge(satMetrics)
	}

	return Result{
		Schedule:   schedule,
		Metrics:    metrics,
		Invariants: checkInvariants(schedule, cfg),
	}, nil
}

// preFilter collapses multiple candidates for the same target down to the
// single lowest-|incidence| one for roll-only algorithms; roll+pitch
// algorithms keep every sample opportunity.Build produced.
func preFilter(opps []opportunity.Opportunity, algo domain.Algorithm) []opportunity.Opportunity {
	if algo.UsesPitch() {
		out := make([]opportunity.Opportunity, len(opps))
		copy(out, opps)
		return out
	}

	best := make(map[string]opportunity.Opportunity)
	for _, o := range opps {
		cur, ok := best[o.TargetID]
		if !ok || o.IncidenceDeg < cur.IncidenceDeg {
			best[o.TargetID] = o
		}
	}
	out := make([]opportunity.Opportunity, 0, len(best))
	for _, o := range best {
		out = append(out, o)
	}
	return out
}

// scheduleSatellite runs the first-fit or best-fit main loop for one
// satellite's pre-filtered, time-sorted candidates.
func scheduleSatellite(ctx context.Context, candidates []opportunity.Opportunity, algo domain.Algorithm, kernel feasibility.Kernel, tau, lookWindow time.Duration) ([]ScheduledOpportunity, ScheduleMetrics, error) {
	metrics := newMetrics()
	var scheduled []ScheduledOpportunity

	attitude := feasibility.Attitude{}
	var lastEnd time.Time // zero value: satellite free since the dawn of time
	covered := make(map[string]bool)

	tryAccept := func(cand opportunity.Opportunity) (ScheduledOpportunity, bool) {
		maneuverTime, slack, newAttitude, err := kernel.Check(attitude, cand.RollDeg, cand.PitchDeg, lastEnd, cand.Start, cand.End, tau)
		if err != nil {
			metrics.Rejected++
			var rej *feasibility.RejectError
			if errors.As(err, &rej) {
				metrics.RejectionCounts[rej.Reason]++
				metrics.Rejections[cand.ID] = rej.Reason
			}
			return ScheduledOpportunity{}, false
		}
		so := ScheduledOpportunity{
			Opportunity:   cand,
			DeltaRollDeg:  abs(newAttitude.RollDeg - attitude.RollDeg),
			DeltaPitchDeg: abs(newAttitude.PitchDeg - attitude.PitchDeg),
			ManeuverTime:  maneuverTime,
			SlackTime:     slack,
		}
		attitude = newAttitude
		lastEnd = cand.Start.Add(tau)
		covered[cand.TargetID] = true
		metrics.Accepted++
		return so, true
	}

	if !algo.IsBestFit() {
		for _, cand := range candidates {
			if ctx.Err() != nil {
				return nil, metrics, ErrRunCancelled
			}
			if covered[cand.TargetID] {
				continue
			}
			metrics.Considered++
			if so, ok := tryAccept(cand); ok {
				scheduled = append(scheduled, so)
			}
		}
		return scheduled, metrics, nil
	}

	// Best-fit: repeatedly anchor on the earliest still-viable candidate,
	// gather every candidate within look_window_s of it, and accept the
	// highest-value feasible one in that window.
	remaining := make([]opportunity.Opportunity, len(candidates))
	copy(remaining, candidates)

	for len(remaining) > 0 {
		if ctx.Err() != nil {
			return nil, metrics, ErrRunCancelled
		}

		i := 0
		for i < len(remaining) && covered[remaining[i].TargetID] {
			i++
		}
		remaining = remaining[i:]
		if len(remaining) == 0 {
			break
		}

		windowEnd := remaining[0].Start.Add(lookWindow)
		groupEnd := 0
		for groupEnd < len(remaining) && !remaining[groupEnd].Start.After(windowEnd) {
			groupEnd++
		}
		group := remaining[:groupEnd]

		bestIdx := -1
		for idx, cand := range group {
			if covered[cand.TargetID] {
				continue
			}
			metrics.Considered++
			if _, _, _, err := kernel.Check(attitude, cand.RollDeg, cand.PitchDeg, lastEnd, cand.Start, cand.End, tau); err != nil {
				metrics.Rejected++
				var rej *feasibility.RejectError
				if errors.As(err, &rej) {
					metrics.RejectionCounts[rej.Reason]++
					metrics.Rejections[cand.ID] = rej.Reason
				}
				continue
			}
			if bestIdx == -1 || betterCandidate(group[idx], group[bestIdx]) {
				bestIdx = idx
			}
		}

		if bestIdx == -1 {
			// Nothing in this window is feasible; drop the anchor and
			// keep searching further out.
			remaining = remaining[1:]
			continue
		}

		// tryAccept re-runs Check (cheap, and keeps accounting in one
		// place) now that we know which candidate wins.
		so, ok := tryAccept(group[bestIdx])
		if !ok {
			remaining = remaining[1:]
			continue
		}
		scheduled = append(scheduled, so)
		remaining = remaining[1:]
	}

	return scheduled, metrics, nil
}

// betterCandidate implements the best-fit tie-break: higher composite
// value wins, then lower |incidence|, then earlier start.
func betterCandidate(a, b opportunity.Opportunity) bool {
	if a.CompositeValue != b.CompositeValue {
		return a.CompositeValue > b.CompositeValue
	}
	if a.IncidenceDeg != b.IncidenceDeg {
		return a.IncidenceDeg < b.IncidenceDeg
	}
	return a.Start.Before(b.Start)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// checkInvariants re-validates the scheduler's own output: no overlap,
// attitude bounds, non-negative slack, time-monotonicity within a
// satellite.
func checkInvariants(schedule []ScheduledOpportunity, cfg domain.SchedulerConfig) []InvariantCheck {
	checks := []InvariantCheck{
		{Name: "no_overlap", Passed: true},
		{Name: "attitude_bounds", Passed: true},
		{Name: "non_negative_slack", Passed: true},
		{Name: "time_monotonic", Passed: true},
	}

	bySat := make(map[string][]ScheduledOpportunity)
	for _, so := range schedule {
		bySat[so.Opportunity.SatelliteID] = append(bySat[so.Opportunity.SatelliteID], so)
	}

	for sat, list := range bySat {
		sort.Slice(list, func(i, j int) bool { return list[i].Opportunity.Start.Before(list[j].Opportunity.Start) })
		for i, so := range list {
			if so.SlackTime < 0 {
				checks[2].Passed = false
				checks[2].Detail = fmt.Sprintf("%s: negative slack at %s", sat, so.Opportunity.Start)
			}
			if abs(so.Opportunity.RollDeg) > cfg.MaxSpacecraftRollDeg || abs(so.Opportunity.PitchDeg) > cfg.MaxSpacecraftPitchDeg {
				checks[1].Passed = false
				checks[1].Detail = fmt.Sprintf("%s: attitude out of bounds at %s", sat, so.Opportunity.Start)
			}
			if i > 0 {
				prev := list[i-1]
				if so.Opportunity.Start.Before(prev.Opportunity.Start) {
					checks[3].Passed = false
					checks[3].Detail = fmt.Sprintf("%s: out-of-order start at %s", sat, so.Opportunity.Start)
				}
				if so.Opportunity.Start.Before(prev.Opportunity.End) {
					checks[0].Passed = false
					checks[0].Detail = fmt.Sprintf("%s: overlap between %s and %s", sat, prev.Opportunity.ID, so.Opportunity.ID)
				}
			}
		}
	}
	return checks
}
