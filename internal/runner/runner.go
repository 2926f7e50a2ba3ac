// Package runner orchestrates one full planning run: for every
// (satellite, target) pair it finds visibility passes, builds and scores
// opportunity candidates, then for every requested algorithm runs the
// scheduler and the constellation conflict resolver, broadcasting
// progress events over a ws.Hub as it goes.
package runner

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbitalcue/mission-planner/internal/conflict"
	"github.com/orbitalcue/mission-planner/internal/domain"
	"github.com/orbitalcue/mission-planner/internal/missionapi"
	"github.com/orbitalcue/mission-planner/internal/opportunity"
	"github.com/orbitalcue/mission-planner/internal/orbit"
	"github.com/orbitalcue/mission-planner/internal/quality"
	"github.com/orbitalcue/mission-planner/internal/scheduler"
	"github.com/orbitalcue/mission-planner/internal/telemetry"
	"github.com/orbitalcue/mission-planner/internal/visibility"
)

// Broadcaster is the subset of ws.Hub the runner needs; satisfied by
// *ws.Hub, and small enough to fake in tests.
type Broadcaster interface {
	BroadcastJSON(v any)
}

// Runner executes planning runs and reports their progress over hub.
// A Runner is stateless between calls to Run; every run gets a fresh
// conflict.Resolver so LOAD_BALANCE accounting never leaks across runs,
// keeping the core stateless between runs.
type Runner struct {
	Hub Broadcaster

	// Finder selects the pass-finding strategy; nil defaults to the
	// adaptive finder, the recommended choice for
	// production use.
	Finder visibility.Finder

	// TLEResolver resolves satellites given only a NORAD ID; nil rejects
	// such satellites at parse time. Set to an *internal/tlecache.Cache
	// when a TLE source is configured.
	TLEResolver missionapi.TLEResolver
}

// New builds a Runner broadcasting progress over hub.
func New(hub Broadcaster) *Runner {
	return &Runner{Hub: hub, Finder: visibility.NewAdaptiveFinder()}
}

func (r *Runner) finder() visibility.Finder {
	if r.Finder != nil {
		return r.Finder
	}
	return visibility.NewAdaptiveFinder()
}

// Run executes req end to end: one scheduler.Result per requested
// algorithm plus one shared conflict audit, and returns the wire-shaped
// missionapi.PlanResponse. Cancelling ctx mid-run aborts and discards
// partial results.
func (r *Runner) Run(ctx context.Context, req missionapi.PlanRequest) (missionapi.PlanResponse, error) {
	parsed, err := missionapi.Parse(req, r.TLEResolver)
	if err != nil {
		return missionapi.PlanResponse{}, err
	}

	runID := uuid.New().String()
	started := time.Now()
	r.emit(telemetry.RunStarted{
		Event:      r.event(telemetry.EventRunStarted),
		RunID:      runID,
		Satellites: len(parsed.Satellites),
		Targets:    len(parsed.Targets),
		Algorithms: algorithmNames(parsed.Algorithms),
	})

	r.phase(runID, "visibility")
	opps, err := r.buildOpportunities(ctx, runID, parsed)
	if err != nil {
		return missionapi.PlanResponse{}, err
	}

	r.phase(runID, "scheduling")
	results := make(map[string]scheduler.Result, len(parsed.Algorithms))
	var sharedAudit []conflict.ConflictRecord
	for _, algo := range parsed.Algorithms {
		if ctx.Err() != nil {
			return missionapi.PlanResponse{}, &missionapi.PlanError{Kind: missionapi.ErrRunCancelled, Message: ctx.Err().Error()}
		}
		result, err := scheduler.Run(ctx, opps, algo, parsed.Config)
		if err != nil {
			if errors.Is(err, scheduler.ErrRunCancelled) {
				return missionapi.PlanResponse{}, &missionapi.PlanError{Kind: missionapi.ErrRunCancelled, Message: err.Error()}
			}
			var cfgErr *scheduler.ConfigError
			if errors.As(err, &cfgErr) {
				return missionapi.PlanResponse{}, &missionapi.PlanError{Kind: missionapi.ErrSchedulerConfigInvalid, Message: err.Error()}
			}
			return missionapi.PlanResponse{}, &missionapi.PlanError{Kind: missionapi.ErrInternal, Message: err.Error()}
		}

		r.phase(runID, "conflict_resolution")
		resolver := conflict.NewResolver(parsed.Config.ConflictStrategy, time.Duration(parsed.Config.ConflictTimeThreshold*float64(time.Second)))
		resolved, _, records := resolver.Resolve(result.Schedule)
		result.Schedule = resolved
		if len(parsed.Satellites) > 1 {
			sharedAudit = append(sharedAudit, records...)
		}

		results[algo.String()] = result
	}

	r.emit(telemetry.RunComplete{
		Event:    r.event(telemetry.EventRunComplete),
		RunID:    runID,
		Duration: time.Since(started).String(),
		Failed:   anyFailed(results),
	})

	return missionapi.BuildResponse(results, sharedAudit), nil
}

// pairJob is one (satellite, target) unit of visibility+opportunity work,
// dispatched to the worker pool in buildOpportunities.
type pairJob struct {
	sat    domain.Satellite
	prop   *orbit.Propagator
	target domain.GroundTarget
}

// maxPairWorkers bounds how many (satellite, target) pairs run their
// visibility search concurrently. Each pair is a pure function of time
// and orbital state (no shared mutable state besides the per-satellite
// Propagator, which guards its own cache with a mutex), so the pool size
// only needs to track available CPUs, not correctness.
func maxPairWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// buildOpportunities finds passes and builds scored opportunity
// candidates for every (satellite, target) pair, independent of which
// algorithm will later consume them: the roll+pitch sample set is a
// superset of the roll-only one (opportunity.Build decides per pair
// whether pitch applies), so building once and letting the scheduler's
// own preFilter collapse it for roll-only algorithms avoids re-running
// the propagator per algorithm. Pairs are fanned out across a bounded
// worker pool, since each is an independent, side-effect-free computation;
// the scheduler re-sorts its candidates by start time, so the order
// opportunities arrive in here is never significant downstream.
func (r *Runner) buildOpportunities(ctx context.Context, runID string, parsed missionapi.ParsedRequest) ([]opportunity.Opportunity, error) {
	anyRollPitch := false
	for _, a := range parsed.Algorithms {
		if a.UsesPitch() {
			anyRollPitch = true
		}
	}

	finder := r.finder()
	model := quality.NewModel(parsed.Config.QualityModel, parsed.Config.IdealIncidenceDeg, parsed.Config.BandWidthDeg)
	weights := quality.Normalize(parsed.Config.Weights)

	var jobs []pairJob
	for _, sat := range parsed.Satellites {
		prop, err := orbit.NewPropagator(sat.ID, sat.TLE)
		if err != nil {
			return nil, &missionapi.PlanError{Kind: missionapi.ErrPropagatorError, Field: sat.ID, Message: err.Error()}
		}
		for _, target := range parsed.Targets {
			jobs = append(jobs, pairJob{sat: sat, prop: prop, target: target})
		}
	}

	jobCh := make(chan pairJob)
	var (
		mu       sync.Mutex
		all      []opportunity.Opportunity
		firstErr error
	)

	worker := func() {
		for job := range jobCh {
			if ctx.Err() != nil {
				continue
			}

			passes, err := finder.FindPasses(ctx, job.prop, job.sat.ID, job.target, parsed.Horizon.Start, parsed.Horizon.End)
			if err != nil {
				if ctx.Err() != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = &missionapi.PlanError{Kind: missionapi.ErrRunCancelled, Message: ctx.Err().Error()}
					}
					mu.Unlock()
				}
				// Propagator errors abort this (satellite, target) pair
				// only; the satellite continues with remaining targets.
				// The failed pair adds no opportunities, emits no
				// PairComplete event, and is not counted in the response.
				continue
			}

			var pairOpps []opportunity.Opportunity
			for _, pass := range passes {
				built, err := opportunity.Build(job.prop, pass, job.target, job.sat, parsed.Config, anyRollPitch)
				if err != nil {
					continue
				}
				pairOpps = append(pairOpps, built...)
			}
			opportunity.ScoreGroup(pairOpps, model, weights)

			mu.Lock()
			all = append(all, pairOpps...)
			mu.Unlock()

			r.emit(telemetry.PairComplete{
				Event:       r.event(telemetry.EventPairComplete),
				RunID:       runID,
				SatelliteID: job.sat.ID,
				TargetID:    job.target.ID,
				PassCount:   len(passes),
			})
		}
	}

	workerCount := maxPairWorkers()
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			worker()
		}()
	}
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	if ctx.Err() != nil {
		return nil, &missionapi.PlanError{Kind: missionapi.ErrRunCancelled, Message: ctx.Err().Error()}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

func (r *Runner) phase(runID, name string) {
	r.emit(telemetry.Phase{Event: r.event(telemetry.EventPhase), RunID: runID, Name: name})
}

func (r *Runner) event(t telemetry.EventType) telemetry.Event {
	return telemetry.Event{Type: t, TS: telemetry.NowTS()}
}

func (r *Runner) emit(v any) {
	if r.Hub == nil {
		return
	}
	r.Hub.BroadcastJSON(v)
}

func algorithmNames(algos []domain.Algorithm) []string {
	out := make([]string, len(algos))
	for i, a := range algos {
		out[i] = a.String()
	}
	return out
}

func anyFailed(results map[string]scheduler.Result) bool {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, inv := range results[name].Invariants {
			if !inv.Passed {
				return true
			}
		}
	}
	return false
}
