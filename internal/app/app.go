// Package app wires together the HTTP server, WebSocket hub, and the
// planning runner. It owns the daemon's lifecycle and is the single
// source of truth for run storage between requests.
package app

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/orbitalcue/mission-planner/internal/config"
	"github.com/orbitalcue/mission-planner/internal/missionapi"
	"github.com/orbitalcue/mission-planner/internal/runner"
	"github.com/orbitalcue/mission-planner/internal/telemetry"
	"github.com/orbitalcue/mission-planner/internal/tlecache"
	"github.com/orbitalcue/mission-planner/internal/ws"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger *log.Logger
	Cfg    config.Config
	Bind   string
}

// App is the top-level daemon process. It manages the HTTP server, the
// WebSocket event hub, and the planning runner.
type App struct {
	log    *log.Logger
	cfg    config.Config
	bind   string
	server *http.Server

	startedAt time.Time
	wsHub     *ws.Hub
	runner    *runner.Runner

	// runsMu guards runs, the in-memory run store. The core is stateless
	// between runs; this store is a pure convenience for GET
	// /api/runs/{id} and may be dropped without changing semantics, so
	// it is never persisted to disk.
	runsMu sync.RWMutex
	runs   map[string]storedRun
}

type storedRun struct {
	response missionapi.PlanResponse
	err      string
}

// New creates an App. Call Run to start serving.
func New(opts Options) *App {
	hub := ws.NewHub()
	r := runner.New(hub)
	if opts.Cfg.TLESource.URL != "" {
		r.TLEResolver = tlecache.New(opts.Cfg.TLESource.URL, opts.Cfg.Data.Root, opts.Cfg.TLESource.RefreshHours)
	}
	return &App{
		log:       opts.Logger,
		cfg:       opts.Cfg,
		bind:      opts.Bind,
		startedAt: time.Now(),
		wsHub:     hub,
		runner:    r,
		runs:      make(map[string]storedRun),
	}
}

// Run starts the HTTP server and the WebSocket hub. It blocks until the
// context is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" && a.cfg.Server.Bind != "" {
		bind = a.cfg.Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/version", a.handleVersion)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/api/plan", a.handlePlan)
	mux.HandleFunc("/api/runs/", a.handleGetRun)
	mux.Handle("/ws", a.wsHub.Handler())

	a.server = &http.Server{
		Addr:              bind,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	a.log.Printf("listening on http://%s", bind)

	go a.wsHub.Run(ctx)
	go a.heartbeatLoop(ctx)

	go func() {
		<-ctx.Done()
		a.log.Printf("shutdown requested")
		_ = a.server.Shutdown(context.Background())
	}()

	return a.server.Serve(ln)
}

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.Heartbeat{
				Event:         telemetry.Event{Type: telemetry.EventHeartbeat, TS: telemetry.NowTS()},
				UptimeSeconds: int64(time.Since(a.startedAt).Seconds()),
			})
		}
	}
}

func (a *App) storeRun(id string, resp missionapi.PlanResponse, runErr error) {
	a.runsMu.Lock()
	defer a.runsMu.Unlock()
	sr := storedRun{response: resp}
	if runErr != nil {
		sr.err = runErr.Error()
	}
	a.runs[id] = sr
}

func (a *App) getRun(id string) (storedRun, bool) {
	a.runsMu.RLock()
	defer a.runsMu.RUnlock()
	sr, ok := a.runs[id]
	return sr, ok
}
