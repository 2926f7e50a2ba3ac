package app

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitalcue/mission-planner/internal/missionapi"
)

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") == "application/json" {
		wsClients, wsDropped := a.wsHub.Stats()
		resp := map[string]any{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
			"data_root":      a.cfg.Data.Root,
			"archive_dir":    a.cfg.Data.Archive,
			"disk":           diskUsage(a.cfg.Data.Root),
			"ws_clients":     wsClients,
			"ws_dropped":     wsDropped,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *App) handleConfig(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.cfg)
}

// handlePlan accepts a PlanRequest, runs it synchronously, stores the
// result under a fresh run ID, and returns the PlanResponse plus that ID.
// A real deployment facing multi-minute constellation runs would make
// this asynchronous (202 + poll via GET /api/runs/{id}); the synchronous
// form is the simplest one that fits here.
func (a *App) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req missionapi.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, &missionapi.PlanError{Kind: missionapi.ErrInvalidTLE, Message: err.Error()})
		return
	}

	runID := uuid.New().String()
	resp, err := a.runner.Run(r.Context(), req)
	if err != nil {
		a.storeRun(runID, resp, err)
		writeError(w, statusForError(err), err)
		return
	}

	a.storeRun(runID, resp, nil)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		RunID string `json:"run_id"`
		missionapi.PlanResponse
	}{RunID: runID, PlanResponse: resp})
}

// handleGetRun serves GET /api/runs/{id}, returning the stored response
// for a previously completed run.
func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	sr, ok := a.getRun(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if sr.err != "" {
		http.Error(w, sr.err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sr.response)
}

func statusForError(err error) int {
	var pe *missionapi.PlanError
	if ok := asPlanError(err, &pe); ok {
		switch pe.Kind {
		case missionapi.ErrInvalidTLE, missionapi.ErrInvalidTarget, missionapi.ErrInvalidHorizon, missionapi.ErrSchedulerConfigInvalid:
			return http.StatusBadRequest
		case missionapi.ErrRunCancelled:
			return http.StatusRequestTimeout
		}
	}
	return http.StatusInternalServerError
}

func asPlanError(err error, target **missionapi.PlanError) bool {
	pe, ok := err.(*missionapi.PlanError)
	if !ok {
		return false
	}
	*target = pe
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"error": err.Error()}
	var pe *missionapi.PlanError
	if asPlanError(err, &pe) {
		body["kind"] = pe.Kind
		if pe.Field != "" {
			body["field"] = pe.Field
		}
	}
	_ = json.NewEncoder(w).Encode(body)
}
