package ctl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/orbitalcue/mission-planner/internal/missionapi"
)

// PlanOptions controls the plan command.
type PlanOptions struct {
	RequestFile string // path to a PlanRequest JSON document, "-" for stdin
	JSON        bool
}

// planRunResponse mirrors POST /api/plan's body: a run ID plus the
// embedded PlanResponse.
type planRunResponse struct {
	RunID string `json:"run_id"`
	missionapi.PlanResponse
}

// Plan submits a PlanRequest read from opts.RequestFile to the daemon and
// prints the resulting schedule per algorithm.
func Plan(baseURL string, opts PlanOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var src *os.File
	if opts.RequestFile == "-" {
		src = os.Stdin
	} else {
		f, err := os.Open(opts.RequestFile)
		if err != nil {
			return fmt.Errorf("open request file: %w", err)
		}
		defer f.Close()
		src = f
	}

	var req missionapi.PlanRequest
	if err := json.NewDecoder(src).Decode(&req); err != nil {
		return fmt.Errorf("decode plan request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	// A constellation-scale run may take minutes of SGP4 propagation.
	planClient := &http.Client{Timeout: 5 * time.Minute}
	httpResp, err := planClient.Post(baseURL+"/api/plan", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var planErr struct {
			Error string `json:"error"`
			Kind  string `json:"kind"`
		}
		_ = json.NewDecoder(httpResp.Body).Decode(&planErr)
		return fmt.Errorf("HTTP %s: %s (%s)", httpResp.Status, planErr.Error, planErr.Kind)
	}

	var resp planRunResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return err
	}

	if opts.JSON {
		return printJSON(resp)
	}

	fmt.Println()
	fmt.Println(header("  PLAN RESULT"))
	fmt.Printf("  %s %s\n", colorize(dim, "Run:"), resp.RunID)
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 60)))

	for _, name := range sortedAlgorithmNames(resp.PerAlgorithm) {
		result := resp.PerAlgorithm[name]
		status := colorize(green, "OK")
		if result.Failed {
			status = colorize(red, "FAILED: "+result.FailReason)
		}
		fmt.Printf("\n  %s  %s\n", colorize(bold, name), status)
		fmt.Printf("    considered=%d accepted=%d rejected=%d\n",
			result.Metrics.Considered, result.Metrics.Accepted, result.Metrics.Rejected)
		for _, so := range result.Schedule {
			fmt.Printf("    %-10s %-10s %-10s  roll=%6.2f  pitch=%6.2f  value=%6.3f\n",
				so.SatelliteID, so.TargetID, so.StartTime.Format("15:04:05"),
				so.RollDeg, so.PitchDeg, so.CompositeValue)
		}
	}

	if len(resp.ConflictAudit) > 0 {
		fmt.Printf("\n  %s %d cross-satellite conflicts resolved\n", colorize(dim, "Conflicts:"), len(resp.ConflictAudit))
	}
	fmt.Println()

	return nil
}

func sortedAlgorithmNames(m map[string]missionapi.AlgorithmResult) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
