package ctl

import (
	"fmt"
	"os"
	"strings"

	"github.com/orbitalcue/mission-planner/internal/export"
	"github.com/orbitalcue/mission-planner/internal/missionapi"
)

// ExportOptions controls the export command.
type ExportOptions struct {
	RunID  string
	Format string // "json" or "csv"
	Out    string // output path, "-" for stdout
}

// Export fetches a previously completed run by ID and writes it to disk
// in the requested format, reusing internal/export's bit-exact CSV and
// indented JSON writers.
func Export(baseURL string, opts ExportOptions) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var resp missionapi.PlanResponse
	if err := getJSON(baseURL, "/api/runs/"+opts.RunID, &resp); err != nil {
		return err
	}

	dst := os.Stdout
	if opts.Out != "-" && opts.Out != "" {
		f, err := os.Create(opts.Out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		dst = f
	}

	switch opts.Format {
	case "csv":
		return export.WriteCSV(dst, resp)
	case "json", "":
		return export.WriteJSON(dst, resp)
	default:
		return fmt.Errorf("unknown export format %q (want json or csv)", opts.Format)
	}
}
