package ctl

import (
	"fmt"
	"strings"
	"time"
)

// statusResponse mirrors the detailed JSON returned by GET /healthz.
type statusResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DataRoot      string `json:"data_root"`
	ArchiveDir    string `json:"archive_dir"`
}

// Status fetches the daemon's detailed health and prints a summary.
func Status(baseURL string) error {
	baseURL = strings.TrimRight(baseURL, "/")

	var s statusResponse
	if err := getJSONAccept(baseURL, "/healthz", &s); err != nil {
		return err
	}

	uptime := formatDuration(time.Duration(s.UptimeSeconds) * time.Second)

	fmt.Println()
	fmt.Println(header("  MISSION PLANNER STATUS"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 38)))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Status:"), colorize(green, s.Status))
	fmt.Printf("  %-12s %s\n", colorize(dim, "Uptime:"), uptime)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Data:"), s.DataRoot)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Archive:"), s.ArchiveDir)
	fmt.Printf("  %-12s %s\n", colorize(dim, "Host:"), baseURL)
	fmt.Println()

	return nil
}
