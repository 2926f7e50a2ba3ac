package ctl

import (
	"fmt"
	"strings"
)

// Health checks daemon liveness and optionally component health via GET /healthz.
// When --json is used, it requests the detailed form.
func Health(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	if jsonOutput {
		return healthDetailed(baseURL)
	}

	status, _, err := getRaw(baseURL, "/healthz")
	if err != nil {
		return err
	}

	fmt.Println()
	if status == 200 {
		fmt.Printf("  %s  missiond is reachable at %s\n", colorize(green, "HEALTHY"), colorize(dim, baseURL))
	} else {
		fmt.Printf("  %s  missiond returned HTTP %d at %s\n", colorize(red, "UNHEALTHY"), status, colorize(dim, baseURL))
	}
	fmt.Println()
	return nil
}

// healthDetailed fetches uptime and disk usage via JSON Accept header.
func healthDetailed(baseURL string) error {
	var result map[string]any
	if err := getJSONAccept(baseURL, "/healthz", &result); err != nil {
		return printJSON(map[string]any{"healthy": false, "url": baseURL, "error": err.Error()})
	}
	return printJSON(result)
}
