package ctl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Config fetches and displays the daemon's running configuration.
func Config(baseURL string, jsonOutput bool) error {
	baseURL = strings.TrimRight(baseURL, "/")

	// Decode into a generic map to preserve all fields for both display modes.
	var raw json.RawMessage
	if err := getJSON(baseURL, "/api/config", &raw); err != nil {
		return err
	}

	if jsonOutput {
		var v any
		_ = json.Unmarshal(raw, &v)
		return printJSON(v)
	}

	// Decode into ordered sections for human-readable output.
	var cfg struct {
		Data struct {
			Root    string `json:"root"`
			Archive string `json:"archive"`
		} `json:"data"`
		Logging struct {
			Level string `json:"level"`
		} `json:"logging"`
		Server struct {
			Bind string `json:"bind"`
		} `json:"server"`
		TLE struct {
			URL          string `json:"url"`
			RefreshHours int    `json:"refresh_hours"`
		} `json:"tle"`
		Scheduler struct {
			ImagingTimeS          float64 `json:"imaging_time_s"`
			MaxRollRateDPS        float64 `json:"max_roll_rate_dps"`
			MaxRollAccelDPS2      float64 `json:"max_roll_accel_dps2"`
			MaxPitchRateDPS       float64 `json:"max_pitch_rate_dps"`
			MaxPitchAccelDPS2     float64 `json:"max_pitch_accel_dps2"`
			MaxSpacecraftRollDeg  float64 `json:"max_spacecraft_roll_deg"`
			MaxSpacecraftPitchDeg float64 `json:"max_spacecraft_pitch_deg"`
			LookWindowS           float64 `json:"look_window_s"`
			QualityModel          string  `json:"quality_model"`
			IdealIncidenceDeg     float64 `json:"ideal_incidence_deg"`
			BandWidthDeg          float64 `json:"band_width_deg"`
			ConflictStrategy      string  `json:"conflict_strategy"`
			ConflictTimeThresholdS float64 `json:"conflict_time_threshold_s"`
		} `json:"scheduler"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(header("  DAEMON CONFIGURATION"))
	fmt.Println(colorize(dim, "  "+strings.Repeat("─", 50)))

	section := func(name string) {
		fmt.Printf("\n  %s\n", colorize(bold, "["+name+"]"))
	}
	field := func(key string, val any) {
		fmt.Printf("    %-24s %v\n", colorize(dim, key+":"), val)
	}

	section("data")
	field("root", cfg.Data.Root)
	field("archive", cfg.Data.Archive)

	section("logging")
	field("level", cfg.Logging.Level)

	section("server")
	field("bind", cfg.Server.Bind)

	section("tle")
	field("url", cfg.TLE.URL)
	field("refresh_hours", cfg.TLE.RefreshHours)

	section("scheduler")
	field("imaging_time_s", cfg.Scheduler.ImagingTimeS)
	field("max_roll_rate_dps", cfg.Scheduler.MaxRollRateDPS)
	field("max_roll_accel_dps2", cfg.Scheduler.MaxRollAccelDPS2)
	field("max_pitch_rate_dps", cfg.Scheduler.MaxPitchRateDPS)
	field("max_pitch_accel_dps2", cfg.Scheduler.MaxPitchAccelDPS2)
	field("max_spacecraft_roll_deg", cfg.Scheduler.MaxSpacecraftRollDeg)
	field("max_spacecraft_pitch_deg", cfg.Scheduler.MaxSpacecraftPitchDeg)
	field("look_window_s", cfg.Scheduler.LookWindowS)
	field("quality_model", cfg.Scheduler.QualityModel)
	field("ideal_incidence_deg", cfg.Scheduler.IdealIncidenceDeg)
	field("band_width_deg", cfg.Scheduler.BandWidthDeg)
	field("conflict_strategy", cfg.Scheduler.ConflictStrategy)
	field("conflict_time_threshold_s", cfg.Scheduler.ConflictTimeThresholdS)

	fmt.Println()

	return nil
}
