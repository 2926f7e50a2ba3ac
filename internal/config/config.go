// Package config handles loading, defaulting, and validation of the
// mission planner's TOML configuration file. Every section maps to a
// typed struct so the rest of the codebase gets strong typing without
// manual key lookups.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/orbitalcue/mission-planner/internal/domain"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Data      DataConfig      `toml:"data"      json:"data"`
	Logging   LoggingConfig   `toml:"logging"   json:"logging"`
	Server    ServerConfig    `toml:"server"    json:"server"`
	TLESource TLESourceConfig `toml:"tle"       json:"tle"`
	Scheduler SchedulerConfig `toml:"scheduler" json:"scheduler"`
}

// DataConfig is where run archives and the TLE cache live on disk.
type DataConfig struct {
	Root    string `toml:"root"    json:"root"`
	Archive string `toml:"archive" json:"archive"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

type ServerConfig struct {
	Bind string `toml:"bind" json:"bind"`
}

// TLESourceConfig configures where bulk TLE catalogs are fetched from and
// how often the on-disk cache is refreshed.
type TLESourceConfig struct {
	URL          string `toml:"url"           json:"url"`
	RefreshHours int    `toml:"refresh_hours" json:"refresh_hours"`
}

// SchedulerConfig is the TOML-level scheduler section, mirroring every
// field in domain.SchedulerConfig. Load validates it and GET /api/config
// reports it; plan requests do not draw on it: a PlanRequest's
// scheduler_config is used as sent, with only missionapi's own built-in
// defaults filling the fields it leaves at zero.
type SchedulerConfig struct {
	ImagingTimeS float64 `toml:"imaging_time_s" json:"imaging_time_s"`

	MaxRollRateDPS    float64 `toml:"max_roll_rate_dps"    json:"max_roll_rate_dps"`
	MaxRollAccelDPS2  float64 `toml:"max_roll_accel_dps2"  json:"max_roll_accel_dps2"`
	MaxPitchRateDPS   float64 `toml:"max_pitch_rate_dps"   json:"max_pitch_rate_dps"`
	MaxPitchAccelDPS2 float64 `toml:"max_pitch_accel_dps2" json:"max_pitch_accel_dps2"`

	MaxSpacecraftRollDeg  float64 `toml:"max_spacecraft_roll_deg"  json:"max_spacecraft_roll_deg"`
	MaxSpacecraftPitchDeg float64 `toml:"max_spacecraft_pitch_deg" json:"max_spacecraft_pitch_deg"`

	LookWindowS float64 `toml:"look_window_s" json:"look_window_s"`

	QualityModel      string  `toml:"quality_model"        json:"quality_model"`
	IdealIncidenceDeg float64 `toml:"ideal_incidence_deg"  json:"ideal_incidence_deg"`
	BandWidthDeg      float64 `toml:"band_width_deg"       json:"band_width_deg"`

	ConflictStrategy      string  `toml:"conflict_strategy"          json:"conflict_strategy"`
	ConflictTimeThreshold float64 `toml:"conflict_time_threshold_s"  json:"conflict_time_threshold_s"`
}

// ToDomain translates the TOML-level defaults into domain.SchedulerConfig,
// reusing the weights.balanced preset since TOML has no per-request weight
// override (PlanRequest.scheduler_config.weights covers that case).
func (s SchedulerConfig) ToDomain() domain.SchedulerConfig {
	return domain.SchedulerConfig{
		ImagingTimeS:          s.ImagingTimeS,
		MaxRollRateDPS:        s.MaxRollRateDPS,
		MaxRollAccelDPS2:      s.MaxRollAccelDPS2,
		MaxPitchRateDPS:       s.MaxPitchRateDPS,
		MaxPitchAccelDPS2:     s.MaxPitchAccelDPS2,
		MaxSpacecraftRollDeg:  s.MaxSpacecraftRollDeg,
		MaxSpacecraftPitchDeg: s.MaxSpacecraftPitchDeg,
		LookWindowS:           s.LookWindowS,
		QualityModel:          domain.QualityModelKind(s.QualityModel),
		IdealIncidenceDeg:     s.IdealIncidenceDeg,
		BandWidthDeg:          s.BandWidthDeg,
		Weights:               domain.WeightsBalanced,
		ConflictStrategy:      domain.ConflictStrategy(s.ConflictStrategy),
		ConflictTimeThreshold: s.ConflictTimeThreshold,
	}
}

// DefaultConfigDir returns the XDG-compliant config directory for the
// mission planner. It respects $XDG_CONFIG_HOME and falls back to
// ~/.config/missionplanner.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "missionplanner")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "missionplanner")
}

// DefaultDataDir returns the XDG-compliant data directory for the mission
// planner. It respects $XDG_DATA_HOME and falls back to
// ~/.local/share/missionplanner.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "missionplanner")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "missionplanner")
}

// FindConfigFile searches for a config file in standard locations:
//  1. $MISSIONPLANNER_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/missionplanner/config.toml
//  3. ~/.config/missionplanner/config.toml
//  4. /etc/missionplanner/missionplanner.toml
//  5. configs/example.toml (bundled fallback)
//
// Returns the path to the first file found, or empty string if none
// exist. An empty return means the caller should use Default() directly.
func FindConfigFile() string {
	if env := os.Getenv("MISSIONPLANNER_CONFIG"); env != "" {
		if _, err := os.Stat(env); err == nil {
			return env
		}
	}

	xdgPath := filepath.Join(DefaultConfigDir(), "config.toml")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	legacyPath := "/etc/missionplanner/missionplanner.toml"
	if _, err := os.Stat(legacyPath); err == nil {
		return legacyPath
	}

	if _, err := os.Stat("configs/example.toml"); err == nil {
		return "configs/example.toml"
	}

	return ""
}

// ProfileInfo describes a config profile discovered in the config directory.
type ProfileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
}

// ListProfiles scans a directory for .toml files and returns them as profiles.
func ListProfiles(configDir string) ([]ProfileInfo, error) {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var profiles []ProfileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".toml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".toml")
		profiles = append(profiles, ProfileInfo{
			Name:    name,
			Path:    filepath.Join(configDir, e.Name()),
			ModTime: info.ModTime(),
		})
	}
	return profiles, nil
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	dataDir := DefaultDataDir()
	return Config{
		Data: DataConfig{
			Root:    dataDir,
			Archive: filepath.Join(dataDir, "runs"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Bind: "0.0.0.0:8080",
		},
		TLESource: TLESourceConfig{
			URL:          "https://celestrak.org/NORAD/elements/gp.php?GROUP=stations&FORMAT=tle",
			RefreshHours: 24,
		},
		Scheduler: schedulerDefaultsFromDomain(domain.DefaultSchedulerConfig()),
	}
}

func schedulerDefaultsFromDomain(d domain.SchedulerConfig) SchedulerConfig {
	return SchedulerConfig{
		ImagingTimeS:          d.ImagingTimeS,
		MaxRollRateDPS:        d.MaxRollRateDPS,
		MaxRollAccelDPS2:      d.MaxRollAccelDPS2,
		MaxPitchRateDPS:       d.MaxPitchRateDPS,
		MaxPitchAccelDPS2:     d.MaxPitchAccelDPS2,
		MaxSpacecraftRollDeg:  d.MaxSpacecraftRollDeg,
		MaxSpacecraftPitchDeg: d.MaxSpacecraftPitchDeg,
		LookWindowS:           d.LookWindowS,
		QualityModel:          string(d.QualityModel),
		IdealIncidenceDeg:     d.IdealIncidenceDeg,
		BandWidthDeg:          d.BandWidthDeg,
		ConflictStrategy:      string(d.ConflictStrategy),
		ConflictTimeThreshold: d.ConflictTimeThreshold,
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. Data directories are created automatically if
// they don't exist.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	cfg.Data.Root = expandHome(cfg.Data.Root)
	cfg.Data.Archive = expandHome(cfg.Data.Archive)

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, ensureDirs(cfg)
}

// EnsureDirectories creates the XDG config dir and data directories.
// Called by the daemon on startup regardless of whether a config file was
// found.
func EnsureDirectories(cfg Config) error {
	if err := os.MkdirAll(DefaultConfigDir(), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return ensureDirs(cfg)
}

func ensureDirs(cfg Config) error {
	if err := os.MkdirAll(cfg.Data.Root, 0o755); err != nil {
		return fmt.Errorf("create data root: %w", err)
	}
	if err := os.MkdirAll(cfg.Data.Archive, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func validate(cfg Config) error {
	if cfg.Data.Root == "" {
		return errors.New("data.root must not be empty")
	}
	if cfg.Data.Archive == "" {
		return errors.New("data.archive must not be empty")
	}
	if cfg.TLESource.RefreshHours < 1 {
		return errors.New("tle.refresh_hours must be >= 1")
	}
	if err := cfg.Scheduler.ToDomain().Validate(); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	return nil
}
