// Package config loads and validates the run settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
	"github.com/vinckbooms/20231212-monnit-api/pkg/timerange"
)

// DefaultPath is the settings file read when no path is given.
const DefaultPath = "settings.json"

// Settings holds the run configuration. Loaded once at process start and
// read-only afterwards, except for explicit operator overrides of the
// window bounds before the run.
type Settings struct {
	AuthorizationToken string  `json:"authorization_token" yaml:"authorization_token"`
	NetworkName        string  `json:"network_name" yaml:"network_name"`
	SensorList         []int64 `json:"sensor_list" yaml:"sensor_list"`
	IntervalMinutes    int     `json:"interval_minutes" yaml:"interval_minutes"`
	Start              string  `json:"start" yaml:"start"`
	End                string  `json:"end" yaml:"end"`
	Verbose            bool    `json:"verbose" yaml:"verbose"`
	LogToFile          bool    `json:"log_to_file" yaml:"log_to_file"`

	// Optional knobs with safe defaults.
	OutputDir        string `json:"output_dir" yaml:"output_dir"`
	Timezone         string `json:"timezone" yaml:"timezone"`
	BaseURL          string `json:"base_url" yaml:"base_url"`
	RetryMaxAttempts int    `json:"retry_max_attempts" yaml:"retry_max_attempts"`
}

// Load reads a settings file. YAML is selected by file extension
// (.yaml/.yml), JSON otherwise. A missing or malformed file is a fatal
// configuration error: there is nothing sensible to export without it.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	var settings Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("parse settings file %s: %w", path, err)
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}

	return &settings, nil
}

// Validate checks the invariants the run depends on.
func (s *Settings) Validate() error {
	if s.AuthorizationToken == "" {
		return fmt.Errorf("authorization_token is required")
	}
	if s.IntervalMinutes < 1 {
		return fmt.Errorf("interval_minutes must be >= 1 (got %d)", s.IntervalMinutes)
	}
	if _, err := s.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses the configured start/end bounds into a TimeRange.
func (s *Settings) Window() (timerange.TimeRange, error) {
	start, err := time.Parse(monnit.DateFormat, s.Start)
	if err != nil {
		return timerange.TimeRange{}, fmt.Errorf("parse start %q: %w", s.Start, err)
	}
	end, err := time.Parse(monnit.DateFormat, s.End)
	if err != nil {
		return timerange.TimeRange{}, fmt.Errorf("parse end %q: %w", s.End, err)
	}
	return timerange.New(start, end)
}

// Delay returns the pacing delay between consecutive requests.
func (s *Settings) Delay() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}
