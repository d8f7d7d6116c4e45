package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/coldwater-lab/o2report/internal/units"
)

// PipelineConfig represents the parameters of the cleaning and fitting
// pipeline. The several hand-tuned script variants of this workflow only
// ever differed in these values, so they live in one struct instead of
// forked code paths. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
type PipelineConfig struct {
	// Separator is the field separator of raw instrument files.
	Separator *string `json:"separator,omitempty"`

	// SkipRows is the number of instrument preamble lines before the
	// header row.
	SkipRows *int `json:"skip_rows,omitempty"`

	// TZPresens is the timezone the instrument PC recorded in.
	TZPresens *string `json:"tz_presens,omitempty"`

	// TZLocal is the experiment-local timezone used for display and
	// cleaned filenames.
	TZLocal *string `json:"tz_local,omitempty"`

	// DateFormat and TimeFormat are Go reference layouts for the raw
	// date and time columns.
	DateFormat *string `json:"date_format,omitempty"`
	TimeFormat *string `json:"time_format,omitempty"`

	// StopSentinel is the analysis_stop_seconds value meaning "use the
	// last available sample".
	StopSentinel *int `json:"stop_sentinel,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// DefaultPipelineConfig returns a config with every field nil; the Get*
// accessors supply the documented defaults.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file. The path
// must have a .json extension and the file must be under the max size.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *PipelineConfig) Validate() error {
	if c.Separator != nil && utf8.RuneCountInString(*c.Separator) != 1 {
		return fmt.Errorf("separator must be a single character, got %q", *c.Separator)
	}
	if c.SkipRows != nil && *c.SkipRows < 0 {
		return fmt.Errorf("skip_rows must be non-negative, got %d", *c.SkipRows)
	}
	if c.TZPresens != nil && !units.IsTimezoneValid(*c.TZPresens) {
		return fmt.Errorf("invalid tz_presens %q", *c.TZPresens)
	}
	if c.TZLocal != nil && !units.IsTimezoneValid(*c.TZLocal) {
		return fmt.Errorf("invalid tz_local %q", *c.TZLocal)
	}
	if c.DateFormat != nil && *c.DateFormat == "" {
		return fmt.Errorf("date_format must not be empty")
	}
	if c.TimeFormat != nil && *c.TimeFormat == "" {
		return fmt.Errorf("time_format must not be empty")
	}
	return nil
}

// GetSeparator returns the field separator rune or the default ';'.
func (c *PipelineConfig) GetSeparator() rune {
	if c.Separator == nil || *c.Separator == "" {
		return ';'
	}
	r, _ := utf8.DecodeRuneInString(*c.Separator)
	return r
}

// GetSkipRows returns the preamble line count or the default 57.
func (c *PipelineConfig) GetSkipRows() int {
	if c.SkipRows == nil {
		return 57
	}
	return *c.SkipRows
}

// GetTZPresens returns the instrument timezone or the default Europe/Berlin.
func (c *PipelineConfig) GetTZPresens() string {
	if c.TZPresens == nil || *c.TZPresens == "" {
		return "Europe/Berlin"
	}
	return *c.TZPresens
}

// GetTZLocal returns the experiment-local timezone or the default
// America/Los_Angeles.
func (c *PipelineConfig) GetTZLocal() string {
	if c.TZLocal == nil || *c.TZLocal == "" {
		return "America/Los_Angeles"
	}
	return *c.TZLocal
}

// GetDateFormat returns the raw date layout or the default "02/01/06"
// (day/month/two-digit-year).
func (c *PipelineConfig) GetDateFormat() string {
	if c.DateFormat == nil || *c.DateFormat == "" {
		return "02/01/06"
	}
	return *c.DateFormat
}

// GetTimeFormat returns the raw time layout or the default "15:04:05".
func (c *PipelineConfig) GetTimeFormat() string {
	if c.TimeFormat == nil || *c.TimeFormat == "" {
		return "15:04:05"
	}
	return *c.TimeFormat
}

// GetStopSentinel returns the stop sentinel value or the default -1.
func (c *PipelineConfig) GetStopSentinel() int {
	if c.StopSentinel == nil {
		return -1
	}
	return *c.StopSentinel
}
