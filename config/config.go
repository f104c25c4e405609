// Package config loads sheetops settings from a YAML file, an optional .env
// file and SHEETOPS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"sheetops/grid"
	"sheetops/highlight"
	"sheetops/reconcile"
	"sheetops/regions"
	"sheetops/report"
	"sheetops/timesheet"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "sheetops.yaml"

// Environment variables that override file settings.
const (
	EnvWorkbook  = "SHEETOPS_WORKBOOK"
	EnvBaseURL   = "SHEETOPS_API_BASE_URL"
	EnvAccountID = "SHEETOPS_ACCOUNT_ID"
	EnvAPIKey    = "SHEETOPS_API_KEY"
	EnvLogLevel  = "SHEETOPS_LOG_LEVEL"
)

// Config is the full configuration.
type Config struct {
	Workbook  string          `yaml:"workbook"`
	Logging   LoggingConfig   `yaml:"logging"`
	Regions   RegionsConfig   `yaml:"regions"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Report    ReportConfig    `yaml:"report"`
	Timesheet TimesheetConfig `yaml:"timesheet"`
	Highlight HighlightConfig `yaml:"highlight"`
}

// LoggingConfig selects the log level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// RegionColumn ties a reference column letter to a region name.
type RegionColumn struct {
	Column string `yaml:"column"`
	Region string `yaml:"region"`
}

// RegionsConfig configures the postcode region lookup.
type RegionsConfig struct {
	ReferenceSheet string         `yaml:"reference_sheet"`
	ScheduleSheet  string         `yaml:"schedule_sheet"`
	Columns        []RegionColumn `yaml:"columns"`
}

// ReconcileConfig configures the cycle sheet import.
type ReconcileConfig struct {
	SourceSheet string `yaml:"source_sheet"`
	TargetSheet string `yaml:"target_sheet"`
	Week        int    `yaml:"week"`
	StrictDays  bool   `yaml:"strict_days"`
	KeyPattern  string `yaml:"key_pattern"`
}

// ReportConfig configures the weekly view.
type ReportConfig struct {
	SourceSheet string `yaml:"source_sheet"`
	// TargetSheet defaults to "Cycle Week N".
	TargetSheet string `yaml:"target_sheet"`
	Week        int    `yaml:"week"`
}

// TimesheetConfig configures the timesheet API import. Credentials have no
// defaults.
type TimesheetConfig struct {
	BaseURL        string        `yaml:"base_url"`
	AccountID      string        `yaml:"account_id"`
	APIKey         string        `yaml:"api_key"`
	PageSize       int           `yaml:"page_size"`
	DateRangeStart string        `yaml:"date_range_start"`
	DateRangeEnd   string        `yaml:"date_range_end"`
	MaxPages       int           `yaml:"max_pages"`
	Timeout        time.Duration `yaml:"timeout"`
	Timezone       string        `yaml:"timezone"`
	Sheet          string        `yaml:"sheet"`
}

// HighlightConfig holds the defaults of the highlight command.
type HighlightConfig struct {
	Threshold float64 `yaml:"threshold"`
	Color     string  `yaml:"color"`
}

// DefaultConfig returns the settings of the operations workbook.
func DefaultConfig() *Config {
	cols := make([]RegionColumn, len(regions.DefaultColumns))
	for i, c := range regions.DefaultColumns {
		cols[i] = RegionColumn{Column: grid.ColumnName(c.Index), Region: c.Region}
	}
	ro := regions.DefaultOptions()
	rc := reconcile.DefaultOptions()
	rp := report.DefaultOptions()
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Regions: RegionsConfig{
			ReferenceSheet: ro.ReferenceSheet,
			ScheduleSheet:  ro.ScheduleSheet,
			Columns:        cols,
		},
		Reconcile: ReconcileConfig{
			SourceSheet: rc.SourceSheet,
			TargetSheet: rc.TargetSheet,
			Week:        rc.Week,
			KeyPattern:  rc.KeyPattern.String(),
		},
		Report: ReportConfig{
			SourceSheet: rp.SourceSheet,
			Week:        1,
		},
		Timesheet: TimesheetConfig{
			PageSize: timesheet.DefaultPageSize,
			MaxPages: timesheet.DefaultMaxPages,
			Timeout:  timesheet.DefaultTimeout,
			Timezone: "UTC",
			Sheet:    timesheet.DefaultSheet,
		},
		Highlight: HighlightConfig{Threshold: highlight.DefaultThreshold, Color: highlight.DefaultColor},
	}
}

// LoadDotEnv loads the given .env files into the environment, skipping the
// ones that do not exist. Variables already set are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvWorkbook); v != "" {
		c.Workbook = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Timesheet.BaseURL = v
	}
	if v := os.Getenv(EnvAccountID); v != "" {
		c.Timesheet.AccountID = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Timesheet.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects settings no command could run with. Timesheet
// credentials are checked by TimesheetConfig when the import runs.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q (valid: json, console)", c.Logging.Format)
	}
	if _, err := c.RegionsOptions(); err != nil {
		return err
	}
	if _, err := c.ReconcileOptions(); err != nil {
		return err
	}
	if err := checkWeek("report", c.Report.Week); err != nil {
		return err
	}
	if _, err := highlight.ResolveColor(c.Highlight.Color); err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	t := c.Timesheet
	if t.PageSize < 1 {
		return fmt.Errorf("invalid timesheet page_size %d", t.PageSize)
	}
	if t.MaxPages < 1 {
		return fmt.Errorf("invalid timesheet max_pages %d", t.MaxPages)
	}
	if _, err := loadLocation(t.Timezone); err != nil {
		return err
	}
	from, to, err := t.dateRange()
	if err != nil {
		return err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fmt.Errorf("timesheet date_range_end %s is before date_range_start %s", t.DateRangeEnd, t.DateRangeStart)
	}
	return nil
}

func checkWeek(section string, week int) error {
	if week < 1 || week > reconcile.Weeks {
		return fmt.Errorf("invalid %s week %d (valid: 1-%d)", section, week, reconcile.Weeks)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// RegionsOptions converts the regions section.
func (c *Config) RegionsOptions() (regions.Options, error) {
	opts := regions.DefaultOptions()
	if c.Regions.ReferenceSheet != "" {
		opts.ReferenceSheet = c.Regions.ReferenceSheet
	}
	if c.Regions.ScheduleSheet != "" {
		opts.ScheduleSheet = c.Regions.ScheduleSheet
	}
	if len(c.Regions.Columns) > 0 {
		letters := make([]string, len(c.Regions.Columns))
		names := make([]string, len(c.Regions.Columns))
		for i, rc := range c.Regions.Columns {
			letters[i], names[i] = rc.Column, rc.Region
		}
		cols, err := regions.ColumnsFromLetters(letters, names)
		if err != nil {
			return opts, fmt.Errorf("regions: %w", err)
		}
		opts.Columns = cols
	}
	return opts, nil
}

// ReconcileOptions converts the reconcile section.
func (c *Config) ReconcileOptions() (reconcile.Options, error) {
	opts := reconcile.DefaultOptions()
	if c.Reconcile.SourceSheet != "" {
		opts.SourceSheet = c.Reconcile.SourceSheet
	}
	if c.Reconcile.TargetSheet != "" {
		opts.TargetSheet = c.Reconcile.TargetSheet
	}
	if c.Reconcile.Week != 0 {
		if err := checkWeek("reconcile", c.Reconcile.Week); err != nil {
			return opts, err
		}
		opts.Week = c.Reconcile.Week
	}
	opts.StrictDays = c.Reconcile.StrictDays
	if c.Reconcile.KeyPattern != "" {
		re, err := regexp.Compile(c.Reconcile.KeyPattern)
		if err != nil {
			return opts, fmt.Errorf("invalid reconcile key_pattern: %w", err)
		}
		opts.KeyPattern = re
	}
	return opts, nil
}

// ReportOptions converts the report section.
func (c *Config) ReportOptions() report.Options {
	week := c.Report.Week
	if week == 0 {
		week = 1
	}
	opts := report.WeekOptions(week)
	if c.Report.SourceSheet != "" {
		opts.SourceSheet = c.Report.SourceSheet
	}
	if c.Report.TargetSheet != "" {
		opts.TargetSheet = c.Report.TargetSheet
	}
	return opts
}

var dateRangeLayouts = []string{time.RFC3339, time.DateOnly}

func parseRangeTime(key, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateRangeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timesheet %s %q (use YYYY-MM-DD or RFC 3339)", key, v)
}

func (t TimesheetConfig) dateRange() (from, to time.Time, err error) {
	if from, err = parseRangeTime("date_range_start", t.DateRangeStart); err != nil {
		return
	}
	to, err = parseRangeTime("date_range_end", t.DateRangeEnd)
	return
}

// TimesheetConfig converts the timesheet section. A month and year, when
// given, replace the configured date range.
func (c *Config) TimesheetConfig(year int, month time.Month) (timesheet.Config, error) {
	t := c.Timesheet
	loc, err := loadLocation(t.Timezone)
	if err != nil {
		return timesheet.Config{}, err
	}
	from, to, err := t.dateRange()
	if err != nil {
		return timesheet.Config{}, err
	}
	if year > 0 && month >= time.January && month <= time.December {
		from, to = timesheet.MonthRange(year, month)
	}
	cfg := timesheet.Config{
		BaseURL:   t.BaseURL,
		AccountID: t.AccountID,
		APIKey:    t.APIKey,
		PageSize:  t.PageSize,
		From:      from,
		To:        to,
		MaxPages:  t.MaxPages,
		Timeout:   t.Timeout,
		Location:  loc,
		Sheet:     t.Sheet,
	}.WithDefaults()
	return cfg, cfg.Validate()
}
