// Package config loads run settings from environment variables. Structural
// impossibilities (unknown site, unknown detection-limit policy, bad flow
// unit) fail here, before any computation starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tbergdoll/runoff-loads/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	Site        domain.Site
	Gauge       string
	LimitPolicy domain.LimitPolicy
	FlowUnit    domain.FlowUnit

	// Location is the fixed-offset zone (no DST) used for every timestamp.
	Location *time.Location

	// TempColumn names the temperature sensor column in the series table.
	TempColumn string

	LoggerDir    string
	RainCSV      string
	TempCSV      string
	WorkbookPath string
	SchemaPath   string
	OutDir       string
	OutputStem   string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset and validating the closed sets up front.
func Load() (*Config, error) {
	site, err := domain.ParseSite(envOrDefault("RUNOFF_SITE", "A"))
	if err != nil {
		return nil, err
	}

	policy, err := domain.ParseLimitPolicy(envOrDefault("RUNOFF_LIMIT_POLICY", "half"))
	if err != nil {
		return nil, err
	}

	flowUnit, err := parseFlowUnit(envOrDefault("RUNOFF_FLOW_UNIT", "l/s"))
	if err != nil {
		return nil, err
	}

	loc, err := parseZoneOffset(envOrDefault("RUNOFF_TZ_OFFSET_HOURS", "1"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Site:        site,
		Gauge:       envOrDefault("RUNOFF_GAUGE", "RG1"),
		TempColumn:  envOrDefault("RUNOFF_TEMP_COLUMN", "T"),
		LimitPolicy: policy,
		FlowUnit:    flowUnit,
		Location:    loc,

		LoggerDir:    envOrDefault("RUNOFF_LOGGER_DIR", "data/logger"),
		RainCSV:      envOrDefault("RUNOFF_RAIN_CSV", "data/rain.csv"),
		TempCSV:      envOrDefault("RUNOFF_TEMP_CSV", "data/temperature.csv"),
		WorkbookPath: envOrDefault("RUNOFF_WORKBOOK", "data/events.xlsx"),
		SchemaPath:   os.Getenv("RUNOFF_SCHEMA"),
		OutDir:       envOrDefault("RUNOFF_OUT_DIR", "out"),
		OutputStem:   envOrDefault("RUNOFF_OUTPUT_STEM", "runoff"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "text"),
	}

	if cfg.Gauge == "" {
		return nil, errors.New("RUNOFF_GAUGE is required")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFlowUnit(s string) (domain.FlowUnit, error) {
	switch s {
	case "l/s":
		return domain.LitersPerSecond, nil
	case "l/h":
		return domain.LitersPerHour, nil
	default:
		return 0, fmt.Errorf("unknown flow unit %q (want l/s or l/h)", s)
	}
}

// parseZoneOffset builds a fixed-offset zone from a whole-hour offset.
// The study area does not observe DST in the instrument clocks, so a fixed
// offset is correct year-round.
func parseZoneOffset(s string) (*time.Location, error) {
	hours, err := strconv.Atoi(s)
	if err != nil || hours < -12 || hours > 14 {
		return nil, fmt.Errorf("invalid RUNOFF_TZ_OFFSET_HOURS %q", s)
	}
	name := fmt.Sprintf("UTC%+d", hours)
	return time.FixedZone(name, hours*3600), nil
}
