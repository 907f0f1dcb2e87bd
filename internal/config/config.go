// Package config provides configuration management for period expansion runs:
// engine settings plus the expansion request itself, loadable from JSON or
// YAML files and EXPAND_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mztrk/ExpendbyPeriods/internal/expand"
	dfio "github.com/mztrk/ExpendbyPeriods/internal/io"
	"github.com/mztrk/ExpendbyPeriods/internal/rolling"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of an expansion run
type Config struct {
	// Engine Configuration
	MaxGridCells  int64  `json:"max_grid_cells" yaml:"max_grid_cells"` // Grid size bound (0 = unbounded)
	MissingPolicy string `json:"missing_policy" yaml:"missing_policy"` // "propagate" or "skip"
	Workers       int    `json:"workers" yaml:"workers"`               // Concurrent passes (0 or 1 = sequential)

	// File Configuration
	CSVDelimiter string `json:"csv_delimiter" yaml:"csv_delimiter"` // Single character, `\t` for tab (default ",")

	// Debugging Configuration
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging"`       // Log progress at Info
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection"` // Record per-phase metrics

	Request Request `json:"request" yaml:"request"`
}

// Request is the expansion request as written in a configuration file.
// Pointer booleans distinguish an explicit false from an unset field, which
// takes the library default.
type Request struct {
	KeyColumns           []string          `json:"key_columns" yaml:"key_columns"`
	PeriodColumn         string            `json:"period_column" yaml:"period_column"`
	ColsToExpand         []string          `json:"cols_to_expand" yaml:"cols_to_expand"`
	Offsets              []int             `json:"offsets" yaml:"offsets"`
	Methods              []string          `json:"methods" yaml:"methods"`
	IncludeCurrentPeriod *bool             `json:"include_current_period,omitempty" yaml:"include_current_period,omitempty"`
	ColsToRatio          []string          `json:"cols_to_ratio" yaml:"cols_to_ratio"`
	MethodsToRatio       []string          `json:"methods_to_ratio,omitempty" yaml:"methods_to_ratio,omitempty"`
	OffsetsToRatio       []int             `json:"offsets_to_ratio,omitempty" yaml:"offsets_to_ratio,omitempty"`
	DoGrid               bool              `json:"do_grid" yaml:"do_grid"`
	DoSort               *bool             `json:"do_sort,omitempty" yaml:"do_sort,omitempty"`
	Suffixes             map[string]string `json:"suffixes,omitempty" yaml:"suffixes,omitempty"`
}

// Default configuration values
const (
	DefaultMissingPolicy = "propagate"
	DefaultMethod        = "mean"
)

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		MaxGridCells:      0, // Unbounded
		MissingPolicy:     DefaultMissingPolicy,
		VerboseLogging:    false,
		MetricsCollection: false,
		Request: Request{
			Methods: []string{DefaultMethod},
		},
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.MaxGridCells < 0 {
		return fmt.Errorf("MaxGridCells must be non-negative, got %d", c.MaxGridCells)
	}

	if c.Workers < 0 {
		return fmt.Errorf("Workers must be non-negative, got %d", c.Workers)
	}

	if _, err := rolling.ParseMissingPolicy(c.MissingPolicy); err != nil {
		return fmt.Errorf("MissingPolicy: %w", err)
	}

	if _, err := c.delimiter(); err != nil {
		return err
	}

	for _, offset := range c.Request.Offsets {
		if offset == 0 {
			return errors.New("request offsets must be non-zero")
		}
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	if c.MissingPolicy == "" {
		c.MissingPolicy = DefaultMissingPolicy
	}
	if len(c.Request.Methods) == 0 {
		c.Request.Methods = []string{DefaultMethod}
	}

	// Boolean fields are not defaulted here so an explicit false survives.
	return c
}

// Options converts the configuration into expansion options. Logger,
// Metrics and Allocator are left for the caller to set.
func (c Config) Options() (expand.Options, error) {
	policy, err := rolling.ParseMissingPolicy(c.MissingPolicy)
	if err != nil {
		return expand.Options{}, err
	}

	r := c.Request
	opts := expand.DefaultOptions()
	opts.KeyColumns = r.KeyColumns
	opts.PeriodColumn = r.PeriodColumn
	opts.ColsToExpand = r.ColsToExpand
	opts.Offsets = r.Offsets
	if len(r.Methods) > 0 {
		opts.Methods = r.Methods
	}
	if r.IncludeCurrentPeriod != nil {
		opts.IncludeCurrentPeriod = *r.IncludeCurrentPeriod
	}
	opts.ColsToRatio = r.ColsToRatio
	opts.MethodsToRatio = r.MethodsToRatio
	opts.OffsetsToRatio = r.OffsetsToRatio
	opts.DoGrid = r.DoGrid
	if r.DoSort != nil {
		opts.DoSort = *r.DoSort
	}
	opts.Suffixes = r.Suffixes
	opts.MaxGridCells = c.MaxGridCells
	opts.Aggregate = rolling.Options{Missing: policy}
	opts.Workers = c.Workers
	opts.Verbose = c.VerboseLogging
	return opts, nil
}

// FileOptions converts the file settings into reader and writer options.
func (c Config) FileOptions() (dfio.FileOptions, error) {
	opts := dfio.DefaultFileOptions()
	delim, err := c.delimiter()
	if err != nil {
		return opts, err
	}
	if delim != 0 {
		opts.CSV.Delimiter = delim
	}
	return opts, nil
}

// delimiter returns the configured CSV delimiter, or 0 when unset.
func (c Config) delimiter() (rune, error) {
	switch c.CSVDelimiter {
	case "":
		return 0, nil
	case `\t`:
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(c.CSVDelimiter)
	if size != len(c.CSVDelimiter) || r == utf8.RuneError || r == '\r' || r == '\n' || r == '"' {
		return 0, fmt.Errorf("CSVDelimiter must be a single character other than a quote or newline, got %q", c.CSVDelimiter)
	}
	return r, nil
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables over the defaults
func LoadFromEnv() Config {
	return ApplyEnv(NewConfig())
}

// ApplyEnv overrides config with any EXPAND_* environment variables that are
// set. Values that do not parse are ignored. List variables are
// comma-separated.
func ApplyEnv(config Config) Config {
	if val := os.Getenv("EXPAND_MAX_GRID_CELLS"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.MaxGridCells = parsed
		}
	}

	if val := os.Getenv("EXPAND_MISSING_POLICY"); val != "" {
		config.MissingPolicy = val
	}

	if val := os.Getenv("EXPAND_WORKERS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.Workers = parsed
		}
	}

	if val := os.Getenv("EXPAND_CSV_DELIMITER"); val != "" {
		config.CSVDelimiter = val
	}

	if val := os.Getenv("EXPAND_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	if val := os.Getenv("EXPAND_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	r := &config.Request

	if val := os.Getenv("EXPAND_KEY_COLUMNS"); val != "" {
		r.KeyColumns = splitList(val)
	}

	if val := os.Getenv("EXPAND_PERIOD_COLUMN"); val != "" {
		r.PeriodColumn = strings.TrimSpace(val)
	}

	if val := os.Getenv("EXPAND_COLUMNS"); val != "" {
		r.ColsToExpand = splitList(val)
	}

	if val := os.Getenv("EXPAND_RATIO_COLUMNS"); val != "" {
		r.ColsToRatio = splitList(val)
	}

	if val := os.Getenv("EXPAND_METHODS"); val != "" {
		r.Methods = splitList(val)
	}

	if val := os.Getenv("EXPAND_OFFSETS"); val != "" {
		if parsed, err := parseInts(val); err == nil {
			r.Offsets = parsed
		}
	}

	if val := os.Getenv("EXPAND_DO_GRID"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			r.DoGrid = parsed
		}
	}

	if val := os.Getenv("EXPAND_DO_SORT"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			r.DoSort = &parsed
		}
	}

	if val := os.Getenv("EXPAND_INCLUDE_CURRENT_PERIOD"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			r.IncludeCurrentPeriod = &parsed
		}
	}

	return config
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInts(val string) ([]int, error) {
	parts := splitList(val)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
