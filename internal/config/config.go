// Package config loads dirtree settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idelchi/dirtree/internal/dirstat"
	"github.com/idelchi/dirtree/internal/listing"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Outputs lists the accepted scan output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json", "yaml"}

// Config holds every setting that can come from a file.
type Config struct {
	Workers          int                 `yaml:"workers"`
	Order            listing.Order       `yaml:"order"`
	OnError          listing.ErrorPolicy `yaml:"on_error"`
	Exclude          []string            `yaml:"exclude"`
	Follow           bool                `yaml:"follow"`
	Engine           dirstat.Engine      `yaml:"engine"`
	Output           string              `yaml:"output"`
	ProgressInterval time.Duration       `yaml:"progress_interval"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Workers:          runtime.NumCPU(),
		Order:            listing.Native,
		OnError:          listing.Skip,
		Exclude:          []string{},
		Engine:           dirstat.EnginePool,
		Output:           "table",
		ProgressInterval: dirstat.DefaultProgressInterval,
	}
}

// LoadConfig reads path on top of the defaults.
// An empty path or a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Initialize Exclude slice if nil (for explicit `exclude:` with no items)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}

	if _, err := listing.ParseOrder(string(c.Order)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if _, err := listing.ParseErrorPolicy(string(c.OnError)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if !slices.Contains(dirstat.Engines, c.Engine) {
		return fmt.Errorf("%w: engine %q must be one of %v", ErrInvalid, c.Engine, dirstat.Engines)
	}

	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("%w: output %q must be one of %v", ErrInvalid, c.Output, Outputs)
	}

	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress_interval cannot be negative", ErrInvalid)
	}

	if _, err := listing.NewExcluder(c.Exclude); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}
