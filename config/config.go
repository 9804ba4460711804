// Package config provides configuration loading and validation for the
// simulation core.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the construction-time parameters of the MAC grid.
type GridConfig struct {
	Resolution  int     `yaml:"resolution"`   // Cube side length in cells
	SandMin     [3]int  `yaml:"sand_min"`     // Initial sand block, inclusive lower bounds per axis
	SandMax     [3]int  `yaml:"sand_max"`     // Initial sand block, inclusive upper bounds per axis
	PICFraction float64 `yaml:"pic_fraction"` // PIC/FLIP blend: 1 = pure PIC, 0 = pure FLIP
}

// PhysicsConfig holds time-stepping parameters.
type PhysicsConfig struct {
	DT         float64 `yaml:"dt"`         // Step size in seconds
	Integrator string  `yaml:"integrator"` // "euler" or "midpoint"
}

// RuntimeConfig holds execution parameters.
type RuntimeConfig struct {
	Workers int `yaml:"workers"` // Pass-pool workers (0 = GOMAXPROCS)
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsEvery          int `yaml:"stats_every"`           // Steps between stats windows (0 disables)
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Ticks in the rolling perf window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Physics.DT as float32
	ParticleCapacity int     // (2*resolution)^3 particle slots
	Workers          int     // Resolved worker count
}

// Integrator names accepted by Physics.Integrator.
const (
	IntegratorEuler    = "euler"
	IntegratorMidpoint = "midpoint"
)

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the constraints the core itself does not: the core treats
// out-of-range sand bounds or blend fractions as undefined behavior, so they
// must be rejected here, before construction.
func (c *Config) Validate() error {
	n := c.Grid.Resolution
	if n < 3 {
		return fmt.Errorf("grid.resolution must be at least 3, got %d", n)
	}

	for axis := 0; axis < 3; axis++ {
		lo, hi := c.Grid.SandMin[axis], c.Grid.SandMax[axis]
		if lo > hi {
			return fmt.Errorf("grid.sand_min[%d]=%d exceeds grid.sand_max[%d]=%d", axis, lo, axis, hi)
		}
		// The boundary shell is always SOLID; sand must start inside it.
		if lo < 1 || hi > n-2 {
			return fmt.Errorf("sand region [%d, %d] on axis %d outside interior [1, %d]", lo, hi, axis, n-2)
		}
	}

	if c.Grid.PICFraction < 0 || c.Grid.PICFraction > 1 {
		return fmt.Errorf("grid.pic_fraction must be in [0, 1], got %g", c.Grid.PICFraction)
	}

	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %g", c.Physics.DT)
	}

	switch c.Physics.Integrator {
	case IntegratorEuler, IntegratorMidpoint:
	default:
		return fmt.Errorf("physics.integrator must be %q or %q, got %q",
			IntegratorEuler, IntegratorMidpoint, c.Physics.Integrator)
	}

	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)

	side := 2 * c.Grid.Resolution
	c.Derived.ParticleCapacity = side * side * side

	workers := c.Runtime.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	c.Derived.Workers = workers
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
