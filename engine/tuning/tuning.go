package tuning

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for out-of-range settings
var ErrInvalid = errors.New("invalid tuning")

// Tuning holds the pathfinding engine settings
type Tuning struct {
	Think  Think  `yaml:"think"`
	Worker Worker `yaml:"worker"`

	// Debug is one of "off", "statistics", "draw searches"
	Debug          string `yaml:"debug"`
	DefaultMaxCost int    `yaml:"default_max_cost"`
	ReplayPath     string `yaml:"replay_path"`
	MetricsAddr    string `yaml:"metrics_addr"`
}

// Think bounds the adaptive per-frame dispatch budget. The budget grows
// with recent frame times between MinMs and MaxMs and never drops below
// FloorMs.
type Think struct {
	MinMs   int `yaml:"min_ms"`
	MaxMs   int `yaml:"max_ms"`
	FloorMs int `yaml:"floor_ms"`
}

type Worker struct {
	IdleDelayMs int  `yaml:"idle_delay_ms"`
	Synchronous bool `yaml:"synchronous"`
}

// Default returns the built-in settings
func Default() Tuning {
	return Tuning{
		Think:          Think{MinMs: 20, MaxMs: 33, FloorMs: 36},
		Worker:         Worker{IdleDelayMs: 1},
		Debug:          "off",
		DefaultMaxCost: 32767,
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Validate rejects settings the engine cannot run with
func (t Tuning) Validate() error {
	switch {
	case t.Think.MinMs <= 0 || t.Think.MaxMs < t.Think.MinMs:
		return fmt.Errorf("%w: think window %d..%d ms", ErrInvalid, t.Think.MinMs, t.Think.MaxMs)
	case t.Think.FloorMs <= 0 || t.Think.FloorMs > 1000:
		return fmt.Errorf("%w: think floor %d ms", ErrInvalid, t.Think.FloorMs)
	case t.Worker.IdleDelayMs < 0 || t.Worker.IdleDelayMs > 1000:
		return fmt.Errorf("%w: worker idle delay %d ms", ErrInvalid, t.Worker.IdleDelayMs)
	case t.DefaultMaxCost <= 0 || t.DefaultMaxCost > 32767:
		return fmt.Errorf("%w: default max cost %d", ErrInvalid, t.DefaultMaxCost)
	}
	switch t.Debug {
	case "off", "statistics", "draw searches":
	default:
		return fmt.Errorf("%w: debug mode %q", ErrInvalid, t.Debug)
	}
	return nil
}

func (t Think) Floor() time.Duration { return time.Duration(t.FloorMs) * time.Millisecond }

func (t Think) Min() time.Duration { return time.Duration(t.MinMs) * time.Millisecond }

func (t Think) Max() time.Duration { return time.Duration(t.MaxMs) * time.Millisecond }

func (w Worker) IdleDelay() time.Duration { return time.Duration(w.IdleDelayMs) * time.Millisecond }
