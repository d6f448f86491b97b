// Package config defines the virtual machine's resource limits. Limits
// are populated from an optional YAML file and then overridden by
// environment variables, in that order.
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Limits bounds the virtual machine's value stack depth, call-frame depth,
// and total dispatched-instruction budget, so a runaway or pathological
// program (unbounded recursion, an infinite loop) traps instead of
// exhausting process memory or hanging the host.
type Limits struct {
	MaxStack  int `yaml:"max_stack" env:"TOYLANG_MAX_STACK"`
	MaxFrames int `yaml:"max_frames" env:"TOYLANG_MAX_FRAMES"`
	MaxSteps  int `yaml:"max_steps" env:"TOYLANG_MAX_STEPS"`
}

// DefaultLimits returns the limits used when no config file or environment
// override is present.
func DefaultLimits() Limits {
	return Limits{
		MaxStack:  1 << 16,
		MaxFrames: 1 << 12,
		MaxSteps:  1 << 24,
	}
}

// Load builds a Limits starting from DefaultLimits, applying path's YAML
// contents if path is non-empty, then applying any TOYLANG_MAX_*
// environment variables over the result.
func Load(path string) (Limits, error) {
	lim := DefaultLimits()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Limits{}, err
		}
		if err := yaml.Unmarshal(b, &lim); err != nil {
			return Limits{}, err
		}
	}
	if err := env.Parse(&lim); err != nil {
		return Limits{}, err
	}
	return lim, nil
}
