package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the on-disk project configuration loaded via --config. Every
// field has a default (see DefaultConfig) so an absent file is equivalent
// to an empty one.
type Config struct {
	// Target is the LLVM target triple stamped as a leading comment on
	// every emitted module.
	Target string `yaml:"target"`

	// ModuleName is reserved: it is read from the file as given, with no
	// validation, and the emitter does not consult it.
	ModuleName string `yaml:"moduleName"`

	// EmitDebugPrelude controls whether the printf/debug() prelude is
	// written ahead of user functions.
	EmitDebugPrelude bool `yaml:"emitDebugPrelude"`
}

const defaultTarget = "x86_64-unknown-linux-gnu"

// DefaultConfig is what an absent or empty --config file resolves to.
func DefaultConfig() Config {
	return Config{
		Target:           defaultTarget,
		EmitDebugPrelude: true,
	}
}

// LoadConfig reads and parses a YAML config file, layering it over
// DefaultConfig so a file that only sets one field leaves the rest at
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Target == "" {
		cfg.Target = defaultTarget
	}
	return cfg, nil
}

// EmitConfig adapts a Config into the narrower set of options the emitter
// itself needs.
func (c Config) EmitConfig() EmitConfig {
	return EmitConfig{TargetTriple: c.Target, EmitDebugPrelude: c.EmitDebugPrelude}
}
