// Package config loads the octopy CLI's optional TOML configuration
// file. The assembler core never imports this package: it stays a pure
// function of source text and seeded tokenizer state, and the CLI is
// solely responsible for turning a config file into that seed.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the CLI's defaults. Every field has a zero-config default
// supplied by DefaultConfig, so a missing or partial file is never an
// error.
type Config struct {
	Output struct {
		ROMSuffix    string `toml:"rom_suffix"`
		SymbolSuffix string `toml:"symbol_suffix"`
		MapSuffix    string `toml:"map_suffix"`
		AlwaysMap    bool   `toml:"always_source_map"`
	} `toml:"output"`

	Keypad struct {
		// Layout remaps the sixteen OCTO_KEY_* seed constants in
		// keyNames order; empty means use the standard identity layout.
		Layout []int `toml:"layout"`
	} `toml:"keypad"`

	Diagnostics struct {
		Verbose bool `toml:"verbose"`
		// WarningsAreErrors is reserved for a future warnings pass; the
		// assembler currently only ever reports hard errors.
		WarningsAreErrors bool `toml:"warnings_are_errors"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns the configuration the CLI uses when no file is
// found.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Output.ROMSuffix = ".ch8"
	cfg.Output.SymbolSuffix = ".sym"
	cfg.Output.MapSuffix = ".map"
	cfg.Output.AlwaysMap = false
	cfg.Keypad.Layout = nil
	cfg.Diagnostics.Verbose = false
	cfg.Diagnostics.WarningsAreErrors = false
	return cfg
}

// Load reads path and overlays it onto DefaultConfig. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
