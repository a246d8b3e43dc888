// Package config loads cmd/r55vm's demo-host parameters from a YAML
// file: an authorized minter address (parsed but not used by cmd/r55vm),
// the gas limit demohost.Host reports, the log level, and
// where trace events are written so cmd/r55vm trace can load them back.
package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable r55vm checks for a config path
// when --config is not passed.
const EnvVar = "R55VM_CONFIG"

// Config is cmd/r55vm's full set of run parameters.
type Config struct {
	// AuthorizedMinter is parsed from the file, but no cmd/r55vm command
	// reads it: the demo uses its own fixed minter address.
	AuthorizedMinter common.Address `yaml:"authorized_minter"`

	// GasLimit is reported to every frame via bridge.Host.GasLimit. Zero
	// selects demohost.DefaultGasLimit.
	GasLimit uint64 `yaml:"gas_limit"`

	// LogLevel names a zap level ("debug", "info", "warn", "error"). Only
	// "debug" changes cmd/r55vm's logging; any other value keeps its
	// default logger.
	LogLevel string `yaml:"log_level"`

	// TraceSink is the file path cmd/r55vm writes recorded trace.Event
	// lines to, and the one the trace subcommand reads them back from.
	TraceSink string `yaml:"trace_sink"`
}

// Default returns a Config with LogLevel "info" and TraceSink
// "r55vm-trace.jsonl"; its other fields are zero, which every consumer
// treats as "use the package default" for that field.
func Default() Config {
	return Config{
		LogLevel:  "info",
		TraceSink: "r55vm-trace.jsonl",
	}
}

// rawConfig mirrors Config but carries AuthorizedMinter as a hex string:
// common.Address implements encoding.TextUnmarshaler, not yaml.v3's
// Unmarshaler interface, so yaml.Unmarshal can't decode a hex string
// straight into it.
type rawConfig struct {
	AuthorizedMinter string `yaml:"authorized_minter"`
	GasLimit         uint64 `yaml:"gas_limit"`
	LogLevel         string `yaml:"log_level"`
	TraceSink        string `yaml:"trace_sink"`
}

// Load reads and parses a YAML config file. A missing path is not an
// error — it returns Default() unchanged, since every field degrades to
// a sensible default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	raw := rawConfig{GasLimit: cfg.GasLimit, LogLevel: cfg.LogLevel, TraceSink: cfg.TraceSink}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.GasLimit = raw.GasLimit
	cfg.LogLevel = raw.LogLevel
	cfg.TraceSink = raw.TraceSink
	if raw.AuthorizedMinter != "" {
		if !common.IsHexAddress(raw.AuthorizedMinter) {
			return cfg, fmt.Errorf("config: authorized_minter %q is not a hex address", raw.AuthorizedMinter)
		}
		cfg.AuthorizedMinter = common.HexToAddress(raw.AuthorizedMinter)
	}
	return cfg, nil
}

// Resolve picks the config path: flagPath if set, else EnvVar, else "".
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvVar)
}
