package setup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of the SimpleSetup options.
//
//	title: demo
//	headless: false
//	tick_rate: 60
//	profiling: false
//	dot_file: scene.dot
//	data_directories:
//	  - assets
type Config struct {
	Title           string   `yaml:"title"`
	Headless        bool     `yaml:"headless"`
	TickRate        float64  `yaml:"tick_rate"`
	Profiling       bool     `yaml:"profiling"`
	DotFile         string   `yaml:"dot_file"`
	DataDirectories []string `yaml:"data_directories"`
}

// LoadConfig reads and parses a YAML config file.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the parsed config
//   - error: a read or parse error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read setup config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses YAML. Unknown keys are rejected and an empty document yields the zero Config.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed config
//   - error: a parse error
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse setup config: %w", err)
	}
	if cfg.TickRate < 0 {
		return Config{}, fmt.Errorf("parse setup config: tick_rate must not be negative, got %v", cfg.TickRate)
	}
	return cfg, nil
}

// Options converts the config to builder options. Zero values keep the defaults.
//
// Returns:
//   - []SimpleSetupBuilderOption: the options
func (c Config) Options() []SimpleSetupBuilderOption {
	opts := []SimpleSetupBuilderOption{WithHeadless(c.Headless), WithProfiling(c.Profiling)}
	if c.TickRate > 0 {
		opts = append(opts, WithTickRate(c.TickRate))
	}
	if c.DotFile != "" {
		opts = append(opts, WithDotFile(c.DotFile))
	}
	if len(c.DataDirectories) > 0 {
		opts = append(opts, WithDataDirectories(c.DataDirectories...))
	}
	return opts
}
