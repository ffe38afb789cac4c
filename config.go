package bramble

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a UI.
type Config struct {
	// LineHeightScale multiplies the font size to get the default line
	// height of text without an explicit LineHeight.
	LineHeightScale float64 `yaml:"lineHeightScale,omitempty"`

	// MaxLayoutPasses bounds the measure passes used to settle an Auto
	// parent whose children are sized in percent.
	MaxLayoutPasses int `yaml:"maxLayoutPasses,omitempty"`

	// ParallelExtract extracts the root's child subtrees concurrently.
	ParallelExtract bool `yaml:"parallelExtract,omitempty"`

	// Debug prints per-frame stats to stderr and enables tree warnings.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns the configuration a UI uses when none is given.
func DefaultConfig() Config {
	return Config{
		LineHeightScale: DefaultLineHeightScale,
		MaxLayoutPasses: MaxLayoutPasses,
	}
}

// LoadConfig parses YAML over DefaultConfig. Absent fields keep their
// defaults.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("bramble: failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config from path. A missing file yields
// DefaultConfig.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("bramble: failed to read config: %w", err)
	}
	return LoadConfig(data)
}

func (c Config) validate() error {
	if c.LineHeightScale <= 0 {
		return fmt.Errorf("bramble: config lineHeightScale must be positive, got %v", c.LineHeightScale)
	}
	if c.MaxLayoutPasses < 1 {
		return fmt.Errorf("bramble: config maxLayoutPasses must be at least 1, got %d", c.MaxLayoutPasses)
	}
	return nil
}

// normalized fills zero fields with defaults.
func (c Config) normalized() Config {
	if c.LineHeightScale <= 0 {
		c.LineHeightScale = DefaultLineHeightScale
	}
	if c.MaxLayoutPasses < 1 {
		c.MaxLayoutPasses = MaxLayoutPasses
	}
	return c
}
