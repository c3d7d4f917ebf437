package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

// Config is the on-disk run configuration
type Config struct {
	Deliminators string   `yaml:"deliminators"`
	NoiseWords   []string `yaml:"noise_words"`
	Workers      int      `yaml:"workers"`
	Stemmer      Stemmer  `yaml:"stemmer"`
	Segment      Segment  `yaml:"segment"`
	Store        Store    `yaml:"store"`
}

// Stemmer selects the stemming algorithm
type Stemmer struct {
	Algorithm string `yaml:"algorithm"` // porter, snowball, none
	Language  string `yaml:"language"`  // snowball only
	CacheSize int    `yaml:"cache_size"`
}

// Segment configures first-pass word segmentation
type Segment struct {
	Level      int    `yaml:"level"`      // 1..3
	Device     int    `yaml:"device"`     // -1 = CPU
	Dictionary string `yaml:"dictionary"` // embedded dictionary name or file path
}

// Store configures optional run persistence
type Store struct {
	Path string `yaml:"path"` // SQLite file; empty disables
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Stemmer: Stemmer{
			Algorithm: "porter",
			Language:  "english",
			CacheSize: 4096,
		},
		Segment: Segment{
			Level:      1,
			Device:     -1,
			Dictionary: "zh_t",
		},
	}
}

// Load reads a YAML config file on top of Default. Relative deliminator
// and store paths are resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", path, err, internalerr.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	cfg.Deliminators = resolve(dir, cfg.Deliminators)
	cfg.Store.Path = resolve(dir, cfg.Store.Path)

	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d: %w", c.Workers, internalerr.ErrInvalidConfig)
	}
	if c.Stemmer.CacheSize < 0 {
		return fmt.Errorf("stemmer.cache_size must be >= 0, got %d: %w", c.Stemmer.CacheSize, internalerr.ErrInvalidConfig)
	}
	switch c.Stemmer.Algorithm {
	case "", "porter", "snowball", "none":
	default:
		return fmt.Errorf("unknown stemmer.algorithm %q: %w", c.Stemmer.Algorithm, internalerr.ErrInvalidConfig)
	}
	if c.Segment.Level < 1 || c.Segment.Level > 3 {
		return fmt.Errorf("segment.level must be 1..3, got %d: %w", c.Segment.Level, internalerr.ErrInvalidConfig)
	}
	if c.Segment.Device < -1 {
		return fmt.Errorf("segment.device must be >= -1, got %d: %w", c.Segment.Device, internalerr.ErrInvalidConfig)
	}
	return nil
}
