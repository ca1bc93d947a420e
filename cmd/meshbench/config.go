package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/meshgo/hierarchy"
	"github.com/hupe1980/meshgo/mesh"
	"github.com/hupe1980/meshgo/snapshot"
	"gopkg.in/yaml.v3"
)

// Config is the benchmark configuration. Values from the YAML file are
// overridden by explicitly set flags.
type Config struct {
	Points       int    `yaml:"points"`
	Queries      int    `yaml:"queries"`
	Distribution string `yaml:"distribution"`
	Seed         int64  `yaml:"seed"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	Hierarchy HierarchyConfig `yaml:"hierarchy"`
	Shape     ShapeConfig     `yaml:"shape"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// HierarchyConfig mirrors hierarchy.Options.
type HierarchyConfig struct {
	Ratio     int    `yaml:"ratio"`
	MaxLevels int    `yaml:"max_levels"`
	Policy    string `yaml:"policy"`
}

// ShapeConfig controls the shape experiment.
type ShapeConfig struct {
	Trials  int `yaml:"trials"`
	Workers int `yaml:"workers"`
}

// SnapshotConfig selects where the run command saves its mesh.
type SnapshotConfig struct {
	// URI is one of file://dir, mem://, s3://bucket/prefix or
	// minio://endpoint/bucket/prefix. Empty disables saving.
	URI         string `yaml:"uri"`
	Name        string `yaml:"name"`
	Compression string `yaml:"compression"`
	Mode        string `yaml:"mode"`
	// RateLimit caps the transfer rate in bytes per second. 0 is unlimited.
	RateLimit int64 `yaml:"rate_limit"`
	// DynamoDBTable enables the version catalog for s3:// URIs.
	DynamoDBTable string `yaml:"dynamodb_table"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr serves /metrics while the command runs, e.g. ":9090".
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{
		Points:       100000,
		Queries:      10000,
		Distribution: "uniform",
		Seed:         4711,
		LogLevel:     "info",
		LogFormat:    "text",
		Hierarchy: HierarchyConfig{
			Ratio:     hierarchy.DefaultOptions.Ratio,
			MaxLevels: hierarchy.DefaultOptions.MaxLevels,
			Policy:    hierarchy.DefaultOptions.Policy.String(),
		},
		Shape: ShapeConfig{
			Trials:  8,
			Workers: 4,
		},
		Snapshot: SnapshotConfig{
			Name:        "meshbench.msh",
			Compression: snapshot.DefaultOptions.Compression.String(),
			Mode:        snapshot.DefaultOptions.Mode.String(),
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.Points < 0 || c.Queries < 0 {
		return fmt.Errorf("points and queries must not be negative")
	}
	if _, err := parsePolicy(c.Hierarchy.Policy); err != nil {
		return err
	}
	if _, err := parseMode(c.Snapshot.Mode); err != nil {
		return err
	}
	if _, err := snapshot.ParseCompression(c.Snapshot.Compression); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch c.Distribution {
	case "uniform", "clustered", "sphere", "grid":
	default:
		return fmt.Errorf("unknown distribution %q", c.Distribution)
	}
	if c.Shape.Trials < 1 {
		return fmt.Errorf("shape trials must be positive")
	}
	return nil
}

func parsePolicy(s string) (hierarchy.Policy, error) {
	switch strings.ToLower(s) {
	case "", hierarchy.FastLocation.String():
		return hierarchy.FastLocation, nil
	case hierarchy.CompactLocation.String():
		return hierarchy.CompactLocation, nil
	default:
		return 0, fmt.Errorf("unknown location policy %q", s)
	}
}

func parseMode(s string) (mesh.Mode, error) {
	switch strings.ToLower(s) {
	case "", mesh.Binary.String():
		return mesh.Binary, nil
	case mesh.Text.String():
		return mesh.Text, nil
	default:
		return 0, fmt.Errorf("unknown stream mode %q", s)
	}
}

// hierarchyOptions converts the config into hierarchy options.
func (c Config) hierarchyOptions(seed int64) func(o *hierarchy.Options) {
	policy, _ := parsePolicy(c.Hierarchy.Policy)
	return func(o *hierarchy.Options) {
		o.Ratio = c.Hierarchy.Ratio
		o.MaxLevels = c.Hierarchy.MaxLevels
		o.Policy = policy
		o.RandomSeed = &seed
		o.Triangulation.RandomSeed = &seed
	}
}

// snapshotOptions converts the config into snapshot options.
func (c Config) snapshotOptions() func(o *snapshot.Options) {
	mode, _ := parseMode(c.Snapshot.Mode)
	compression, _ := snapshot.ParseCompression(c.Snapshot.Compression)
	return func(o *snapshot.Options) {
		o.Mode = mode
		o.Compression = compression
	}
}
