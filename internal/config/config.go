// Package config loads gridstore's process configuration, grounded on
// the teacher's coordinator config shape: a small YAML document with a
// DefaultConfig baseline and a LoadConfig override path.
package config

import (
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/c2h5oh/datasize"
)

// Config is the configuration file format loaded by gridmgr, which reads
// only RegionSize from it; gridowner takes its settings from flags and
// gridtopo uses topology.LoadConfig.
type Config struct {
	// Listen is a request/reply listen address; no binary reads it.
	Listen string `yaml:"listen"`

	// RegionPath is the filesystem path (or /dev/shm name, when Shared
	// is set) of the backing MVCC region.
	RegionPath string `yaml:"region_path"`

	// LogPath is the backing append-only log's path.
	LogPath string `yaml:"log_path"`

	// RegionSize is the MVCC region's fixed byte size.
	RegionSize datasize.ByteSize `yaml:"region_size"`

	// LogCapacity is the append-only log's fixed entry count.
	LogCapacity uint64 `yaml:"log_capacity"`

	// Shared selects POSIX shared memory (/dev/shm) instead of a plain
	// file-backed mapping.
	Shared bool `yaml:"shared"`

	// LogLevel is the logging subsystem's level.
	LogLevel zapcore.Level `yaml:"log_level"`
}

// DefaultConfig returns the baseline configuration that LoadConfig
// overlays a loaded file onto.
func DefaultConfig() Config {
	return Config{
		Listen:      "127.0.0.1:7831",
		RegionPath:  "gridstore.region",
		LogPath:     "gridstore.log",
		RegionSize:  64 * datasize.MB,
		LogCapacity: 1 << 16,
		Shared:      false,
		LogLevel:    zapcore.InfoLevel,
	}
}

// LoadConfig reads a YAML config file at path, overlaying it onto
// DefaultConfig. A missing file is not an error: callers proceed with
// defaults, matching the teacher's optional-config-file convention.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
