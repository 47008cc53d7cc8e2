// Package topology implements the topology service placeholder daemon
// (spec.md §1, §6): a minimal process that tracks a fixed, YAML-
// configured set of regions/peers and answers a tiny fixed instruction
// set over the store's length-delimited framing. It is explicitly a
// stub — no region attachment, no MVCC semantics.
package topology

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RegionConfig names one region this topology service is aware of.
type RegionConfig struct {
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name"`
}

// Config is gridtopo's YAML configuration: the fixed set of known
// regions.
type Config struct {
	Regions []RegionConfig `yaml:"regions"`
}

// LoadConfig reads a topology config file. Unlike internal/config, a
// missing path is an error here: gridtopo has nothing to serve without
// a region list.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
