package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/apat9/KVC-PIM/sim/dram"
)

// ExperimentConfig is the YAML experiment description: the memory hierarchy
// and defaults for the run parameters. CLI flags override file values.
type ExperimentConfig struct {
	Hierarchy []dram.Level `yaml:"hierarchy"`

	Policy            string `yaml:"policy"`
	Tokens            int    `yaml:"tokens"`
	KernelOpsPerToken int    `yaml:"kernel_ops_per_token"`
	WeightTrace       string `yaml:"weight_trace"`
	PartitionStart    int    `yaml:"partition_start"`
	PartitionCount    int    `yaml:"partition_count"`
	KVCapPerBank      int    `yaml:"kv_cap_per_bank"`
}

// DefaultHierarchy is the organization used when no experiment file
// provides one: a single-channel device with 16 banks.
func DefaultHierarchy() []dram.Level {
	return []dram.Level{
		{Name: dram.LevelChannel, Count: 1},
		{Name: dram.LevelRank, Count: 1},
		{Name: dram.LevelBankGroup, Count: 1},
		{Name: dram.LevelBank, Count: 16},
		{Name: dram.LevelRow, Count: 16384},
		{Name: dram.LevelColumn, Count: 1024},
	}
}

// LoadExperimentConfig reads and parses a YAML experiment file.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment config %s: %w", path, err)
	}
	var cfg ExperimentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse experiment config %s: %w", path, err)
	}
	return &cfg, nil
}
