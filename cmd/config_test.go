package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apat9/KVC-PIM/sim/dram"
)

func TestLoadExperimentConfig_ParsesHierarchyAndRunParameters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hierarchy:
  - {name: channel, count: 2}
  - {name: bank, count: 8}
  - {name: row, count: 4096}
  - {name: column, count: 64}
policy: contention-aware
tokens: 128
kernel_ops_per_token: 16
partition_count: 4
`), 0o644))

	cfg, err := LoadExperimentConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "contention-aware", cfg.Policy)
	assert.Equal(t, 128, cfg.Tokens)
	assert.Equal(t, 16, cfg.KernelOpsPerToken)
	assert.Equal(t, 4, cfg.PartitionCount)

	h, err := dram.NewHierarchy(cfg.Hierarchy)
	require.NoError(t, err)
	assert.Equal(t, 16, h.TotalBanks())
}

func TestLoadExperimentConfig_Errors(t *testing.T) {
	_, err := LoadExperimentConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("hierarchy: [not a mapping"), 0o644))
	_, err = LoadExperimentConfig(bad)
	assert.Error(t, err)
}

func TestDefaultHierarchy_IsValid(t *testing.T) {
	h, err := dram.NewHierarchy(DefaultHierarchy())
	require.NoError(t, err)
	assert.Equal(t, 16, h.TotalBanks())
}
