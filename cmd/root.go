package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apat9/KVC-PIM/sim"
	"github.com/apat9/KVC-PIM/sim/dram"
	"github.com/apat9/KVC-PIM/sim/kernels"
	"github.com/apat9/KVC-PIM/sim/placement"
	"github.com/apat9/KVC-PIM/sim/recording"
	"github.com/apat9/KVC-PIM/sim/trace"
)

var (
	// CLI flags for the trace frontend
	tracePath         string // Path to the raw instruction trace
	configPath        string // Path to the YAML experiment config
	logLevel          string // Log verbosity level
	enableKV          bool   // Whether KV cache traffic is modeled
	policyName        string // Placement policy name
	tokenCount        int    // Number of autoregressive token steps
	kernelOpsPerToken int    // Expanded-kernel window length per token
	weightTracePath   string // Optional external weight trace
	partitionStart    int    // First bank of the KV-reserved range
	partitionCount    int    // Size of the KV-reserved range
	kvCapPerBank      int    // Per-bank KV density cap (contention-aware-v2)
	maxExpandedOps    int    // Safety ceiling on kernel expansion
	statsDBPath       string // SQLite stats database path ("" disables)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "kvcpim",
	Short: "KV-cache-aware PIM trace frontend",
}

// runCmd assembles the operation stream and drains it through the memory
// system boundary, reporting placement and conflict statistics at the end.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assemble and replay a KV-aware memory trace",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if tracePath == "" {
			logrus.Fatalf("No trace path provided. Exiting.")
		}

		cfg := &ExperimentConfig{Hierarchy: DefaultHierarchy()}
		if configPath != "" {
			cfg, err = LoadExperimentConfig(configPath)
			if err != nil {
				logrus.Fatalf("Unable to load experiment config: %v", err)
			}
			if len(cfg.Hierarchy) == 0 {
				cfg.Hierarchy = DefaultHierarchy()
			}
		}
		applyFlagOverrides(cmd, cfg)

		hierarchy, err := dram.NewHierarchy(cfg.Hierarchy)
		if err != nil {
			logrus.Fatalf("Invalid hierarchy: %v", err)
		}

		policy, err := placement.NewPolicy(cfg.Policy, placement.Config{
			PartitionStart: cfg.PartitionStart,
			PartitionCount: cfg.PartitionCount,
			KVCapPerBank:   cfg.KVCapPerBank,
		})
		if err != nil {
			logrus.Fatalf("Invalid policy: %v", err)
		}

		// Open the stats database before any heavy work so a bad path
		// aborts the run up front instead of discarding a finished one.
		var rec recording.Recorder
		if statsDBPath != "" {
			rec, err = recording.New(statsDBPath)
			if err != nil {
				logrus.Fatalf("Unable to open stats database: %v", err)
			}
		}

		logrus.Infof("Loading trace file %s ...", tracePath)
		rawOps, kernelDefs, err := trace.ReadTraceFile(tracePath)
		if err != nil {
			logrus.Fatalf("Unable to read trace: %v", err)
		}
		logrus.Infof("Loaded %d operations, %d kernels.", len(rawOps), len(kernelDefs))

		pipeline := sim.NewPipeline(hierarchy, policy, kernels.BodyExpander{}, sim.PipelineConfig{
			EnableKV:          enableKV,
			TokenCount:        cfg.Tokens,
			KernelOpsPerToken: cfg.KernelOpsPerToken,
			MaxExpandedOps:    maxExpandedOps,
			WeightTracePath:   cfg.WeightTrace,
		})

		startTime := time.Now()
		stream, err := pipeline.Assemble(rawOps, kernelDefs)
		if err != nil {
			logrus.Fatalf("Trace assembly failed: %v", err)
		}

		mem := &sim.SinkMemory{}
		driver := sim.NewDriver(stream, mem)
		ticks := driver.Run()
		logrus.Infof("Drained %d operations in %d ticks (%.2fs wall)",
			mem.Accepted, ticks, time.Since(startTime).Seconds())

		sim.EmitStats(recording.NewRunID(), policy, pipeline.Tracker(), rec)
	},
}

// applyFlagOverrides lets explicitly set CLI flags win over file values.
func applyFlagOverrides(cmd *cobra.Command, cfg *ExperimentConfig) {
	if cmd.Flags().Changed("policy") || cfg.Policy == "" {
		cfg.Policy = policyName
	}
	if cmd.Flags().Changed("tokens") || cfg.Tokens == 0 {
		cfg.Tokens = tokenCount
	}
	if cmd.Flags().Changed("kernel-ops-per-token") {
		cfg.KernelOpsPerToken = kernelOpsPerToken
	}
	if cmd.Flags().Changed("weight-trace") {
		cfg.WeightTrace = weightTracePath
	}
	if cmd.Flags().Changed("partition-start") {
		cfg.PartitionStart = partitionStart
	}
	if cmd.Flags().Changed("partition-count") {
		cfg.PartitionCount = partitionCount
	}
	if cmd.Flags().Changed("kv-cap-per-bank") {
		cfg.KVCapPerBank = kvCapPerBank
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Path to the raw instruction trace file")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML experiment config")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().BoolVar(&enableKV, "enable-kv", false, "Model KV cache traffic")
	runCmd.Flags().StringVar(&policyName, "policy", placement.PolicyRoundRobin, "Placement policy (round-robin, bank-partition, contention-aware, contention-aware-v2, smart-locality)")
	runCmd.Flags().IntVar(&tokenCount, "tokens", 512, "Number of autoregressive token steps")
	runCmd.Flags().IntVar(&kernelOpsPerToken, "kernel-ops-per-token", 0, "Expanded-kernel operations interleaved per token (0 = pure KV traffic)")
	runCmd.Flags().StringVar(&weightTracePath, "weight-trace", "", "External weight trace supplying static weight residency")
	runCmd.Flags().IntVar(&partitionStart, "partition-start", 0, "First bank of the KV-reserved range (bank-partition)")
	runCmd.Flags().IntVar(&partitionCount, "partition-count", 0, "Size of the KV-reserved range (bank-partition, 0 = totalBanks/4)")
	runCmd.Flags().IntVar(&kvCapPerBank, "kv-cap-per-bank", 0, "Per-bank KV allocation cap (contention-aware-v2, 0 = default)")
	runCmd.Flags().IntVar(&maxExpandedOps, "max-expanded-ops", sim.DefaultMaxExpandedOps, "Safety ceiling on expanded kernel operations")
	runCmd.Flags().StringVar(&statsDBPath, "stats-db", "", "SQLite stats database path (empty disables recording)")

	rootCmd.AddCommand(runCmd)
}
