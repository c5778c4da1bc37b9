// Package sim assembles KV-cache-aware memory operation streams for replay
// by a memory-hierarchy simulator.
//
// # Reading Guide
//
// Start with these files to understand the assembly flow:
//   - pipeline.go: the three phases (kernel pre-expansion, weight-map
//     construction, interleaved generation)
//   - generator.go: per-token KV read/write emission
//   - driver.go: the one-operation-per-tick drain loop
//
// # Architecture
//
// The sim package orchestrates; the algorithmic pieces live in
// sub-packages:
//   - sim/dram: hierarchy organization and the bank-id/address codec
//   - sim/trace: the operation model and the raw/weight trace readers
//   - sim/placement: the weight residency map and placement policies
//   - sim/conflict: weight/KV bank co-residency tracking
//   - sim/kernels: kernel-body expansion
//   - sim/recording: SQLite stats sink
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - placement.Policy: pick a bank for each token
//   - kernels.Expander: turn a kernel definition into concrete operations
//   - MemorySystem: accept or reject one operation per tick
//   - recording.Recorder: persist run-end counters
package sim
