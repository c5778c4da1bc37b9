package sim

import (
	"github.com/apat9/KVC-PIM/sim/dram"
	"github.com/apat9/KVC-PIM/sim/placement"
	"github.com/apat9/KVC-PIM/sim/trace"
)

// Default KV cache geometry. A token's cache block fits one row chunk, so
// each token step costs one operation per touched block.
const (
	DefaultKVBlockSize = 4096
	DefaultRowChunk    = 8192
)

// KVTraceGenerator emits the memory operations of autoregressive KV cache
// access: every token step reads all prior tokens' cache blocks and writes
// one new block, at banks chosen by the placement policy.
type KVTraceGenerator struct {
	hierarchy *dram.Hierarchy
	policy    placement.Policy

	blockSize int64
	rowChunk  int64
	rowLevel  int
	colLevel  int
}

// NewKVTraceGenerator wires a generator to a hierarchy and an initialized
// policy. Zero geometry values take the defaults.
func NewKVTraceGenerator(h *dram.Hierarchy, policy placement.Policy, blockSize, rowChunk int64) *KVTraceGenerator {
	if blockSize <= 0 {
		blockSize = DefaultKVBlockSize
	}
	if rowChunk <= 0 {
		rowChunk = DefaultRowChunk
	}
	return &KVTraceGenerator{
		hierarchy: h,
		policy:    policy,
		blockSize: blockSize,
		rowChunk:  rowChunk,
		rowLevel:  h.LevelIndex(dram.LevelRow),
		colLevel:  h.LevelIndex(dram.LevelColumn),
	}
}

// blockOps emits one operation per row chunk of a cache block resident in
// the given bank: the row component advances per chunk, the column
// component stays 0. A bank the codec rejects yields nothing.
func (g *KVTraceGenerator) blockOps(kind trace.OpKind, bank int) []trace.Operation {
	base := g.hierarchy.DecodeBank(bank)
	if base == nil {
		return nil
	}

	numRows := int((g.blockSize + g.rowChunk - 1) / g.rowChunk)
	ops := make([]trace.Operation, 0, numRows)
	for row := 0; row < numRows; row++ {
		addr := make(dram.AddressVector, len(base))
		copy(addr, base)
		addr[g.rowLevel] = int64(row)
		addr[g.colLevel] = 0
		ops = append(ops, trace.Operation{Kind: kind, Addr: addr, Kernel: -1})
	}
	return ops
}

// WriteOps allocates a bank for a new token and emits its cache-block
// writes.
func (g *KVTraceGenerator) WriteOps(tokenID int) []trace.Operation {
	bank := g.policy.Allocate(g.blockSize, tokenID)
	return g.blockOps(trace.Write, bank)
}

// ReadOps emits the cache-block reads for the given tokens in order. A
// token the policy has no record of is silently skipped rather than
// failing the run.
func (g *KVTraceGenerator) ReadOps(tokenIDs []int) []trace.Operation {
	var ops []trace.Operation
	for _, tokenID := range tokenIDs {
		bank, ok := g.policy.Lookup(tokenID)
		if !ok {
			continue
		}
		ops = append(ops, g.blockOps(trace.Read, bank)...)
	}
	return ops
}

// InferenceStep emits one full token step: reads of every prior token's
// block in increasing token order, then the current token's write.
func (g *KVTraceGenerator) InferenceStep(tokenID int) []trace.Operation {
	prior := make([]int, 0, tokenID)
	for i := 0; i < tokenID; i++ {
		prior = append(prior, i)
	}

	ops := g.ReadOps(prior)
	ops = append(ops, g.WriteOps(tokenID)...)
	return ops
}
