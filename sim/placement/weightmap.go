// Package placement decides which physical bank each newly created KV cache
// entry occupies. It holds the weight residency map derived from observed
// operations and the pluggable placement policies that consume it.
package placement

import (
	"github.com/apat9/KVC-PIM/sim/dram"
	"github.com/apat9/KVC-PIM/sim/trace"
)

// WeightMap records which banks hold static weight data: bank id → set of
// address signatures observed in that bank. Insertion is idempotent.
type WeightMap map[int]map[uint64]struct{}

// Update inserts a signature for a bank. Inserting the same (bank,
// signature) pair twice leaves the map unchanged.
func (m WeightMap) Update(bank int, sig uint64) {
	if m[bank] == nil {
		m[bank] = make(map[uint64]struct{})
	}
	m[bank][sig] = struct{}{}
}

// Count returns the number of distinct weight signatures recorded for a
// bank.
func (m WeightMap) Count(bank int) int {
	return len(m[bank])
}

// Signature derives a same-location proxy from the row and column
// components of an address vector. Collisions are acceptable: they only
// over-count conflicts, which is the conservative direction.
func Signature(vec dram.AddressVector, rowLevel, colLevel int) uint64 {
	var row, col uint64
	if rowLevel >= 0 && rowLevel < len(vec) {
		row = uint64(vec[rowLevel])
	}
	if colLevel >= 0 && colLevel < len(vec) {
		col = uint64(vec[colLevel])
	}
	return (row&0xFFFFFFFF)<<16 | (col & 0xFFFF)
}

// DefaultSyntheticSignatureCount is the per-bank signature count the
// builder synthesizes when Write evidence exists but no signature could be
// derived from it.
const DefaultSyntheticSignatureCount = 4

// MapBuilder derives a WeightMap from an operation stream.
type MapBuilder struct {
	Hierarchy *dram.Hierarchy

	// SyntheticSignatureCount is the number of signatures synthesized per
	// Write-receiving bank when the primary scan comes up empty.
	SyntheticSignatureCount int
}

// NewMapBuilder creates a builder with the default synthetic signature
// count.
func NewMapBuilder(h *dram.Hierarchy) *MapBuilder {
	return &MapBuilder{
		Hierarchy:               h,
		SyntheticSignatureCount: DefaultSyntheticSignatureCount,
	}
}

// Scan builds a WeightMap from an operation stream. Only Write-kind
// operations count as weight evidence: weights are written once and never
// by the KV path. If no signatures could be derived but Writes were
// observed, every bank that received a Write is treated as fully
// weight-resident with SyntheticSignatureCount synthesized signatures, so
// the placement policies are never starved of evidence. A stream with no
// Writes at all yields an empty map.
func (b *MapBuilder) Scan(ops []trace.Operation) WeightMap {
	weights := make(WeightMap)
	rowLevel := b.Hierarchy.LevelIndex(dram.LevelRow)
	colLevel := b.Hierarchy.LevelIndex(dram.LevelColumn)
	totalBanks := b.Hierarchy.TotalBanks()

	writeBanks := make(map[int]struct{})
	for _, op := range ops {
		if op.Kind != trace.Write {
			continue
		}
		bank := b.Hierarchy.EncodeBank(op.Addr)
		if bank < 0 || bank >= totalBanks {
			continue
		}
		writeBanks[bank] = struct{}{}
		if rowLevel < len(op.Addr) {
			weights.Update(bank, Signature(op.Addr, rowLevel, colLevel))
		}
	}

	if len(weights) == 0 && len(writeBanks) > 0 {
		for bank := range writeBanks {
			for i := 0; i < b.SyntheticSignatureCount; i++ {
				weights.Update(bank, uint64(i))
			}
		}
	}

	return weights
}
