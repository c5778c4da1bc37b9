package placement

import "github.com/apat9/KVC-PIM/sim/dram"

// BankPartitioning reserves a contiguous bank range exclusively for KV
// traffic and cycles within it. The weight layout is expected to avoid the
// reserved range, so allocations there should be conflict-free; any weight
// signature observed inside the range still counts as a conflict.
type BankPartitioning struct {
	baseState

	start int
	count int
	next  int
}

// Init implements Policy. A zero count defaults to a quarter of the banks;
// both start and count are clamped so the range stays inside
// [0, totalBanks).
func (p *BankPartitioning) Init(h *dram.Hierarchy, totalBanks int, weights WeightMap) {
	p.baseState.init(h, totalBanks, weights)

	if p.count <= 0 {
		p.count = totalBanks / 4
	}
	if p.count < 1 {
		p.count = 1
	}
	if p.start < 0 {
		p.start = 0
	}
	if p.start >= totalBanks {
		p.start = totalBanks - 1
	}
	if p.start+p.count > totalBanks {
		p.count = totalBanks - p.start
	}

	p.next = p.start
}

// SetWeightMap implements Policy.
func (p *BankPartitioning) SetWeightMap(weights WeightMap) {
	p.weights = weights
}

// Allocate implements Policy: round-robin within [start, start+count).
func (p *BankPartitioning) Allocate(sizeHint int64, tokenID int) int {
	if bank, ok := p.lookup(tokenID); ok {
		return bank
	}
	bank := p.next
	p.next = p.start + (p.next-p.start+1)%p.count
	p.record(tokenID, bank, p.HasConflict(bank))
	return bank
}

// Lookup implements Policy.
func (p *BankPartitioning) Lookup(tokenID int) (int, bool) {
	return p.lookup(tokenID)
}

// HasConflict implements Policy: only banks inside the reserved range can
// conflict, and only when weights leaked into them.
func (p *BankPartitioning) HasConflict(bankID int) bool {
	if bankID < p.start || bankID >= p.start+p.count {
		return false
	}
	return p.weights.Count(bankID) > 0
}

// Stats implements Policy.
func (p *BankPartitioning) Stats() Stats {
	return Stats{
		StatTotalAllocations: p.totalAllocations,
		StatTotalConflicts:   p.totalConflicts,
		"reserved_banks":     int64(p.count),
	}
}

// ResetStats implements Policy.
func (p *BankPartitioning) ResetStats() {
	p.resetStats()
}
