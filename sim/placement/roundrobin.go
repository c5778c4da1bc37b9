package placement

import "github.com/apat9/KVC-PIM/sim/dram"

// RoundRobin is the baseline policy: it cycles through banks 0..N-1 and
// ignores the weight map entirely. It exists to demonstrate the conflicts
// the aware policies avoid.
type RoundRobin struct {
	baseState
	next int
}

// Init implements Policy.
func (p *RoundRobin) Init(h *dram.Hierarchy, totalBanks int, weights WeightMap) {
	p.baseState.init(h, totalBanks, weights)
	p.next = 0
}

// SetWeightMap implements Policy.
func (p *RoundRobin) SetWeightMap(weights WeightMap) {
	p.weights = weights
}

// Allocate implements Policy: the k-th allocation lands in bank k mod N.
func (p *RoundRobin) Allocate(sizeHint int64, tokenID int) int {
	if bank, ok := p.lookup(tokenID); ok {
		return bank
	}
	bank := p.next
	p.next = (p.next + 1) % p.totalBanks
	p.record(tokenID, bank, p.HasConflict(bank))
	return bank
}

// Lookup implements Policy.
func (p *RoundRobin) Lookup(tokenID int) (int, bool) {
	return p.lookup(tokenID)
}

// HasConflict implements Policy: true iff the bank holds any weight
// signatures.
func (p *RoundRobin) HasConflict(bankID int) bool {
	return p.weights.Count(bankID) > 0
}

// Stats implements Policy.
func (p *RoundRobin) Stats() Stats {
	return Stats{
		StatTotalAllocations: p.totalAllocations,
		StatTotalConflicts:   p.totalConflicts,
	}
}

// ResetStats implements Policy.
func (p *RoundRobin) ResetStats() {
	p.resetStats()
}
