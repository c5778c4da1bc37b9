package placement

import "github.com/apat9/KVC-PIM/sim/dram"

// DefaultKVCapPerBank bounds per-bank KV allocations under the refined
// contention-aware policy when no cap is configured.
const DefaultKVCapPerBank = 16

// ContentionAware places each token in the bank with the least weight
// mass. Ties are broken by a rotating index held as instance state, so an
// empty weight map degenerates to round-robin cycling and independent runs
// never share tie-break position.
//
// The refined variant (policy name "contention-aware-v2") weighs weight
// count double against the dynamic per-bank allocation count, caps per-bank
// KV density, and falls back to the globally least-loaded bank when the cap
// blocks every candidate.
type ContentionAware struct {
	baseState

	refined bool
	kvCap   int

	weightCount []int
	allocCount  []int64
	tieBreak    int

	avgWeightDensity int64
	capFallbacks     int64
}

// Init implements Policy.
func (p *ContentionAware) Init(h *dram.Hierarchy, totalBanks int, weights WeightMap) {
	p.baseState.init(h, totalBanks, weights)
	if p.refined && p.kvCap <= 0 {
		p.kvCap = DefaultKVCapPerBank
	}
	p.allocCount = make([]int64, totalBanks)
	p.tieBreak = 0
	p.capFallbacks = 0
	p.rebuildWeightCounts()
}

// SetWeightMap implements Policy.
func (p *ContentionAware) SetWeightMap(weights WeightMap) {
	p.weights = weights
	p.rebuildWeightCounts()
}

func (p *ContentionAware) rebuildWeightCounts() {
	p.weightCount = make([]int, p.totalBanks)
	total := 0
	for bank := range p.weights {
		if bank >= 0 && bank < p.totalBanks {
			p.weightCount[bank] = p.weights.Count(bank)
			total += p.weightCount[bank]
		}
	}
	if p.totalBanks > 0 {
		p.avgWeightDensity = int64(total / p.totalBanks)
	}
}

// Allocate implements Policy.
func (p *ContentionAware) Allocate(sizeHint int64, tokenID int) int {
	if bank, ok := p.lookup(tokenID); ok {
		return bank
	}

	var bank int
	if p.refined {
		bank = p.pickRefined()
	} else {
		bank = p.pickMinWeight()
	}

	p.allocCount[bank]++
	p.record(tokenID, bank, p.HasConflict(bank))
	return bank
}

// pickMinWeight selects the minimum-weight bank, rotating through ties.
func (p *ContentionAware) pickMinWeight() int {
	minScore := p.weightCount[0]
	for bank := 1; bank < p.totalBanks; bank++ {
		if p.weightCount[bank] < minScore {
			minScore = p.weightCount[bank]
		}
	}

	var tied []int
	for bank := 0; bank < p.totalBanks; bank++ {
		if p.weightCount[bank] == minScore {
			tied = append(tied, bank)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	bank := tied[p.tieBreak%len(tied)]
	p.tieBreak = (p.tieBreak + 1) % p.totalBanks
	return bank
}

// pickRefined scores candidates below the KV density cap and falls back to
// the globally least-loaded bank when the cap blocks everything.
func (p *ContentionAware) pickRefined() int {
	minScore := int64(-1)
	var tied []int
	for bank := 0; bank < p.totalBanks; bank++ {
		if p.allocCount[bank] >= int64(p.kvCap) {
			continue
		}
		score := 2*int64(p.weightCount[bank]) + p.allocCount[bank]
		switch {
		case minScore < 0 || score < minScore:
			minScore = score
			tied = tied[:0]
			tied = append(tied, bank)
		case score == minScore:
			tied = append(tied, bank)
		}
	}

	if len(tied) == 0 {
		// Every bank is at the cap: take the globally least-loaded one.
		p.capFallbacks++
		best := 0
		for bank := 1; bank < p.totalBanks; bank++ {
			if p.allocCount[bank] < p.allocCount[best] {
				best = bank
			}
		}
		return best
	}
	if len(tied) == 1 {
		return tied[0]
	}

	bank := tied[p.tieBreak%len(tied)]
	p.tieBreak = (p.tieBreak + 1) % p.totalBanks
	return bank
}

// Lookup implements Policy.
func (p *ContentionAware) Lookup(tokenID int) (int, bool) {
	return p.lookup(tokenID)
}

// HasConflict implements Policy.
func (p *ContentionAware) HasConflict(bankID int) bool {
	if bankID < 0 || bankID >= p.totalBanks {
		return false
	}
	return p.weightCount[bankID] > 0
}

// Stats implements Policy.
func (p *ContentionAware) Stats() Stats {
	stats := Stats{
		StatTotalAllocations: p.totalAllocations,
		StatTotalConflicts:   p.totalConflicts,
		"avg_weight_density": p.avgWeightDensity,
	}
	if p.refined {
		stats["cap_fallbacks"] = p.capFallbacks
	}
	return stats
}

// ResetStats implements Policy.
func (p *ContentionAware) ResetStats() {
	p.resetStats()
	p.capFallbacks = 0
}
