package placement

import "github.com/apat9/KVC-PIM/sim/dram"

// SmartLocality scoring constants. A bank whose weight activity sits in the
// middle band gets a bonus: it is warm enough that its rows are likely open
// yet not so loaded that KV traffic would serialize behind weights.
const (
	localityWeightFactor = 100
	localityAllocFactor  = 10
	localityBonus        = 25
	localityBandLow      = 20
	localityBandHigh     = 80
)

// SmartLocality restricts candidates to banks with no weight residency and
// scores them by allocation pressure, with a locality bonus for moderate
// weight activity. When every bank holds weights it considers all of them.
// First-seen wins ties.
type SmartLocality struct {
	baseState

	weightCount []int
	allocCount  []int64
	maxWeight   int
}

// Init implements Policy.
func (p *SmartLocality) Init(h *dram.Hierarchy, totalBanks int, weights WeightMap) {
	p.baseState.init(h, totalBanks, weights)
	p.allocCount = make([]int64, totalBanks)
	p.rebuildWeightCounts()
}

// SetWeightMap implements Policy.
func (p *SmartLocality) SetWeightMap(weights WeightMap) {
	p.weights = weights
	p.rebuildWeightCounts()
}

func (p *SmartLocality) rebuildWeightCounts() {
	p.weightCount = make([]int, p.totalBanks)
	p.maxWeight = 0
	for bank := range p.weights {
		if bank >= 0 && bank < p.totalBanks {
			p.weightCount[bank] = p.weights.Count(bank)
			if p.weightCount[bank] > p.maxWeight {
				p.maxWeight = p.weightCount[bank]
			}
		}
	}
}

// Allocate implements Policy.
func (p *SmartLocality) Allocate(sizeHint int64, tokenID int) int {
	if bank, ok := p.lookup(tokenID); ok {
		return bank
	}

	candidates := make([]int, 0, p.totalBanks)
	for bank := 0; bank < p.totalBanks; bank++ {
		if p.weightCount[bank] == 0 {
			candidates = append(candidates, bank)
		}
	}
	if len(candidates) == 0 {
		for bank := 0; bank < p.totalBanks; bank++ {
			candidates = append(candidates, bank)
		}
	}

	best := candidates[0]
	bestScore := p.score(best)
	for _, bank := range candidates[1:] {
		if s := p.score(bank); s < bestScore {
			bestScore = s
			best = bank
		}
	}

	p.allocCount[best]++
	p.record(tokenID, best, p.HasConflict(best))
	return best
}

// score computes the SmartLocality rank for a bank; lower is better.
func (p *SmartLocality) score(bank int) int64 {
	score := int64(p.weightCount[bank])*localityWeightFactor +
		p.allocCount[bank]*localityAllocFactor

	if p.maxWeight > 0 {
		normalized := p.weightCount[bank] * 100 / p.maxWeight
		if normalized >= localityBandLow && normalized <= localityBandHigh {
			score -= localityBonus
		}
	}
	return score
}

// Lookup implements Policy.
func (p *SmartLocality) Lookup(tokenID int) (int, bool) {
	return p.lookup(tokenID)
}

// HasConflict implements Policy.
func (p *SmartLocality) HasConflict(bankID int) bool {
	if bankID < 0 || bankID >= p.totalBanks {
		return false
	}
	return p.weightCount[bankID] > 0
}

// Stats implements Policy.
func (p *SmartLocality) Stats() Stats {
	return Stats{
		StatTotalAllocations: p.totalAllocations,
		StatTotalConflicts:   p.totalConflicts,
	}
}

// ResetStats implements Policy.
func (p *SmartLocality) ResetStats() {
	p.resetStats()
}
