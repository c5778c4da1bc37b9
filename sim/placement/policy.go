package placement

import (
	"fmt"

	"github.com/apat9/KVC-PIM/sim/dram"
)

// Stats is a set of named counters a policy reports at run end.
type Stats map[string]int64

// Common counter names shared by all policies.
const (
	StatTotalAllocations = "total_allocations"
	StatTotalConflicts   = "total_conflicts"
)

// Policy assigns each token's KV cache entry to a bank.
//
// Allocate never fails: unresolved ranking always falls back to bank 0 or
// the least-loaded bank. A conflict is counted at allocation time iff
// HasConflict holds for the chosen bank at that moment; conflicts that
// materialize later are the conflict tracker's business, not the policy's.
type Policy interface {
	// Init installs architecture information and the initial weight map.
	Init(h *dram.Hierarchy, totalBanks int, weights WeightMap)

	// SetWeightMap replaces the weight map without re-initializing.
	SetWeightMap(weights WeightMap)

	// Allocate picks a bank for a new token. Allocating an already-placed
	// token returns its recorded bank and changes nothing.
	Allocate(sizeHint int64, tokenID int) int

	// Lookup returns the bank recorded for a token.
	Lookup(tokenID int) (int, bool)

	// HasConflict reports whether placing KV data in the bank collides with
	// static weight residency.
	HasConflict(bankID int) bool

	Stats() Stats
	ResetStats()
}

// Config carries the policy parameters settable from configuration.
type Config struct {
	// PartitionStart and PartitionCount bound the KV-reserved bank range
	// for the bank-partition policy. Zero count means totalBanks/4.
	PartitionStart int
	PartitionCount int

	// KVCapPerBank caps per-bank KV allocations for contention-aware-v2.
	// Zero means DefaultKVCapPerBank.
	KVCapPerBank int
}

// Policy names accepted by NewPolicy.
const (
	PolicyRoundRobin        = "round-robin"
	PolicyBankPartition     = "bank-partition"
	PolicyContentionAware   = "contention-aware"
	PolicyContentionAwareV2 = "contention-aware-v2"
	PolicySmartLocality     = "smart-locality"
)

var validPolicies = map[string]bool{
	"":                      true, // empty defaults to round-robin
	PolicyRoundRobin:        true,
	PolicyBankPartition:     true,
	PolicyContentionAware:   true,
	PolicyContentionAwareV2: true,
	PolicySmartLocality:     true,
}

// IsValidPolicy reports whether name is a recognized placement policy.
func IsValidPolicy(name string) bool {
	return validPolicies[name]
}

// NewPolicy creates a placement policy by name. Empty string defaults to
// round-robin. The returned policy still needs Init before use.
func NewPolicy(name string, cfg Config) (Policy, error) {
	switch name {
	case "", PolicyRoundRobin:
		return &RoundRobin{}, nil
	case PolicyBankPartition:
		return &BankPartitioning{start: cfg.PartitionStart, count: cfg.PartitionCount}, nil
	case PolicyContentionAware:
		return &ContentionAware{}, nil
	case PolicyContentionAwareV2:
		return &ContentionAware{refined: true, kvCap: cfg.KVCapPerBank}, nil
	case PolicySmartLocality:
		return &SmartLocality{}, nil
	default:
		return nil, fmt.Errorf("unknown placement policy %q", name)
	}
}

// allocationTable maps token id → bank id for one run. Each token is
// allocated at most once; the owning policy enforces that by returning the
// existing entry on repeat allocation.
type allocationTable map[int]int

// baseState carries the bookkeeping every variant shares.
type baseState struct {
	hierarchy  *dram.Hierarchy
	totalBanks int
	weights    WeightMap
	table      allocationTable

	totalAllocations int64
	totalConflicts   int64
}

func (b *baseState) init(h *dram.Hierarchy, totalBanks int, weights WeightMap) {
	b.hierarchy = h
	b.totalBanks = totalBanks
	b.weights = weights
	b.table = make(allocationTable)
	b.totalAllocations = 0
	b.totalConflicts = 0
}

func (b *baseState) lookup(tokenID int) (int, bool) {
	bank, ok := b.table[tokenID]
	return bank, ok
}

// record books an allocation and the point-in-time conflict check.
func (b *baseState) record(tokenID, bank int, conflict bool) {
	b.table[tokenID] = bank
	b.totalAllocations++
	if conflict {
		b.totalConflicts++
	}
}

func (b *baseState) resetStats() {
	b.totalAllocations = 0
	b.totalConflicts = 0
}
