// Package conflict tracks concurrent residency of weight and KV traffic in
// the same bank. A conflict here is a structural proxy for hardware access
// serialization, not a timing statement.
package conflict

// Direction tags which traffic class found the other already resident.
type Direction string

const (
	// WeightBlockedByKV marks a weight operation landing in a bank with
	// live KV residency.
	WeightBlockedByKV Direction = "weight_kv"
	// KVBlockedByWeight marks a KV operation landing in a bank with live
	// weight residency.
	KVBlockedByWeight Direction = "kv_weight"
)

// Event is one recorded conflict occurrence. The log is append-only and
// cleared only by Reset.
type Event struct {
	Bank      int
	Cycle     uint64
	Direction Direction
}

// Tracker records weight/KV co-residency per bank. Out-of-range bank ids
// are silently ignored on every method: the generation path stays
// error-free. Not safe for concurrent use; a single owner holds it for the
// run's duration.
type Tracker struct {
	numBanks int

	weightUse map[int]map[uint64]struct{}
	kvUse     map[int]map[uint64]struct{}

	totalConflicts  int64
	weightBlocked   int64
	kvBlocked       int64
	conflictHistory []Event
}

// NewTracker creates a tracker for numBanks banks.
func NewTracker(numBanks int) *Tracker {
	return &Tracker{
		numBanks:  numBanks,
		weightUse: make(map[int]map[uint64]struct{}),
		kvUse:     make(map[int]map[uint64]struct{}),
	}
}

func (t *Tracker) inRange(bank int) bool {
	return bank >= 0 && bank < t.numBanks
}

// RegisterWeightOp records a weight operation touching a bank. If KV data
// is live in the same bank, a WeightBlockedByKV event is logged.
func (t *Tracker) RegisterWeightOp(bank int, addr uint64, cycle uint64) {
	if !t.inRange(bank) {
		return
	}
	if t.weightUse[bank] == nil {
		t.weightUse[bank] = make(map[uint64]struct{})
	}
	t.weightUse[bank][addr] = struct{}{}

	if len(t.kvUse[bank]) > 0 {
		t.totalConflicts++
		t.weightBlocked++
		t.conflictHistory = append(t.conflictHistory, Event{Bank: bank, Cycle: cycle, Direction: WeightBlockedByKV})
	}
}

// RegisterKVOp records a KV cache operation touching a bank. If weight data
// is live in the same bank, a KVBlockedByWeight event is logged.
func (t *Tracker) RegisterKVOp(bank int, addr uint64, cycle uint64) {
	if !t.inRange(bank) {
		return
	}
	if t.kvUse[bank] == nil {
		t.kvUse[bank] = make(map[uint64]struct{})
	}
	t.kvUse[bank][addr] = struct{}{}

	if len(t.weightUse[bank]) > 0 {
		t.totalConflicts++
		t.kvBlocked++
		t.conflictHistory = append(t.conflictHistory, Event{Bank: bank, Cycle: cycle, Direction: KVBlockedByWeight})
	}
}

// CompleteWeightOp removes an address from the bank's weight set.
// Historical counters are untouched.
func (t *Tracker) CompleteWeightOp(bank int, addr uint64) {
	if !t.inRange(bank) {
		return
	}
	delete(t.weightUse[bank], addr)
}

// CompleteKVOp removes an address from the bank's KV set. Historical
// counters are untouched.
func (t *Tracker) CompleteKVOp(bank int, addr uint64) {
	if !t.inRange(bank) {
		return
	}
	delete(t.kvUse[bank], addr)
}

// HasPotentialConflict reports whether a bank currently holds both weight
// and KV residency.
func (t *Tracker) HasPotentialConflict(bank int) bool {
	if !t.inRange(bank) {
		return false
	}
	return len(t.weightUse[bank]) > 0 && len(t.kvUse[bank]) > 0
}

// Stats returns the aggregate conflict counters.
func (t *Tracker) Stats() map[string]int64 {
	return map[string]int64{
		"total_conflicts":     t.totalConflicts,
		"weight_kv_conflicts": t.weightBlocked,
		"kv_weight_conflicts": t.kvBlocked,
	}
}

// Events returns the conflict history in occurrence order.
func (t *Tracker) Events() []Event {
	return t.conflictHistory
}

// Reset clears counters and the event log. The in-use residency sets
// survive: they describe current occupancy, not history.
func (t *Tracker) Reset() {
	t.totalConflicts = 0
	t.weightBlocked = 0
	t.kvBlocked = 0
	t.conflictHistory = nil
}
