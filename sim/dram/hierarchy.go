// Package dram models the memory-hierarchy organization consumed by the
// placement engine: ordered levels with per-level radix counts, and the
// mixed-radix codec between flat global bank ids and structured addresses.
//
// The package is the single source of truth for the global bank id
// encoding: a GlobalBankId spans every level at or above "bank" (channel,
// rank, bankgroup, bank folded into one integer). No other component may
// derive bank ids on its own.
package dram

import "fmt"

// Canonical level names looked up by the rest of the system.
const (
	LevelChannel   = "channel"
	LevelRank      = "rank"
	LevelBankGroup = "bankgroup"
	LevelBank      = "bank"
	LevelRow       = "row"
	LevelColumn    = "column"
)

// Level is one step of the memory hierarchy: a name and how many instances
// of it exist under one instance of the level above.
type Level struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Hierarchy is the ordered organization of the memory system, outermost
// level first (channel) down to column. It is built once per run and handed
// to the codec, the weight-map builder, and the placement policy as a
// read-only reference.
type Hierarchy struct {
	Levels []Level
}

// NewHierarchy validates and wraps an ordered level list.
func NewHierarchy(levels []Level) (*Hierarchy, error) {
	h := &Hierarchy{Levels: levels}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks that every level has a positive count and that the levels
// the generation path depends on are present.
func (h *Hierarchy) Validate() error {
	if len(h.Levels) == 0 {
		return fmt.Errorf("hierarchy has no levels")
	}
	for _, lvl := range h.Levels {
		if lvl.Count < 1 {
			return fmt.Errorf("hierarchy level %q has invalid count %d", lvl.Name, lvl.Count)
		}
	}
	for _, name := range []string{LevelChannel, LevelBank, LevelRow, LevelColumn} {
		if h.LevelIndex(name) < 0 {
			return fmt.Errorf("hierarchy is missing required level %q", name)
		}
	}
	if h.LevelIndex(LevelChannel) > h.LevelIndex(LevelBank) {
		return fmt.Errorf("hierarchy level %q must be above %q", LevelChannel, LevelBank)
	}
	if h.LevelIndex(LevelBank) > h.LevelIndex(LevelRow) {
		return fmt.Errorf("hierarchy level %q must be above %q", LevelBank, LevelRow)
	}
	return nil
}

// NumLevels returns the number of hierarchy levels. AddressVectors produced
// against this hierarchy have exactly this many components.
func (h *Hierarchy) NumLevels() int {
	return len(h.Levels)
}

// LevelIndex returns the index of the named level, or -1 if absent.
func (h *Hierarchy) LevelIndex(name string) int {
	for i, lvl := range h.Levels {
		if lvl.Name == name {
			return i
		}
	}
	return -1
}

// Radix returns the instance count of the level at index i.
func (h *Hierarchy) Radix(i int) int {
	return h.Levels[i].Count
}

// TotalBanks returns the number of distinct global bank ids: the product of
// the counts of every level at or above "bank".
func (h *Hierarchy) TotalBanks() int {
	bankLevel := h.LevelIndex(LevelBank)
	total := 1
	for i := 0; i <= bankLevel; i++ {
		total *= h.Levels[i].Count
	}
	return total
}
