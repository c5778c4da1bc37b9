package dram

// AddressVector is a structured address: one non-negative component per
// hierarchy level, outermost first. Invariant: component[i] < radix[i].
type AddressVector []int64

// DecodeBank converts a global bank id into an AddressVector. The bank
// level is the least-significant digit of the mixed-radix decomposition;
// the remaining digits distribute over the levels above it up to channel.
// Levels below bank (row, column) are left zero for the caller to fill.
//
// Returns nil when bankID is outside [0, TotalBanks()).
func (h *Hierarchy) DecodeBank(bankID int) AddressVector {
	if bankID < 0 || bankID >= h.TotalBanks() {
		return nil
	}

	vec := make(AddressVector, h.NumLevels())
	id := bankID
	for lvl := h.LevelIndex(LevelBank); lvl >= 0; lvl-- {
		vec[lvl] = int64(id % h.Radix(lvl))
		id /= h.Radix(lvl)
	}
	return vec
}

// EncodeBank folds the components at or above the bank level back into a
// global bank id. Exact inverse of DecodeBank over the valid range.
func (h *Hierarchy) EncodeBank(vec AddressVector) int {
	return h.EncodeUpTo(vec, h.LevelIndex(LevelBank))
}

// EncodeUpTo composes the mixed-radix integer over levels [0, level], with
// the level itself as the least-significant digit. Components beyond the
// vector's length are treated as zero, so short (bank-only) vectors encode
// without padding.
func (h *Hierarchy) EncodeUpTo(vec AddressVector, level int) int {
	id := 0
	mult := 1
	for lvl := level; lvl >= 0; lvl-- {
		if lvl < len(vec) {
			id += int(vec[lvl]) * mult
		}
		mult *= h.Radix(lvl)
	}
	return id
}
