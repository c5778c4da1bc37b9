package dram

import "testing"

func testHierarchy(t *testing.T) *Hierarchy {
	t.Helper()
	h, err := NewHierarchy([]Level{
		{Name: LevelChannel, Count: 2},
		{Name: LevelRank, Count: 1},
		{Name: LevelBankGroup, Count: 2},
		{Name: LevelBank, Count: 4},
		{Name: LevelRow, Count: 1024},
		{Name: LevelColumn, Count: 64},
	})
	if err != nil {
		t.Fatalf("hierarchy should be valid: %v", err)
	}
	return h
}

func TestTotalBanks_ProductOfLevelsAtOrAboveBank(t *testing.T) {
	h := testHierarchy(t)
	if got := h.TotalBanks(); got != 16 {
		t.Fatalf("expected 16 banks (2*1*2*4), got %d", got)
	}
}

func TestDecodeBank_EncodeBank_RoundTripsEveryBank(t *testing.T) {
	// GIVEN a fixed hierarchy, every valid bank id must survive
	// decode-then-encode unchanged
	h := testHierarchy(t)
	for id := 0; id < h.TotalBanks(); id++ {
		vec := h.DecodeBank(id)
		if vec == nil {
			t.Fatalf("bank %d should decode", id)
		}
		if got := h.EncodeBank(vec); got != id {
			t.Errorf("bank %d round-tripped to %d via %v", id, got, vec)
		}
	}
}

func TestDecodeBank_ComponentsRespectRadix(t *testing.T) {
	h := testHierarchy(t)
	for id := 0; id < h.TotalBanks(); id++ {
		vec := h.DecodeBank(id)
		for i, c := range vec {
			if c < 0 || c >= int64(h.Radix(i)) {
				t.Fatalf("bank %d: component[%d]=%d outside radix %d", id, i, c, h.Radix(i))
			}
		}
	}
}

func TestDecodeBank_LeavesRowAndColumnZero(t *testing.T) {
	h := testHierarchy(t)
	vec := h.DecodeBank(13)
	rowLevel := h.LevelIndex(LevelRow)
	colLevel := h.LevelIndex(LevelColumn)
	if vec[rowLevel] != 0 || vec[colLevel] != 0 {
		t.Fatalf("row/column should be zero, got %v", vec)
	}
}

func TestDecodeBank_OutOfRangeReturnsNil(t *testing.T) {
	h := testHierarchy(t)
	if vec := h.DecodeBank(-1); vec != nil {
		t.Errorf("negative bank id should decode to nil, got %v", vec)
	}
	if vec := h.DecodeBank(h.TotalBanks()); vec != nil {
		t.Errorf("bank id == totalBanks should decode to nil, got %v", vec)
	}
}

func TestEncodeUpTo_ShortVectorTreatsMissingComponentsAsZero(t *testing.T) {
	h := testHierarchy(t)
	// A vector truncated at the bankgroup level still encodes: the bank
	// digit is zero.
	vec := AddressVector{1, 0, 1}
	full := AddressVector{1, 0, 1, 0, 0, 0}
	bankLevel := h.LevelIndex(LevelBank)
	if got, want := h.EncodeUpTo(vec, bankLevel), h.EncodeBank(full); got != want {
		t.Fatalf("short vector encoded to %d, full vector to %d", got, want)
	}
}

func TestNewHierarchy_RejectsMissingOrInvalidLevels(t *testing.T) {
	if _, err := NewHierarchy([]Level{{Name: LevelChannel, Count: 1}}); err == nil {
		t.Error("hierarchy without a bank level should be rejected")
	}
	if _, err := NewHierarchy([]Level{
		{Name: LevelChannel, Count: 1},
		{Name: LevelBank, Count: 0},
		{Name: LevelRow, Count: 16},
		{Name: LevelColumn, Count: 4},
	}); err == nil {
		t.Error("zero-count level should be rejected")
	}
}
