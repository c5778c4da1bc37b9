package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Field positions inside the comma-separated address vector of an external
// weight trace. The second component carries the bank id and the fifth, when
// present, the address signature.
const (
	weightTraceBankField = 1
	weightTraceSigField  = 4
)

// ReadWeightTrace extracts per-bank weight address signatures from an
// external weight trace written in the same dialect. Only lines beginning
// "W" or "R" are considered. Individual lines that fail to parse are
// skipped: the loader is best-effort, and an incomplete map only weakens
// placement decisions rather than invalidating the run. Banks outside
// [0, numBanks) are dropped.
func ReadWeightTrace(path string, numBanks int) (map[int]map[uint64]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weight trace %s: %w", path, err)
	}
	defer file.Close()

	weights := make(map[int]map[uint64]struct{})

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(fields) < 2 {
			continue
		}
		if fields[0] != "W" && fields[0] != "R" {
			continue
		}

		parts := strings.Split(fields[1], ",")
		if len(parts) <= weightTraceBankField {
			continue
		}
		bank, err := strconv.Atoi(parts[weightTraceBankField])
		if err != nil || bank < 0 || bank >= numBanks {
			continue
		}

		var sig uint64
		if len(parts) > weightTraceSigField {
			if v, err := strconv.ParseUint(parts[weightTraceSigField], 10, 64); err == nil {
				sig = v
			}
		}

		if weights[bank] == nil {
			weights[bank] = make(map[uint64]struct{})
		}
		weights[bank][sig] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read weight trace %s: %w", path, err)
	}

	return weights, nil
}
