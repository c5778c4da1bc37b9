package trace

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apat9/KVC-PIM/sim/dram"
)

// ReadTraceFile parses a raw trace file into an ordered operation sequence
// and a kernel-id-indexed table of kernel definitions.
//
// Address-only lines are `<opcode> <v0,v1,...>`. Kernel bodies open with a
// kernel-name line (conv2d, gemm) and close with "end"; the body lines in
// between are kept verbatim as description tokens and the stream gets one
// KernelRef operation pointing at the collected definition.
//
// Any malformed line outside a kernel body is a configuration error: the
// run must abort before simulation starts.
func ReadTraceFile(path string) ([]Operation, []KernelDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace %s: %w", path, err)
	}
	defer file.Close()

	var (
		ops     []Operation
		kernels []KernelDefinition
		current *KernelDefinition
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch {
		case current != nil && fields[0] == "end":
			kernels = append(kernels, *current)
			current = nil
			ops = append(ops, Operation{Kind: KernelRef, Kernel: len(kernels) - 1})

		case current != nil:
			current.Body = append(current.Body, fields)

		case kernelNames[fields[0]]:
			current = &KernelDefinition{Name: fields[0]}

		default:
			kind, ok := opcodeTable[fields[0]]
			if !ok {
				return nil, nil, fmt.Errorf("trace %s:%d: unresolvable opcode %q", path, lineNo, fields[0])
			}
			if len(fields) < 2 {
				return nil, nil, fmt.Errorf("trace %s:%d: missing address vector", path, lineNo)
			}
			addr, err := parseAddrVec(fields[1])
			if err != nil {
				return nil, nil, fmt.Errorf("trace %s:%d: %w", path, lineNo, err)
			}
			ops = append(ops, Operation{Kind: kind, Addr: addr, Kernel: -1})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read trace %s: %w", path, err)
	}
	if current != nil {
		return nil, nil, fmt.Errorf("trace %s: kernel %q not closed by \"end\"", path, current.Name)
	}

	return ops, kernels, nil
}

// parseAddrVec parses a comma-separated address vector.
func parseAddrVec(s string) (dram.AddressVector, error) {
	parts := strings.Split(s, ",")
	vec := make(dram.AddressVector, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed address component %q", part)
		}
		vec = append(vec, v)
	}
	return vec, nil
}
