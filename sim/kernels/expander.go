// Package kernels holds the boundary to kernel expansion: turning a
// high-level kernel description into the concrete memory operations its
// execution would issue.
package kernels

import (
	"strconv"
	"strings"

	"github.com/apat9/KVC-PIM/sim/dram"
	"github.com/apat9/KVC-PIM/sim/trace"
)

// Expander turns a kernel definition into a concrete operation sequence.
// An empty result is valid: a kernel may describe pure configuration.
type Expander interface {
	Expand(def trace.KernelDefinition) ([]trace.Operation, error)
}

// BodyExpander is the built-in expander: body lines whose first token is a
// dialect opcode become operations with the same address-vector field
// shape; all other description lines (problem sizes, loop orders) are
// ignored. It stands in for the external code generator, which emits its
// operations in exactly this form.
type BodyExpander struct{}

// Expand implements Expander.
func (BodyExpander) Expand(def trace.KernelDefinition) ([]trace.Operation, error) {
	var ops []trace.Operation
	for _, line := range def.Body {
		if len(line) < 2 {
			continue
		}
		kind, ok := bodyOpcodes[line[0]]
		if !ok {
			continue
		}
		addr, ok := parseBodyAddr(line[1])
		if !ok {
			continue
		}
		ops = append(ops, trace.Operation{Kind: kind, Addr: addr, Kernel: -1})
	}
	return ops, nil
}

var bodyOpcodes = map[string]trace.OpKind{
	"R":  trace.Read,
	"W":  trace.Write,
	"C":  trace.Compute,
	"SR": trace.SubarrayRead,
	"SW": trace.SubarrayWrite,
	"BR": trace.BankRead,
	"BW": trace.BankWrite,
}

func parseBodyAddr(s string) (dram.AddressVector, bool) {
	parts := strings.Split(s, ",")
	vec := make(dram.AddressVector, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, false
		}
		vec = append(vec, v)
	}
	return vec, true
}
