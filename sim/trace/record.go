// Package trace defines the memory-operation stream model and the readers
// for the line-oriented trace dialect: single-letter opcodes with
// comma-separated address vectors, and free-form kernel bodies bounded by a
// kernel-name line and an "end" line.
package trace

import "github.com/apat9/KVC-PIM/sim/dram"

// OpKind identifies the kind of a memory operation.
type OpKind int

const (
	// Read is a plain memory read (dialect opcode "R").
	Read OpKind = iota
	// Write is a plain memory write (dialect opcode "W").
	Write
	// Compute is an in-memory compute step (dialect opcode "C").
	Compute
	// SubarrayRead is a subarray-level read (dialect opcode "SR").
	SubarrayRead
	// SubarrayWrite is a subarray-level write (dialect opcode "SW").
	SubarrayWrite
	// BankRead is a bank-level read (dialect opcode "BR").
	BankRead
	// BankWrite is a bank-level write (dialect opcode "BW").
	BankWrite
	// KernelRef references a kernel definition by id; it is replaced by the
	// kernel's expansion during pipeline Phase 1.
	KernelRef
)

var opKindNames = map[OpKind]string{
	Read:          "read",
	Write:         "write",
	Compute:       "compute",
	SubarrayRead:  "subarray-read",
	SubarrayWrite: "subarray-write",
	BankRead:      "bank-read",
	BankWrite:     "bank-write",
	KernelRef:     "kernel",
}

// String returns the long-form operation name used in logs and dialect
// documentation.
func (k OpKind) String() string {
	if name, ok := opKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// opcodeTable maps dialect opcodes to operation kinds.
var opcodeTable = map[string]OpKind{
	"R":  Read,
	"W":  Write,
	"C":  Compute,
	"SR": SubarrayRead,
	"SW": SubarrayWrite,
	"BR": BankRead,
	"BW": BankWrite,
}

// kernelNames are the dialect tokens that open a kernel body.
var kernelNames = map[string]bool{
	"conv2d": true,
	"gemm":   true,
}

// Operation is one element of the memory-operation stream. Kernel holds the
// kernel definition id for KernelRef operations and is -1 otherwise.
type Operation struct {
	Kind   OpKind
	Addr   dram.AddressVector
	Kernel int
}

// KernelDefinition is an ordered sequence of opaque description token
// lines, indexed by kernel id. The reader owns it; only the expander
// interprets it.
type KernelDefinition struct {
	Name string
	Body [][]string
}
