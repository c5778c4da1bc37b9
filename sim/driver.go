package sim

import "github.com/apat9/KVC-PIM/sim/trace"

// MemorySystem is the consuming simulator's boundary: it is offered one
// operation per tick and accepts or rejects it.
type MemorySystem interface {
	Send(op trace.Operation) bool
}

// Driver drains an assembled operation stream into a MemorySystem one
// operation per discrete tick. Strict ordering holds: operation i+1 is
// never offered before operation i is accepted, and a rejection retries the
// same operation on the next tick with no state mutation.
type Driver struct {
	stream []trace.Operation
	mem    MemorySystem

	idx   int
	ticks uint64
}

// NewDriver creates a driver over a fully assembled stream.
func NewDriver(stream []trace.Operation, mem MemorySystem) *Driver {
	return &Driver{stream: stream, mem: mem}
}

// Tick offers the current operation once. Returns true while work remains.
func (d *Driver) Tick() bool {
	if d.Finished() {
		return false
	}
	d.ticks++
	if d.mem.Send(d.stream[d.idx]) {
		d.idx++
	}
	return !d.Finished()
}

// Finished reports whether the whole stream has been accepted.
func (d *Driver) Finished() bool {
	return d.idx >= len(d.stream)
}

// Ticks returns the number of ticks consumed so far.
func (d *Driver) Ticks() uint64 {
	return d.ticks
}

// Run ticks until the stream is drained and returns the tick count.
func (d *Driver) Run() uint64 {
	for d.Tick() {
	}
	return d.ticks
}

// SinkMemory is an always-accepting MemorySystem for runs that only study
// the assembled stream itself.
type SinkMemory struct {
	Accepted int
}

// Send implements MemorySystem.
func (m *SinkMemory) Send(op trace.Operation) bool {
	m.Accepted++
	return true
}
