package cpu

import "errors"

// Collaborator contracts. The processor owns timing; collaborators are plain
// state holders, called from inside the machine cycle that accesses them.

// Memory is the untimed address-space collaborator. Unmapped reads return
// 0x00, unmapped or read-only writes are dropped, and multi-byte reads
// truncate at the end of the address space. The timed facet lives on the
// Processor, which emits the bus cycles before calling through.
type Memory interface {
	Size() int
	ReadByte(addr uint16) uint8
	ReadBytes(addr uint16, n int) []uint8
	ReadWord(addr uint16) uint16
	WriteByte(addr uint16, v uint8)
	WriteBytes(addr uint16, data []uint8)
	WriteWord(addr uint16, v uint16)
	ClearWritable()
}

// Ports is the I/O collaborator: 256 addresses, each optionally bound to
// host callbacks. Reads from disconnected ports see the open bus (0xFF);
// writes to disconnected ports are discarded.
type Ports interface {
	In(port uint8) uint8
	Out(port uint8, v uint8)
	SignalRead(port uint8)
	SignalWrite(port uint8)
}

// Clock is the tick source. WaitForNextTick advances exactly one T-state,
// blocking as long as the implementation's pacing requires. Ticks is the
// monotonic T-state counter.
type Clock interface {
	WaitForNextTick()
	Ticks() uint64
	Rate() float64
}

// InterruptSource supplies data-bus bytes during IM0 and IM2 acknowledge
// cycles. For IM0 it is called for up to four instruction bytes; for IM2 it
// supplies the low byte of the vector table entry.
type InterruptSource func() uint8

// Hooks is the optional set of host callbacks. Nil fields cost nothing.
type Hooks struct {
	BeforeExecute          func(k *Package)
	AfterExecute           func(r Result)
	OnHalt                 func()
	OnStop                 func()
	OnBreakpoint           func(k *Package)
	BeforeInsertWaitCycles func(count int)
}

var (
	// ErrMemoryNotInitialised is returned by Step when the processor has no
	// memory bank bound.
	ErrMemoryNotInitialised = errors.New("memory not initialised")

	// ErrNoInterruptCallback is returned when an IM0 or IM2 interrupt is
	// acknowledged with no InterruptSource installed.
	ErrNoInterruptCallback = errors.New("interrupt raised with no data bus callback")
)
