// Package cpu implements a cycle-accurate Zilog Z80 core: the full opcode
// map including the undocumented instructions and flag bits, the machine
// cycle timing model, and the interrupt acknowledge state machine. Memory,
// ports and the clock are collaborators supplied by the host.
package cpu

import (
	"sync"
	"sync/atomic"

	"github.com/dmcewing/zem80/pkg/bits"
)

// RunState is the engine state machine: Stopped -> Running <-> Halted, and
// any state can drop back to Stopped.
type RunState uint8

const (
	Stopped RunState = iota
	Running
	Halted
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	}
	return "stopped"
}

// Processor is the instruction-cycle engine plus the register file it owns.
// It is single-threaded: one goroutine runs the loop, and external input
// (interrupt latches, wait states, Stop) arrives through atomic latches
// sampled at machine-cycle boundaries. Use Suspend/Resume to poke registers
// or memory from outside while the engine runs.
type Processor struct {
	reg   Registers
	mem   Memory
	ports Ports
	clk   Clock
	ints  interrupts

	Hooks Hooks

	mu      sync.Mutex // held for each engine iteration; Suspend takes it
	state   RunState
	running atomic.Bool

	pendingWaits         atomic.Int32
	waitsThisInstruction int
	repeat               bool

	endOnHalt bool
	stackTop  uint16

	bpMu        sync.Mutex
	breakpoints map[uint16]struct{}
}

// New binds a processor to its collaborators. The memory bank may be nil
// until Bind is called; running without one fails with
// ErrMemoryNotInitialised.
func New(mem Memory, ports Ports, clk Clock) *Processor {
	return &Processor{
		mem:         mem,
		ports:       ports,
		clk:         clk,
		stackTop:    DefaultStackTop,
		breakpoints: map[uint16]struct{}{},
	}
}

// Bind attaches (or replaces) the memory bank after construction, the
// two-phase initialization hosts use when the bank needs the processor first.
func (p *Processor) Bind(mem Memory) {
	p.mem = mem
}

// Reg exposes the register file. The engine owns it while Running; hosts
// must Suspend first.
func (p *Processor) Reg() *Registers { return &p.reg }

// Mem returns the bound memory collaborator.
func (p *Processor) Mem() Memory { return p.mem }

// TStates returns the monotonic T-state counter.
func (p *Processor) TStates() uint64 { return p.clk.Ticks() }

// State reports the engine state.
func (p *Processor) State() RunState { return p.state }

// SetStackTop overrides where SP lands on reset (default 0xFFFF).
func (p *Processor) SetStackTop(v uint16) { p.stackTop = v }

// SetEndOnHalt makes HALT stop the engine instead of idling on synthesized
// NOPs until an interrupt.
func (p *Processor) SetEndOnHalt(v bool) { p.endOnHalt = v }

// AddWaitCycles requests n wait states; the machine-cycle timer inserts them
// at the next read or write data phase. Safe from any thread.
func (p *Processor) AddWaitCycles(n int) {
	p.pendingWaits.Add(int32(n))
}

// AddBreakpoint registers a PC to raise OnBreakpoint for.
func (p *Processor) AddBreakpoint(addr uint16) {
	p.bpMu.Lock()
	p.breakpoints[addr] = struct{}{}
	p.bpMu.Unlock()
}

// RemoveBreakpoint drops a previously registered PC.
func (p *Processor) RemoveBreakpoint(addr uint16) {
	p.bpMu.Lock()
	delete(p.breakpoints, addr)
	p.bpMu.Unlock()
}

func (p *Processor) atBreakpoint(addr uint16) bool {
	p.bpMu.Lock()
	_, hit := p.breakpoints[addr]
	p.bpMu.Unlock()
	return hit
}

// Suspend parks the engine at the next instruction boundary so the host can
// safely touch registers and memory. Resume releases it.
func (p *Processor) Suspend() { p.mu.Lock() }
func (p *Processor) Resume()  { p.mu.Unlock() }

// Reset clears writable memory, zeroes the register file (SP excepted, which
// takes the configured stack top) and leaves the engine stopped.
func (p *Processor) Reset() {
	if p.mem != nil {
		p.mem.ClearWritable()
	}
	p.reg.Reset(p.stackTop)
	p.ints.reset()
	p.setState(Stopped)
	p.running.Store(false)
}

// Start moves the engine to Running. It does not execute anything; drive
// the loop with Step or RunUntilStopped.
func (p *Processor) Start() {
	p.setState(Running)
	p.running.Store(true)
}

// Stop requests a cooperative stop; the engine observes the latch at the
// next instruction boundary. Called from a hook on the engine thread, it
// lets the current instruction finish before RunUntilStopped returns.
func (p *Processor) Stop() {
	p.running.Store(false)
}

// Halt puts the CPU in the Halted state, as the HALT instruction does.
func (p *Processor) Halt() {
	p.setState(Halted)
}

func (p *Processor) setState(s RunState) {
	if p.state == s {
		return
	}
	p.state = s
	switch s {
	case Halted:
		if p.Hooks.OnHalt != nil {
			p.Hooks.OnHalt()
		}
	case Stopped:
		if p.Hooks.OnStop != nil {
			p.Hooks.OnStop()
		}
	}
}

func (p *Processor) stop() {
	p.running.Store(false)
	p.setState(Stopped)
}

// RunUntilStopped drives the engine until Stop, end-on-halt or decode
// underrun. It may be called on the host thread or a dedicated goroutine.
func (p *Processor) RunUntilStopped() error {
	p.Start()
	for p.running.Load() {
		if err := p.Step(); err != nil {
			p.stop()
			return err
		}
	}
	p.setState(Stopped)
	return nil
}

// Step runs one engine iteration: fetch, decode, execute, then the NMI and
// INT acknowledge checks. A halted CPU steps a synthesized NOP so T-states
// and refresh keep advancing.
func (p *Processor) Step() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mem == nil {
		return ErrMemoryNotInitialised
	}

	switch p.state {
	case Stopped:
		p.setState(Running)
		p.running.Store(true)
	case Halted:
		if p.endOnHalt {
			p.stop()
			return nil
		}
		p.fetchCycle()
	}

	if p.state == Running {
		for {
			buf := p.mem.ReadBytes(p.reg.PC, 4)
			k, skip, ok := decode(buf, p.reg.PC)
			if !ok {
				// Decode underrun at the top of memory: stop, not an error.
				p.stop()
				return nil
			}
			if skip {
				p.fetchCycle()
				p.reg.PC++
				continue
			}
			p.execute(&k)
			break
		}
	}

	if p.ints.nmiLatch.Swap(false) {
		p.acknowledgeNMI()
	}

	if p.ints.eiShadow {
		// The instruction after EI must run before an INT is accepted.
		p.ints.eiShadow = false
	} else if p.ints.intLatch.Load() && p.ints.iff1 {
		p.ints.intLatch.Store(false)
		if err := p.acknowledgeINT(); err != nil {
			return err
		}
	}

	return nil
}

// execute emits the front-end timing for a decoded package, advances PC,
// latches the indexed effective address into WZ, and runs the microcode.
func (p *Processor) execute(k *Package) {
	inst := k.Inst

	if p.Hooks.OnBreakpoint != nil && p.atBreakpoint(k.Addr) {
		p.Hooks.OnBreakpoint(k)
	}
	if p.Hooks.BeforeExecute != nil {
		p.Hooks.BeforeExecute(k)
	}

	p.waitsThisInstruction = 0
	for i := 0; i < inst.fetches(); i++ {
		p.fetchCycle()
	}
	switch inst.Prefix {
	case PrefixDDCB, PrefixFDCB:
		// Displacement and final opcode arrive as memory reads.
		p.memReadCycle(k.Addr + 2)
		p.memReadCycle(k.Addr + 3)
	default:
		operandAt := k.Addr + uint16(inst.Size-inst.Operand.bytes())
		for i := 0; i < inst.Operand.bytes(); i++ {
			p.memReadCycle(operandAt + uint16(i))
		}
	}

	p.reg.PC = k.Addr + uint16(inst.Size)

	// WZ defaults to the indexed effective address, or zero until the
	// microcode writes its documented value.
	if ip := inst.Prefix.indexPrefix(); inst.mem && (ip == PrefixDD || ip == PrefixFD) {
		p.reg.WZ = bits.Displace(p.reg.indexWord(ip), uint8(k.Disp))
	} else {
		p.reg.WZ = 0
	}

	p.repeat = false
	inst.exec(p, k)

	if inst.Looping && p.repeat {
		p.reg.PC = k.Addr
	}
	p.repeat = false

	if p.Hooks.AfterExecute != nil {
		p.Hooks.AfterExecute(Result{Pkg: k, Flags: p.reg.F, WaitCycles: p.waitsThisInstruction})
	}
}
