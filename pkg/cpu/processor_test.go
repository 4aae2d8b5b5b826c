package cpu

import (
	"errors"
	"testing"

	"github.com/dmcewing/zem80/pkg/clock"
	"github.com/dmcewing/zem80/pkg/memory"
	"github.com/dmcewing/zem80/pkg/ports"
)

// newTestCPU wires a flat RAM bank with the program at address zero, an
// empty port bank and a free-running clock. Registers start cleared with SP
// at the stack top, like a freshly reset part.
func newTestCPU(t *testing.T, program ...uint8) *Processor {
	t.Helper()
	bank, err := memory.NewBank(memory.NewSegment(0, memory.AddressSpace, false))
	if err != nil {
		t.Fatal(err)
	}
	bank.WriteBytes(0, program)
	p := New(bank, ports.NewBank(), clock.NewFast(4.0))
	p.reg.Reset(p.stackTop)
	return p
}

func steps(t *testing.T, p *Processor, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
	}
}

// TestResetState: after reset, SP at the stack top, everything else zero,
// interrupts disabled in IM0.
func TestResetState(t *testing.T) {
	p := newTestCPU(t)
	p.Reset()
	if p.reg.SP != 0xFFFF {
		t.Errorf("SP = %04X, want FFFF", p.reg.SP)
	}
	if p.reg.PC != 0 || p.reg.A != 0 || p.reg.F != 0 || p.reg.B != 0 {
		t.Error("registers should clear on reset")
	}
	if p.IFF1() || p.IFF2() {
		t.Error("interrupts should be disabled")
	}
	if p.InterruptMode() != IM0 {
		t.Errorf("mode = %v, want IM0", p.InterruptMode())
	}
	if p.State() != Stopped {
		t.Error("reset leaves the CPU stopped")
	}
}

// TestAddImmediateProgram: LD A,5; ADD A,3; NOP.
func TestAddImmediateProgram(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x05, 0xC6, 0x03, 0x00)
	steps(t, p, 3)
	if p.reg.A != 8 {
		t.Errorf("A = %02X, want 08", p.reg.A)
	}
	// 8 = 00001000b: only the undocumented X bit (bit 3 copy) is set.
	if p.reg.F != Flag3 {
		t.Errorf("F = %02X, want %02X", p.reg.F, Flag3)
	}
	if p.reg.PC != 5 {
		t.Errorf("PC = %04X, want 0005", p.reg.PC)
	}
	if got := p.TStates(); got != 7+7+4 {
		t.Errorf("T-states = %d, want 18", got)
	}
}

// TestAddOverflowProgram: LD A,7Fh; ADD A,A.
func TestAddOverflowProgram(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x7F, 0x87)
	steps(t, p, 2)
	if p.reg.A != 0xFE {
		t.Errorf("A = %02X, want FE", p.reg.A)
	}
	f := p.reg.F
	checkFlag(t, "S", f, FlagS, true)
	checkFlag(t, "Z", f, FlagZ, false)
	checkFlag(t, "H", f, FlagH, true)
	checkFlag(t, "V", f, FlagV, true)
	checkFlag(t, "N", f, FlagN, false)
	checkFlag(t, "C", f, FlagC, false)
}

// TestOutiTwice: OUTI decrements B through zero.
func TestOutiTwice(t *testing.T) {
	p := newTestCPU(t, 0x0E, 0x02, 0x3E, 0x41, 0xED, 0xA3, 0xED, 0xA3)
	var written []uint8
	p.ports.(*ports.Bank).Install(2, ports.Port{Write: func(v uint8) { written = append(written, v) }})

	steps(t, p, 3) // LD C,2; LD A,41h; OUTI
	if p.reg.B != 0xFF {
		t.Errorf("B after first OUTI = %02X, want FF", p.reg.B)
	}
	if p.reg.HL() != 1 {
		t.Errorf("HL = %04X, want 0001", p.reg.HL())
	}
	steps(t, p, 1)
	if p.reg.B != 0xFE {
		t.Errorf("B after second OUTI = %02X, want FE", p.reg.B)
	}
	if p.reg.HL() != 2 {
		t.Errorf("HL = %04X, want 0002", p.reg.HL())
	}
	if len(written) != 2 {
		t.Fatalf("port 2 saw %d writes, want 2", len(written))
	}
	// OUTI sends the bytes at (HL): the program's own first two bytes.
	if written[0] != 0x0E || written[1] != 0x02 {
		t.Errorf("port writes = %02X %02X", written[0], written[1])
	}
}

// TestNeg: NEG with A=1.
func TestNeg(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x01, 0xED, 0x44)
	steps(t, p, 2)
	if p.reg.A != 0xFF {
		t.Errorf("A = %02X, want FF", p.reg.A)
	}
	f := p.reg.F
	checkFlag(t, "S", f, FlagS, true)
	checkFlag(t, "Z", f, FlagZ, false)
	checkFlag(t, "H", f, FlagH, true)
	checkFlag(t, "V", f, FlagV, false)
	checkFlag(t, "N", f, FlagN, true)
	checkFlag(t, "C", f, FlagC, true)
}

// TestRlcIndexed: DD CB 02 06, RLC (IX+2).
func TestRlcIndexed(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0xCB, 0x02, 0x06)
	p.reg.SetIX(0x1000)
	p.mem.WriteByte(0x1002, 0x81)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x1002); got != 0x03 {
		t.Errorf("mem[1002] = %02X, want 03", got)
	}
	checkFlag(t, "C", p.reg.F, FlagC, true)
	checkFlag(t, "P", p.reg.F, FlagP, true)
	if p.reg.WZ != 0x1002 {
		t.Errorf("WZ = %04X, want 1002 (effective address)", p.reg.WZ)
	}
	if got := p.TStates(); got != 23 {
		t.Errorf("T-states = %d, want 23", got)
	}
}

// TestCopyRegVariant: DD CB d 00 is RLC (IX+d),B — memory and register both
// take the result.
func TestCopyRegVariant(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0xCB, 0x00, 0x00)
	p.reg.SetIX(0x2000)
	p.mem.WriteByte(0x2000, 0x80)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x2000); got != 0x01 {
		t.Errorf("mem = %02X, want 01", got)
	}
	if p.reg.B != 0x01 {
		t.Errorf("B = %02X, want 01 (copy)", p.reg.B)
	}
}

// TestPCAdvance (P2): PC moves by exactly the instruction size unless the
// microcode overrides it.
func TestPCAdvance(t *testing.T) {
	p := newTestCPU(t, 0x06, 0x11, 0x21, 0x34, 0x12, 0xDD, 0x7C)
	steps(t, p, 1)
	if p.reg.PC != 2 {
		t.Errorf("after LD B,n: PC=%04X", p.reg.PC)
	}
	steps(t, p, 1)
	if p.reg.PC != 5 {
		t.Errorf("after LD HL,nn: PC=%04X", p.reg.PC)
	}
	steps(t, p, 1)
	if p.reg.PC != 7 {
		t.Errorf("after LD A,IXH: PC=%04X", p.reg.PC)
	}
}

func TestJumpOverridesPC(t *testing.T) {
	p := newTestCPU(t, 0xC3, 0x00, 0x10)
	steps(t, p, 1)
	if p.reg.PC != 0x1000 {
		t.Errorf("PC = %04X, want 1000", p.reg.PC)
	}
	if p.reg.WZ != 0x1000 {
		t.Errorf("WZ = %04X, want 1000", p.reg.WZ)
	}
}

func TestConditionalNotTaken(t *testing.T) {
	// JR NZ with Z set falls through.
	p := newTestCPU(t, 0x20, 0x10)
	p.reg.F = FlagZ
	steps(t, p, 1)
	if p.reg.PC != 2 {
		t.Errorf("PC = %04X, want 0002", p.reg.PC)
	}
	if got := p.TStates(); got != 7 {
		t.Errorf("T-states = %d, want 7 (not taken)", got)
	}
}

func TestJRNegativeDisplacement(t *testing.T) {
	p := newTestCPU(t, 0x00, 0x00, 0x18, 0xFC) // NOP; NOP; JR -4
	steps(t, p, 3)
	if p.reg.PC != 0 {
		t.Errorf("PC = %04X, want 0000", p.reg.PC)
	}
}

func TestDJNZ(t *testing.T) {
	p := newTestCPU(t, 0x06, 0x03, 0x10, 0xFE) // LD B,3; DJNZ -2 (self)
	steps(t, p, 2)
	if p.reg.B != 2 || p.reg.PC != 2 {
		t.Errorf("B=%02X PC=%04X after first DJNZ", p.reg.B, p.reg.PC)
	}
	steps(t, p, 2)
	if p.reg.B != 0 {
		t.Errorf("B=%02X, want 0", p.reg.B)
	}
	if p.reg.PC != 4 {
		t.Errorf("PC = %04X, want 0004 (fell through)", p.reg.PC)
	}
	// 7 + 13 + 13 + 8.
	if got := p.TStates(); got != 41 {
		t.Errorf("T-states = %d, want 41", got)
	}
}

// TestPushPopRoundTrip: PUSH rr ; POP rr restores the pair and SP.
func TestPushPopRoundTrip(t *testing.T) {
	p := newTestCPU(t, 0xC5, 0xC1, 0xD5, 0xD1, 0xE5, 0xE1, 0xF5, 0xF1)
	p.reg.SP = 0x8000
	p.reg.SetBC(0x1234)
	p.reg.SetDE(0x5678)
	p.reg.SetHL(0x9ABC)
	p.reg.A, p.reg.F = 0xDE, 0xFF
	steps(t, p, 8)
	if p.reg.BC() != 0x1234 || p.reg.DE() != 0x5678 || p.reg.HL() != 0x9ABC {
		t.Error("PUSH/POP should round-trip the pairs")
	}
	if p.reg.AF() != 0xDEFF {
		t.Errorf("AF = %04X, want DEFF", p.reg.AF())
	}
	if p.reg.SP != 0x8000 {
		t.Errorf("SP = %04X, want 8000", p.reg.SP)
	}
}

func TestPushByteOrder(t *testing.T) {
	p := newTestCPU(t, 0xC5) // PUSH BC
	p.reg.SP = 0x8000
	p.reg.SetBC(0x1234)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x7FFF); got != 0x12 {
		t.Errorf("high byte at 7FFF = %02X, want 12", got)
	}
	if got := p.mem.ReadByte(0x7FFE); got != 0x34 {
		t.Errorf("low byte at 7FFE = %02X, want 34", got)
	}
}

// TestLdiLddRoundTrip: LDI then LDD with reversed HL/DE is the identity on
// memory for BC=1.
func TestLdiLddRoundTrip(t *testing.T) {
	p := newTestCPU(t, 0xED, 0xA0, 0xED, 0xA8)
	p.mem.WriteByte(0x4000, 0xAA)
	p.mem.WriteByte(0x5000, 0x55)
	p.reg.SetHL(0x4000)
	p.reg.SetDE(0x5000)
	p.reg.SetBC(1)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x5000); got != 0xAA {
		t.Fatalf("LDI copy: mem[5000]=%02X", got)
	}
	if p.reg.BC() != 0 || p.reg.HL() != 0x4001 || p.reg.DE() != 0x5001 {
		t.Fatalf("LDI: BC=%04X HL=%04X DE=%04X", p.reg.BC(), p.reg.HL(), p.reg.DE())
	}
	// Reverse the transfer.
	p.reg.SetHL(0x5000)
	p.reg.SetDE(0x4000)
	p.reg.SetBC(1)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x4000); got != 0xAA {
		t.Errorf("round trip: mem[4000]=%02X, want AA", got)
	}
}

// TestLDIR: the repeating form re-executes at the same PC, one engine
// iteration per element.
func TestLDIR(t *testing.T) {
	p := newTestCPU(t, 0xED, 0xB0)
	p.mem.WriteBytes(0x4000, []uint8{1, 2, 3})
	p.reg.SetHL(0x4000)
	p.reg.SetDE(0x5000)
	p.reg.SetBC(3)

	steps(t, p, 1)
	if p.reg.PC != 0 {
		t.Errorf("PC = %04X, want 0000 (looping)", p.reg.PC)
	}
	if p.reg.BC() != 2 {
		t.Errorf("BC = %04X", p.reg.BC())
	}
	steps(t, p, 2)
	if p.reg.PC != 2 {
		t.Errorf("PC = %04X, want 0002 (done)", p.reg.PC)
	}
	for i, want := range []uint8{1, 2, 3} {
		if got := p.mem.ReadByte(0x5000 + uint16(i)); got != want {
			t.Errorf("mem[%04X] = %02X, want %02X", 0x5000+i, got, want)
		}
	}
	checkFlag(t, "V", p.reg.F, FlagV, false) // BC exhausted
	// 21 + 21 + 16.
	if got := p.TStates(); got != 58 {
		t.Errorf("T-states = %d, want 58", got)
	}
}

func TestCPIR(t *testing.T) {
	p := newTestCPU(t, 0xED, 0xB1)
	p.mem.WriteBytes(0x4000, []uint8{1, 2, 3, 4})
	p.reg.A = 3
	p.reg.SetHL(0x4000)
	p.reg.SetBC(4)
	for p.reg.PC != 2 {
		steps(t, p, 1)
	}
	if p.reg.HL() != 0x4003 {
		t.Errorf("HL = %04X, want 4003 (stopped past the match)", p.reg.HL())
	}
	checkFlag(t, "Z", p.reg.F, FlagZ, true)
	if p.reg.BC() != 1 {
		t.Errorf("BC = %04X, want 0001", p.reg.BC())
	}
}

func TestHaltAndEndOnHalt(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x05, 0x76)
	p.SetEndOnHalt(true)
	if err := p.RunUntilStopped(); err != nil {
		t.Fatal(err)
	}
	if p.reg.A != 5 {
		t.Errorf("A = %02X", p.reg.A)
	}
	if p.State() != Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if p.reg.PC != 3 {
		t.Errorf("PC = %04X, want 0003 (past HALT)", p.reg.PC)
	}
}

// TestHaltIdlesOnNops: a halted CPU keeps burning fetch cycles without
// advancing PC.
func TestHaltIdlesOnNops(t *testing.T) {
	p := newTestCPU(t, 0x76)
	steps(t, p, 1)
	if p.State() != Halted {
		t.Fatalf("state = %v", p.State())
	}
	before := p.TStates()
	r := p.reg.R
	steps(t, p, 3)
	if p.reg.PC != 1 {
		t.Errorf("PC moved while halted: %04X", p.reg.PC)
	}
	if got := p.TStates() - before; got != 12 {
		t.Errorf("3 halted steps cost %d T-states, want 12", got)
	}
	if p.reg.R == r {
		t.Error("refresh should continue while halted")
	}
}

func TestNMI(t *testing.T) {
	p := newTestCPU(t, 0x76) // HALT
	p.reg.SP = 0x8000
	p.ints.iff1 = true
	p.ints.iff2 = true
	steps(t, p, 1)

	p.RaiseNMI()
	steps(t, p, 1)
	if p.reg.PC != 0x0066 {
		t.Errorf("PC = %04X, want 0066", p.reg.PC)
	}
	if p.State() != Running {
		t.Errorf("state = %v, want running", p.State())
	}
	if p.IFF1() {
		t.Error("NMI must clear IFF1")
	}
	if !p.IFF2() {
		t.Error("NMI must retain IFF2")
	}
	// Return address is the byte past HALT.
	if got := p.mem.ReadWord(0x7FFE); got != 0x0001 {
		t.Errorf("pushed return = %04X, want 0001", got)
	}
}

// TestRETNRestoresIFF1 after an NMI handler.
func TestRETNRestoresIFF1(t *testing.T) {
	p := newTestCPU(t, 0x00)
	p.mem.WriteBytes(0x0066, []uint8{0xED, 0x45}) // RETN
	p.reg.SP = 0x8000
	p.ints.iff1 = true
	p.ints.iff2 = true
	p.RaiseNMI()
	steps(t, p, 1) // NOP + NMI ack
	if p.IFF1() {
		t.Fatal("IFF1 should be clear inside the handler")
	}
	steps(t, p, 1) // RETN
	if !p.IFF1() {
		t.Error("RETN should restore IFF1 from IFF2")
	}
	if p.reg.PC != 0x0001 {
		t.Errorf("PC = %04X, want 0001", p.reg.PC)
	}
}

func TestIM1Interrupt(t *testing.T) {
	p := newTestCPU(t, 0xED, 0x56, 0xFB, 0x00, 0x00) // IM 1; EI; NOP; NOP
	p.reg.SP = 0x8000
	steps(t, p, 2) // IM 1; EI
	p.RaiseINT()
	// The INT arrived between instructions; the NOP at 0003 completes and
	// the acknowledge follows it.
	steps(t, p, 1)
	if p.reg.PC != 0x0038 {
		t.Errorf("PC = %04X, want 0038", p.reg.PC)
	}
	if p.IFF1() || p.IFF2() {
		t.Error("acknowledge clears both flip-flops")
	}
	if got := p.mem.ReadWord(0x7FFE); got != 0x0004 {
		t.Errorf("pushed return = %04X, want 0004", got)
	}
}

// TestEIDelay: an interrupt pending when EI executes is not accepted until
// after the following instruction.
func TestEIDelay(t *testing.T) {
	p := newTestCPU(t, 0xED, 0x56, 0xFB, 0x76) // IM 1; EI; HALT
	p.reg.SP = 0x8000
	steps(t, p, 1)
	p.RaiseINT()
	steps(t, p, 1) // EI: INT pending but deferred
	if p.reg.PC != 3 {
		t.Fatalf("PC = %04X after EI", p.reg.PC)
	}
	steps(t, p, 1) // HALT executes, then the INT wakes it
	if p.reg.PC != 0x0038 {
		t.Errorf("PC = %04X, want 0038", p.reg.PC)
	}
	if p.State() != Running {
		t.Errorf("state = %v, want running (woken)", p.State())
	}
}

func TestIM2Interrupt(t *testing.T) {
	p := newTestCPU(t, 0xED, 0x5E, 0xFB, 0x00, 0x00) // IM 2; EI; NOP; NOP
	p.reg.SP = 0x8000
	p.reg.I = 0x20
	p.mem.WriteWord(0x2040, 0x1234)
	p.SetInterruptSource(func() uint8 { return 0x40 })
	steps(t, p, 3)
	p.RaiseINT()
	steps(t, p, 1)
	if p.reg.PC != 0x1234 {
		t.Errorf("PC = %04X, want 1234 (vectored)", p.reg.PC)
	}
}

func TestIM2WithoutCallbackFails(t *testing.T) {
	p := newTestCPU(t, 0xED, 0x5E, 0xFB, 0x00, 0x00)
	steps(t, p, 3)
	p.RaiseINT()
	err := p.Step()
	if !errors.Is(err, ErrNoInterruptCallback) {
		t.Errorf("err = %v, want ErrNoInterruptCallback", err)
	}
}

// TestIM0InjectedRST: the host places RST 28h on the bus; PC redirects and
// the return address is the instruction the interrupt preempted.
func TestIM0InjectedRST(t *testing.T) {
	p := newTestCPU(t, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	p.reg.SP = 0x8000
	p.SetInterruptSource(func() uint8 { return 0xEF }) // RST 28h
	steps(t, p, 2)
	p.RaiseINT()
	steps(t, p, 1)
	if p.reg.PC != 0x0028 {
		t.Errorf("PC = %04X, want 0028", p.reg.PC)
	}
	if got := p.mem.ReadWord(0x7FFE); got != 0x0003 {
		t.Errorf("pushed return = %04X, want 0003", got)
	}
}

func TestNoMemoryFails(t *testing.T) {
	p := New(nil, ports.NewBank(), clock.NewFast(4.0))
	if err := p.Step(); !errors.Is(err, ErrMemoryNotInitialised) {
		t.Errorf("err = %v, want ErrMemoryNotInitialised", err)
	}
}

func TestWaitCycles(t *testing.T) {
	p := newTestCPU(t, 0x00)
	p.AddWaitCycles(3)
	var sawWaits int
	p.Hooks.BeforeInsertWaitCycles = func(n int) { sawWaits = n }
	steps(t, p, 1)
	if got := p.TStates(); got != 7 {
		t.Errorf("T-states = %d, want 7 (4 + 3 waits)", got)
	}
	if sawWaits != 3 {
		t.Errorf("hook saw %d waits", sawWaits)
	}
}

func TestReadOnlyWriteDropped(t *testing.T) {
	ram := memory.NewSegment(0, 0x1000, false)
	rom := memory.NewSegmentFrom(0x2000, []uint8{0x11}, true)
	bank, err := memory.NewBank(ram, rom)
	if err != nil {
		t.Fatal(err)
	}
	bank.WriteBytes(0, []uint8{0x3E, 0x42, 0x32, 0x00, 0x20}) // LD A,42h; LD (2000h),A
	p := New(bank, ports.NewBank(), clock.NewFast(4.0))
	p.reg.Reset(p.stackTop)
	steps(t, p, 2)
	if got := bank.ReadByte(0x2000); got != 0x11 {
		t.Errorf("ROM byte = %02X, want 11 (write dropped)", got)
	}
}

func TestIndexedStore(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0x36, 0x02, 0x77) // LD (IX+2),77h
	p.reg.SetIX(0x3000)
	steps(t, p, 1)
	if got := p.mem.ReadByte(0x3002); got != 0x77 {
		t.Errorf("mem = %02X, want 77", got)
	}
	if got := p.TStates(); got != 19 {
		t.Errorf("T-states = %d, want 19", got)
	}
}

// TestUndocumentedIndexHalves: DD-prefixed H/L ops address IXH/IXL.
func TestUndocumentedIndexHalves(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0x26, 0xAB, 0xDD, 0x2E, 0xCD, 0xDD, 0x7C) // LD IXH,ABh; LD IXL,CDh; LD A,IXH
	steps(t, p, 3)
	if p.reg.IX() != 0xABCD {
		t.Errorf("IX = %04X, want ABCD", p.reg.IX())
	}
	if p.reg.A != 0xAB {
		t.Errorf("A = %02X, want AB", p.reg.A)
	}
	if p.reg.HL() != 0 {
		t.Error("HL must stay untouched")
	}
}

// TestPrefixChainNops: each redundant DD costs four T-states and one byte.
func TestPrefixChainNops(t *testing.T) {
	p := newTestCPU(t, 0xDD, 0xDD, 0xDD, 0x47) // three prefixes, LD B,A
	p.reg.A = 0x99
	steps(t, p, 1)
	if p.reg.B != 0x99 {
		t.Errorf("B = %02X", p.reg.B)
	}
	if p.reg.PC != 4 {
		t.Errorf("PC = %04X, want 0004", p.reg.PC)
	}
	// 4 + 4 (spent prefixes) + 8 (DD 47).
	if got := p.TStates(); got != 16 {
		t.Errorf("T-states = %d, want 16", got)
	}
}

func TestExSPHL(t *testing.T) {
	p := newTestCPU(t, 0xE3)
	p.reg.SP = 0x8000
	p.reg.SetHL(0x1234)
	p.mem.WriteWord(0x8000, 0xABCD)
	steps(t, p, 1)
	if p.reg.HL() != 0xABCD {
		t.Errorf("HL = %04X, want ABCD", p.reg.HL())
	}
	if got := p.mem.ReadWord(0x8000); got != 0x1234 {
		t.Errorf("(SP) = %04X, want 1234", got)
	}
	if p.reg.WZ != 0xABCD {
		t.Errorf("WZ = %04X, want ABCD", p.reg.WZ)
	}
}

func TestMemptrLeaksIntoBit(t *testing.T) {
	// BIT 0,(IX+d) takes X/Y from the high byte of the effective address.
	p := newTestCPU(t, 0xDD, 0xCB, 0x00, 0x46)
	p.reg.SetIX(0x2800)
	p.mem.WriteByte(0x2800, 0xFF)
	steps(t, p, 1)
	if got := p.reg.F & (Flag3 | Flag5); got != 0x28 {
		t.Errorf("X/Y = %02X, want 28 (from WZ high byte)", got)
	}
}

func TestBreakpointHook(t *testing.T) {
	p := newTestCPU(t, 0x00, 0x00, 0x00)
	var hits []uint16
	p.Hooks.OnBreakpoint = func(k *Package) { hits = append(hits, k.Addr) }
	p.AddBreakpoint(0x0001)
	steps(t, p, 3)
	if len(hits) != 1 || hits[0] != 1 {
		t.Errorf("breakpoint hits = %v, want [1]", hits)
	}
	p.RemoveBreakpoint(0x0001)
}

func TestExecutionHooks(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x07)
	var before, after int
	var lastFlags uint8
	p.Hooks.BeforeExecute = func(k *Package) { before++ }
	p.Hooks.AfterExecute = func(r Result) { after++; lastFlags = r.Flags }
	steps(t, p, 1)
	if before != 1 || after != 1 {
		t.Errorf("hooks: before=%d after=%d", before, after)
	}
	if lastFlags != p.reg.F {
		t.Error("AfterExecute should see the final flags")
	}
}

func TestLdARFlagsFromIFF2(t *testing.T) {
	p := newTestCPU(t, 0xFB, 0xED, 0x5F) // EI; LD A,R
	steps(t, p, 2)
	checkFlag(t, "V", p.reg.F, FlagV, true)

	p2 := newTestCPU(t, 0xED, 0x5F) // LD A,R with interrupts disabled
	steps(t, p2, 1)
	checkFlag(t, "V", p2.reg.F, FlagV, false)
}

func TestLdRAKeepsBit7(t *testing.T) {
	p := newTestCPU(t, 0x3E, 0x80, 0xED, 0x4F, 0x00, 0x00) // LD A,80h; LD R,A; NOP; NOP
	steps(t, p, 4)
	if p.reg.R&0x80 == 0 {
		t.Error("bit 7 of R should survive refresh increments")
	}
	if p.reg.R&0x7F == 0 {
		t.Error("low bits of R should have advanced")
	}
}

func TestSuspendResume(t *testing.T) {
	p := newTestCPU(t, 0x00)
	p.Suspend()
	p.Reg().A = 0x42
	p.Resume()
	steps(t, p, 1)
	if p.reg.A != 0x42 {
		t.Error("suspended write lost")
	}
}
