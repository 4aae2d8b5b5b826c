package cpu

import "github.com/dmcewing/zem80/pkg/bits"

// DefaultStackTop is where SP lands on reset. Undocumented but verified
// silicon behavior: the stack pointer comes up at the top of memory.
const DefaultStackTop uint16 = 0xFFFF

// Registers is the full programmer-visible register file plus the internal
// WZ (MEMPTR) latch. It is a plain value type; Snapshot is a struct copy.
type Registers struct {
	A, F, B, C, D, E, H, L uint8

	// Shadow set, reachable only through EX AF,AF' and EXX.
	A1, F1, B1, C1, D1, E1, H1, L1 uint8

	I, R uint8

	// Index registers kept as individually addressable halves; the
	// undocumented DD/FD register ops read and write these directly.
	IXH, IXL, IYH, IYL uint8

	SP, PC uint16

	// WZ is the internal 16-bit latch (MEMPTR). Its only observable effect
	// is the X/Y flag source of BIT on memory operands.
	WZ uint16
}

func (r *Registers) AF() uint16 { return bits.Word(r.A, r.F) }
func (r *Registers) BC() uint16 { return bits.Word(r.B, r.C) }
func (r *Registers) DE() uint16 { return bits.Word(r.D, r.E) }
func (r *Registers) HL() uint16 { return bits.Word(r.H, r.L) }
func (r *Registers) IX() uint16 { return bits.Word(r.IXH, r.IXL) }
func (r *Registers) IY() uint16 { return bits.Word(r.IYH, r.IYL) }

func (r *Registers) SetAF(v uint16) { r.A, r.F = bits.Split(v) }
func (r *Registers) SetBC(v uint16) { r.B, r.C = bits.Split(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = bits.Split(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = bits.Split(v) }
func (r *Registers) SetIX(v uint16) { r.IXH, r.IXL = bits.Split(v) }
func (r *Registers) SetIY(v uint16) { r.IYH, r.IYL = bits.Split(v) }

// IR returns the refresh address emitted during opcode-fetch refresh cycles.
func (r *Registers) IR() uint16 { return bits.Word(r.I, r.R) }

// ExchangeAF swaps AF with the shadow pair atomically.
func (r *Registers) ExchangeAF() {
	r.A, r.A1 = r.A1, r.A
	r.F, r.F1 = r.F1, r.F
}

// Exchange implements EXX: BC, DE and HL swap with their shadows as pairs.
func (r *Registers) Exchange() {
	r.B, r.B1 = r.B1, r.B
	r.C, r.C1 = r.C1, r.C
	r.D, r.D1 = r.D1, r.D
	r.E, r.E1 = r.E1, r.E
	r.H, r.H1 = r.H1, r.H
	r.L, r.L1 = r.L1, r.L
}

// BumpR increments the refresh counter's low seven bits. Bit 7 is only ever
// written by LD R,A.
func (r *Registers) BumpR() {
	r.R = (r.R & 0x80) | ((r.R + 1) & 0x7F)
}

// Snapshot returns a value copy of the register file.
func (r *Registers) Snapshot() Registers {
	return *r
}

// Reset clears every register except SP, which is set to stackTop.
func (r *Registers) Reset(stackTop uint16) {
	*r = Registers{SP: stackTop}
}

// regMem is the sentinel code for the (HL) slot in the low-3-bit register
// encoding shared by most opcodes.
const regMem uint8 = 6

// byCode resolves the 3-bit register encoding (B C D E H L (HL) A) to a
// pointer into the register file, honoring the active index prefix for the
// undocumented H/L halves. Code 6 returns nil: the operand is memory.
func (r *Registers) byCode(code uint8, prefix Prefix) *uint8 {
	switch code {
	case 0:
		return &r.B
	case 1:
		return &r.C
	case 2:
		return &r.D
	case 3:
		return &r.E
	case 4:
		switch prefix {
		case PrefixDD:
			return &r.IXH
		case PrefixFD:
			return &r.IYH
		}
		return &r.H
	case 5:
		switch prefix {
		case PrefixDD:
			return &r.IXL
		case PrefixFD:
			return &r.IYL
		}
		return &r.L
	case 7:
		return &r.A
	}
	return nil
}

// indexWord returns IX or IY for the active prefix, HL otherwise.
func (r *Registers) indexWord(prefix Prefix) uint16 {
	switch prefix {
	case PrefixDD:
		return r.IX()
	case PrefixFD:
		return r.IY()
	}
	return r.HL()
}

func (r *Registers) setIndexWord(prefix Prefix, v uint16) {
	switch prefix {
	case PrefixDD:
		r.SetIX(v)
	case PrefixFD:
		r.SetIY(v)
	default:
		r.SetHL(v)
	}
}
