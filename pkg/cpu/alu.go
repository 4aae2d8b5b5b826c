package cpu

import "github.com/dmcewing/zem80/pkg/bits"

// Pure flag-engine helpers. Every function takes its operands (and, where a
// flag bit feeds the operation or survives it, the current F register) and
// returns the result together with the complete new F value. Nothing here
// touches processor state; the microcode wires results and flags in.

func add8(a, value, carry uint8) (uint8, uint8) {
	addtemp := uint16(a) + uint16(value) + uint16(carry)
	lookup := ((a & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((addtemp&0x88)>>1)
	result := uint8(addtemp)
	f := bsel(addtemp&0x100 != 0, FlagC, 0) |
		halfcarryAddTable[lookup&0x07] |
		overflowAddTable[lookup>>4] |
		sz53Table[result]
	return result, f
}

func sub8(a, value, carry uint8) (uint8, uint8) {
	subtemp := uint16(a) - uint16(value) - uint16(carry)
	lookup := ((a & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((subtemp&0x88)>>1)
	result := uint8(subtemp)
	f := bsel(subtemp&0x100 != 0, FlagC, 0) | FlagN |
		halfcarrySubTable[lookup&0x07] |
		overflowSubTable[lookup>>4] |
		sz53Table[result]
	return result, f
}

func and8(a, value uint8) (uint8, uint8) {
	result := a & value
	return result, FlagH | sz53pTable[result]
}

func or8(a, value uint8) (uint8, uint8) {
	result := a | value
	return result, sz53pTable[result]
}

func xor8(a, value uint8) (uint8, uint8) {
	result := a ^ value
	return result, sz53pTable[result]
}

// cp8 compares without storing. X/Y come from the operand, not the result.
func cp8(a, value uint8) uint8 {
	cptemp := uint16(a) - uint16(value)
	lookup := ((a & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((cptemp&0x88)>>1)
	return bsel(cptemp&0x100 != 0, FlagC, bsel(cptemp != 0, 0, FlagZ)) |
		FlagN |
		halfcarrySubTable[lookup&0x07] |
		overflowSubTable[lookup>>4] |
		(value & (Flag3 | Flag5)) |
		uint8(cptemp&uint16(FlagS))
}

// inc8 and dec8 preserve the carry bit of f.
func inc8(value, f uint8) (uint8, uint8) {
	result := value + 1
	nf := (f & FlagC) |
		bsel(result == 0x80, FlagV, 0) |
		bsel(result&0x0F != 0, 0, FlagH) |
		sz53Table[result]
	return result, nf
}

func dec8(value, f uint8) (uint8, uint8) {
	nf := (f & FlagC) | bsel(value&0x0F != 0, 0, FlagH) | FlagN
	result := value - 1
	nf |= bsel(result == 0x7F, FlagV, 0) | sz53Table[result]
	return result, nf
}

// addWord implements ADD HL,rr (and the IX/IY forms): half-carry from bit 11,
// carry from bit 15, S/Z/P-V preserved, X/Y from the result's high byte.
func addWord(a, value uint16, f uint8) (uint16, uint8) {
	result := uint32(a) + uint32(value)
	hc := (a & 0x0FFF) + (value & 0x0FFF)
	nf := (f & (FlagS | FlagZ | FlagP)) |
		bsel(hc&0x1000 != 0, FlagH, 0) |
		bsel(result&0x10000 != 0, FlagC, 0) |
		(uint8(result>>8) & (Flag3 | Flag5))
	return uint16(result), nf
}

func adcWord(a, value uint16, f uint8) (uint16, uint8) {
	carry := uint(f & FlagC)
	result := uint(a) + uint(value) + carry
	lookup := byte(((uint(a) & 0x8800) >> 11) | ((uint(value) & 0x8800) >> 10) | ((result & 0x8800) >> 9))
	hi := uint8(result >> 8)
	nf := bsel(result&0x10000 != 0, FlagC, 0) |
		overflowAddTable[lookup>>4] |
		(hi & (Flag3 | Flag5 | FlagS)) |
		halfcarryAddTable[lookup&0x07] |
		bsel(uint16(result) != 0, 0, FlagZ)
	return uint16(result), nf
}

func sbcWord(a, value uint16, f uint8) (uint16, uint8) {
	carry := uint(f & FlagC)
	result := uint(a) - uint(value) - carry
	lookup := byte(((uint(a) & 0x8800) >> 11) | ((uint(value) & 0x8800) >> 10) | ((result & 0x8800) >> 9))
	hi := uint8(result >> 8)
	nf := bsel(result&0x10000 != 0, FlagC, 0) |
		FlagN |
		overflowSubTable[lookup>>4] |
		(hi & (Flag3 | Flag5 | FlagS)) |
		halfcarrySubTable[lookup&0x07] |
		bsel(uint16(result) != 0, 0, FlagZ)
	return uint16(result), nf
}

// Rotate/shift family, CB-prefix semantics: all flags from the shifted result.

func rlc8(v uint8) (uint8, uint8) {
	v = (v << 1) | (v >> 7)
	return v, (v & FlagC) | sz53pTable[v]
}

func rrc8(v uint8) (uint8, uint8) {
	f := v & FlagC
	v = (v >> 1) | (v << 7)
	return v, f | sz53pTable[v]
}

func rl8(v, f uint8) (uint8, uint8) {
	old := v
	v = (v << 1) | (f & FlagC)
	return v, (old >> 7) | sz53pTable[v]
}

func rr8(v, f uint8) (uint8, uint8) {
	old := v
	v = (v >> 1) | (f << 7)
	return v, (old & FlagC) | sz53pTable[v]
}

func sla8(v uint8) (uint8, uint8) {
	f := v >> 7
	v <<= 1
	return v, f | sz53pTable[v]
}

func sra8(v uint8) (uint8, uint8) {
	f := v & FlagC
	v = (v & 0x80) | (v >> 1)
	return v, f | sz53pTable[v]
}

func srl8(v uint8) (uint8, uint8) {
	f := v & FlagC
	v >>= 1
	return v, f | sz53pTable[v]
}

// sll8 is the undocumented shift left filling bit 0 with 1.
func sll8(v uint8) (uint8, uint8) {
	f := v >> 7
	v = (v << 1) | 0x01
	return v, f | sz53pTable[v]
}

// Accumulator rotates (RLCA/RRCA/RLA/RRA): S/Z/P-V preserved, H=0, N=0,
// C from the rotated-out bit, X/Y from the result.
func rlca8(a, f uint8) (uint8, uint8) {
	a = (a << 1) | (a >> 7)
	return a, (f & (FlagS | FlagZ | FlagP)) | (a & (FlagC | Flag3 | Flag5))
}

func rrca8(a, f uint8) (uint8, uint8) {
	nf := (f & (FlagS | FlagZ | FlagP)) | (a & FlagC)
	a = (a >> 1) | (a << 7)
	return a, nf | (a & (Flag3 | Flag5))
}

func rla8(a, f uint8) (uint8, uint8) {
	old := a
	a = (a << 1) | (f & FlagC)
	return a, (f & (FlagS | FlagZ | FlagP)) | (a & (Flag3 | Flag5)) | (old >> 7)
}

func rra8(a, f uint8) (uint8, uint8) {
	old := a
	a = (a >> 1) | (f << 7)
	return a, (f & (FlagS | FlagZ | FlagP)) | (a & (Flag3 | Flag5)) | (old & FlagC)
}

// daa adjusts A to BCD after an add or subtract, driven by N, H, C and the
// nybbles of A per the canonical table.
func daa(a, f uint8) (uint8, uint8) {
	var add, carry uint8
	carry = f & FlagC
	if (f&FlagH) != 0 || (a&0x0F) > 9 {
		add = 6
	}
	if carry != 0 || a > 0x99 {
		add |= 0x60
	}
	if a > 0x99 {
		carry = FlagC
	}
	var result, nf uint8
	if (f & FlagN) != 0 {
		result, nf = sub8(a, add, 0)
	} else {
		result, nf = add8(a, add, 0)
	}
	nf = (nf &^ (FlagC | FlagP)) | carry | parityTable[result]
	return result, nf
}

func neg8(a uint8) (uint8, uint8) {
	return sub8(0, a, 0)
}

// cpl8 complements A: H and N set, X/Y from the result, the rest preserved.
func cpl8(a, f uint8) (uint8, uint8) {
	a = ^a
	return a, (f & (FlagC | FlagP | FlagZ | FlagS)) | (a & (Flag3 | Flag5)) | FlagN | FlagH
}

// scf sets carry; X/Y come from A.
func scf(a, f uint8) uint8 {
	return (f & (FlagP | FlagZ | FlagS)) | (a & (Flag3 | Flag5)) | FlagC
}

// ccf complements carry, moving the old carry into H; X/Y come from A.
func ccf(a, f uint8) uint8 {
	return (f & (FlagP | FlagZ | FlagS)) |
		bsel(f&FlagC != 0, FlagH, FlagC) |
		(a & (Flag3 | Flag5))
}

// bitTest implements BIT n,r: X/Y from the tested register.
func bitTest(v, n, f uint8) uint8 {
	nf := (f & FlagC) | FlagH | (v & (Flag3 | Flag5))
	if v&(1<<n) == 0 {
		nf |= FlagP | FlagZ
	}
	if n == 7 && v&0x80 != 0 {
		nf |= FlagS
	}
	return nf
}

// bitTestMem implements BIT n,(HL)/(IX+d)/(IY+d): X/Y leak from the high byte
// of WZ, the only place MEMPTR is observable.
func bitTestMem(v, n, f, wzHigh uint8) uint8 {
	nf := (f & FlagC) | FlagH | (wzHigh & (Flag3 | Flag5))
	if v&(1<<n) == 0 {
		nf |= FlagP | FlagZ
	}
	if n == 7 && v&0x80 != 0 {
		nf |= FlagS
	}
	return nf
}

// inFlags is the flag rule shared by IN r,(C) and RLD/RRD: S/Z/P and X/Y from
// the value, H=0, N=0, C preserved.
func inFlags(v, f uint8) uint8 {
	return (f & FlagC) | sz53pTable[v]
}

// ldAIRFlags is the LD A,I / LD A,R rule: S/Z and X/Y from A, H=0, N=0,
// P/V from IFF2 sampled at execution time, C preserved.
func ldAIRFlags(a uint8, iff2 bool, f uint8) uint8 {
	return (f & FlagC) | sz53Table[a] | bsel(iff2, FlagV, 0)
}

// ldBlockFlags is the LDI/LDD/LDIR/LDDR rule: S/Z/C preserved, H=0, N=0,
// P/V set while BC is nonzero, X from bit 3 and Y from bit 1 of the
// transferred byte plus A.
func ldBlockFlags(f, transferred, a uint8, bc uint16) uint8 {
	n := transferred + a
	return (f & (FlagC | FlagZ | FlagS)) |
		bsel(bc != 0, FlagV, 0) |
		(n & Flag3) |
		bsel(n&0x02 != 0, Flag5, 0)
}

// cpBlockFlags is the CPI/CPD/CPIR/CPDR rule. The X/Y source is A minus the
// compared byte, further minus one when half-borrow occurred.
func cpBlockFlags(f, a, value uint8, bc uint16) uint8 {
	result := a - value
	lookup := ((a & 0x08) >> 3) | ((value & 0x08) >> 2) | ((result & 0x08) >> 1)
	nf := (f & FlagC) | FlagN |
		bsel(bc != 0, FlagV, 0) |
		halfcarrySubTable[lookup] |
		bsel(result != 0, 0, FlagZ) |
		(result & FlagS)
	n := result
	if nf&FlagH != 0 {
		n--
	}
	return nf | (n & Flag3) | bsel(n&0x02 != 0, Flag5, 0)
}

// inBlockFlags is the INI/IND rule. S/Z/5/3 come from the decremented B,
// N from bit 7 of the transferred value, H and C from the 9-bit sum of the
// value and C register (+/- 1), P from the parity of that sum's low bits
// XORed with B.
func inBlockFlags(b, value, cReg uint8, delta int8) uint8 {
	k := uint16(value) + uint16(cReg+uint8(delta))
	return blockIOFlags(b, value, k)
}

// outBlockFlags is the OUTI/OUTD rule; the 9-bit sum pairs the value with L
// as it stands after HL moved.
func outBlockFlags(b, value, l uint8) uint8 {
	k := uint16(value) + uint16(l)
	return blockIOFlags(b, value, k)
}

func blockIOFlags(b, value uint8, k uint16) uint8 {
	f := sz53Table[b] |
		bsel(value&0x80 != 0, FlagN, 0) |
		bsel(k > 0xFF, FlagH|FlagC, 0)
	if bits.Parity(uint8(k&0x07) ^ b) {
		f |= FlagP
	}
	return f
}
