package cpu

import "github.com/dmcewing/zem80/pkg/bits"

// Microcode building blocks. Each generator closes over the register or
// operand codes baked into the opcode and returns the function stored in the
// instruction table. Timing discipline: the engine has already emitted the
// opcode-fetch and operand-read cycles; microcode emits every further memory,
// port and internal cycle itself, so the documented T-state totals fall out
// of the cycle sequence rather than a per-opcode constant.

// indexed reports whether the instruction's memory operand goes through
// IX+d / IY+d. The engine has already latched the effective address in WZ.
func (k *Package) indexed() bool {
	ip := k.Inst.Prefix.indexPrefix()
	return (ip == PrefixDD || ip == PrefixFD) && k.Inst.mem
}

// operandAddr is the address of the (HL) / (IX+d) / (IY+d) data operand.
func (p *Processor) operandAddr(k *Package) uint16 {
	if k.indexed() {
		return p.reg.WZ
	}
	return p.reg.HL()
}

// getReg and setReg resolve the 3-bit register codes with index-prefix
// awareness (DD/FD remap H and L onto the IX/IY halves).
func (p *Processor) getReg(code uint8, k *Package) uint8 {
	return *p.reg.byCode(code, k.Inst.Prefix.indexPrefix())
}

func (p *Processor) setReg(code uint8, k *Package, v uint8) {
	*p.reg.byCode(code, k.Inst.Prefix.indexPrefix()) = v
}

// getPlainReg ignores the index prefix: the register half of a memory-form
// instruction (LD H,(IX+d) and friends) always names the real H and L.
func (p *Processor) getPlainReg(code uint8) uint8 {
	return *p.reg.byCode(code, PrefixNone)
}

func (p *Processor) setPlainReg(code uint8, v uint8) {
	*p.reg.byCode(code, PrefixNone) = v
}

// Pair codes as used by the 16-bit opcode groups: BC, DE, HL, SP. Code 2
// resolves to IX or IY under the corresponding prefix.
func (p *Processor) getPair(code uint8, k *Package) uint16 {
	switch code {
	case 0:
		return p.reg.BC()
	case 1:
		return p.reg.DE()
	case 2:
		return p.reg.indexWord(k.Inst.Prefix.indexPrefix())
	default:
		return p.reg.SP
	}
}

func (p *Processor) setPair(code uint8, k *Package, v uint16) {
	switch code {
	case 0:
		p.reg.SetBC(v)
	case 1:
		p.reg.SetDE(v)
	case 2:
		p.reg.setIndexWord(k.Inst.Prefix.indexPrefix(), v)
	default:
		p.reg.SP = v
	}
}

// Stack pair codes swap SP for AF.
func (p *Processor) getStackPair(code uint8, k *Package) uint16 {
	if code == 3 {
		return p.reg.AF()
	}
	return p.getPair(code, k)
}

func (p *Processor) setStackPair(code uint8, k *Package, v uint16) {
	if code == 3 {
		p.reg.SetAF(v)
		return
	}
	p.setPair(code, k, v)
}

// --- 8-bit loads ---

func microNop(p *Processor, k *Package) {}

func loadRegReg(dst, src uint8) microcode {
	return func(p *Processor, k *Package) {
		p.setReg(dst, k, p.getReg(src, k))
	}
}

func loadRegImm(dst uint8) microcode {
	return func(p *Processor, k *Package) {
		p.setReg(dst, k, uint8(k.Imm))
	}
}

// loadRegMem is LD r,(HL) and the indexed forms; the register side never
// remaps onto the index halves.
func loadRegMem(dst uint8) microcode {
	return func(p *Processor, k *Package) {
		if k.indexed() {
			p.internal(5)
		}
		p.setPlainReg(dst, p.memReadCycle(p.operandAddr(k)))
	}
}

func loadMemReg(src uint8) microcode {
	return func(p *Processor, k *Package) {
		if k.indexed() {
			p.internal(5)
		}
		p.memWriteCycle(p.operandAddr(k), p.getPlainReg(src))
	}
}

func loadMemImm(p *Processor, k *Package) {
	if k.indexed() {
		p.internal(2)
	}
	p.memWriteCycle(p.operandAddr(k), uint8(k.Imm))
}

// LD A,(BC) / LD A,(DE): WZ tracks the address past the read byte.
func loadAInd(pair uint8) microcode {
	return func(p *Processor, k *Package) {
		addr := p.getPair(pair, k)
		p.reg.A = p.memReadCycle(addr)
		p.reg.WZ = addr + 1
	}
}

// LD (BC),A / LD (DE),A: WZ's low byte tracks the address, the high byte
// takes A.
func loadIndA(pair uint8) microcode {
	return func(p *Processor, k *Package) {
		addr := p.getPair(pair, k)
		p.memWriteCycle(addr, p.reg.A)
		p.reg.WZ = uint16(p.reg.A)<<8 | uint16(uint8(addr+1))
	}
}

func loadAExt(p *Processor, k *Package) {
	p.reg.A = p.memReadCycle(k.Imm)
	p.reg.WZ = k.Imm + 1
}

func loadExtA(p *Processor, k *Package) {
	p.memWriteCycle(k.Imm, p.reg.A)
	p.reg.WZ = uint16(p.reg.A)<<8 | uint16(uint8(k.Imm+1))
}

// --- 16-bit loads ---

func loadPairImm(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.setPair(code, k, k.Imm)
	}
}

func loadExtPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.memWriteWordCycle(k.Imm, p.getPair(code, k))
		p.reg.WZ = k.Imm + 1
	}
}

func loadPairExt(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.setPair(code, k, p.memReadWordCycle(k.Imm))
		p.reg.WZ = k.Imm + 1
	}
}

func loadSPIndex(p *Processor, k *Package) {
	p.internal(2)
	p.reg.SP = p.reg.indexWord(k.Inst.Prefix.indexPrefix())
}

// --- 8-bit ALU ---

type aluOp uint8

const (
	aluAdd aluOp = iota
	aluAdc
	aluSub
	aluSbc
	aluAnd
	aluXor
	aluOr
	aluCp
)

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func (p *Processor) aluApply(op aluOp, value uint8) {
	switch op {
	case aluAdd:
		p.reg.A, p.reg.F = add8(p.reg.A, value, 0)
	case aluAdc:
		p.reg.A, p.reg.F = add8(p.reg.A, value, p.reg.F&FlagC)
	case aluSub:
		p.reg.A, p.reg.F = sub8(p.reg.A, value, 0)
	case aluSbc:
		p.reg.A, p.reg.F = sub8(p.reg.A, value, p.reg.F&FlagC)
	case aluAnd:
		p.reg.A, p.reg.F = and8(p.reg.A, value)
	case aluXor:
		p.reg.A, p.reg.F = xor8(p.reg.A, value)
	case aluOr:
		p.reg.A, p.reg.F = or8(p.reg.A, value)
	case aluCp:
		p.reg.F = cp8(p.reg.A, value)
	}
}

func aluReg(op aluOp, src uint8) microcode {
	return func(p *Processor, k *Package) {
		p.aluApply(op, p.getReg(src, k))
	}
}

func aluMem(op aluOp) microcode {
	return func(p *Processor, k *Package) {
		if k.indexed() {
			p.internal(5)
		}
		p.aluApply(op, p.memReadCycle(p.operandAddr(k)))
	}
}

func aluImm(op aluOp) microcode {
	return func(p *Processor, k *Package) {
		p.aluApply(op, uint8(k.Imm))
	}
}

// --- INC/DEC ---

func incReg(code uint8) microcode {
	return func(p *Processor, k *Package) {
		v, f := inc8(p.getReg(code, k), p.reg.F)
		p.setReg(code, k, v)
		p.reg.F = f
	}
}

func decReg(code uint8) microcode {
	return func(p *Processor, k *Package) {
		v, f := dec8(p.getReg(code, k), p.reg.F)
		p.setReg(code, k, v)
		p.reg.F = f
	}
}

func incMem(p *Processor, k *Package) {
	if k.indexed() {
		p.internal(5)
	}
	addr := p.operandAddr(k)
	v, f := inc8(p.memReadCycle(addr), p.reg.F)
	p.internal(1)
	p.memWriteCycle(addr, v)
	p.reg.F = f
}

func decMem(p *Processor, k *Package) {
	if k.indexed() {
		p.internal(5)
	}
	addr := p.operandAddr(k)
	v, f := dec8(p.memReadCycle(addr), p.reg.F)
	p.internal(1)
	p.memWriteCycle(addr, v)
	p.reg.F = f
}

func incPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(2)
		p.setPair(code, k, p.getPair(code, k)+1)
	}
}

func decPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(2)
		p.setPair(code, k, p.getPair(code, k)-1)
	}
}

// --- 16-bit add ---

// ADD HL,rr (and ADD IX/IY,rr): preserves S/Z/P-V, WZ trails the left
// operand.
func addIndexPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(7)
		ip := k.Inst.Prefix.indexPrefix()
		before := p.reg.indexWord(ip)
		result, f := addWord(before, p.getPair(code, k), p.reg.F)
		p.reg.setIndexWord(ip, result)
		p.reg.F = f
		p.reg.WZ = before + 1
	}
}

// --- accumulator rotates and flag ops ---

func microRLCA(p *Processor, k *Package) { p.reg.A, p.reg.F = rlca8(p.reg.A, p.reg.F) }
func microRRCA(p *Processor, k *Package) { p.reg.A, p.reg.F = rrca8(p.reg.A, p.reg.F) }
func microRLA(p *Processor, k *Package)  { p.reg.A, p.reg.F = rla8(p.reg.A, p.reg.F) }
func microRRA(p *Processor, k *Package)  { p.reg.A, p.reg.F = rra8(p.reg.A, p.reg.F) }
func microDAA(p *Processor, k *Package)  { p.reg.A, p.reg.F = daa(p.reg.A, p.reg.F) }
func microCPL(p *Processor, k *Package)  { p.reg.A, p.reg.F = cpl8(p.reg.A, p.reg.F) }
func microSCF(p *Processor, k *Package)  { p.reg.F = scf(p.reg.A, p.reg.F) }
func microCCF(p *Processor, k *Package)  { p.reg.F = ccf(p.reg.A, p.reg.F) }

// --- exchanges ---

func microExAF(p *Processor, k *Package) { p.reg.ExchangeAF() }
func microExx(p *Processor, k *Package)  { p.reg.Exchange() }

// EX DE,HL never touches the index registers, prefix or not.
func microExDEHL(p *Processor, k *Package) {
	p.reg.D, p.reg.H = p.reg.H, p.reg.D
	p.reg.E, p.reg.L = p.reg.L, p.reg.E
}

// EX (SP),HL / EX (SP),IX / EX (SP),IY.
func microExSPIndex(p *Processor, k *Package) {
	ip := k.Inst.Prefix.indexPrefix()
	old := p.reg.indexWord(ip)
	lo := p.memReadCycle(p.reg.SP)
	hi := p.memReadCycle(p.reg.SP + 1)
	p.internal(1)
	p.memWriteCycle(p.reg.SP+1, uint8(old>>8))
	p.memWriteCycle(p.reg.SP, uint8(old))
	p.internal(2)
	v := bits.Word(hi, lo)
	p.reg.setIndexWord(ip, v)
	p.reg.WZ = v
}

// --- interrupt control ---

func microDI(p *Processor, k *Package) {
	p.ints.iff1 = false
	p.ints.iff2 = false
}

// EI re-enables after the next instruction completes; the engine checks the
// shadow latch before accepting a maskable interrupt.
func microEI(p *Processor, k *Package) {
	p.ints.iff1 = true
	p.ints.iff2 = true
	p.ints.eiShadow = true
}

func microHalt(p *Processor, k *Package) {
	p.setState(Halted)
}
