package cpu

// CB-prefix families: rotate/shift, BIT, RES, SET, in register, (HL) and
// doubly-prefixed indexed forms. The indexed memory variants with a register
// code other than 6 are the undocumented copy-to-register instructions: the
// shifted byte is both written back to memory and latched into the register.

// Rotate/shift selector, in opcode order (bits 5-3 of the CB opcode).
const (
	rotRLC uint8 = iota
	rotRRC
	rotRL
	rotRR
	rotSLA
	rotSRA
	rotSLL
	rotSRL
)

var rotNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}

func rotApply(op uint8, v, f uint8) (uint8, uint8) {
	switch op {
	case rotRLC:
		return rlc8(v)
	case rotRRC:
		return rrc8(v)
	case rotRL:
		return rl8(v, f)
	case rotRR:
		return rr8(v, f)
	case rotSLA:
		return sla8(v)
	case rotSRA:
		return sra8(v)
	case rotSLL:
		return sll8(v)
	default:
		return srl8(v)
	}
}

func rotReg(op, code uint8) microcode {
	return func(p *Processor, k *Package) {
		v, f := rotApply(op, p.getReg(code, k), p.reg.F)
		p.setReg(code, k, v)
		p.reg.F = f
	}
}

func rotMem(op uint8) microcode {
	return func(p *Processor, k *Package) {
		addr := p.reg.HL()
		v, f := rotApply(op, p.memReadCycle(addr), p.reg.F)
		p.internal(1)
		p.memWriteCycle(addr, v)
		p.reg.F = f
	}
}

func bitReg(n, code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.reg.F = bitTest(p.getReg(code, k), n, p.reg.F)
	}
}

func bitMem(n uint8) microcode {
	return func(p *Processor, k *Package) {
		v := p.memReadCycle(p.reg.HL())
		p.internal(1)
		p.reg.F = bitTestMem(v, n, p.reg.F, uint8(p.reg.WZ>>8))
	}
}

func setResReg(set bool, n, code uint8) microcode {
	mask := uint8(1) << n
	return func(p *Processor, k *Package) {
		v := p.getReg(code, k)
		if set {
			v |= mask
		} else {
			v &^= mask
		}
		p.setReg(code, k, v)
	}
}

func setResMem(set bool, n uint8) microcode {
	mask := uint8(1) << n
	return func(p *Processor, k *Package) {
		addr := p.reg.HL()
		v := p.memReadCycle(addr)
		if set {
			v |= mask
		} else {
			v &^= mask
		}
		p.internal(1)
		p.memWriteCycle(addr, v)
	}
}

// --- DDCB / FDCB forms: the operand is always memory at WZ = IX/IY + d ---

// rotMemIndexed handles the rotate/shift block; copyCode 6 is the pure
// memory form, anything else copies the result to that register.
func rotMemIndexed(op, copyCode uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(2)
		addr := p.reg.WZ
		v, f := rotApply(op, p.memReadCycle(addr), p.reg.F)
		p.internal(1)
		p.memWriteCycle(addr, v)
		p.reg.F = f
		if copyCode != regMem {
			p.setPlainReg(copyCode, v)
		}
	}
}

// bitMemIndexed is BIT n,(IX+d): every register code decodes to the same
// test, and X/Y come from the effective address latched in WZ.
func bitMemIndexed(n uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(2)
		v := p.memReadCycle(p.reg.WZ)
		p.internal(1)
		p.reg.F = bitTestMem(v, n, p.reg.F, uint8(p.reg.WZ>>8))
	}
}

func setResMemIndexed(set bool, n, copyCode uint8) microcode {
	mask := uint8(1) << n
	return func(p *Processor, k *Package) {
		p.internal(2)
		addr := p.reg.WZ
		v := p.memReadCycle(addr)
		if set {
			v |= mask
		} else {
			v &^= mask
		}
		p.internal(1)
		p.memWriteCycle(addr, v)
		if copyCode != regMem {
			p.setPlainReg(copyCode, v)
		}
	}
}
