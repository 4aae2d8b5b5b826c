package cpu

// ED-prefix group: register-indirect port I/O, 16-bit carry arithmetic, the
// interrupt-register loads, RLD/RRD, and the block transfer/compare/I/O
// instructions with their repeating forms.

// IN r,(C); code 6 is the undocumented flag-only form IN (C).
func inRegC(code uint8) microcode {
	return func(p *Processor, k *Package) {
		bc := p.reg.BC()
		v := p.portReadCycle(p.reg.C)
		if code != regMem {
			p.setPlainReg(code, v)
		}
		p.reg.F = inFlags(v, p.reg.F)
		p.reg.WZ = bc + 1
	}
}

// OUT (C),r; code 6 is the undocumented OUT (C),0.
func outCReg(code uint8) microcode {
	return func(p *Processor, k *Package) {
		v := uint8(0)
		if code != regMem {
			v = p.getPlainReg(code)
		}
		p.portWriteCycle(p.reg.C, v)
		p.reg.WZ = p.reg.BC() + 1
	}
}

func adcHLPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(7)
		before := p.reg.HL()
		result, f := adcWord(before, p.getPair(code, k), p.reg.F)
		p.reg.SetHL(result)
		p.reg.F = f
		p.reg.WZ = before + 1
	}
}

func sbcHLPair(code uint8) microcode {
	return func(p *Processor, k *Package) {
		p.internal(7)
		before := p.reg.HL()
		result, f := sbcWord(before, p.getPair(code, k), p.reg.F)
		p.reg.SetHL(result)
		p.reg.F = f
		p.reg.WZ = before + 1
	}
}

func microNEG(p *Processor, k *Package) {
	p.reg.A, p.reg.F = neg8(p.reg.A)
}

func setIM(mode InterruptMode) microcode {
	return func(p *Processor, k *Package) {
		p.ints.mode = mode
	}
}

func microLdIA(p *Processor, k *Package) {
	p.internal(1)
	p.reg.I = p.reg.A
}

// LD R,A is the only writer of R's bit 7.
func microLdRA(p *Processor, k *Package) {
	p.internal(1)
	p.reg.R = p.reg.A
}

func microLdAI(p *Processor, k *Package) {
	p.internal(1)
	p.reg.A = p.reg.I
	p.reg.F = ldAIRFlags(p.reg.A, p.ints.iff2, p.reg.F)
}

func microLdAR(p *Processor, k *Package) {
	p.internal(1)
	p.reg.A = p.reg.R
	p.reg.F = ldAIRFlags(p.reg.A, p.ints.iff2, p.reg.F)
}

// RLD rotates the low nybble of (HL) and A's low nybble left as one 12-bit
// value; RRD rotates right.
func microRLD(p *Processor, k *Package) {
	addr := p.reg.HL()
	v := p.memReadCycle(addr)
	p.internal(4)
	result := v<<4 | p.reg.A&0x0F
	p.reg.A = p.reg.A&0xF0 | v>>4
	p.memWriteCycle(addr, result)
	p.reg.F = inFlags(p.reg.A, p.reg.F)
	p.reg.WZ = addr + 1
}

func microRRD(p *Processor, k *Package) {
	addr := p.reg.HL()
	v := p.memReadCycle(addr)
	p.internal(4)
	result := p.reg.A<<4 | v>>4
	p.reg.A = p.reg.A&0xF0 | v&0x0F
	p.memWriteCycle(addr, result)
	p.reg.F = inFlags(p.reg.A, p.reg.F)
	p.reg.WZ = addr + 1
}

// --- block transfer / compare / I/O ---

// ldBlock covers LDI, LDD and the repeating forms; dir is +1 or -1.
func ldBlock(dir int8, repeating bool) microcode {
	return func(p *Processor, k *Package) {
		v := p.memReadCycle(p.reg.HL())
		p.memWriteCycle(p.reg.DE(), v)
		p.internal(2)
		p.reg.SetHL(p.reg.HL() + uint16(int16(dir)))
		p.reg.SetDE(p.reg.DE() + uint16(int16(dir)))
		bc := p.reg.BC() - 1
		p.reg.SetBC(bc)
		p.reg.F = ldBlockFlags(p.reg.F, v, p.reg.A, bc)
		if repeating && bc != 0 {
			p.internal(5)
			p.repeat = true
			p.reg.WZ = k.Addr + 1
		}
	}
}

func cpBlock(dir int8, repeating bool) microcode {
	return func(p *Processor, k *Package) {
		v := p.memReadCycle(p.reg.HL())
		p.internal(5)
		p.reg.SetHL(p.reg.HL() + uint16(int16(dir)))
		bc := p.reg.BC() - 1
		p.reg.SetBC(bc)
		p.reg.F = cpBlockFlags(p.reg.F, p.reg.A, v, bc)
		p.reg.WZ += uint16(int16(dir))
		if repeating && bc != 0 && p.reg.F&FlagZ == 0 {
			p.internal(5)
			p.repeat = true
			p.reg.WZ = k.Addr + 1
		}
	}
}

// inBlock covers INI, IND, INIR, INDR: port (C) to (HL), B decrements.
func inBlock(dir int8, repeating bool) microcode {
	return func(p *Processor, k *Package) {
		p.internal(1)
		wz := p.reg.BC() + uint16(int16(dir))
		v := p.portReadCycle(p.reg.C)
		p.memWriteCycle(p.reg.HL(), v)
		p.reg.B--
		p.reg.SetHL(p.reg.HL() + uint16(int16(dir)))
		p.reg.F = inBlockFlags(p.reg.B, v, p.reg.C, dir)
		p.reg.WZ = wz
		if repeating && p.reg.B != 0 {
			p.internal(5)
			p.repeat = true
		}
	}
}

// outBlock covers OUTI, OUTD, OTIR, OTDR: (HL) to port (C), B decrements
// before the port cycle.
func outBlock(dir int8, repeating bool) microcode {
	return func(p *Processor, k *Package) {
		p.internal(1)
		v := p.memReadCycle(p.reg.HL())
		p.reg.B--
		p.portWriteCycle(p.reg.C, v)
		p.reg.SetHL(p.reg.HL() + uint16(int16(dir)))
		p.reg.F = outBlockFlags(p.reg.B, v, p.reg.L)
		p.reg.WZ = p.reg.BC() + uint16(int16(dir))
		if repeating && p.reg.B != 0 {
			p.internal(5)
			p.repeat = true
		}
	}
}
