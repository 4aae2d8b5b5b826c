package cpu

// Machine-cycle timer. Every externally observable bus event happens inside
// one of these cycles, and every T-state goes through the Clock collaborator,
// which makes the tick counter the ordering authority for the whole machine.
//
// T-state costs per cycle kind:
//
//	opcode fetch    4 (address, data, refresh at IR)
//	memory read     3 (address, data, release; waits after the data phase)
//	memory write    3 (address+data, wait slot after T2, release)
//	port read       4 (includes the automatic internal wait)
//	port write      4
//	int ack (NMI)   5
//	int ack (IM0)   6
//	int ack (IM1/2) 7
//	internal op     N

func (p *Processor) tick(n int) {
	for i := 0; i < n; i++ {
		p.clk.WaitForNextTick()
	}
}

// insertWaitCycles drains the host's pending wait-state latch at the
// designated slot of the enclosing cycle.
func (p *Processor) insertWaitCycles() {
	n := int(p.pendingWaits.Swap(0))
	if n <= 0 {
		return
	}
	if p.Hooks.BeforeInsertWaitCycles != nil {
		p.Hooks.BeforeInsertWaitCycles(n)
	}
	p.tick(n)
	p.waitsThisInstruction += n
}

// fetchCycle is an M1 opcode fetch: address out, data in, then the refresh
// phase with IR on the address bus. R's low seven bits advance here, once
// per fetch, so prefixed instructions bump R twice.
func (p *Processor) fetchCycle() {
	p.tick(2)
	p.insertWaitCycles()
	p.tick(2)
	p.reg.BumpR()
}

func (p *Processor) memReadCycle(addr uint16) uint8 {
	p.tick(2)
	p.insertWaitCycles()
	v := p.mem.ReadByte(addr)
	p.tick(1)
	return v
}

func (p *Processor) memWriteCycle(addr uint16, v uint8) {
	p.tick(2)
	p.insertWaitCycles()
	p.mem.WriteByte(addr, v)
	p.tick(1)
}

// memReadWordCycle reads a little-endian word as two read cycles, low byte
// first.
func (p *Processor) memReadWordCycle(addr uint16) uint16 {
	lo := p.memReadCycle(addr)
	hi := p.memReadCycle(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (p *Processor) memWriteWordCycle(addr uint16, v uint16) {
	p.memWriteCycle(addr, uint8(v))
	p.memWriteCycle(addr+1, uint8(v>>8))
}

func (p *Processor) portReadCycle(port uint8) uint8 {
	p.tick(2)
	p.ports.SignalRead(port)
	v := p.ports.In(port)
	p.insertWaitCycles()
	p.tick(2)
	return v
}

func (p *Processor) portWriteCycle(port uint8, v uint8) {
	p.tick(2)
	p.ports.SignalWrite(port)
	p.ports.Out(port, v)
	p.insertWaitCycles()
	p.tick(2)
}

// internal emits an internal-operation cycle of n T-states.
func (p *Processor) internal(n int) {
	p.tick(n)
}

// intAckCycle emits the interrupt-acknowledge cycle for the given T-state
// cost (5 for NMI, 6 for IM0, 7 for IM1/IM2). The acknowledge is M1-like:
// it refreshes and bumps R.
func (p *Processor) intAckCycle(tstates int) {
	p.tick(tstates - 2)
	p.insertWaitCycles()
	p.tick(2)
	p.reg.BumpR()
}

// push writes a word to the stack, high byte first, decrementing SP twice.
func (p *Processor) push(v uint16) {
	p.reg.SP--
	p.memWriteCycle(p.reg.SP, uint8(v>>8))
	p.reg.SP--
	p.memWriteCycle(p.reg.SP, uint8(v))
}

// pop reads a word from the stack, low byte first, incrementing SP twice.
func (p *Processor) pop() uint16 {
	lo := p.memReadCycle(p.reg.SP)
	p.reg.SP++
	hi := p.memReadCycle(p.reg.SP)
	p.reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}
