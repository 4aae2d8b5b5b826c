package cpu

// prefixNOP is the synthetic one-byte instruction a dangling DD/FD prefix
// collapses to: four T-states, no effect, and the following byte is decoded
// afresh.
var prefixNOP = &Instruction{Mnemonic: "NOP", Size: 1, TStates: 4, exec: microNop}

// DecodeAt decodes the instruction at addr with untimed reads, resolving
// prefix chains the way the engine would. Debuggers and disassemblers use it
// to look ahead without disturbing timing. ok is false when addr is too
// close to the top of memory to hold the instruction.
func DecodeAt(mem Memory, addr uint16) (Package, bool) {
	for {
		buf := mem.ReadBytes(addr, 4)
		k, skip, ok := decode(buf, addr)
		if !ok {
			return Package{}, false
		}
		if skip {
			addr++
			continue
		}
		return k, true
	}
}

// decode turns the speculative prefetch buffer (up to four bytes starting at
// pc) into an instruction package.
//
// skip is the prefix-chain rule: a DD or FD followed by DD, FD or ED acts
// as a NOP, and the caller should re-enter the decode one byte further
// on. ok is false on decode underrun, when the buffer ends mid-instruction
// at the top of the address space.
func decode(buf []uint8, pc uint16) (k Package, skip, ok bool) {
	if len(buf) == 0 {
		return Package{}, false, false
	}

	var inst *Instruction
	switch buf[0] {
	case 0xCB, 0xED:
		if len(buf) < 2 {
			return Package{}, false, false
		}
		if buf[0] == 0xCB {
			inst = cbTable[buf[1]]
		} else {
			inst = edTable[buf[1]]
		}

	case 0xDD, 0xFD:
		if len(buf) < 2 {
			return Package{}, false, false
		}
		switch buf[1] {
		case 0xDD, 0xFD, 0xED:
			// The first prefix is spent as a NOP; the real instruction
			// starts at the next byte.
			return Package{Inst: prefixNOP, Addr: pc}, true, true
		case 0xCB:
			if len(buf) < 4 {
				return Package{}, false, false
			}
			if buf[0] == 0xDD {
				inst = ddcbTable[buf[3]]
			} else {
				inst = fdcbTable[buf[3]]
			}
			return Package{Inst: inst, Disp: int8(buf[2]), Addr: pc}, false, true
		default:
			if buf[0] == 0xDD {
				inst = ddTable[buf[1]]
			} else {
				inst = fdTable[buf[1]]
			}
		}

	default:
		inst = mainTable[buf[0]]
	}

	if len(buf) < inst.Size {
		return Package{}, false, false
	}

	k = Package{Inst: inst, Addr: pc}
	o := inst.Size - inst.Operand.bytes()
	switch inst.Operand {
	case OpByte:
		k.Imm = uint16(buf[o])
	case OpWord:
		k.Imm = uint16(buf[o]) | uint16(buf[o+1])<<8
	case OpDisp:
		k.Disp = int8(buf[o])
	case OpDispByte:
		k.Disp = int8(buf[o])
		k.Imm = uint16(buf[o+1])
	}
	return k, false, true
}
