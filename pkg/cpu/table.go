package cpu

import (
	"fmt"
	"strings"
)

// The seven dispatch tables. Unprefixed opcodes hit mainTable directly; the
// prefix bytes CB/DD/ED/FD select the secondary tables and the doubly
// prefixed DDCB/FDCB forms the tertiary ones. Prefix byte slots in mainTable
// stay nil: the decoder consumes prefixes itself.
var (
	mainTable [256]*Instruction
	cbTable   [256]*Instruction
	ddTable   [256]*Instruction
	edTable   [256]*Instruction
	fdTable   [256]*Instruction
	ddcbTable [256]*Instruction
	fdcbTable [256]*Instruction
)

var (
	regNames       = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames      = [4]string{"BC", "DE", "HL", "SP"}
	stackPairNames = [4]string{"BC", "DE", "HL", "AF"}
	condByCode     = [8]Condition{CondNZ, CondZ, CondNC, CondC, CondPO, CondPE, CondP, CondM}
)

// Lookup returns the instruction descriptor for a prefix/opcode pair, or nil
// for the prefix-byte slots of the unprefixed table.
func Lookup(prefix Prefix, opcode uint8) *Instruction {
	switch prefix {
	case PrefixCB:
		return cbTable[opcode]
	case PrefixDD:
		return ddTable[opcode]
	case PrefixED:
		return edTable[opcode]
	case PrefixFD:
		return fdTable[opcode]
	case PrefixDDCB:
		return ddcbTable[opcode]
	case PrefixFDCB:
		return fdcbTable[opcode]
	}
	return mainTable[opcode]
}

func init() {
	buildMain()
	buildCB()
	buildED()
	buildShifted(&ddcbTable, PrefixDDCB, "IX")
	buildShifted(&fdcbTable, PrefixFDCB, "IY")
	buildIndex(&ddTable, PrefixDD, "IX")
	buildIndex(&fdTable, PrefixFD, "IY")
}

func def(op uint8, mn string, size int, operand Operand, ts int, exec microcode) *Instruction {
	in := &Instruction{Mnemonic: mn, Opcode: op, Size: size, Operand: operand, TStates: ts, exec: exec}
	mainTable[op] = in
	return in
}

func buildMain() {
	def(0x00, "NOP", 1, OpNone, 4, microNop)

	for c := uint8(0); c < 4; c++ {
		def(0x01+c*0x10, "LD "+pairNames[c]+",nn", 3, OpWord, 10, loadPairImm(c))
		def(0x03+c*0x10, "INC "+pairNames[c], 1, OpNone, 6, incPair(c))
		def(0x09+c*0x10, "ADD HL,"+pairNames[c], 1, OpNone, 11, addIndexPair(c))
		def(0x0B+c*0x10, "DEC "+pairNames[c], 1, OpNone, 6, decPair(c))
	}

	def(0x02, "LD (BC),A", 1, OpNone, 7, loadIndA(0))
	def(0x0A, "LD A,(BC)", 1, OpNone, 7, loadAInd(0))
	def(0x12, "LD (DE),A", 1, OpNone, 7, loadIndA(1))
	def(0x1A, "LD A,(DE)", 1, OpNone, 7, loadAInd(1))

	for r := uint8(0); r < 8; r++ {
		if r == regMem {
			continue
		}
		def(0x04+r*8, "INC "+regNames[r], 1, OpNone, 4, incReg(r))
		def(0x05+r*8, "DEC "+regNames[r], 1, OpNone, 4, decReg(r))
		def(0x06+r*8, "LD "+regNames[r]+",n", 2, OpByte, 7, loadRegImm(r))
	}
	def(0x34, "INC (HL)", 1, OpNone, 11, incMem).mem = true
	def(0x35, "DEC (HL)", 1, OpNone, 11, decMem).mem = true
	def(0x36, "LD (HL),n", 2, OpByte, 10, loadMemImm).mem = true

	def(0x07, "RLCA", 1, OpNone, 4, microRLCA)
	def(0x0F, "RRCA", 1, OpNone, 4, microRRCA)
	def(0x17, "RLA", 1, OpNone, 4, microRLA)
	def(0x1F, "RRA", 1, OpNone, 4, microRRA)
	def(0x27, "DAA", 1, OpNone, 4, microDAA)
	def(0x2F, "CPL", 1, OpNone, 4, microCPL)
	def(0x37, "SCF", 1, OpNone, 4, microSCF)
	def(0x3F, "CCF", 1, OpNone, 4, microCCF)

	def(0x08, "EX AF,AF'", 1, OpNone, 4, microExAF)
	def(0x10, "DJNZ d", 2, OpDisp, 8, microDJNZ).TStatesTaken = 13
	def(0x18, "JR d", 2, OpDisp, 12, microJR)
	for i, cond := range []Condition{CondNZ, CondZ, CondNC, CondC} {
		in := def(0x20+uint8(i)*8, "JR "+cond.String()+",d", 2, OpDisp, 7, jrCond(cond))
		in.Cond = cond
		in.TStatesTaken = 12
	}

	def(0x22, "LD (nn),HL", 3, OpWord, 16, loadExtPair(2))
	def(0x2A, "LD HL,(nn)", 3, OpWord, 16, loadPairExt(2))
	def(0x32, "LD (nn),A", 3, OpWord, 13, loadExtA)
	def(0x3A, "LD A,(nn)", 3, OpWord, 13, loadAExt)

	// LD r,r' quadrant; 0x76 is the hole where LD (HL),(HL) would sit.
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x40 + dst*8 + src
			switch {
			case op == 0x76:
				def(0x76, "HALT", 1, OpNone, 4, microHalt)
			case dst == regMem:
				def(op, "LD (HL),"+regNames[src], 1, OpNone, 7, loadMemReg(src)).mem = true
			case src == regMem:
				def(op, "LD "+regNames[dst]+",(HL)", 1, OpNone, 7, loadRegMem(dst)).mem = true
			default:
				def(op, "LD "+regNames[dst]+","+regNames[src], 1, OpNone, 4, loadRegReg(dst, src))
			}
		}
	}

	// ALU quadrant plus the immediate column.
	for o := uint8(0); o < 8; o++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x80 + o*8 + src
			if src == regMem {
				def(op, aluNames[o]+"(HL)", 1, OpNone, 7, aluMem(aluOp(o))).mem = true
			} else {
				def(op, aluNames[o]+regNames[src], 1, OpNone, 4, aluReg(aluOp(o), src))
			}
		}
		def(0xC6+o*8, aluNames[o]+"n", 2, OpByte, 7, aluImm(aluOp(o)))
	}

	for i := uint8(0); i < 8; i++ {
		cond := condByCode[i]
		in := def(0xC0+i*8, "RET "+cond.String(), 1, OpNone, 5, retCond(cond))
		in.Cond = cond
		in.TStatesTaken = 11
		in = def(0xC2+i*8, "JP "+cond.String()+",nn", 3, OpWord, 10, jpCond(cond))
		in.Cond = cond
		in = def(0xC4+i*8, "CALL "+cond.String()+",nn", 3, OpWord, 10, callCond(cond))
		in.Cond = cond
		in.TStatesTaken = 17
		def(0xC7+i*8, fmt.Sprintf("RST %02Xh", i*8), 1, OpNone, 11, rst(uint16(i)*8))
	}

	for c := uint8(0); c < 4; c++ {
		def(0xC1+c*0x10, "POP "+stackPairNames[c], 1, OpNone, 10, popPair(c))
		def(0xC5+c*0x10, "PUSH "+stackPairNames[c], 1, OpNone, 11, pushPair(c))
	}

	def(0xC3, "JP nn", 3, OpWord, 10, microJP)
	def(0xC9, "RET", 1, OpNone, 10, microRET)
	def(0xCD, "CALL nn", 3, OpWord, 17, microCALL)
	def(0xD3, "OUT (n),A", 2, OpByte, 11, microOutImmA)
	def(0xD9, "EXX", 1, OpNone, 4, microExx)
	def(0xDB, "IN A,(n)", 2, OpByte, 11, microInAImm)
	def(0xE3, "EX (SP),HL", 1, OpNone, 19, microExSPIndex)
	def(0xE9, "JP (HL)", 1, OpNone, 4, microJPIndex)
	def(0xEB, "EX DE,HL", 1, OpNone, 4, microExDEHL)
	def(0xF3, "DI", 1, OpNone, 4, microDI)
	def(0xF9, "LD SP,HL", 1, OpNone, 6, loadSPIndex)
	def(0xFB, "EI", 1, OpNone, 4, microEI)
}

func defCB(op uint8, mn string, ts int, exec microcode) *Instruction {
	in := &Instruction{Mnemonic: mn, Prefix: PrefixCB, Opcode: op, Size: 2, TStates: ts, exec: exec}
	cbTable[op] = in
	return in
}

func buildCB() {
	for n := uint8(0); n < 8; n++ {
		for r := uint8(0); r < 8; r++ {
			rot := n<<3 | r
			if r == regMem {
				defCB(rot, rotNames[n]+" (HL)", 15, rotMem(n)).mem = true
				defCB(0x40|rot, fmt.Sprintf("BIT %d,(HL)", n), 12, bitMem(n)).mem = true
				defCB(0x80|rot, fmt.Sprintf("RES %d,(HL)", n), 15, setResMem(false, n)).mem = true
				defCB(0xC0|rot, fmt.Sprintf("SET %d,(HL)", n), 15, setResMem(true, n)).mem = true
				continue
			}
			defCB(rot, rotNames[n]+" "+regNames[r], 8, rotReg(n, r))
			defCB(0x40|rot, fmt.Sprintf("BIT %d,%s", n, regNames[r]), 8, bitReg(n, r))
			defCB(0x80|rot, fmt.Sprintf("RES %d,%s", n, regNames[r]), 8, setResReg(false, n, r))
			defCB(0xC0|rot, fmt.Sprintf("SET %d,%s", n, regNames[r]), 8, setResReg(true, n, r))
		}
	}
}

func defED(op uint8, mn string, size int, operand Operand, ts int, exec microcode) *Instruction {
	in := &Instruction{Mnemonic: mn, Prefix: PrefixED, Opcode: op, Size: size, Operand: operand, TStates: ts, exec: exec}
	edTable[op] = in
	return in
}

func buildED() {
	for r := uint8(0); r < 8; r++ {
		inName, outName := "IN "+regNames[r]+",(C)", "OUT (C),"+regNames[r]
		if r == regMem {
			inName, outName = "IN (C)", "OUT (C),0"
		}
		defED(0x40+r*8, inName, 2, OpNone, 12, inRegC(r))
		defED(0x41+r*8, outName, 2, OpNone, 12, outCReg(r))
	}

	for c := uint8(0); c < 4; c++ {
		defED(0x42+c*0x10, "SBC HL,"+pairNames[c], 2, OpNone, 15, sbcHLPair(c))
		defED(0x4A+c*0x10, "ADC HL,"+pairNames[c], 2, OpNone, 15, adcHLPair(c))
		defED(0x43+c*0x10, "LD (nn),"+pairNames[c], 4, OpWord, 20, loadExtPair(c))
		defED(0x4B+c*0x10, "LD "+pairNames[c]+",(nn)", 4, OpWord, 20, loadPairExt(c))
	}

	// NEG and RETN echo through the undefined 0x44/0x45 columns.
	for _, op := range []uint8{0x44, 0x4C, 0x54, 0x5C, 0x64, 0x6C, 0x74, 0x7C} {
		defED(op, "NEG", 2, OpNone, 8, microNEG)
	}
	for _, op := range []uint8{0x45, 0x55, 0x5D, 0x65, 0x6D, 0x75, 0x7D} {
		defED(op, "RETN", 2, OpNone, 14, microRETN)
	}
	defED(0x4D, "RETI", 2, OpNone, 14, microRETN)

	for _, op := range []uint8{0x46, 0x4E, 0x66, 0x6E} {
		defED(op, "IM 0", 2, OpNone, 8, setIM(IM0))
	}
	for _, op := range []uint8{0x56, 0x76} {
		defED(op, "IM 1", 2, OpNone, 8, setIM(IM1))
	}
	for _, op := range []uint8{0x5E, 0x7E} {
		defED(op, "IM 2", 2, OpNone, 8, setIM(IM2))
	}

	defED(0x47, "LD I,A", 2, OpNone, 9, microLdIA)
	defED(0x4F, "LD R,A", 2, OpNone, 9, microLdRA)
	defED(0x57, "LD A,I", 2, OpNone, 9, microLdAI)
	defED(0x5F, "LD A,R", 2, OpNone, 9, microLdAR)
	defED(0x67, "RRD", 2, OpNone, 18, microRRD)
	defED(0x6F, "RLD", 2, OpNone, 18, microRLD)

	defED(0xA0, "LDI", 2, OpNone, 16, ldBlock(1, false))
	defED(0xA1, "CPI", 2, OpNone, 16, cpBlock(1, false))
	defED(0xA2, "INI", 2, OpNone, 16, inBlock(1, false))
	defED(0xA3, "OUTI", 2, OpNone, 16, outBlock(1, false))
	defED(0xA8, "LDD", 2, OpNone, 16, ldBlock(-1, false))
	defED(0xA9, "CPD", 2, OpNone, 16, cpBlock(-1, false))
	defED(0xAA, "IND", 2, OpNone, 16, inBlock(-1, false))
	defED(0xAB, "OUTD", 2, OpNone, 16, outBlock(-1, false))

	repeats := []struct {
		op   uint8
		mn   string
		exec microcode
	}{
		{0xB0, "LDIR", ldBlock(1, true)},
		{0xB1, "CPIR", cpBlock(1, true)},
		{0xB2, "INIR", inBlock(1, true)},
		{0xB3, "OTIR", outBlock(1, true)},
		{0xB8, "LDDR", ldBlock(-1, true)},
		{0xB9, "CPDR", cpBlock(-1, true)},
		{0xBA, "INDR", inBlock(-1, true)},
		{0xBB, "OTDR", outBlock(-1, true)},
	}
	for _, r := range repeats {
		in := defED(r.op, r.mn, 2, OpNone, 16, r.exec)
		in.TStatesTaken = 21
		in.Looping = true
	}

	// Every remaining hole is an ED NOP: undefined encodings execute as a
	// two-byte no-op.
	for op := 0; op < 256; op++ {
		if edTable[op] == nil {
			edTable[op] = &Instruction{
				Mnemonic: "NOP", Prefix: PrefixED, Opcode: uint8(op),
				Size: 2, TStates: 8, exec: microNop,
			}
		}
	}
}

// buildShifted fills a DDCB/FDCB table: every entry works on memory at
// IX/IY+d, and outside the BIT quadrant a register code other than 6 copies
// the result into that register as well.
func buildShifted(t *[256]*Instruction, prefix Prefix, name string) {
	operand := "(" + name + "+d)"
	for op := 0; op < 256; op++ {
		n := uint8(op>>3) & 7
		r := uint8(op) & 7
		in := &Instruction{Prefix: prefix, Opcode: uint8(op), Size: 4, TStates: 23, mem: true}
		switch uint8(op) >> 6 {
		case 0:
			in.Mnemonic = rotNames[n] + " " + operand
			in.exec = rotMemIndexed(n, r)
		case 1:
			in.Mnemonic = fmt.Sprintf("BIT %d,%s", n, operand)
			in.TStates = 20
			in.exec = bitMemIndexed(n)
		case 2:
			in.Mnemonic = fmt.Sprintf("RES %d,%s", n, operand)
			in.exec = setResMemIndexed(false, n, r)
		case 3:
			in.Mnemonic = fmt.Sprintf("SET %d,%s", n, operand)
			in.exec = setResMemIndexed(true, n, r)
		}
		if uint8(op)>>6 != 1 && r != regMem {
			in.CopyReg = true
			in.Mnemonic += "," + regNames[r]
		}
		t[op] = in
	}
}

// buildIndex derives a DD or FD table from the unprefixed one. Entries with
// an (HL) data operand become the displaced (IX+d)/(IY+d) forms; everything
// else keeps its behavior with H, L and the HL pair resolving through the
// index register, which yields the undocumented IXH/IXL/IYH/IYL coverage for
// free. EX DE,HL, EXX, EX AF,AF' and HALT ignore the prefix entirely.
func buildIndex(t *[256]*Instruction, prefix Prefix, name string) {
	for op := 0; op < 256; op++ {
		base := mainTable[op]
		if base == nil {
			continue
		}
		in := *base
		in.Prefix = prefix
		if base.mem {
			in.Size = base.Size + 2
			switch base.Operand {
			case OpNone:
				in.Operand = OpDisp
				in.TStates = base.TStates + 12
			case OpByte:
				in.Operand = OpDispByte
				in.TStates = base.TStates + 9
			}
			in.Mnemonic = strings.Replace(base.Mnemonic, "(HL)", "("+name+"+d)", 1)
		} else {
			in.Size = base.Size + 1
			in.TStates = base.TStates + 4
			if in.TStatesTaken != 0 {
				in.TStatesTaken += 4
			}
			in.Mnemonic = indexMnemonic(uint8(op), base.Mnemonic, name)
		}
		t[op] = &in
	}
}

// indexMnemonic rewrites H, L and HL references for the index tables.
func indexMnemonic(op uint8, mnemonic, name string) string {
	switch op {
	case 0x08, 0x76, 0xD9, 0xEB:
		// EX AF,AF', HALT, EXX, EX DE,HL: the prefix changes nothing.
		return mnemonic
	}
	fields := strings.SplitN(mnemonic, " ", 2)
	if len(fields) == 1 {
		return mnemonic
	}
	operands := strings.Split(fields[1], ",")
	for i, o := range operands {
		switch o {
		case "HL":
			operands[i] = name
		case "(HL)":
			operands[i] = "(" + name + ")"
		case "H":
			operands[i] = name + "H"
		case "L":
			operands[i] = name + "L"
		}
	}
	return fields[0] + " " + strings.Join(operands, ",")
}
