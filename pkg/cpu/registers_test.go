package cpu

import "testing"

func TestRegisterPairs(t *testing.T) {
	var r Registers
	r.SetBC(0x1234)
	if r.B != 0x12 || r.C != 0x34 {
		t.Errorf("SetBC: B=%02X C=%02X", r.B, r.C)
	}
	if r.BC() != 0x1234 {
		t.Errorf("BC() = %04X", r.BC())
	}
	r.SetIX(0xABCD)
	if r.IXH != 0xAB || r.IXL != 0xCD {
		t.Errorf("SetIX halves: %02X %02X", r.IXH, r.IXL)
	}
	r.A, r.F = 0x42, 0x81
	if r.AF() != 0x4281 {
		t.Errorf("AF() = %04X", r.AF())
	}
}

// TestExchangeTwiceIsNoop: EXX then EXX, and EX AF,AF' twice, restore the
// original file.
func TestExchangeTwiceIsNoop(t *testing.T) {
	r := Registers{A: 1, F: 2, B: 3, C: 4, D: 5, E: 6, H: 7, L: 8,
		A1: 9, F1: 10, B1: 11, C1: 12, D1: 13, E1: 14, H1: 15, L1: 16}
	orig := r

	r.Exchange()
	if r.B != 11 || r.B1 != 3 {
		t.Errorf("EXX did not swap: B=%02X B1=%02X", r.B, r.B1)
	}
	if r.A != 1 {
		t.Error("EXX must not touch A")
	}
	r.Exchange()
	if r != orig {
		t.Error("EXX twice should be a no-op")
	}

	r.ExchangeAF()
	if r.A != 9 || r.F != 10 {
		t.Errorf("EX AF,AF': A=%02X F=%02X", r.A, r.F)
	}
	if r.B != 3 {
		t.Error("EX AF,AF' must not touch BC")
	}
	r.ExchangeAF()
	if r != orig {
		t.Error("EX AF,AF' twice should be a no-op")
	}
}

// TestBumpRPreservesBit7: only the low seven bits count up.
func TestBumpRPreservesBit7(t *testing.T) {
	var r Registers
	r.R = 0xFF
	r.BumpR()
	if r.R != 0x80 {
		t.Errorf("BumpR from FF: got %02X, want 80", r.R)
	}
	r.R = 0x7F
	r.BumpR()
	if r.R != 0x00 {
		t.Errorf("BumpR from 7F: got %02X, want 00", r.R)
	}
	r.R = 0x80
	for i := 0; i < 200; i++ {
		r.BumpR()
		if r.R&0x80 == 0 {
			t.Fatalf("bit 7 lost after %d bumps", i+1)
		}
	}
}

func TestRegistersReset(t *testing.T) {
	r := Registers{A: 1, PC: 0x1234, SP: 0x8000, IXH: 0xFF, WZ: 0x9999}
	r.Reset(DefaultStackTop)
	if r.SP != 0xFFFF {
		t.Errorf("SP after reset = %04X, want FFFF", r.SP)
	}
	if r.A != 0 || r.PC != 0 || r.IXH != 0 || r.WZ != 0 {
		t.Error("reset should zero everything but SP")
	}
}

func TestByCode(t *testing.T) {
	var r Registers
	r.B, r.H, r.L, r.A = 1, 2, 3, 4
	r.IXH, r.IXL, r.IYH, r.IYL = 5, 6, 7, 8

	if *r.byCode(0, PrefixNone) != 1 || *r.byCode(7, PrefixNone) != 4 {
		t.Error("byCode plain registers")
	}
	if *r.byCode(4, PrefixNone) != 2 || *r.byCode(5, PrefixNone) != 3 {
		t.Error("byCode H/L")
	}
	if *r.byCode(4, PrefixDD) != 5 || *r.byCode(5, PrefixDD) != 6 {
		t.Error("byCode should remap onto IX halves under DD")
	}
	if *r.byCode(4, PrefixFD) != 7 || *r.byCode(5, PrefixFD) != 8 {
		t.Error("byCode should remap onto IY halves under FD")
	}
	if r.byCode(6, PrefixNone) != nil {
		t.Error("code 6 is the memory sentinel")
	}

	*r.byCode(5, PrefixDD) = 0x42
	if r.IX() != 0x0542 {
		t.Errorf("write through IXL view: IX=%04X", r.IX())
	}
}

func TestIndexWord(t *testing.T) {
	var r Registers
	r.SetHL(0x1111)
	r.SetIX(0x2222)
	r.SetIY(0x3333)
	if r.indexWord(PrefixNone) != 0x1111 ||
		r.indexWord(PrefixDD) != 0x2222 ||
		r.indexWord(PrefixFD) != 0x3333 {
		t.Error("indexWord resolution")
	}
	r.setIndexWord(PrefixDD, 0x4444)
	if r.IX() != 0x4444 || r.HL() != 0x1111 {
		t.Error("setIndexWord under DD must only touch IX")
	}
}
