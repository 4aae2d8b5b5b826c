package bits

import "testing"

func TestParity(t *testing.T) {
	tests := []struct {
		b    uint8
		even bool
	}{
		{0x00, true},
		{0x01, false},
		{0x03, true},
		{0x07, false},
		{0xFF, true},
		{0xFE, false},
		{0x81, true},
	}
	for _, tc := range tests {
		if got := Parity(tc.b); got != tc.even {
			t.Errorf("Parity(%02X) = %v, want %v", tc.b, got, tc.even)
		}
	}
}

func TestWordSplit(t *testing.T) {
	if Word(0x12, 0x34) != 0x1234 {
		t.Errorf("Word(12,34) = %04X", Word(0x12, 0x34))
	}
	hi, lo := Split(0xABCD)
	if hi != 0xAB || lo != 0xCD {
		t.Errorf("Split(ABCD) = %02X,%02X", hi, lo)
	}
	// Round trip
	for _, w := range []uint16{0, 1, 0x00FF, 0xFF00, 0x8000, 0xFFFF} {
		h, l := Split(w)
		if Word(h, l) != w {
			t.Errorf("Word(Split(%04X)) = %04X", w, Word(h, l))
		}
	}
}

func TestNybbles(t *testing.T) {
	if HighNybble(0xA5) != 0x0A {
		t.Errorf("HighNybble(A5) = %X", HighNybble(0xA5))
	}
	if LowNybble(0xA5) != 0x05 {
		t.Errorf("LowNybble(A5) = %X", LowNybble(0xA5))
	}
	if Join(0x0A, 0x05) != 0xA5 {
		t.Errorf("Join(A,5) = %02X", Join(0x0A, 0x05))
	}
}

func TestBitOps(t *testing.T) {
	if !Test(0x80, 7) || Test(0x80, 6) {
		t.Error("Test bit 7 of 0x80")
	}
	if Set(0x00, 3) != 0x08 {
		t.Errorf("Set(0,3) = %02X", Set(0x00, 3))
	}
	if Reset(0xFF, 0) != 0xFE {
		t.Errorf("Reset(FF,0) = %02X", Reset(0xFF, 0))
	}
}

func TestDisplace(t *testing.T) {
	tests := []struct {
		base uint16
		d    uint8
		want uint16
	}{
		{0x1000, 0x02, 0x1002},
		{0x1000, 0xFF, 0x0FFF}, // -1
		{0x1000, 0x80, 0x0F80}, // -128
		{0x0000, 0xFF, 0xFFFF}, // wraps below zero
		{0xFFFF, 0x01, 0x0000}, // wraps above top
	}
	for _, tc := range tests {
		if got := Displace(tc.base, tc.d); got != tc.want {
			t.Errorf("Displace(%04X, %02X) = %04X, want %04X", tc.base, tc.d, got, tc.want)
		}
	}
}
