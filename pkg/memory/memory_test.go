package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentBasics(t *testing.T) {
	s := NewSegment(0x4000, 0x1000, false)
	assert.Equal(t, uint16(0x4000), s.StartAddress())
	assert.Equal(t, 0x1000, s.Size())
	assert.False(t, s.ReadOnly())

	s.WriteByte(0, 0xAA)
	assert.Equal(t, uint8(0xAA), s.ReadByte(0))
}

func TestReadOnlySegmentDropsWrites(t *testing.T) {
	s := NewSegmentFrom(0, []uint8{0x11, 0x22}, true)
	s.WriteByte(0, 0xFF)
	assert.Equal(t, uint8(0x11), s.ReadByte(0), "write to ROM must be dropped")

	// Force is the host's loader path and ignores the read-only flag.
	s.Force(0, []uint8{0x33})
	assert.Equal(t, uint8(0x33), s.ReadByte(0))
}

func TestBankValidation(t *testing.T) {
	_, err := NewBank(NewSegment(0, 0x100, false), NewSegment(0x80, 0x100, false))
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = NewBank(NewSegment(0xFF00, 0x200, false))
	assert.ErrorIs(t, err, ErrTooLarge)

	b, err := NewBank(NewSegment(0x1000, 0x100, false), NewSegment(0, 0x100, false))
	assert.NoError(t, err)
	assert.NotNil(t, b.SegmentFor(0x1050))
	assert.Nil(t, b.SegmentFor(0x0500))
}

func TestUnmappedReadsAndWrites(t *testing.T) {
	b, err := NewBank(NewSegment(0x1000, 0x100, false))
	assert.NoError(t, err)

	assert.Equal(t, uint8(0x00), b.ReadByte(0x0000), "unmapped read is 0x00")
	b.WriteByte(0x0000, 0xFF) // silently dropped
	assert.Equal(t, uint8(0x00), b.ReadByte(0x0000))

	b.WriteByte(0x1000, 0x42)
	assert.Equal(t, uint8(0x42), b.ReadByte(0x1000))
}

// TestReadWordLaw (P4): read_word(a) == read_byte(a) | read_byte(a+1)<<8.
func TestReadWordLaw(t *testing.T) {
	b, _ := NewBank(NewSegment(0, 0x10000, false))
	b.WriteBytes(0x1234, []uint8{0xCD, 0xAB})
	for _, addr := range []uint16{0x0000, 0x1234, 0x1235, 0x7FFF, 0xFFFE} {
		want := uint16(b.ReadByte(addr)) | uint16(b.ReadByte(addr+1))<<8
		assert.Equal(t, want, b.ReadWord(addr), "addr %04X", addr)
	}
	assert.Equal(t, uint16(0xABCD), b.ReadWord(0x1234), "little endian")
}

func TestWordWriteLittleEndian(t *testing.T) {
	b, _ := NewBank(NewSegment(0, 0x100, false))
	b.WriteWord(0x10, 0x1234)
	assert.Equal(t, uint8(0x34), b.ReadByte(0x10), "low byte first")
	assert.Equal(t, uint8(0x12), b.ReadByte(0x11))
}

func TestReadBytesTruncatesAtTop(t *testing.T) {
	b, _ := NewBank(NewSegment(0xFF00, 0x100, false))
	b.WriteByte(0xFFFF, 0x99)
	got := b.ReadBytes(0xFFFE, 4)
	assert.Len(t, got, 2, "read crossing the end of the address space truncates")
	assert.Equal(t, uint8(0x99), got[1])
}

func TestClearWritable(t *testing.T) {
	ram := NewSegment(0, 0x10, false)
	rom := NewSegmentFrom(0x100, []uint8{0x55}, true)
	b, _ := NewBank(ram, rom)
	b.WriteByte(0x05, 0xAA)
	b.ClearWritable()
	assert.Equal(t, uint8(0x00), b.ReadByte(0x05))
	assert.Equal(t, uint8(0x55), b.ReadByte(0x100), "ROM survives a clear")
}
