// Package memory provides the segment-mapped 64 KiB address space behind the
// CPU. Reads from unmapped addresses see 0x00; writes to unmapped or
// read-only addresses are dropped, the way a bus write with nothing
// listening simply has no effect.
package memory

import (
	"errors"
	"fmt"
	"sort"
)

// AddressSpace is the full extent of the 16-bit bus.
const AddressSpace = 0x10000

var (
	// ErrOverlap is returned when two segments claim the same address.
	ErrOverlap = errors.New("memory segments overlap")
	// ErrTooLarge is returned when a segment runs past the address space.
	ErrTooLarge = errors.New("memory segment exceeds address space")
)

// Segment is one contiguous span of RAM or ROM.
type Segment struct {
	start    uint16
	data     []uint8
	readOnly bool
}

// NewSegment allocates a zero-filled segment of the given size.
func NewSegment(start uint16, size int, readOnly bool) *Segment {
	return &Segment{start: start, data: make([]uint8, size), readOnly: readOnly}
}

// NewSegmentFrom builds a segment around existing contents (copied).
func NewSegmentFrom(start uint16, contents []uint8, readOnly bool) *Segment {
	data := make([]uint8, len(contents))
	copy(data, contents)
	return &Segment{start: start, data: data, readOnly: readOnly}
}

func (s *Segment) StartAddress() uint16 { return s.start }
func (s *Segment) Size() int            { return len(s.data) }
func (s *Segment) ReadOnly() bool       { return s.readOnly }

func (s *Segment) contains(addr uint16) bool {
	off := int(addr) - int(s.start)
	return off >= 0 && off < len(s.data)
}

// ReadByte reads at an offset into the segment.
func (s *Segment) ReadByte(offset int) uint8 {
	return s.data[offset]
}

// WriteByte writes at an offset; read-only segments drop the write.
func (s *Segment) WriteByte(offset int, v uint8) {
	if s.readOnly {
		return
	}
	s.data[offset] = v
}

// Force writes even to read-only segments; hosts use it to load ROM images.
func (s *Segment) Force(offset int, contents []uint8) {
	copy(s.data[offset:], contents)
}

// Bank is an ordered collection of non-overlapping segments covering some
// subset of the address space. The zero value is an empty, fully unmapped
// bank.
type Bank struct {
	segments []*Segment
}

// NewBank validates that the segments fit the address space without
// overlapping and returns them as a bank, ordered by start address.
func NewBank(segments ...*Segment) (*Bank, error) {
	sorted := make([]*Segment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })
	for i, s := range sorted {
		if int(s.start)+len(s.data) > AddressSpace {
			return nil, fmt.Errorf("%w: %04X+%d", ErrTooLarge, s.start, len(s.data))
		}
		if i > 0 {
			prev := sorted[i-1]
			if int(prev.start)+len(prev.data) > int(s.start) {
				return nil, fmt.Errorf("%w: %04X and %04X", ErrOverlap, prev.start, s.start)
			}
		}
	}
	return &Bank{segments: sorted}, nil
}

// SegmentFor returns the segment mapping addr, or nil.
func (b *Bank) SegmentFor(addr uint16) *Segment {
	for _, s := range b.segments {
		if s.contains(addr) {
			return s
		}
	}
	return nil
}

// Size is the bus extent, not the mapped byte count.
func (b *Bank) Size() int { return AddressSpace }

// ReadByte returns the byte at addr, or 0x00 when nothing is mapped there.
func (b *Bank) ReadByte(addr uint16) uint8 {
	if s := b.SegmentFor(addr); s != nil {
		return s.ReadByte(int(addr - s.start))
	}
	return 0x00
}

// ReadBytes reads up to n bytes, truncating at the top of the address space.
func (b *Bank) ReadBytes(addr uint16, n int) []uint8 {
	if int(addr)+n > AddressSpace {
		n = AddressSpace - int(addr)
	}
	out := make([]uint8, n)
	for i := 0; i < n; i++ {
		out[i] = b.ReadByte(addr + uint16(i))
	}
	return out
}

// ReadWord reads a little-endian word, low byte first. At the very top of
// the address space the high byte is unmapped and reads as zero.
func (b *Bank) ReadWord(addr uint16) uint16 {
	lo := uint16(b.ReadByte(addr))
	if addr == 0xFFFF {
		return lo
	}
	return lo | uint16(b.ReadByte(addr+1))<<8
}

// WriteByte stores v at addr; unmapped and read-only targets drop it.
func (b *Bank) WriteByte(addr uint16, v uint8) {
	if s := b.SegmentFor(addr); s != nil {
		s.WriteByte(int(addr-s.start), v)
	}
}

// WriteBytes stores a run of bytes, truncating at the top of the address
// space.
func (b *Bank) WriteBytes(addr uint16, data []uint8) {
	for i, v := range data {
		if int(addr)+i >= AddressSpace {
			return
		}
		b.WriteByte(addr+uint16(i), v)
	}
}

// WriteWord stores a little-endian word, low byte first.
func (b *Bank) WriteWord(addr uint16, v uint16) {
	b.WriteByte(addr, uint8(v))
	if addr != 0xFFFF {
		b.WriteByte(addr+1, uint8(v>>8))
	}
}

// ClearWritable zeroes every writable segment; ROM contents survive a reset.
func (b *Bank) ClearWritable() {
	for _, s := range b.segments {
		if s.readOnly {
			continue
		}
		for i := range s.data {
			s.data[i] = 0
		}
	}
}
