package packet

import (
	"encoding/binary"
	"math"
)

// reader is a bounds-checked little-endian cursor. Reads past the end of the
// buffer yield zero values and latch the failure, so decoders check ok() once
// after reading a whole record instead of after every field.
type reader struct {
	b   []byte
	off int
	bad bool
}

func newReader(b []byte, off int) *reader {
	return &reader{b: b, off: off}
}

func (r *reader) take(n int) []byte {
	if r.bad || r.off < 0 || r.off+n > len(r.b) {
		r.bad = true
		return nil
	}
	s := r.b[r.off : r.off+n]
	r.off += n
	return s
}

func (r *reader) skip(n int) { r.take(n) }

func (r *reader) ok() bool { return !r.bad }

func (r *reader) u8() uint8 {
	s := r.take(1)
	if s == nil {
		return 0
	}
	return s[0]
}

func (r *reader) i8() int8 { return int8(r.u8()) }

func (r *reader) u16() uint16 {
	s := r.take(2)
	if s == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(s)
}

func (r *reader) u32() uint32 {
	s := r.take(4)
	if s == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(s)
}

func (r *reader) u64() uint64 {
	s := r.take(8)
	if s == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(s)
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func math32bits(f float32) uint32 { return math.Float32bits(f) }

func finite(vs ...float32) bool {
	for _, v := range vs {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// carOffset returns the offset of the sub-record for player, or false when the
// index is outside the car slots or the payload cannot hold the full packet.
func carOffset(b []byte, player uint8, recordSize, totalSize int) (int, bool) {
	if len(b) < totalSize || int(player) >= NumCars {
		return 0, false
	}
	return HeaderSize + int(player)*recordSize, true
}
