package ttf

import "errors"

// Reading bytes from a font's binary representation.
//
// All multi-byte values in an SFNT container are big-endian. We navigate the
// font's binary data with bounds-checked views into the original slice,
// never copying table contents.

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data, i.e. a view into the font's binary
// data. It is used throughout this module; clients never see it.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) || offset+n < 0 {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u8 returns the byte in b at the relative offset i.
func (b binarySegm) u8(i int) (uint8, error) {
	if i < 0 || i >= len(b) {
		return 0, errBufferBounds
	}
	return b[i], nil
}

// i8 returns the int8 in b at the relative offset i.
func (b binarySegm) i8(i int) (int8, error) {
	n, err := b.u8(i)
	return int8(n), err
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// i32 returns the int32 in b at the relative offset i.
func (b binarySegm) i32(i int) (int32, error) {
	n, err := b.u32(i)
	return int32(n), err
}

// U16 is a convenience accessor returning 0 on out-of-bounds reads.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 is a convenience accessor returning 0 on out-of-bounds reads.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// --- Fixed-point types -----------------------------------------------------

// F2Dot14 is a 16-bit signed fixed-point number with 2 integer bits and
// 14 fractional bits. The format uses it for normalized axis coordinates
// and for composite-glyph transform matrix entries.
type F2Dot14 int16

// Float converts f to a float32 in the range [-2.0, 2.0).
func (f F2Dot14) Float() float32 {
	return float32(f) / 16384.0
}

// f2dot14 returns the F2Dot14 in b at the relative offset i.
func (b binarySegm) f2dot14(i int) (F2Dot14, error) {
	n, err := b.i16(i)
	return F2Dot14(n), err
}

// fixed returns the 16.16 fixed-point value in b at the relative offset i,
// converted to float64.
func (b binarySegm) fixed(i int) (float64, error) {
	n, err := b.i32(i)
	if err != nil {
		return 0, err
	}
	return float64(n) / 65536.0, nil
}

// --- byteStream ------------------------------------------------------------

// byteStream is a cursor over a binary segment. Reads advance the cursor;
// the first failed read latches an error and all subsequent reads fail.
// This mirrors how glyph records are laid out: variable-size runs that can
// only be consumed front to back.
type byteStream struct {
	data binarySegm
	pos  int
	err  error
}

func stream(b binarySegm) *byteStream {
	return &byteStream{data: b}
}

func (s *byteStream) atEnd() bool {
	return s.pos >= len(s.data)
}

func (s *byteStream) skip(n int) {
	if s.err != nil {
		return
	}
	if s.pos+n > len(s.data) || n < 0 {
		s.err = errBufferBounds
		return
	}
	s.pos += n
}

func (s *byteStream) readU8() uint8 {
	if s.err != nil {
		return 0
	}
	n, err := s.data.u8(s.pos)
	if err != nil {
		s.err = err
		return 0
	}
	s.pos++
	return n
}

func (s *byteStream) readI8() int8 {
	return int8(s.readU8())
}

func (s *byteStream) readU16() uint16 {
	if s.err != nil {
		return 0
	}
	n, err := s.data.u16(s.pos)
	if err != nil {
		s.err = err
		return 0
	}
	s.pos += 2
	return n
}

func (s *byteStream) readI16() int16 {
	return int16(s.readU16())
}

func (s *byteStream) readU32() uint32 {
	if s.err != nil {
		return 0
	}
	n, err := s.data.u32(s.pos)
	if err != nil {
		s.err = err
		return 0
	}
	s.pos += 4
	return n
}

func (s *byteStream) readF2Dot14() F2Dot14 {
	return F2Dot14(s.readI16())
}

// readBytes returns n raw bytes as a sub-slice of the underlying segment.
func (s *byteStream) readBytes(n int) binarySegm {
	if s.err != nil {
		return nil
	}
	buf, err := s.data.view(s.pos, n)
	if err != nil {
		s.err = err
		return nil
	}
	s.pos += n
	return buf
}

// tail returns the remaining unread bytes without advancing.
func (s *byteStream) tail() binarySegm {
	if s.err != nil || s.pos > len(s.data) {
		return nil
	}
	return s.data[s.pos:]
}
