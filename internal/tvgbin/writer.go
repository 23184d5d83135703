package tvgbin

import (
	"encoding/binary"
	"math"
)

// Writer builds a block stream. Blocks nest: Begin opens a block whose
// length is patched when the matching End is called.
type Writer struct {
	buf  []byte
	open []int
}

// NewWriter returns a writer that has already emitted the file header.
func NewWriter() *Writer {
	w := &Writer{buf: make([]byte, 0, 256)}
	w.buf = append(w.buf, Signature...)
	w.buf = append(w.buf, Version...)
	w.buf = binary.LittleEndian.AppendUint16(w.buf, 0)
	return w
}

// Begin opens a block with the given tag.
func (w *Writer) Begin(tag Tag) {
	w.buf = append(w.buf, byte(tag), 0, 0, 0, 0)
	w.open = append(w.open, len(w.buf))
}

// End closes the innermost open block.
func (w *Writer) End() {
	n := len(w.open) - 1
	start := w.open[n]
	w.open = w.open[:n]
	binary.LittleEndian.PutUint32(w.buf[start-4:start], uint32(len(w.buf)-start))
}

// U8 appends one byte.
func (w *Writer) U8(v uint8) { w.buf = append(w.buf, v) }

// U32 appends a little-endian u32.
func (w *Writer) U32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// F32 appends a little-endian IEEE-754 float.
func (w *Writer) F32(v float32) { w.U32(math.Float32bits(v)) }

// F32s appends every value of vs.
func (w *Writer) F32s(vs ...float32) {
	for _, v := range vs {
		w.F32(v)
	}
}

// RGBA appends four color bytes.
func (w *Writer) RGBA(r, g, b, a uint8) { w.buf = append(w.buf, r, g, b, a) }

// Raw appends bytes unchanged.
func (w *Writer) Raw(p []byte) { w.buf = append(w.buf, p...) }

// U8Block writes a block holding one byte.
func (w *Writer) U8Block(tag Tag, v uint8) {
	w.Begin(tag)
	w.U8(v)
	w.End()
}

// F32Block writes a block holding floats.
func (w *Writer) F32Block(tag Tag, vs ...float32) {
	w.Begin(tag)
	w.F32s(vs...)
	w.End()
}

// RGBABlock writes a block holding a color.
func (w *Writer) RGBABlock(tag Tag, r, g, b, a uint8) {
	w.Begin(tag)
	w.RGBA(r, g, b, a)
	w.End()
}

// Bytes returns the encoded data. Every block must be closed.
func (w *Writer) Bytes() []byte {
	if len(w.open) != 0 {
		panic("tvgbin: Bytes with open blocks")
	}
	return w.buf
}
