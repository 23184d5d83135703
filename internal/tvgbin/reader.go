package tvgbin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed reports data that does not follow the block structure.
var ErrMalformed = errors.New("tvgbin: malformed data")

// blockHeader is the size of a tag plus a length.
const blockHeader = 5

// ReadHeader checks the file header and returns the block stream after
// it.
func ReadHeader(data []byte) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrMalformed, len(data))
	}
	if string(data[:3]) != Signature {
		return nil, fmt.Errorf("%w: bad signature %q", ErrMalformed, data[:3])
	}
	if string(data[3:6]) != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformed, data[3:6])
	}
	reserved := int(binary.LittleEndian.Uint16(data[6:8]))
	if len(data) < HeaderSize+reserved {
		return nil, fmt.Errorf("%w: reserved area overruns data", ErrMalformed)
	}
	return data[HeaderSize+reserved:], nil
}

// Block is one tagged block.
type Block struct {
	Tag  Tag
	Data []byte
}

// Reader walks the blocks of a payload.
type Reader struct {
	data []byte
	err  error
}

// NewReader returns a reader over the blocks in data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Next returns the next block. It returns false at the end of the data or
// on error; Err tells them apart.
func (r *Reader) Next() (Block, bool) {
	if r.err != nil || len(r.data) == 0 {
		return Block{}, false
	}
	if len(r.data) < blockHeader {
		r.err = fmt.Errorf("%w: truncated block header", ErrMalformed)
		return Block{}, false
	}
	tag := Tag(r.data[0])
	n := binary.LittleEndian.Uint32(r.data[1:5])
	if uint64(n) > uint64(len(r.data)-blockHeader) {
		r.err = fmt.Errorf("%w: %v block of %d bytes overruns data", ErrMalformed, tag, n)
		return Block{}, false
	}
	b := Block{Tag: tag, Data: r.data[blockHeader : blockHeader+int(n)]}
	r.data = r.data[blockHeader+int(n):]
	return b, true
}

// Err returns the first error met by Next.
func (r *Reader) Err() error { return r.err }

// Decoder reads fixed-size little-endian values from a payload. After the
// first short read every method returns zero and Err reports the failure.
type Decoder struct {
	data []byte
	err  error
}

// NewDecoder returns a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

func (d *Decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.data) < n {
		d.err = fmt.Errorf("%w: need %d bytes, have %d", ErrMalformed, n, len(d.data))
		return nil
	}
	b := d.data[:n]
	d.data = d.data[n:]
	return b
}

// U8 reads one byte.
func (d *Decoder) U8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

// U32 reads a little-endian u32.
func (d *Decoder) U32() uint32 {
	if b := d.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// F32 reads a little-endian IEEE-754 float.
func (d *Decoder) F32() float32 {
	return math.Float32frombits(d.U32())
}

// F32s reads n floats.
func (d *Decoder) F32s(n int) []float32 {
	if n < 0 || n > d.Len()/4 {
		d.take(n * 4)
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = d.F32()
	}
	return out
}

// RGBA reads four color bytes.
func (d *Decoder) RGBA() (r, g, b, a uint8) {
	if p := d.take(4); p != nil {
		return p[0], p[1], p[2], p[3]
	}
	return 0, 0, 0, 0
}

// Bytes reads n raw bytes.
func (d *Decoder) Bytes(n int) []byte {
	return d.take(n)
}

// Len returns the number of unread bytes.
func (d *Decoder) Len() int { return len(d.data) }

// Err returns the first short-read error.
func (d *Decoder) Err() error { return d.err }

// Done reports an error if bytes remain unread or a read failed.
func (d *Decoder) Done() error {
	if d.err != nil {
		return d.err
	}
	if len(d.data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(d.data))
	}
	return nil
}
