package wide

import "golang.org/x/sys/cpu"

// BatchSize is the number of pixels processed per batch.
const BatchSize = 16

// Available reports whether the CPU has vector units the batch kernels can
// be lowered to.
func Available() bool {
	return cpu.X86.HasAVX2 || cpu.X86.HasSSE41 || cpu.ARM64.HasASIMD
}

// Batch holds 16 packed pixels split into channel planes. C0..C2 follow
// the packing order of the source pixels.
type Batch struct {
	A, C0, C1, C2 U16x16
}

// Load splits 16 packed pixels into channel planes.
func (b *Batch) Load(px []uint32) {
	_ = px[BatchSize-1]
	for i := range BatchSize {
		p := px[i]
		b.A[i] = uint16(p >> 24)
		b.C0[i] = uint16(p >> 16 & 0xff)
		b.C1[i] = uint16(p >> 8 & 0xff)
		b.C2[i] = uint16(p & 0xff)
	}
}

// Store packs the channel planes back into 16 pixels.
func (b *Batch) Store(px []uint32) {
	_ = px[BatchSize-1]
	for i := range BatchSize {
		px[i] = uint32(b.A[i]&0xff)<<24 | uint32(b.C0[i]&0xff)<<16 | uint32(b.C1[i]&0xff)<<8 | uint32(b.C2[i]&0xff)
	}
}

// Scale multiplies every channel by (a+1)/256, the same rounding as the
// packed scalar alpha multiply.
func (b *Batch) Scale(a uint16) {
	f := SplatU16(a + 1)
	b.A = b.A.MulShr8(f)
	b.C0 = b.C0.MulShr8(f)
	b.C1 = b.C1.MulShr8(f)
	b.C2 = b.C2.MulShr8(f)
}

// FillSolid composites the premultiplied color over dst with full coverage:
// dst = color + dst*(255-alpha). len(dst) need not be a multiple of
// BatchSize.
func FillSolid(dst []uint32, color uint32) {
	ia := uint16(255 - color>>24)
	if ia == 0 {
		for i := range dst {
			dst[i] = color
		}
		return
	}
	var src, d Batch
	var block [BatchSize]uint32
	for i := range block {
		block[i] = color
	}
	src.Load(block[:])

	n := len(dst) &^ (BatchSize - 1)
	for i := 0; i < n; i += BatchSize {
		px := dst[i : i+BatchSize]
		d.Load(px)
		d.Scale(ia)
		d.A = d.A.Add(src.A)
		d.C0 = d.C0.Add(src.C0)
		d.C1 = d.C1.Add(src.C1)
		d.C2 = d.C2.Add(src.C2)
		d.Store(px)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = color + scalarScale(dst[i], uint32(ia))
	}
}

// scalarScale is the packed two-channels-at-a-time alpha multiply.
func scalarScale(c, a uint32) uint32 {
	a++
	return (((c>>8)&0x00ff00ff)*a)&0xff00ff00 + (((c&0x00ff00ff)*a)>>8)&0x00ff00ff
}
