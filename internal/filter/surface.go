package filter

import "github.com/gogpu/tvg/internal/image"

// Surface is a premultiplied pixel buffer. Pixel (x, y) lives at
// Pix[y*Stride+x].
type Surface struct {
	Pix    []uint32
	W, H   int
	Stride int
	Order  image.Order
}

// Empty reports whether the surface has no pixels.
func (s Surface) Empty() bool { return s.W <= 0 || s.H <= 0 }

func (s Surface) row(y int) []uint32 {
	return s.Pix[y*s.Stride : y*s.Stride+s.W]
}

// Color is a straight-alpha RGBA color.
type Color struct {
	R, G, B, A uint8
}

// unpack returns the straight color channels of p in RGB order.
func unpack(p uint32, o image.Order) (r, g, b, a uint8) {
	a = uint8(p >> 24)
	c0, c1, c2 := uint8(p>>16), uint8(p>>8), uint8(p)
	if o == image.ABGR {
		return c2, c1, c0, a
	}
	return c0, c1, c2, a
}

// pack is the inverse of unpack.
func pack(r, g, b, a uint8, o image.Order) uint32 {
	if o == image.ABGR {
		r, b = b, r
	}
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// clampUint8 rounds v to the nearest byte.
func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// addSat adds two pixels channel by channel, saturating at 255.
func addSat(p, q uint32) uint32 {
	var out uint32
	for shift := 0; shift < 32; shift += 8 {
		c := min(p>>shift&0xff+q>>shift&0xff, 255)
		out |= c << shift
	}
	return out
}
