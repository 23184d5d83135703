package image

import "math"

// Filter selects how an image is sampled between pixel centers.
type Filter uint8

const (
	// Nearest selects the pixel containing the sample point.
	Nearest Filter = iota

	// Bilinear interpolates the four pixels around the sample point.
	Bilinear
)

// String returns the string representation of the filter.
func (f Filter) String() string {
	switch f {
	case Nearest:
		return "Nearest"
	case Bilinear:
		return "Bilinear"
	default:
		return "Unknown"
	}
}

// Sample returns the premultiplied pixel at image coordinates (x, y), where
// pixel (i, j) covers [i, i+1) x [j, j+1). Points outside the image are
// transparent.
func (img *Image) Sample(x, y float32, f Filter) uint32 {
	if !(x >= 0 && y >= 0 && x < float32(img.W) && y < float32(img.H)) {
		return 0
	}
	if f == Nearest {
		return img.Pix[int(y)*img.Stride+int(x)]
	}
	return img.bilinear(x, y)
}

func (img *Image) bilinear(x, y float32) uint32 {
	fx, fy := float64(x)-0.5, float64(y)-0.5
	x0, y0 := math.Floor(fx), math.Floor(fy)
	rx := uint32((fx - x0) * 255)
	ry := uint32((fy - y0) * 255)
	ix0, iy0 := int(x0), int(y0)
	ix1, iy1 := min(ix0+1, img.W-1), min(iy0+1, img.H-1)
	ix0, iy0 = max(ix0, 0), max(iy0, 0)

	r0 := img.Pix[iy0*img.Stride:]
	r1 := img.Pix[iy1*img.Stride:]
	top := Lerp(r0[ix0], r0[ix1], rx)
	bot := Lerp(r1[ix0], r1[ix1], rx)
	return Lerp(top, bot, ry)
}

// Lerp blends two packed pixels, t = 0 returning a and t = 255 returning b.
func Lerp(a, b, t uint32) uint32 {
	if t == 0 || a == b {
		return a
	}
	it := 255 - t
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		c := ((a>>shift&0xff)*it + (b>>shift&0xff)*t + 127) / 255
		out |= c << shift
	}
	return out
}
