package filter

import "github.com/gogpu/tvg/internal/image"

// Rec. 709 luminance weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// ColorMatrix is a 4x5 row-major matrix applied to straight-alpha RGBA
// values in [0, 255]:
//
//	[R']   [m0  m1  m2  m3  m4 ]   [R]
//	[G'] = [m5  m6  m7  m8  m9 ] * [G]
//	[B']   [m10 m11 m12 m13 m14]   [B]
//	[A']   [m15 m16 m17 m18 m19]   [A]
//	                               [1]
type ColorMatrix [20]float32

// Identity returns the matrix leaving colors unchanged.
func Identity() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// FillMatrix replaces every color with c and scales coverage by c.A.
func FillMatrix(c Color) ColorMatrix {
	return ColorMatrix{
		0, 0, 0, 0, float32(c.R),
		0, 0, 0, 0, float32(c.G),
		0, 0, 0, 0, float32(c.B),
		0, 0, 0, float32(c.A) / 255, 0,
	}
}

// TintMatrix maps luminance onto the ramp from black to white and mixes
// the result with the original by intensity in [0, 100].
func TintMatrix(black, white Color, intensity float32) ColorMatrix {
	k := min(max(intensity, 0), 100) / 100
	var m ColorMatrix
	lo := [3]uint8{black.R, black.G, black.B}
	hi := [3]uint8{white.R, white.G, white.B}
	for i := range 3 {
		d := k * (float32(hi[i]) - float32(lo[i])) / 255
		r := m[i*5 : i*5+5]
		r[0], r[1], r[2] = d*lumR, d*lumG, d*lumB
		r[i] += 1 - k
		r[4] = k * float32(lo[i])
	}
	m[18] = 1
	return m
}

// Apply transforms every pixel of s in place.
func (m *ColorMatrix) Apply(s Surface) {
	for y := range s.H {
		row := s.row(y)
		for x, p := range row {
			pr, pg, pb, pa := unpack(p, s.Order)
			a := float32(pa)
			var r, g, b float32
			if pa > 0 {
				r = float32(pr) * 255 / a
				g = float32(pg) * 255 / a
				b = float32(pb) * 255 / a
			}
			nr := m[0]*r + m[1]*g + m[2]*b + m[3]*a + m[4]
			ng := m[5]*r + m[6]*g + m[7]*b + m[8]*a + m[9]
			nb := m[10]*r + m[11]*g + m[12]*b + m[13]*a + m[14]
			na := clampUint8(m[15]*r + m[16]*g + m[17]*b + m[18]*a + m[19])
			row[x] = premul(nr, ng, nb, na, s.Order)
		}
	}
}

// Tritone maps luminance onto three colors: shadow at black, midtone at
// 50% and highlight at white. Alpha is kept.
func Tritone(s Surface, shadow, midtone, highlight Color) {
	lerp := func(a, b uint8, t float32) float32 {
		return float32(a) + (float32(b)-float32(a))*t
	}
	for y := range s.H {
		row := s.row(y)
		for x, p := range row {
			pr, pg, pb, pa := unpack(p, s.Order)
			if pa == 0 {
				continue
			}
			// Premultiplication cancels out in the luminance ratio.
			l := (lumR*float32(pr) + lumG*float32(pg) + lumB*float32(pb)) / float32(pa)
			lo, hi, t := shadow, midtone, l*2
			if l >= 0.5 {
				lo, hi, t = midtone, highlight, l*2-1
			}
			t = min(max(t, 0), 1)
			row[x] = premul(lerp(lo.R, hi.R, t), lerp(lo.G, hi.G, t), lerp(lo.B, hi.B, t), pa, s.Order)
		}
	}
}

// premul scales straight channels in [0, 255] by a and packs them.
func premul(r, g, b float32, a uint8, o image.Order) uint32 {
	if a == 0 {
		return 0
	}
	f := float32(a) / 255
	return pack(min(clampUint8(r*f), a), min(clampUint8(g*f), a), min(clampUint8(b*f), a), a, o)
}
