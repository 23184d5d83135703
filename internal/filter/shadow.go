package filter

import "math"

// DropShadow draws the alpha of s, moved by (dx, dy) pixels, blurred by
// sigma and painted in c, below the content of s. c is straight alpha.
func DropShadow(s Surface, c Color, dx, dy, sigma float32) {
	if s.Empty() || c.A == 0 {
		return
	}
	ox, oy := int(math.Round(float64(dx))), int(math.Round(float64(dy)))
	n := s.W * s.H
	alpha := getPlane(n)
	defer putPlane(alpha)

	for y := range s.H {
		sy := y - oy
		if sy < 0 || sy >= s.H {
			continue
		}
		src := s.row(sy)
		for x := range s.W {
			sx := x - ox
			if sx < 0 || sx >= s.W {
				continue
			}
			alpha[y*s.W+x] = float32(src[sx]>>24) / 255
		}
	}
	if sigma > 0 {
		k := cachedKernel(sigma)
		tmp := getPlane(n)
		defer putPlane(tmp)
		convolveRows(alpha, tmp, s.W, s.H, 1, k, Duplicate)
		convolveCols(tmp, alpha, s.W, s.H, 1, k, Duplicate)
	}

	base := float32(c.A)
	for y := range s.H {
		row := s.row(y)
		for x, p := range row {
			sa := alpha[y*s.W+x] * base
			if sa <= 0 {
				continue
			}
			// Content over shadow.
			inv := 1 - float32(p>>24)/255
			shA := sa * inv
			shadow := pack(
				clampUint8(float32(c.R)*shA/255),
				clampUint8(float32(c.G)*shA/255),
				clampUint8(float32(c.B)*shA/255),
				clampUint8(shA),
				s.Order,
			)
			row[x] = addSat(p, shadow)
		}
	}
}

// Extent returns how many pixels a drop shadow reaches past the content
// on each side.
func Extent(dx, dy, sigma float32) (left, top, right, bottom int) {
	r := Radius(sigma)
	left, top, right, bottom = r, r, r, r
	ox, oy := int(math.Ceil(math.Abs(float64(dx)))), int(math.Ceil(math.Abs(float64(dy))))
	if dx < 0 {
		left += ox
	} else {
		right += ox
	}
	if dy < 0 {
		top += oy
	} else {
		bottom += oy
	}
	return left, top, right, bottom
}
