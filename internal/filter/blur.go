package filter

import "sync"

// Direction selects the axes a blur runs along.
type Direction uint8

// Blur directions.
const (
	Both Direction = iota
	Horizontal
	Vertical
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Both:
		return "Both"
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	default:
		return "Unknown"
	}
}

// Border selects how a blur samples past the surface edge.
type Border uint8

// Border modes.
const (
	// Duplicate repeats the edge pixel.
	Duplicate Border = iota
	// Wrap samples the opposite edge.
	Wrap
)

// String returns the border name.
func (b Border) String() string {
	switch b {
	case Duplicate:
		return "Duplicate"
	case Wrap:
		return "Wrap"
	default:
		return "Unknown"
	}
}

// Blur convolves s in place with a Gaussian of sigma pixels along dir.
func Blur(s Surface, sigma float32, dir Direction, border Border) {
	if sigma <= 0 || s.Empty() {
		return
	}
	k := cachedKernel(sigma)
	n := s.W * s.H * 4
	a := getPlane(n)
	defer putPlane(a)
	b := getPlane(n)
	defer putPlane(b)

	for y := range s.H {
		row := s.row(y)
		for x, p := range row {
			i := (y*s.W + x) * 4
			a[i] = float32(p >> 24)
			a[i+1] = float32(p >> 16 & 0xff)
			a[i+2] = float32(p >> 8 & 0xff)
			a[i+3] = float32(p & 0xff)
		}
	}
	if dir != Vertical {
		convolveRows(a, b, s.W, s.H, 4, k, border)
		a, b = b, a
	}
	if dir != Horizontal {
		convolveCols(a, b, s.W, s.H, 4, k, border)
		a, b = b, a
	}
	for y := range s.H {
		row := s.row(y)
		for x := range row {
			i := (y*s.W + x) * 4
			al := clampUint8(a[i])
			c0 := min(clampUint8(a[i+1]), al)
			c1 := min(clampUint8(a[i+2]), al)
			c2 := min(clampUint8(a[i+3]), al)
			row[x] = uint32(al)<<24 | uint32(c0)<<16 | uint32(c1)<<8 | uint32(c2)
		}
	}
}

// convolveRows runs k along each row of the interleaved plane src with
// ch channels per pixel and writes dst.
func convolveRows(src, dst []float32, w, h, ch int, k []float32, border Border) {
	half := len(k) / 2
	for y := range h {
		base := y * w
		for x := range w {
			for c := range ch {
				var sum float32
				for j, wt := range k {
					sx := sample(x+j-half, w, border)
					sum += src[(base+sx)*ch+c] * wt
				}
				dst[(base+x)*ch+c] = sum
			}
		}
	}
}

// convolveCols runs k along each column.
func convolveCols(src, dst []float32, w, h, ch int, k []float32, border Border) {
	half := len(k) / 2
	for y := range h {
		for x := range w {
			for c := range ch {
				var sum float32
				for j, wt := range k {
					sy := sample(y+j-half, h, border)
					sum += src[(sy*w+x)*ch+c] * wt
				}
				dst[(y*w+x)*ch+c] = sum
			}
		}
	}
}

// sample maps index i into [0, n) per the border mode.
func sample(i, n int, border Border) int {
	if i >= 0 && i < n {
		return i
	}
	if border == Wrap {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	return min(max(i, 0), n-1)
}

// plane wraps a slice for sync.Pool.
type plane struct {
	data []float32
}

var planes sync.Pool

// getPlane returns a zeroed float buffer of n elements.
func getPlane(n int) []float32 {
	if p, ok := planes.Get().(*plane); ok && cap(p.data) >= n {
		buf := p.data[:n]
		clear(buf)
		return buf
	}
	return make([]float32, n)
}

func putPlane(buf []float32) {
	planes.Put(&plane{data: buf[:cap(buf)]})
}
