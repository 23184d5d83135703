package sw

import (
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
)

// surface is a premultiplied pixel buffer covering a device-space region.
// Pixel (x, y) of the device lives at buf[(y-region.Y)*stride + x-region.X].
type surface struct {
	buf    []uint32
	stride int
	region geom.Region
	order  image.Order
}

// span returns the pixels [x0, x1) of device row y. The range must lie
// inside region.
func (s *surface) span(y, x0, x1 int) []uint32 {
	off := (y-s.region.Y)*s.stride + x0 - s.region.X
	return s.buf[off : off+x1-x0]
}

// fill sets every pixel of r, clipped to the surface, to v.
func (s *surface) fill(r geom.Region, v uint32) {
	r = r.Intersect(s.region)
	for y := r.Y; y < r.Y2(); y++ {
		row := s.span(y, r.X, r.X2())
		for i := range row {
			row[i] = v
		}
	}
}

// apply runs fn over every row of r, clipped to the surface.
func (s *surface) apply(r geom.Region, fn func(row []uint32)) {
	r = r.Intersect(s.region)
	for y := r.Y; y < r.Y2(); y++ {
		fn(s.span(y, r.X, r.X2()))
	}
}
