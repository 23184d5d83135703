package sw

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/wide"
)

// fetcher produces premultiplied source pixels for the device row y
// starting at x.
type fetcher interface {
	fetch(dst []uint32, x, y int)
}

// paintSource is what a span kernel draws: a solid premultiplied color
// when src is nil, otherwise the pixels src fetches.
type paintSource struct {
	color  uint32
	src    fetcher
	method blend.Method
}

// kernel draws coverage spans onto a surface. It owns a scratch row for
// fetched source pixels and is used from the draw goroutine only.
type kernel struct {
	wide    bool
	scratch []uint32
}

func (k *kernel) row(n int) []uint32 {
	if cap(k.scratch) < n {
		k.scratch = make([]uint32, n)
	}
	return k.scratch[:n]
}

// draw blends ps through every span of rle that falls inside s.
func (k *kernel) draw(s *surface, rle *raster.RLE, ps paintSource) {
	if rle.Empty() {
		return
	}
	if ps.src == nil && ps.color == 0 {
		return
	}
	f := blend.FuncFor(ps.method)
	normal := ps.method == blend.Normal
	reg := s.region
	for _, sp := range rle.Spans {
		if sp.Y < reg.Y || sp.Y >= reg.Y2() {
			continue
		}
		x0, x1 := max(sp.X, reg.X), min(sp.X2(), reg.X2())
		if x0 >= x1 {
			continue
		}
		dst := s.span(sp.Y, x0, x1)
		cov := sp.Coverage
		if ps.src == nil {
			k.solid(dst, ps.color, cov, normal, f)
			continue
		}
		buf := k.row(len(dst))
		ps.src.fetch(buf, x0, sp.Y)
		for i, c := range buf {
			if cov < 255 {
				c = blend.Scale(c, cov)
			}
			if c == 0 {
				continue
			}
			dst[i] = f(c, dst[i])
		}
	}
}

func (k *kernel) solid(dst []uint32, color uint32, cov uint8, normal bool, f blend.Func) {
	c := color
	if cov < 255 {
		c = blend.Scale(c, cov)
	}
	if c == 0 {
		return
	}
	if normal {
		if c>>24 == 0xff {
			for i := range dst {
				dst[i] = c
			}
			return
		}
		if k.wide && len(dst) >= wide.BatchSize {
			wide.FillSolid(dst, c)
			return
		}
	}
	for i := range dst {
		dst[i] = f(c, dst[i])
	}
}

// mask writes the spans of rle into s as opaque coverage, the form a clip
// takes inside a mask layer.
func (k *kernel) mask(s *surface, rle *raster.RLE) {
	k.draw(s, rle, paintSource{color: 0xff000000, method: blend.Normal})
}
