package raster

import (
	"math"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
)

// SubSamples is the number of scanlines sampled per pixel row. Horizontal
// coverage is computed analytically in 24.8 fixed point.
const SubSamples = 4

const (
	fracBits = 8
	fracOne  = 1 << fracBits

	// fullRow is the accumulated value of a pixel covered by every sample.
	fullRow = SubSamples * fracOne
)

type edge struct {
	x0, y0 float32
	y1     float32
	dxdy   float32
	dir    int8
}

type crossing struct {
	x   float32
	dir int8
}

// Builder turns device-space polylines into RLE masks. A Builder reuses its
// scratch buffers between calls and must not be shared between goroutines.
type Builder struct {
	edges   []edge
	active  []int
	xs      []crossing
	cover   []int32
	full    []int32
	touched bool
	lo, hi  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder { return &Builder{} }

// Build rasterizes polys with the given fill rule. Every poly is treated as
// closed. Only pixels inside clip are produced.
func Build(polys []path.Poly, rule FillRule, clip geom.Region) *RLE {
	return NewBuilder().Build(polys, rule, clip, nil)
}

// Build rasterizes polys into dst, or into a new RLE when dst is nil.
func (b *Builder) Build(polys []path.Poly, rule FillRule, clip geom.Region, dst *RLE) *RLE {
	if dst == nil {
		dst = &RLE{}
	} else {
		dst.Reset()
	}
	bounds := b.collect(polys)
	region := bounds.Region().Intersect(clip)
	if region.Empty() || len(b.edges) == 0 {
		return dst
	}
	slices.SortFunc(b.edges, func(p, q edge) int {
		switch {
		case p.y0 < q.y0:
			return -1
		case p.y0 > q.y0:
			return 1
		}
		return 0
	})

	w := region.W + 2
	b.cover = grow(b.cover, w)
	b.full = grow(b.full, w)
	b.active = b.active[:0]
	b.resetRow()

	next := 0
	for y := region.Y; y < region.Y2(); y++ {
		for s := 0; s < SubSamples; s++ {
			sy := float32(y) + (float32(s)+0.5)/SubSamples
			for next < len(b.edges) && b.edges[next].y0 <= sy {
				b.active = append(b.active, next)
				next++
			}
			b.sample(sy, rule, region)
		}
		b.emit(dst, y, region)
		if next == len(b.edges) && len(b.active) == 0 {
			break
		}
	}
	return dst
}

// collect fills b.edges from polys and returns their bounds. Polys with
// non-finite points are ignored.
func (b *Builder) collect(polys []path.Poly) geom.BBox {
	b.edges = b.edges[:0]
	var bounds geom.BBox
	for _, p := range polys {
		if len(p.Pts) < 2 || !finite(p.Pts) {
			continue
		}
		for i := range p.Pts {
			a := p.Pts[i]
			c := p.Pts[(i+1)%len(p.Pts)]
			bounds.Add(a)
			if a.Y == c.Y {
				continue
			}
			e := edge{dir: 1}
			if a.Y > c.Y {
				a, c = c, a
				e.dir = -1
			}
			e.x0, e.y0, e.y1 = a.X, a.Y, c.Y
			e.dxdy = (c.X - a.X) / (c.Y - a.Y)
			b.edges = append(b.edges, e)
		}
	}
	return bounds
}

func finite(pts []geom.Point) bool {
	for _, p := range pts {
		if !geom.Finite(p.X) || !geom.Finite(p.Y) {
			return false
		}
	}
	return true
}

// sample accumulates the coverage of one scanline at height sy.
func (b *Builder) sample(sy float32, rule FillRule, region geom.Region) {
	b.xs = b.xs[:0]
	kept := b.active[:0]
	for _, idx := range b.active {
		e := &b.edges[idx]
		if e.y1 <= sy {
			continue
		}
		kept = append(kept, idx)
		b.xs = append(b.xs, crossing{x: e.x0 + (sy-e.y0)*e.dxdy, dir: e.dir})
	}
	b.active = kept
	if len(b.xs) < 2 {
		return
	}
	slices.SortFunc(b.xs, func(p, q crossing) int {
		switch {
		case p.x < q.x:
			return -1
		case p.x > q.x:
			return 1
		}
		return 0
	})

	wind := 0
	var start float32
	for _, c := range b.xs {
		was := inside(wind, rule)
		wind += int(c.dir)
		now := inside(wind, rule)
		switch {
		case !was && now:
			start = c.x
		case was && !now:
			b.span(start, c.x, region)
		}
	}
}

func inside(wind int, rule FillRule) bool {
	if rule == EvenOdd {
		return wind&1 != 0
	}
	return wind != 0
}

// span adds the interval [xa, xb) of one sample row to the accumulators.
func (b *Builder) span(xa, xb float32, region geom.Region) {
	lo, hi := float32(region.X), float32(region.X2())
	xa, xb = max(xa, lo), min(xb, hi)
	if xb <= xa {
		return
	}
	fa := int32(math.Round(float64((xa - lo) * fracOne)))
	fb := int32(math.Round(float64((xb - lo) * fracOne)))
	if fb <= fa {
		return
	}
	ia, ib := int(fa>>fracBits), int(fb>>fracBits)
	b.touch(ia, ib)
	if ia == ib {
		b.cover[ia] += fb - fa
		return
	}
	b.cover[ia] += int32(ia+1)<<fracBits - fa
	if ib > ia+1 {
		b.full[ia+1] += fracOne
		b.full[ib] -= fracOne
	}
	b.cover[ib] += fb - int32(ib)<<fracBits
}

func (b *Builder) touch(lo, hi int) {
	if !b.touched {
		b.lo, b.hi, b.touched = lo, hi, true
		return
	}
	b.lo, b.hi = min(b.lo, lo), max(b.hi, hi)
}

func (b *Builder) resetRow() {
	b.touched = false
}

// emit converts the accumulated row into spans and clears the accumulators.
func (b *Builder) emit(dst *RLE, y int, region geom.Region) {
	if !b.touched {
		return
	}
	var run int32
	hi := min(b.hi, region.W-1)
	for x := b.lo; x <= b.hi; x++ {
		run += b.full[x]
		acc := b.cover[x] + run
		b.full[x], b.cover[x] = 0, 0
		if x > hi {
			continue
		}
		dst.push(Span{X: region.X + x, Y: y, Len: 1, Coverage: coverage(acc)})
	}
	b.resetRow()
}

func coverage(acc int32) uint8 {
	if acc <= 0 {
		return 0
	}
	if acc >= fullRow {
		return 255
	}
	return uint8((acc*255 + fullRow/2) / fullRow)
}

func grow(buf []int32, n int) []int32 {
	if cap(buf) < n {
		return make([]int32, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}
