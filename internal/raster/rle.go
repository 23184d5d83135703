// Package raster converts flattened outlines into run-length encoded
// coverage.
//
// An RLE is a list of horizontal spans sorted by row and then by column.
// Each span carries a single 8-bit coverage value. Spans never overlap and
// adjacent spans on a row always differ in coverage, so consumers can walk
// them once per draw without further bookkeeping.
package raster

import "github.com/gogpu/tvg/internal/geom"

// FillRule determines which areas of a self-overlapping outline are inside.
type FillRule uint8

const (
	// NonZero fills where the winding number is non-zero.
	NonZero FillRule = iota

	// EvenOdd fills where the winding number is odd.
	EvenOdd
)

// String returns the string representation of the fill rule.
func (fr FillRule) String() string {
	switch fr {
	case NonZero:
		return "NonZero"
	case EvenOdd:
		return "EvenOdd"
	default:
		return "Unknown"
	}
}

// Span is a run of Len pixels starting at (X, Y) with uniform coverage.
type Span struct {
	X, Y     int
	Len      int
	Coverage uint8
}

// X2 returns the exclusive end column.
func (s Span) X2() int { return s.X + s.Len }

// RLE is a coverage mask in span form.
type RLE struct {
	Spans []Span

	// Bounds is the smallest region covering every span.
	Bounds geom.Region
}

// Empty reports whether r has no coverage.
func (r *RLE) Empty() bool { return r == nil || len(r.Spans) == 0 }

// Reset drops all spans while keeping the backing storage.
func (r *RLE) Reset() {
	r.Spans = r.Spans[:0]
	r.Bounds = geom.Region{}
}

// Clone returns a deep copy of r.
func (r *RLE) Clone() *RLE {
	if r == nil {
		return nil
	}
	return &RLE{Spans: append([]Span(nil), r.Spans...), Bounds: r.Bounds}
}

// At returns the coverage at pixel (x, y). It is linear in the number of
// spans and meant for tests and hit probes, not for rendering.
func (r *RLE) At(x, y int) uint8 {
	if r == nil || !r.Bounds.Contains(x, y) {
		return 0
	}
	for _, s := range r.Spans {
		if s.Y < y {
			continue
		}
		if s.Y > y {
			break
		}
		if x >= s.X && x < s.X2() {
			return s.Coverage
		}
	}
	return 0
}

// Area returns the sum of coverage over all spans, in units of full pixels
// scaled by 255.
func (r *RLE) Area() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, s := range r.Spans {
		n += s.Len * int(s.Coverage)
	}
	return n
}

// push appends a span, merging it with the previous one when they touch on
// the same row with equal coverage.
func (r *RLE) push(s Span) {
	if s.Len <= 0 || s.Coverage == 0 {
		return
	}
	if n := len(r.Spans); n > 0 {
		last := &r.Spans[n-1]
		if last.Y == s.Y && last.X2() == s.X && last.Coverage == s.Coverage {
			last.Len += s.Len
			r.Bounds = r.Bounds.Union(geom.Region{X: s.X, Y: s.Y, W: s.Len, H: 1})
			return
		}
	}
	r.Spans = append(r.Spans, s)
	r.Bounds = r.Bounds.Union(geom.Region{X: s.X, Y: s.Y, W: s.Len, H: 1})
}

// Rect returns a fully covered RLE for the region.
func Rect(region geom.Region) *RLE {
	r := &RLE{}
	if region.Empty() {
		return r
	}
	r.Spans = make([]Span, 0, region.H)
	for y := region.Y; y < region.Y2(); y++ {
		r.Spans = append(r.Spans, Span{X: region.X, Y: y, Len: region.W, Coverage: 255})
	}
	r.Bounds = region
	return r
}

// Clip returns the part of r inside region.
func Clip(r *RLE, region geom.Region) *RLE {
	out := &RLE{}
	if r.Empty() || region.Empty() {
		return out
	}
	if region.Intersect(r.Bounds) == r.Bounds {
		return r.Clone()
	}
	for _, s := range r.Spans {
		if s.Y < region.Y || s.Y >= region.Y2() {
			continue
		}
		x0, x1 := max(s.X, region.X), min(s.X2(), region.X2())
		if x1 <= x0 {
			continue
		}
		out.push(Span{X: x0, Y: s.Y, Len: x1 - x0, Coverage: s.Coverage})
	}
	return out
}

// Intersect returns the pointwise product of a and b: pixels covered by
// both keep coverage a*b/255, all other pixels are dropped.
func Intersect(a, b *RLE) *RLE {
	out := &RLE{}
	if a.Empty() || b.Empty() || a.Bounds.Intersect(b.Bounds).Empty() {
		return out
	}
	i, j := 0, 0
	as, bs := a.Spans, b.Spans
	for i < len(as) && j < len(bs) {
		sa, sb := as[i], bs[j]
		if sa.Y < sb.Y {
			i++
			continue
		}
		if sb.Y < sa.Y {
			j++
			continue
		}
		x0, x1 := max(sa.X, sb.X), min(sa.X2(), sb.X2())
		if x1 > x0 {
			out.push(Span{X: x0, Y: sa.Y, Len: x1 - x0, Coverage: Multiply(sa.Coverage, sb.Coverage)})
		}
		if sa.X2() < sb.X2() {
			i++
		} else {
			j++
		}
	}
	return out
}

// Multiply scales coverage c by a, both in 0..255.
func Multiply(c, a uint8) uint8 {
	return uint8((int(c)*int(a) + 0xff) >> 8)
}
