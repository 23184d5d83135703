package path

import "github.com/gogpu/tvg/internal/geom"

// Tolerance is the default flatness in device pixels: a cubic is split
// until its control points lie within this distance of the chord.
const Tolerance = 0.25

// maxDepth bounds cubic subdivision for degenerate input.
const maxDepth = 16

// Poly is a flattened subpath.
type Poly struct {
	Pts    []geom.Point
	Closed bool
}

// Flatten converts p into polylines, one per subpath. Cubics are
// subdivided until flat within tol. Subpaths with fewer than two points
// are kept so that zero-length dashes and caps can still be drawn.
func Flatten(p *Path, tol float32) []Poly {
	if tol <= 0 {
		tol = Tolerance
	}
	var (
		out []Poly
		cur *Poly
	)
	flush := func() {
		if cur != nil && len(cur.Pts) > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}
	for s := range p.Segments() {
		switch s.Cmd {
		case MoveTo:
			flush()
			cur = &Poly{Pts: []geom.Point{s.To}}
		case LineTo:
			if cur == nil {
				cur = &Poly{Pts: []geom.Point{s.From}}
			}
			cur.Pts = append(cur.Pts, s.To)
		case CubicTo:
			if cur == nil {
				cur = &Poly{Pts: []geom.Point{s.From}}
			}
			cur.Pts = flattenCubic(cur.Pts, s.From, s.C1, s.C2, s.To, tol, 0)
		case Close:
			// A command after Close continues from the subpath start,
			// which Segments reports as its From point.
			if cur != nil {
				cur.Closed = true
				flush()
			}
		}
	}
	flush()
	return out
}

// flattenCubic appends the subdivision of the cubic (p0, p1, p2, p3) to
// dst, excluding p0.
func flattenCubic(dst []geom.Point, p0, p1, p2, p3 geom.Point, tol float32, depth int) []geom.Point {
	d := max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if d <= tol || depth >= maxDepth {
		return append(dst, p3)
	}

	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)

	dst = flattenCubic(dst, p0, q0, r0, s, tol, depth+1)
	return flattenCubic(dst, s, r1, q2, p3, tol, depth+1)
}

// distanceToLine returns the distance from p to the segment (a, b).
func distanceToLine(p, a, b geom.Point) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < geom.Epsilon {
		return geom.Dist(p, a)
	}
	t := p.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		return geom.Dist(p, a)
	case t > 1:
		return geom.Dist(p, b)
	}
	return geom.Dist(p, a.Add(ab.Mul(t)))
}

// Length returns the total length of the polyline, including the closing
// edge of a closed poly.
func (pl Poly) Length() float32 {
	var l float32
	for i := 1; i < len(pl.Pts); i++ {
		l += geom.Dist(pl.Pts[i-1], pl.Pts[i])
	}
	if pl.Closed && len(pl.Pts) > 1 {
		l += geom.Dist(pl.Pts[len(pl.Pts)-1], pl.Pts[0])
	}
	return l
}

// Transform maps every point of every poly through m in place.
func Transform(polys []Poly, m geom.Matrix) {
	if m.IsIdentity() {
		return
	}
	for i := range polys {
		for j, p := range polys[i].Pts {
			polys[i].Pts[j] = m.Apply(p)
		}
	}
}
