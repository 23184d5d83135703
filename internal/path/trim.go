package path

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
)

// Trim keeps the part of a path between two arc-length fractions.
// With Simultaneous set, every subpath is trimmed on its own; otherwise
// the subpaths are treated as one continuous run.
type Trim struct {
	Begin, End   float32
	Simultaneous bool
}

// NoTrim is the identity trim.
var NoTrim = Trim{Begin: 0, End: 1, Simultaneous: true}

// Active reports whether t removes anything.
func (t Trim) Active() bool {
	if t.Begin == 0 && t.End == 1 {
		return false
	}
	return math.Abs(float64(t.End-t.Begin)) < 1
}

// Empty reports whether t removes everything.
func (t Trim) Empty() bool {
	return geom.Equal(t.Begin, t.End)
}

// bounds folds begin and end into [0, 1]. When the result has
// begin > end the kept range wraps through the path start.
func (t Trim) bounds() (begin, end float32) {
	begin, end = t.Begin, t.End
	loop := true
	if begin > 1 && end > 1 {
		loop = false
	}
	if begin < 0 && end < 0 {
		loop = false
	}
	if begin >= 0 && begin <= 1 && end >= 0 && end <= 1 {
		loop = false
	}
	if begin > 1 {
		begin--
	}
	if begin < 0 {
		begin++
	}
	if end > 1 {
		end--
	}
	if end < 0 {
		end++
	}
	if (loop && begin < end) || (!loop && begin > end) {
		begin, end = end, begin
	}
	return begin, end
}

// Apply returns the trimmed polylines. The result is open; closed input
// polys are cut open at their start point.
func (t Trim) Apply(polys []Poly) []Poly {
	if t.Empty() {
		return nil
	}
	if !t.Active() {
		return polys
	}
	begin, end := t.bounds()
	if t.Simultaneous {
		var out []Poly
		for _, pl := range polys {
			out = trimRun(out, []Poly{pl}, begin, end)
		}
		return out
	}
	return trimRun(nil, polys, begin, end)
}

func trimRun(out, run []Poly, begin, end float32) []Poly {
	var total float32
	for _, pl := range run {
		total += pl.Length()
	}
	if total <= 0 {
		return out
	}
	from, to := begin*total, end*total
	if from > to {
		out = extract(out, run, from, total)
		return extract(out, run, 0, to)
	}
	return extract(out, run, from, to)
}

// extract appends the pieces of run lying in [from, to] of cumulative
// arc length.
func extract(out, run []Poly, from, to float32) []Poly {
	var pos float32
	for _, pl := range run {
		pts := pl.Pts
		if pl.Closed && len(pts) > 1 {
			pts = append(append([]geom.Point(nil), pts...), pts[0])
		}
		var piece []geom.Point
		for i := 1; i < len(pts); i++ {
			a, b := pts[i-1], pts[i]
			l := geom.Dist(a, b)
			s0, s1 := pos, pos+l
			pos = s1
			if s1 < from || s0 > to || l == 0 {
				continue
			}
			ta := max(0, (from-s0)/l)
			tb := min(1, (to-s0)/l)
			if tb <= ta {
				continue
			}
			pa, pb := a.Lerp(b, ta), a.Lerp(b, tb)
			if len(piece) == 0 {
				piece = append(piece, pa)
			}
			piece = append(piece, pb)
		}
		if len(piece) > 1 {
			out = append(out, Poly{Pts: piece})
		}
	}
	return out
}
