package path

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
)

// Dash is a stroke dash pattern: alternating on and off lengths starting
// Offset units into the pattern. An odd-length pattern repeats itself once
// to become even, so [5] means 5 on, 5 off.
type Dash struct {
	Pattern []float32
	Offset  float32
}

// Active reports whether the pattern has a positive length.
func (d Dash) Active() bool {
	return d.Length() > 0
}

// Length returns the length of one full cycle.
func (d Dash) Length() float32 {
	var total float32
	for _, l := range d.Pattern {
		total += l
	}
	if len(d.Pattern)%2 != 0 {
		total *= 2
	}
	return total
}

// normalizedOffset returns Offset folded into [0, Length()).
func (d Dash) normalizedOffset() float32 {
	l := d.Length()
	if l <= 0 {
		return 0
	}
	o := float32(math.Mod(float64(d.Offset), float64(l)))
	if o < 0 {
		o += l
	}
	return o
}

// Apply splits polys into the on intervals of the pattern. Every interval
// is an open poly; a zero-length interval becomes a single-point poly so
// that caps can still mark it. On a closed subpath that both starts and
// ends inside an on interval, the last and first intervals are joined.
func (d Dash) Apply(polys []Poly) []Poly {
	if !d.Active() {
		return polys
	}
	pattern := d.Pattern
	if len(pattern)%2 != 0 {
		pattern = append(append([]float32(nil), pattern...), pattern...)
	}
	phase := d.normalizedOffset()

	var out []Poly
	for _, pl := range polys {
		out = dashOne(out, pl, pattern, phase)
	}
	return out
}

func dashOne(out []Poly, pl Poly, pattern []float32, phase float32) []Poly {
	pts := pl.Pts
	if len(pts) == 0 {
		return out
	}
	if pl.Closed && len(pts) > 1 {
		pts = append(append([]geom.Point(nil), pts...), pts[0])
	}

	// Locate the pattern entry the phase falls in.
	idx := 0
	for phase >= pattern[idx] && pattern[idx] > 0 {
		phase -= pattern[idx]
		idx = (idx + 1) % len(pattern)
	}
	remaining := pattern[idx] - phase
	on := idx%2 == 0

	first := len(out)
	startedOn := on
	var cur []geom.Point
	if on {
		cur = []geom.Point{pts[0]}
	}

	toggled := false
	emit := func() {
		if len(cur) > 0 {
			out = append(out, Poly{Pts: cur})
		}
		cur = nil
	}

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := geom.Dist(a, b)
		var done float32
		for segLen-done > remaining {
			done += remaining
			p := a.Lerp(b, done/segLen)
			if on {
				cur = append(cur, p)
				emit()
			} else {
				cur = []geom.Point{p}
			}
			on = !on
			toggled = true
			idx = (idx + 1) % len(pattern)
			remaining = pattern[idx]
			if remaining == 0 && on {
				// Zero-length dash: a dot at p.
				out = append(out, Poly{Pts: []geom.Point{p}})
				cur = nil
				on = false
				idx = (idx + 1) % len(pattern)
				remaining = pattern[idx]
			}
		}
		remaining -= segLen - done
		if on {
			cur = append(cur, b)
		}
	}

	endedOn := on && len(cur) > 0
	if !toggled && endedOn {
		// The pattern never switched off: the subpath is drawn whole.
		return append(out, pl)
	}
	if pl.Closed && startedOn && endedOn && len(out) > first {
		// Fuse the trailing dash with the first one across the start point.
		head := out[first]
		merged := append(cur, head.Pts[1:]...)
		out[first] = Poly{Pts: merged}
		return out
	}
	emit()
	return out
}
