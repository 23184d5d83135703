// Package path holds the command/point path representation and the
// geometry passes that run on it before rasterization: cubic flattening,
// trimming by arc length and dashing.
package path

import (
	"iter"
	"math"

	"github.com/gogpu/tvg/internal/geom"
)

// Cmd is a path command. The numeric values are the ones stored in the
// binary format.
type Cmd uint8

// Path commands.
const (
	Close Cmd = iota
	MoveTo
	LineTo
	CubicTo
)

// String returns the command name.
func (c Cmd) String() string {
	switch c {
	case Close:
		return "Close"
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case CubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// PointCount returns the number of points the command consumes.
func (c Cmd) PointCount() int {
	switch c {
	case MoveTo, LineTo:
		return 1
	case CubicTo:
		return 3
	default:
		return 0
	}
}

// Kappa is the cubic control distance for a quarter circle of radius 1.
const Kappa = 0.552284

// Path is a sequence of commands and the points they consume.
type Path struct {
	Cmds []Cmd
	Pts  []geom.Point
}

// Valid reports whether cmds consume exactly len(pts) points and contain
// only known commands.
func Valid(cmds []Cmd, pts []geom.Point) bool {
	n := 0
	for _, c := range cmds {
		if c > CubicTo {
			return false
		}
		n += c.PointCount()
	}
	return n == len(pts)
}

// Empty reports whether the path has no commands.
func (p *Path) Empty() bool {
	return len(p.Cmds) == 0
}

// Reset drops all commands, keeping capacity.
func (p *Path) Reset() {
	p.Cmds = p.Cmds[:0]
	p.Pts = p.Pts[:0]
}

// Clone returns a deep copy.
func (p Path) Clone() Path {
	return Path{
		Cmds: append([]Cmd(nil), p.Cmds...),
		Pts:  append([]geom.Point(nil), p.Pts...),
	}
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float32) {
	p.Cmds = append(p.Cmds, MoveTo)
	p.Pts = append(p.Pts, geom.Pt(x, y))
}

// LineTo adds a line from the current point.
func (p *Path) LineTo(x, y float32) {
	p.Cmds = append(p.Cmds, LineTo)
	p.Pts = append(p.Pts, geom.Pt(x, y))
}

// CubicTo adds a cubic Bézier from the current point.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float32) {
	p.Cmds = append(p.Cmds, CubicTo)
	p.Pts = append(p.Pts, geom.Pt(c1x, c1y), geom.Pt(c2x, c2y), geom.Pt(x, y))
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Cmds = append(p.Cmds, Close)
}

// Append adds raw commands and points. The caller validates them.
func (p *Path) Append(cmds []Cmd, pts []geom.Point) {
	p.Cmds = append(p.Cmds, cmds...)
	p.Pts = append(p.Pts, pts...)
}

// AppendRect adds a rectangle with optional corner radii, clockwise from
// the top-left corner. Radii are clamped to half the side lengths.
func (p *Path) AppendRect(x, y, w, h, rx, ry float32) {
	hw, hh := w*0.5, h*0.5
	rx = geom.Clamp(rx, 0, hw)
	ry = geom.Clamp(ry, 0, hh)

	if rx == 0 && ry == 0 {
		p.MoveTo(x, y)
		p.LineTo(x+w, y)
		p.LineTo(x+w, y+h)
		p.LineTo(x, y+h)
		p.Close()
		return
	}
	if geom.Equal(rx, hw) && geom.Equal(ry, hh) {
		p.AppendCircle(x+rx, y+ry, rx, ry)
		return
	}

	kx, ky := rx*Kappa, ry*Kappa
	p.MoveTo(x+rx, y)
	p.LineTo(x+w-rx, y)
	p.CubicTo(x+w-rx+kx, y, x+w, y+ry-ky, x+w, y+ry)
	p.LineTo(x+w, y+h-ry)
	p.CubicTo(x+w, y+h-ry+ky, x+w-rx+kx, y+h, x+w-rx, y+h)
	p.LineTo(x+rx, y+h)
	p.CubicTo(x+rx-kx, y+h, x, y+h-ry+ky, x, y+h-ry)
	p.LineTo(x, y+ry)
	p.CubicTo(x, y+ry-ky, x+rx-kx, y, x+rx, y)
	p.Close()
}

// AppendCircle adds an ellipse as four cubics, clockwise from the top.
func (p *Path) AppendCircle(cx, cy, rx, ry float32) {
	kx, ky := rx*Kappa, ry*Kappa
	p.MoveTo(cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.Close()
}

// AppendArc adds a circular arc of radius r starting at startDeg and
// sweeping sweepDeg degrees (positive is clockwise with y down). With pie
// set, the arc is joined to the center and closed. Sweeps beyond a full
// turn are clamped to a full turn.
func (p *Path) AppendArc(cx, cy, r, startDeg, sweepDeg float32, pie bool) {
	if sweepDeg > 360 {
		sweepDeg = 360
	} else if sweepDeg < -360 {
		sweepDeg = -360
	}
	start := geom.Deg2Rad(startDeg)
	sweep := geom.Deg2Rad(sweepDeg)

	sx := cx + r*float32(math.Cos(start))
	sy := cy + r*float32(math.Sin(start))
	if pie {
		p.MoveTo(cx, cy)
		p.LineTo(sx, sy)
	} else {
		p.MoveTo(sx, sy)
	}

	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := sweep / float64(n)
	a := start
	for range n {
		p.arcSegment(cx, cy, r, a, a+step)
		a += step
	}
	if pie {
		p.Close()
	}
}

// arcSegment appends one cubic approximating the arc from a0 to a1 (at
// most a quarter turn).
func (p *Path) arcSegment(cx, cy, r float32, a0, a1 float64) {
	k := 4.0 / 3.0 * math.Tan((a1-a0)/4)
	c0, s0 := math.Cos(a0), math.Sin(a0)
	c1, s1 := math.Cos(a1), math.Sin(a1)
	rr := float64(r)
	p.CubicTo(
		cx+float32(rr*(c0-k*s0)), cy+float32(rr*(s0+k*c0)),
		cx+float32(rr*(c1+k*s1)), cy+float32(rr*(s1-k*c1)),
		cx+float32(rr*c1), cy+float32(rr*s1),
	)
}

// Bounds returns the bounding box of all points, control points included.
func (p *Path) Bounds() geom.BBox {
	var b geom.BBox
	for _, pt := range p.Pts {
		b.Add(pt)
	}
	return b
}

// Transform returns a copy of p with every point mapped through m.
func (p Path) Transform(m geom.Matrix) Path {
	out := Path{Cmds: p.Cmds, Pts: make([]geom.Point, len(p.Pts))}
	for i, pt := range p.Pts {
		out.Pts[i] = m.Apply(pt)
	}
	return out
}

// Segment is one command with its points resolved. From is the current
// point before the command; for Close, To is the subpath start.
type Segment struct {
	Cmd    Cmd
	From   geom.Point
	C1, C2 geom.Point
	To     geom.Point
}

// Segments iterates over the path with the current point tracked.
func (p *Path) Segments() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		var cur, start geom.Point
		i := 0
		for _, c := range p.Cmds {
			s := Segment{Cmd: c, From: cur}
			switch c {
			case MoveTo:
				s.To = p.Pts[i]
				start = s.To
				i++
			case LineTo:
				s.To = p.Pts[i]
				i++
			case CubicTo:
				s.C1, s.C2, s.To = p.Pts[i], p.Pts[i+1], p.Pts[i+2]
				i += 3
			case Close:
				s.To = start
			}
			cur = s.To
			if !yield(s) {
				return
			}
		}
	}
}
