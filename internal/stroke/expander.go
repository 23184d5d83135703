package stroke

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
)

// Cap is the shape of open subpath ends. Values match the binary format.
type Cap uint8

const (
	// CapSquare extends the stroke by half its width.
	CapSquare Cap = iota
	// CapRound ends in a semicircle.
	CapRound
	// CapButt ends flat at the endpoint.
	CapButt
)

// String returns the cap name.
func (c Cap) String() string {
	switch c {
	case CapSquare:
		return "Square"
	case CapRound:
		return "Round"
	case CapButt:
		return "Butt"
	default:
		return "Unknown"
	}
}

// Join is the shape of corners between segments. Values match the binary
// format.
type Join uint8

const (
	// JoinBevel cuts the corner with a straight edge.
	JoinBevel Join = iota
	// JoinRound rounds the corner.
	JoinRound
	// JoinMiter extends the edges to a point, limited by MiterLimit.
	JoinMiter
)

// String returns the join name.
func (j Join) String() string {
	switch j {
	case JoinBevel:
		return "Bevel"
	case JoinRound:
		return "Round"
	case JoinMiter:
		return "Miter"
	default:
		return "Unknown"
	}
}

// Style describes the pen.
type Style struct {
	Width      float32
	Cap        Cap
	Join       Join
	MiterLimit float32
}

// DefaultStyle returns a 1 unit wide pen with square caps, bevel joins and
// a miter limit of 4.
func DefaultStyle() Style {
	return Style{Width: 1, Cap: CapSquare, Join: JoinBevel, MiterLimit: 4}
}

// Expander converts polylines into stroke outlines.
type Expander struct {
	style Style
	hw    float32

	// tolerance bounds the chord error of tessellated arcs.
	tolerance float32

	forward  []geom.Point
	backward []geom.Point
	output   []path.Poly

	startPt  geom.Point
	startTan geom.Point
	lastPt   geom.Point
	lastTan  geom.Point

	// joinThresh skips joins whose turn is below the tolerance.
	joinThresh float32
}

// NewExpander returns an expander for style.
func NewExpander(style Style) *Expander {
	return &Expander{style: style, hw: style.Width * 0.5, tolerance: path.Tolerance}
}

// SetTolerance sets the arc tessellation tolerance. Non-positive values
// are ignored.
func (e *Expander) SetTolerance(tol float32) {
	if tol > 0 {
		e.tolerance = tol
	}
}

// Expand returns the outline of polys stroked with the expander's style.
// Widths below geom.Epsilon produce no outline.
func (e *Expander) Expand(polys []path.Poly) []path.Poly {
	if e.style.Width < geom.Epsilon {
		return nil
	}
	e.output = nil
	e.joinThresh = 2 * e.tolerance / e.style.Width
	for _, pl := range polys {
		pts := dedupe(pl.Pts)
		if pl.Closed && len(pts) > 2 && pts[0].Equal(pts[len(pts)-1]) {
			pts = pts[:len(pts)-1]
		}
		switch {
		case len(pts) == 1:
			e.dot(pts[0])
		case pl.Closed && len(pts) > 2:
			e.closed(pts)
		default:
			e.open(pts)
		}
	}
	return e.output
}

// Expand is shorthand for NewExpander(style) with tolerance tol.
func Expand(polys []path.Poly, style Style, tol float32) []path.Poly {
	e := NewExpander(style)
	e.SetTolerance(tol)
	return e.Expand(polys)
}

func dedupe(pts []geom.Point) []geom.Point {
	if len(pts) < 2 {
		return pts
	}
	out := make([]geom.Point, 1, len(pts))
	out[0] = pts[0]
	for _, p := range pts[1:] {
		if !p.Equal(out[len(out)-1]) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Expander) normal(tan geom.Point) geom.Point {
	return tan.Perp().Mul(e.hw)
}

func (e *Expander) open(pts []geom.Point) {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
	e.startPt, e.lastPt = pts[0], pts[0]
	for _, p := range pts[1:] {
		e.lineTo(p)
	}
	e.finish()
}

func (e *Expander) closed(pts []geom.Point) {
	e.forward = e.forward[:0]
	e.backward = e.backward[:0]
	e.startPt, e.lastPt = pts[0], pts[0]
	for _, p := range pts[1:] {
		e.lineTo(p)
	}
	e.lineTo(pts[0])
	e.finishClosed()
}

// lineTo extends both sides with the segment from lastPt to p.
func (e *Expander) lineTo(p geom.Point) {
	tan := p.Sub(e.lastPt).Normalize()
	if tan == (geom.Point{}) {
		return
	}
	e.doJoin(tan)
	n := e.normal(tan)
	e.forward = append(e.forward, p.Sub(n))
	e.backward = append(e.backward, p.Add(n))
	e.lastPt = p
	e.lastTan = tan
}

// doJoin connects the previous segment to one leaving lastPt along tan.
func (e *Expander) doJoin(tan geom.Point) {
	p0 := e.lastPt
	n := e.normal(tan)
	if len(e.forward) == 0 {
		e.forward = append(e.forward, p0.Sub(n))
		e.backward = append(e.backward, p0.Add(n))
		e.startTan = tan
		return
	}

	cross := e.lastTan.Cross(tan)
	dot := e.lastTan.Dot(tan)
	if dot > 0 && float32(math.Abs(float64(cross))) < e.joinThresh {
		e.forward = append(e.forward, p0.Sub(n))
		e.backward = append(e.backward, p0.Add(n))
		return
	}

	switch e.style.Join {
	case JoinMiter:
		e.applyMiterJoin(p0, tan, cross, dot)
	case JoinRound:
		e.applyRoundJoin(p0, tan, cross, dot)
	default:
		e.applyBevelJoin(p0, tan, cross)
	}
}

// sides returns the outline side on the outside of the turn, the inside
// one and the normal sign of the outer side.
func (e *Expander) sides(cross float32) (outer, inner *[]geom.Point, sign float32) {
	if cross > 0 {
		return &e.forward, &e.backward, -1
	}
	return &e.backward, &e.forward, 1
}

func (e *Expander) applyBevelJoin(p0, tan geom.Point, cross float32) {
	n := e.normal(tan)
	outer, inner, s := e.sides(cross)
	*outer = append(*outer, p0.Add(n.Mul(s)))
	*inner = append(*inner, p0, p0.Sub(n.Mul(s)))
}

// applyMiterJoin extends the outer edges to their intersection when the
// miter ratio 1/cos(turn/2) stays within MiterLimit, else bevels.
func (e *Expander) applyMiterJoin(p0, tan geom.Point, cross, dot float32) {
	limit := e.style.MiterLimit
	if 2 > (1+dot)*limit*limit {
		e.applyBevelJoin(p0, tan, cross)
		return
	}
	n0 := e.normal(e.lastTan)
	n1 := e.normal(tan)
	outer, inner, s := e.sides(cross)
	miter := n0.Add(n1).Mul(s / (1 + dot))
	*outer = append(*outer, p0.Add(miter), p0.Add(n1.Mul(s)))
	*inner = append(*inner, p0, p0.Sub(n1.Mul(s)))
}

func (e *Expander) applyRoundJoin(p0, tan geom.Point, cross, dot float32) {
	n0 := e.normal(e.lastTan)
	n1 := e.normal(tan)
	outer, inner, s := e.sides(cross)
	angle := math.Atan2(float64(cross), float64(dot))
	*outer = e.arc(*outer, p0, n0.Mul(s), angle)
	*outer = append(*outer, p0.Add(n1.Mul(s)))
	*inner = append(*inner, p0, p0.Sub(n1.Mul(s)))
}

// arc appends points on the circle around c starting at c+from and
// turning by angle radians, excluding the start point.
func (e *Expander) arc(dst []geom.Point, c, from geom.Point, angle float64) []geom.Point {
	r := float64(from.Len())
	if r < geom.Epsilon {
		return dst
	}
	step := math.Pi / 2
	if tol := float64(e.tolerance); tol < r {
		step = 2 * math.Acos(1-tol/r)
	}
	n := int(math.Ceil(math.Abs(angle) / step))
	if n < 1 {
		n = 1
	}
	a0 := math.Atan2(float64(from.Y), float64(from.X))
	for i := 1; i <= n; i++ {
		a := a0 + angle*float64(i)/float64(n)
		dst = append(dst, geom.Point{
			X: c.X + float32(r*math.Cos(a)),
			Y: c.Y + float32(r*math.Sin(a)),
		})
	}
	return dst
}

// applyCap appends the cap at c. The outline currently sits at c+from and
// the cap ends at c-from, bulging along dir.
func (e *Expander) applyCap(dst []geom.Point, c, from, dir geom.Point) []geom.Point {
	switch e.style.Cap {
	case CapRound:
		return e.arc(dst, c, from, math.Pi)
	case CapSquare:
		ext := dir.Mul(e.hw)
		return append(dst, c.Add(from).Add(ext), c.Sub(from).Add(ext))
	default:
		return dst
	}
}

// finish closes an open subpath: forward side, end cap, reversed
// backward side, start cap.
func (e *Expander) finish() {
	if len(e.forward) == 0 {
		return
	}
	out := make([]geom.Point, 0, len(e.forward)+len(e.backward)+16)
	out = append(out, e.forward...)
	out = e.applyCap(out, e.lastPt, e.normal(e.lastTan).Mul(-1), e.lastTan)
	for i := len(e.backward) - 1; i >= 0; i-- {
		out = append(out, e.backward[i])
	}
	out = e.applyCap(out, e.startPt, e.normal(e.startTan), e.startTan.Mul(-1))
	e.output = append(e.output, path.Poly{Pts: out, Closed: true})
}

// finishClosed joins back to the first segment and emits both sides as
// separate loops, the backward one reversed.
func (e *Expander) finishClosed() {
	if len(e.forward) == 0 {
		return
	}
	e.doJoin(e.startTan)
	fwd := append([]geom.Point(nil), e.forward...)
	bwd := make([]geom.Point, len(e.backward))
	for i, p := range e.backward {
		bwd[len(bwd)-1-i] = p
	}
	e.output = append(e.output, path.Poly{Pts: fwd, Closed: true}, path.Poly{Pts: bwd, Closed: true})
}

// dot strokes a zero-length subpath: a disc for round caps, a square for
// square caps, nothing for butt caps.
func (e *Expander) dot(c geom.Point) {
	switch e.style.Cap {
	case CapRound:
		from := geom.Pt(e.hw, 0)
		pts := []geom.Point{c.Add(from)}
		pts = e.arc(pts, c, from, 2*math.Pi)
		e.output = append(e.output, path.Poly{Pts: pts[:len(pts)-1], Closed: true})
	case CapSquare:
		h := e.hw
		e.output = append(e.output, path.Poly{Pts: []geom.Point{
			{X: c.X - h, Y: c.Y - h}, {X: c.X + h, Y: c.Y - h},
			{X: c.X + h, Y: c.Y + h}, {X: c.X - h, Y: c.Y + h},
		}, Closed: true})
	}
}
