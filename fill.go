package tvg

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
)

// Fill is a gradient paint source for shape fills, strokes and text.
//
// A Fill may be changed after it is set: the paints using it are prepared
// again on their next update.
type Fill interface {
	// SetColorStops replaces the stops. Offsets are clamped to [0, 1] and
	// sorted; at most 1024 stops are accepted.
	SetColorStops(stops []ColorStop) error
	ColorStops() []ColorStop

	SetSpread(s Spread) error
	Spread() Spread

	// SetTransform places the gradient in the paint's local space.
	SetTransform(m Matrix)
	Transform() Matrix

	// Duplicate returns an independent copy.
	Duplicate() Fill

	gradient() *render.Gradient
	revision() uint32
}

type gradientBase struct {
	stops  []ColorStop
	spread Spread
	m      Matrix

	// rev counts the changes made through setters.
	rev uint32
}

func (g *gradientBase) revision() uint32 { return g.rev }

func newGradientBase() gradientBase {
	return gradientBase{m: geom.Identity()}
}

func (g *gradientBase) SetColorStops(stops []ColorStop) error {
	if len(stops) > render.MaxStops {
		return fmt.Errorf("%w: %d color stops, limit %d", ErrInvalidArguments, len(stops), render.MaxStops)
	}
	out := make([]ColorStop, len(stops))
	for i, s := range stops {
		if !geom.Finite(s.Offset) {
			return fmt.Errorf("%w: stop %d offset %v", ErrInvalidArguments, i, s.Offset)
		}
		s.Offset = geom.Clamp(s.Offset, 0, 1)
		out[i] = s
	}
	slices.SortStableFunc(out, func(a, b ColorStop) int { return cmp.Compare(a.Offset, b.Offset) })
	g.stops = out
	g.rev++
	return nil
}

func (g *gradientBase) ColorStops() []ColorStop { return slices.Clone(g.stops) }

func (g *gradientBase) SetSpread(s Spread) error {
	if s > SpreadRepeat {
		return fmt.Errorf("%w: spread %v", ErrInvalidArguments, s)
	}
	g.spread = s
	g.rev++
	return nil
}

func (g *gradientBase) Spread() Spread { return g.spread }

func (g *gradientBase) SetTransform(m Matrix) {
	g.m = m
	g.rev++
}

func (g *gradientBase) Transform() Matrix { return g.m }

func (g *gradientBase) clone() gradientBase {
	c := *g
	c.stops = slices.Clone(g.stops)
	return c
}

func (g *gradientBase) base(kind render.GradientKind) *render.Gradient {
	rg := &render.Gradient{
		Kind:      kind,
		Spread:    g.spread,
		Transform: g.m,
		Stops:     make([]render.Stop, len(g.stops)),
	}
	for i, s := range g.stops {
		rg.Stops[i] = render.Stop{Offset: s.Offset, Color: render.Color{R: s.R, G: s.G, B: s.B, A: s.A}}
	}
	return rg
}

// LinearGradient varies color along the line from (X1, Y1) to (X2, Y2).
type LinearGradient struct {
	gradientBase
	x1, y1, x2, y2 float32
}

// NewLinearGradient returns a gradient with no stops and a zero-length
// axis.
func NewLinearGradient() *LinearGradient {
	return &LinearGradient{gradientBase: newGradientBase()}
}

// SetLinear sets the gradient axis.
func (g *LinearGradient) SetLinear(x1, y1, x2, y2 float32) error {
	if !geom.Finite(x1) || !geom.Finite(y1) || !geom.Finite(x2) || !geom.Finite(y2) {
		return fmt.Errorf("%w: linear gradient axis", ErrInvalidArguments)
	}
	g.x1, g.y1, g.x2, g.y2 = x1, y1, x2, y2
	g.rev++
	return nil
}

// Linear returns the gradient axis.
func (g *LinearGradient) Linear() (x1, y1, x2, y2 float32) {
	return g.x1, g.y1, g.x2, g.y2
}

// Duplicate returns an independent copy.
func (g *LinearGradient) Duplicate() Fill {
	c := *g
	c.gradientBase = g.clone()
	return &c
}

func (g *LinearGradient) gradient() *render.Gradient {
	rg := g.base(render.Linear)
	rg.X1, rg.Y1, rg.X2, rg.Y2 = g.x1, g.y1, g.x2, g.y2
	return rg
}

// RadialGradient varies color with the distance from (CX, CY), reaching
// the last stop at radius R.
type RadialGradient struct {
	gradientBase
	cx, cy, r float32
}

// NewRadialGradient returns a gradient with no stops and a zero radius.
func NewRadialGradient() *RadialGradient {
	return &RadialGradient{gradientBase: newGradientBase()}
}

// SetRadial sets the center and radius. r must not be negative.
func (g *RadialGradient) SetRadial(cx, cy, r float32) error {
	if !geom.Finite(cx) || !geom.Finite(cy) || !geom.Finite(r) || r < 0 {
		return fmt.Errorf("%w: radial gradient %v,%v r=%v", ErrInvalidArguments, cx, cy, r)
	}
	g.cx, g.cy, g.r = cx, cy, r
	g.rev++
	return nil
}

// Radial returns the center and radius.
func (g *RadialGradient) Radial() (cx, cy, r float32) {
	return g.cx, g.cy, g.r
}

// Duplicate returns an independent copy.
func (g *RadialGradient) Duplicate() Fill {
	c := *g
	c.gradientBase = g.clone()
	return &c
}

func (g *RadialGradient) gradient() *render.Gradient {
	rg := g.base(render.Radial)
	rg.CX, rg.CY, rg.R = g.cx, g.cy, g.r
	return rg
}

func duplicateFill(f Fill) Fill {
	if f == nil {
		return nil
	}
	return f.Duplicate()
}

// fillSeen tracks the revision of a Fill a paint was last prepared with.
type fillSeen struct {
	f   Fill
	rev uint32
}

// set records f as prepared at its current revision.
func (s *fillSeen) set(f Fill) {
	s.f = f
	if f != nil {
		s.rev = f.revision()
	}
}

// changed reports whether f was edited since it was recorded and records
// the new revision.
func (s *fillSeen) changed(f Fill) bool {
	if f == nil {
		s.f = nil
		return false
	}
	if s.f == f && s.rev == f.revision() {
		return false
	}
	s.set(f)
	return true
}
