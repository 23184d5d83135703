package tvg

import (
	"fmt"
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/stroke"
)

// Shape is a vector path with a fill and an optional stroke.
type Shape struct {
	paint

	path  path.Path
	rule  FillRule
	color render.Color
	fill  Fill
	trim  path.Trim

	stroke *shapeStroke

	seen, strokeSeen fillSeen

	// snapshot is the path handed to the renderer; it is replaced, never
	// mutated, so prepare tasks can read it while the shape is edited.
	snapshot path.Path
}

type shapeStroke struct {
	width       float32
	color       render.Color
	fill        Fill
	cap         StrokeCap
	join        StrokeJoin
	miterLimit  float32
	dash        []float32
	dashOffset  float32
	strokeFirst bool
}

// NewShape returns an empty shape with no fill.
func NewShape() *Shape {
	s := &Shape{trim: path.NoTrim}
	s.init(s)
	return s
}

// Type returns TypeShape.
func (s *Shape) Type() Type { return TypeShape }

// MoveTo starts a new subpath.
func (s *Shape) MoveTo(x, y float32) {
	s.path.MoveTo(x, y)
	s.dirty |= render.UpdatePath
}

// LineTo adds a line from the current point.
func (s *Shape) LineTo(x, y float32) {
	s.path.LineTo(x, y)
	s.dirty |= render.UpdatePath
}

// CubicTo adds a cubic Bézier from the current point.
func (s *Shape) CubicTo(c1x, c1y, c2x, c2y, x, y float32) {
	s.path.CubicTo(c1x, c1y, c2x, c2y, x, y)
	s.dirty |= render.UpdatePath
}

// Close closes the current subpath.
func (s *Shape) Close() {
	s.path.Close()
	s.dirty |= render.UpdatePath
}

// AppendRect adds a rectangle with optional rounded corners.
func (s *Shape) AppendRect(x, y, w, h, rx, ry float32) {
	s.path.AppendRect(x, y, w, h, rx, ry)
	s.dirty |= render.UpdatePath
}

// AppendCircle adds an ellipse with radii rx and ry.
func (s *Shape) AppendCircle(cx, cy, rx, ry float32) {
	s.path.AppendCircle(cx, cy, rx, ry)
	s.dirty |= render.UpdatePath
}

// AppendArc adds an arc of radius r starting at startDeg and sweeping
// sweepDeg degrees. pie connects the ends to the center.
func (s *Shape) AppendArc(cx, cy, r, startDeg, sweepDeg float32, pie bool) {
	s.path.AppendArc(cx, cy, r, startDeg, sweepDeg, pie)
	s.dirty |= render.UpdatePath
}

// AppendPath adds raw commands and points. The counts must agree.
func (s *Shape) AppendPath(cmds []PathCommand, pts []Point) error {
	ipts := make([]geom.Point, len(pts))
	for i, p := range pts {
		ipts[i] = p.internal()
	}
	if !path.Valid(cmds, ipts) {
		return fmt.Errorf("%w: %d commands do not consume %d points", ErrInvalidArguments, len(cmds), len(pts))
	}
	s.path.Append(cmds, ipts)
	s.dirty |= render.UpdatePath
	return nil
}

// Reset clears the path. Fill and stroke settings stay.
func (s *Shape) Reset() {
	s.path.Reset()
	s.dirty |= render.UpdatePath
}

// Path returns copies of the commands and points.
func (s *Shape) Path() ([]PathCommand, []Point) {
	pts := make([]Point, len(s.path.Pts))
	for i, p := range s.path.Pts {
		pts[i] = fromInternal(p)
	}
	return slices.Clone(s.path.Cmds), pts
}

func (s *Shape) valid() bool {
	return path.Valid(s.path.Cmds, s.path.Pts)
}

// SetFillColor sets a solid fill and drops any gradient fill.
func (s *Shape) SetFillColor(r, g, b, a uint8) {
	s.color = render.Color{R: r, G: g, B: b, A: a}
	if s.fill != nil {
		s.fill = nil
		s.dirty |= render.UpdateGradient
	}
	s.dirty |= render.UpdateColor
}

// FillColor returns the solid fill color.
func (s *Shape) FillColor() (r, g, b, a uint8) {
	return s.color.R, s.color.G, s.color.B, s.color.A
}

// SetFill sets a gradient fill. Nil removes it.
func (s *Shape) SetFill(f Fill) {
	s.fill = f
	s.seen.set(f)
	s.dirty |= render.UpdateGradient
}

// Fill returns the gradient fill, if any.
func (s *Shape) Fill() Fill { return s.fill }

// SetFillRule sets the fill rule.
func (s *Shape) SetFillRule(r FillRule) error {
	if r > EvenOdd {
		return fmt.Errorf("%w: fill rule %v", ErrInvalidArguments, r)
	}
	s.rule = r
	s.dirty |= render.UpdatePath
	return nil
}

// FillRule returns the fill rule.
func (s *Shape) FillRule() FillRule { return s.rule }

func (s *Shape) ensureStroke() *shapeStroke {
	if s.stroke == nil {
		st := stroke.DefaultStyle()
		s.stroke = &shapeStroke{width: 0, cap: st.Cap, join: st.Join, miterLimit: st.MiterLimit}
	}
	s.dirty |= render.UpdateStroke
	return s.stroke
}

// SetStrokeWidth sets the stroke width. Zero disables the stroke.
func (s *Shape) SetStrokeWidth(w float32) error {
	if !geom.Finite(w) || w < 0 {
		return fmt.Errorf("%w: stroke width %v", ErrInvalidArguments, w)
	}
	s.ensureStroke().width = w
	return nil
}

// StrokeWidth returns the stroke width.
func (s *Shape) StrokeWidth() float32 {
	if s.stroke == nil {
		return 0
	}
	return s.stroke.width
}

// SetStrokeColor sets a solid stroke color and drops any stroke gradient.
func (s *Shape) SetStrokeColor(r, g, b, a uint8) {
	st := s.ensureStroke()
	st.color = render.Color{R: r, G: g, B: b, A: a}
	st.fill = nil
}

// StrokeColor returns the solid stroke color.
func (s *Shape) StrokeColor() (r, g, b, a uint8) {
	if s.stroke == nil {
		return 0, 0, 0, 0
	}
	c := s.stroke.color
	return c.R, c.G, c.B, c.A
}

// SetStrokeFill sets a gradient stroke.
func (s *Shape) SetStrokeFill(f Fill) {
	s.ensureStroke().fill = f
	s.strokeSeen.set(f)
	s.dirty |= render.UpdateGradient
}

// StrokeFill returns the stroke gradient, if any.
func (s *Shape) StrokeFill() Fill {
	if s.stroke == nil {
		return nil
	}
	return s.stroke.fill
}

// SetStrokeJoin sets the corner style.
func (s *Shape) SetStrokeJoin(j StrokeJoin) error {
	if j > JoinMiter {
		return fmt.Errorf("%w: stroke join %v", ErrInvalidArguments, j)
	}
	s.ensureStroke().join = j
	return nil
}

// StrokeJoin returns the corner style.
func (s *Shape) StrokeJoin() StrokeJoin {
	if s.stroke == nil {
		return stroke.DefaultStyle().Join
	}
	return s.stroke.join
}

// SetStrokeCap sets the end style.
func (s *Shape) SetStrokeCap(c StrokeCap) error {
	if c > CapButt {
		return fmt.Errorf("%w: stroke cap %v", ErrInvalidArguments, c)
	}
	s.ensureStroke().cap = c
	return nil
}

// StrokeCap returns the end style.
func (s *Shape) StrokeCap() StrokeCap {
	if s.stroke == nil {
		return stroke.DefaultStyle().Cap
	}
	return s.stroke.cap
}

// SetStrokeMiterlimit sets the miter limit. It must not be negative.
func (s *Shape) SetStrokeMiterlimit(limit float32) error {
	if !geom.Finite(limit) || limit < 0 {
		return fmt.Errorf("%w: miter limit %v", ErrInvalidArguments, limit)
	}
	s.ensureStroke().miterLimit = limit
	return nil
}

// StrokeMiterlimit returns the miter limit.
func (s *Shape) StrokeMiterlimit() float32 {
	if s.stroke == nil {
		return stroke.DefaultStyle().MiterLimit
	}
	return s.stroke.miterLimit
}

// SetStrokeDash sets the dash pattern and offset. An empty pattern turns
// dashing off. Lengths must not be negative.
func (s *Shape) SetStrokeDash(pattern []float32, offset float32) error {
	for _, l := range pattern {
		if !geom.Finite(l) || l < 0 {
			return fmt.Errorf("%w: dash length %v", ErrInvalidArguments, l)
		}
	}
	if !geom.Finite(offset) {
		return fmt.Errorf("%w: dash offset %v", ErrInvalidArguments, offset)
	}
	st := s.ensureStroke()
	st.dash = slices.Clone(pattern)
	st.dashOffset = offset
	return nil
}

// StrokeDash returns a copy of the dash pattern and the offset.
func (s *Shape) StrokeDash() ([]float32, float32) {
	if s.stroke == nil {
		return nil, 0
	}
	return slices.Clone(s.stroke.dash), s.stroke.dashOffset
}

// SetOrder draws the stroke below the fill when strokeFirst is set.
func (s *Shape) SetOrder(strokeFirst bool) {
	s.ensureStroke().strokeFirst = strokeFirst
}

// StrokeFirst reports whether the stroke is drawn below the fill.
func (s *Shape) StrokeFirst() bool {
	return s.stroke != nil && s.stroke.strokeFirst
}

// SetTrimPath keeps only the part of the path between the arc-length
// fractions begin and end. With simultaneous set every subpath is trimmed
// on its own; otherwise the subpaths are trimmed as one run.
func (s *Shape) SetTrimPath(begin, end float32, simultaneous bool) error {
	if !geom.Finite(begin) || !geom.Finite(end) {
		return fmt.Errorf("%w: trim %v..%v", ErrInvalidArguments, begin, end)
	}
	s.trim = path.Trim{Begin: begin, End: end, Simultaneous: simultaneous}
	s.dirty |= render.UpdatePath
	return nil
}

// TrimPath returns the trim range.
func (s *Shape) TrimPath() (begin, end float32, simultaneous bool) {
	return s.trim.Begin, s.trim.End, s.trim.Simultaneous
}

// Duplicate returns a deep copy.
func (s *Shape) Duplicate() Paint {
	d := NewShape()
	s.copyTo(&d.paint)
	d.path = s.path.Clone()
	d.rule, d.color, d.trim = s.rule, s.color, s.trim
	d.fill = duplicateFill(s.fill)
	if s.stroke != nil {
		st := *s.stroke
		st.dash = slices.Clone(s.stroke.dash)
		st.fill = duplicateFill(s.stroke.fill)
		d.stroke = &st
	}
	return d
}

func (s *Shape) localBounds() geom.BBox {
	if s.path.Empty() {
		return geom.BBox{}
	}
	bb := s.path.Bounds()
	if s.stroke != nil && s.stroke.width > 0 {
		bb = bb.Inflate(s.stroke.width / 2)
	}
	return bb
}

func (s *Shape) destroy() {}

// pollFills marks the shape dirty when a gradient it uses was edited in
// place.
func (s *Shape) pollFills() {
	if s.seen.changed(s.fill) {
		s.dirty |= render.UpdateGradient
	}
	var sf Fill
	if s.stroke != nil {
		sf = s.stroke.fill
	}
	if s.strokeSeen.changed(sf) {
		s.dirty |= render.UpdateStroke | render.UpdateGradient
	}
}

// renderShape builds the renderer view of the shape. The path snapshot is
// only cloned when the path changed.
func (s *Shape) renderShape(flags render.UpdateFlag) render.Shape {
	if flags.Has(render.UpdatePath) || s.snapshot.Cmds == nil {
		s.snapshot = s.path.Clone()
	}
	rs := render.Shape{Path: s.snapshot, Rule: s.rule, Color: s.color, Trim: s.trim}
	if s.fill != nil {
		rs.Fill = s.fill.gradient()
	}
	if st := s.stroke; st != nil && st.width > 0 {
		rs.Stroke = &render.Stroke{
			Width:       st.width,
			Color:       st.color,
			Cap:         st.cap,
			Join:        st.join,
			MiterLimit:  st.miterLimit,
			Dash:        path.Dash{Pattern: st.dash, Offset: st.dashOffset},
			StrokeFirst: st.strokeFirst,
		}
		if st.fill != nil {
			rs.Stroke.Fill = st.fill.gradient()
		}
	}
	return rs
}
