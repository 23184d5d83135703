package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/text"
)

// Text draws a single line of text as glyph shapes.
//
// The font comes from the text package registry; "Go" is always there.
// The line box starts at the origin: the baseline sits at the font ascent.
type Text struct {
	paint

	family string
	size   float32
	style  text.Style
	str    string
	color  render.Color
	fill   Fill

	glyphs *Scene
	stale  bool
	seen   fillSeen
}

// NewText returns a text paint using the built-in family at 12 pixels.
func NewText() *Text {
	t := &Text{family: text.DefaultFamily, size: 12, stale: true}
	t.init(t)
	return t
}

// Type returns TypeText.
func (t *Text) Type() Type { return TypeText }

// SetFont selects the family, size in pixels per em and style ("italic"
// or "oblique" shear the glyphs; anything else is regular). The family
// must be registered.
func (t *Text) SetFont(family string, size float32, style string) error {
	if !geom.Finite(size) || size <= 0 {
		return fmt.Errorf("%w: font size %v", ErrInvalidArguments, size)
	}
	if _, err := text.Lookup(family); err != nil {
		return classify("set font", err)
	}
	t.family, t.size, t.style = family, size, text.ParseStyle(style)
	t.invalidate()
	return nil
}

// Font returns the family, size and style.
func (t *Text) Font() (family string, size float32, style string) {
	s := "regular"
	if t.style == text.Italic {
		s = "italic"
	}
	return t.family, t.size, s
}

// SetText sets the UTF-8 string.
func (t *Text) SetText(s string) {
	t.str = s
	t.invalidate()
}

// Text returns the string.
func (t *Text) Text() string { return t.str }

// SetFillColor sets a solid fill and drops any gradient.
func (t *Text) SetFillColor(r, g, b, a uint8) {
	t.color = render.Color{R: r, G: g, B: b, A: a}
	t.fill = nil
	t.invalidate()
}

// FillColor returns the solid fill color.
func (t *Text) FillColor() (r, g, b, a uint8) {
	return t.color.R, t.color.G, t.color.B, t.color.A
}

// SetFill sets a gradient fill in text space.
func (t *Text) SetFill(f Fill) {
	t.fill = f
	t.seen.set(f)
	t.invalidate()
}

// Fill returns the gradient fill, if any.
func (t *Text) Fill() Fill { return t.fill }

// pollFill rebuilds the glyphs when the gradient was edited in place.
func (t *Text) pollFill() {
	if t.seen.changed(t.fill) {
		t.invalidate()
	}
}

func (t *Text) invalidate() {
	t.stale = true
	t.dirty |= render.UpdatePath
}

// expand rebuilds the glyph scene when the text changed. It runs on the
// caller's goroutine.
func (t *Text) expand() (*Scene, error) {
	if !t.stale && t.glyphs != nil {
		return t.glyphs, nil
	}
	run, err := text.Layout(t.family, t.size, t.style, t.str)
	if err != nil {
		return nil, classify("layout text", err)
	}
	if t.glyphs != nil {
		g := t.glyphs
		t.glyphs = nil
		detach(g, true)
	}
	s := NewScene()
	for _, g := range run.Glyphs {
		if g.Outline.Empty() {
			continue
		}
		sh := NewShape()
		sh.path = glyphPath(&g, run.Ascent)
		sh.color = t.color
		if t.fill != nil {
			sh.fill = t.fill.Duplicate()
		}
		_ = attach(sh, s, nil)
		s.children = append(s.children, sh)
	}
	_ = attach(s, t, nil)
	t.glyphs, t.stale = s, false
	return s, nil
}

// glyphPath places a glyph outline at its pen position, moved down so the
// line box starts at y = 0.
func glyphPath(g *text.Glyph, ascent float32) path.Path {
	o := &g.Outline
	p := path.Path{
		Cmds: make([]path.Cmd, len(o.Ops)),
		Pts:  make([]geom.Point, len(o.Pts)),
	}
	for i, op := range o.Ops {
		p.Cmds[i] = path.Cmd(op)
	}
	for i, pt := range o.Pts {
		p.Pts[i] = geom.Pt(pt.X+g.X, pt.Y+g.Y+ascent)
	}
	return p
}

// Duplicate returns a deep copy.
func (t *Text) Duplicate() Paint {
	d := NewText()
	t.copyTo(&d.paint)
	d.family, d.size, d.style, d.str = t.family, t.size, t.style, t.str
	d.color, d.fill = t.color, duplicateFill(t.fill)
	return d
}

func (t *Text) localBounds() geom.BBox {
	s, err := t.expand()
	if err != nil {
		return geom.BBox{}
	}
	return s.localBounds()
}

func (t *Text) destroy() {
	if t.glyphs != nil {
		g := t.glyphs
		t.glyphs = nil
		detach(g, true)
	}
}
