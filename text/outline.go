package text

import (
	"errors"
	"math"
	"slices"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/tvg/internal/cache"
)

// Op is an outline command.
type Op uint8

// Outline commands. The values match the TVG path command bytes.
const (
	OpClose Op = iota
	OpMoveTo
	OpLineTo
	OpCubicTo
)

// String returns the command name.
func (o Op) String() string {
	switch o {
	case OpClose:
		return "Close"
	case OpMoveTo:
		return "MoveTo"
	case OpLineTo:
		return "LineTo"
	case OpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// Points returns the number of points the command consumes.
func (o Op) Points() int {
	switch o {
	case OpMoveTo, OpLineTo:
		return 1
	case OpCubicTo:
		return 3
	default:
		return 0
	}
}

// Point is an outline coordinate in pixels, y down.
type Point struct {
	X, Y float32
}

// Outline is a glyph contour set in command/point form.
type Outline struct {
	Ops []Op
	Pts []Point
}

// Empty reports whether the outline draws nothing.
func (o *Outline) Empty() bool { return len(o.Pts) == 0 }

// Bounds returns the control point bounding box. ok is false for an empty
// outline.
func (o *Outline) Bounds() (minX, minY, maxX, maxY float32, ok bool) {
	if o.Empty() {
		return 0, 0, 0, 0, false
	}
	minX, minY = o.Pts[0].X, o.Pts[0].Y
	maxX, maxY = minX, minY
	for _, p := range o.Pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY, true
}

func (o Outline) clone() Outline {
	return Outline{Ops: slices.Clone(o.Ops), Pts: slices.Clone(o.Pts)}
}

// ItalicShear is the horizontal shear applied to synthesize an italic.
const ItalicShear = 0.18

// shear slants the outline to the right above the baseline.
func (o *Outline) shear(k float32) {
	for i := range o.Pts {
		o.Pts[i].X -= k * o.Pts[i].Y
	}
}

func toPoint(p fixed.Point26_6) Point {
	return Point{X: float32(p.X) / 64, Y: float32(p.Y) / 64}
}

// appendSegments converts sfnt segments to outline commands. Every contour
// is closed and quadratic segments become cubics.
func (o *Outline) appendSegments(segs []sfnt.Segment) {
	var cur Point
	open := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				o.Ops = append(o.Ops, OpClose)
			}
			cur = toPoint(s.Args[0])
			o.Ops = append(o.Ops, OpMoveTo)
			o.Pts = append(o.Pts, cur)
			open = true
		case sfnt.SegmentOpLineTo:
			cur = toPoint(s.Args[0])
			o.Ops = append(o.Ops, OpLineTo)
			o.Pts = append(o.Pts, cur)
		case sfnt.SegmentOpQuadTo:
			q, end := toPoint(s.Args[0]), toPoint(s.Args[1])
			c1 := Point{cur.X + 2.0/3*(q.X-cur.X), cur.Y + 2.0/3*(q.Y-cur.Y)}
			c2 := Point{end.X + 2.0/3*(q.X-end.X), end.Y + 2.0/3*(q.Y-end.Y)}
			o.Ops = append(o.Ops, OpCubicTo)
			o.Pts = append(o.Pts, c1, c2, end)
			cur = end
		case sfnt.SegmentOpCubeTo:
			end := toPoint(s.Args[2])
			o.Ops = append(o.Ops, OpCubicTo)
			o.Pts = append(o.Pts, toPoint(s.Args[0]), toPoint(s.Args[1]), end)
			cur = end
		}
	}
	if open {
		o.Ops = append(o.Ops, OpClose)
	}
}

// outline extracts a glyph outline at size pixels per em. Glyphs without
// vector data (spaces, color glyphs) give an empty outline.
func (f *Font) outline(buf *sfnt.Buffer, gid sfnt.GlyphIndex, size float32) (Outline, error) {
	segs, err := f.sfnt.LoadGlyph(buf, gid, fixed.Int26_6(size*64), nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) || errors.Is(err, sfnt.ErrColoredGlyph) {
			return Outline{}, nil
		}
		return Outline{}, err
	}
	var o Outline
	o.Ops = make([]Op, 0, len(segs)+1)
	o.Pts = make([]Point, 0, len(segs)*2)
	o.appendSegments(segs)
	return o, nil
}

// glyphKey identifies a glyph outline at one size.
type glyphKey struct {
	font *Font
	gid  sfnt.GlyphIndex
	size uint32
}

// glyphCacheSize bounds the outlines kept across layouts.
const glyphCacheSize = 4096

var glyphs = cache.New[glyphKey, Outline](glyphCacheSize)

// cachedOutline returns the glyph outline, extracting it on first use.
// The result is shared and must not be modified.
func (f *Font) cachedOutline(buf *sfnt.Buffer, gid sfnt.GlyphIndex, size float32) (Outline, error) {
	k := glyphKey{font: f, gid: gid, size: math.Float32bits(size)}
	if o, ok := glyphs.Get(k); ok {
		return o, nil
	}
	o, err := f.outline(buf, gid, size)
	if err != nil {
		return o, err
	}
	glyphs.Set(k, o)
	return o, nil
}

// forget drops the cached outlines of f.
func (f *Font) forget() {
	if n := glyphs.DeleteFunc(func(k glyphKey) bool { return k.font == f }); n > 0 {
		slogger().Debug("text: glyph cache purged", "font", f.name, "outlines", n)
	}
}
