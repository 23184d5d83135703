package tvg

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/stroke"
	"github.com/gogpu/tvg/internal/sw"
)

// Type identifies the kind of a Paint.
type Type uint8

// Paint types.
const (
	TypeShape Type = iota
	TypePicture
	TypeScene
	TypeText
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeShape:
		return "Shape"
	case TypePicture:
		return "Picture"
	case TypeScene:
		return "Scene"
	case TypeText:
		return "Text"
	default:
		return "Unknown"
	}
}

// ColorSpace is the pixel layout of a canvas target or raw pixel data.
type ColorSpace = sw.ColorSpace

// Color spaces. The S variants hold straight (non-premultiplied) alpha.
const (
	ABGR8888   = sw.ABGR8888
	ARGB8888   = sw.ARGB8888
	ABGR8888S  = sw.ABGR8888S
	ARGB8888S  = sw.ARGB8888S
	Grayscale8 = sw.Grayscale8
)

// BlendMethod selects how a paint is combined with what lies below it.
type BlendMethod = blend.Method

// Blend methods.
const (
	BlendNormal     = blend.Normal
	BlendAdd        = blend.Add
	BlendScreen     = blend.Screen
	BlendMultiply   = blend.Multiply
	BlendOverlay    = blend.Overlay
	BlendDifference = blend.Difference
	BlendExclusion  = blend.Exclusion
	BlendDarken     = blend.Darken
	BlendLighten    = blend.Lighten
	BlendColorDodge = blend.ColorDodge
	BlendColorBurn  = blend.ColorBurn
	BlendHardLight  = blend.HardLight
	BlendSoftLight  = blend.SoftLight
)

// MaskMethod selects how a mask target limits or merges with a paint.
type MaskMethod = render.MaskMethod

// Mask methods.
const (
	MaskNone       = render.MaskNone
	MaskClip       = render.MaskClip
	MaskAlpha      = render.MaskAlpha
	MaskInvAlpha   = render.MaskInvAlpha
	MaskLuma       = render.MaskLuma
	MaskInvLuma    = render.MaskInvLuma
	MaskAdd        = render.MaskAdd
	MaskSubtract   = render.MaskSubtract
	MaskIntersect  = render.MaskIntersect
	MaskDifference = render.MaskDifference
	MaskLighten    = render.MaskLighten
	MaskDarken     = render.MaskDarken
)

// FillRule decides which parts of a self-overlapping path are inside.
type FillRule = raster.FillRule

// Fill rules.
const (
	NonZero = raster.NonZero
	EvenOdd = raster.EvenOdd
)

// StrokeCap is the shape of open stroke ends.
type StrokeCap = stroke.Cap

// Stroke caps.
const (
	CapSquare = stroke.CapSquare
	CapRound  = stroke.CapRound
	CapButt   = stroke.CapButt
)

// StrokeJoin is the shape of stroke corners.
type StrokeJoin = stroke.Join

// Stroke joins.
const (
	JoinBevel = stroke.JoinBevel
	JoinRound = stroke.JoinRound
	JoinMiter = stroke.JoinMiter
)

// Spread decides gradient colors outside the [0, 1] range.
type Spread = render.Spread

// Spreads.
const (
	SpreadPad     = render.Pad
	SpreadReflect = render.Reflect
	SpreadRepeat  = render.Repeat
)

// PathCommand is a path command. The values are the TVG command bytes.
type PathCommand = path.Cmd

// Path commands.
const (
	PathClose   = path.Close
	PathMoveTo  = path.MoveTo
	PathLineTo  = path.LineTo
	PathCubicTo = path.CubicTo
)

// Point is a 2D coordinate.
type Point struct {
	X, Y float32
}

func (p Point) internal() geom.Point { return geom.Pt(p.X, p.Y) }

func fromInternal(p geom.Point) Point { return Point{X: p.X, Y: p.Y} }

// Matrix is a 3x3 affine transform in row-major order. Only the top two
// rows take part; E31 and E32 are zero and E33 is one.
type Matrix = geom.Matrix

// Identity returns the identity matrix.
func Identity() Matrix { return geom.Identity() }

// Vertex is a mesh corner: a position in picture space and a texture
// coordinate in [0, 1].
type Vertex struct {
	Pt Point
	UV Point
}

// Triangle is a textured mesh triangle.
type Triangle [3]Vertex

// ColorStop is a gradient stop.
type ColorStop struct {
	Offset     float32
	R, G, B, A uint8
}
