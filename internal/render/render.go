// Package render holds the data a renderer back-end consumes: shape and
// stroke descriptions, gradients, mask and blend methods and the flags
// telling a back-end which parts of a paint changed since its last update.
//
// Everything in this package is plain data. Paints in the root package
// snapshot their state into these types before handing them to a
// renderer, so that prepare work running on other goroutines never sees a
// paint being mutated.
package render

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/stroke"
)

// UpdateFlag marks what changed on a paint since it was last prepared.
type UpdateFlag uint16

// Update flags.
const (
	UpdateNone      UpdateFlag = 0
	UpdatePath      UpdateFlag = 1 << 0
	UpdateColor     UpdateFlag = 1 << 1
	UpdateGradient  UpdateFlag = 1 << 2
	UpdateStroke    UpdateFlag = 1 << 3
	UpdateTransform UpdateFlag = 1 << 4
	UpdateImage     UpdateFlag = 1 << 5
	UpdateBlend     UpdateFlag = 1 << 6
	UpdateClip      UpdateFlag = 1 << 7
	UpdateEffect    UpdateFlag = 1 << 8
	UpdateAll       UpdateFlag = 0xffff
)

// Has reports whether any bit of o is set in f.
func (f UpdateFlag) Has(o UpdateFlag) bool { return f&o != 0 }

// Geometry reports whether f invalidates rasterized coverage. A paint
// whose flags only touch colors can reuse its spans.
func (f UpdateFlag) Geometry() bool {
	return f.Has(UpdatePath | UpdateStroke | UpdateTransform | UpdateClip | UpdateImage)
}

// Color is a straight-alpha RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Pack premultiplies c, scales it by opacity and packs it in the given
// channel order.
func (c Color) Pack(opacity uint8, order image.Order) uint32 {
	a := raster.Multiply(c.A, opacity)
	r := raster.Multiply(c.R, a)
	g := raster.Multiply(c.G, a)
	b := raster.Multiply(c.B, a)
	if order == image.ABGR {
		return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
	}
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Spread selects how a gradient continues outside [0, 1].
type Spread uint8

// Spread modes.
const (
	Pad Spread = iota
	Reflect
	Repeat
)

// String returns the name of the spread mode.
func (s Spread) String() string {
	switch s {
	case Pad:
		return "Pad"
	case Reflect:
		return "Reflect"
	case Repeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// GradientKind tells linear and radial gradients apart.
type GradientKind uint8

// Gradient kinds.
const (
	Linear GradientKind = iota
	Radial
)

// Stop is one gradient color stop.
type Stop struct {
	Offset float32
	Color  Color
}

// MaxStops bounds the number of stops a gradient may carry.
const MaxStops = 1024

// Gradient is a linear or radial color ramp in paint-local space.
// Transform maps gradient space into paint-local space.
type Gradient struct {
	Kind           GradientKind
	X1, Y1, X2, Y2 float32
	CX, CY, R      float32
	Stops          []Stop
	Spread         Spread
	Transform      geom.Matrix
}

// Stroke describes a shape's outline.
type Stroke struct {
	Width       float32
	Color       Color
	Fill        *Gradient
	Cap         stroke.Cap
	Join        stroke.Join
	MiterLimit  float32
	Dash        path.Dash
	StrokeFirst bool
}

// Visible reports whether the stroke can produce pixels.
func (s *Stroke) Visible() bool {
	return s != nil && s.Width > geom.Epsilon && (s.Fill != nil || s.Color.A > 0)
}

// Shape is everything a back-end needs to rasterize a shape.
type Shape struct {
	Path   path.Path
	Rule   raster.FillRule
	Color  Color
	Fill   *Gradient
	Stroke *Stroke
	Trim   path.Trim
}

// Filled reports whether the interior can produce pixels.
func (s *Shape) Filled() bool {
	return s.Fill != nil || s.Color.A > 0
}

// MaskMethod selects how a paint is combined with its mask target.
type MaskMethod uint8

// Mask methods. The values match the composite flags of the binary format.
const (
	MaskNone MaskMethod = iota
	MaskClip
	MaskAlpha
	MaskInvAlpha
	MaskLuma
	MaskInvLuma
	MaskAdd
	MaskSubtract
	MaskIntersect
	MaskDifference
	MaskLighten
	MaskDarken
)

var maskNames = [...]string{
	"None", "Clip", "Alpha", "InvAlpha", "Luma", "InvLuma",
	"Add", "Subtract", "Intersect", "Difference", "Lighten", "Darken",
}

// String returns the name of the method.
func (m MaskMethod) String() string {
	if int(m) < len(maskNames) {
		return maskNames[m]
	}
	return "Unknown"
}

// Valid reports whether m is a known method.
func (m MaskMethod) Valid() bool { return int(m) < len(maskNames) }

// Matting reports whether m scales the paint by a per-pixel factor taken
// from the mask, as opposed to merging the two layers.
func (m MaskMethod) Matting() bool {
	return m >= MaskAlpha && m <= MaskInvLuma
}

// BlendMethod is the per-paint blend applied when compositing.
type BlendMethod = blend.Method

// Vertex is a mesh vertex: a position in picture space and the matching
// texture coordinate in image pixels.
type Vertex struct {
	Pt geom.Point
	UV geom.Point
}

// Triangle is one textured mesh triangle.
type Triangle [3]Vertex
