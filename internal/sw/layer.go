package sw

import (
	"github.com/gogpu/tvg/internal/blend"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/render"
)

// Layer is a compositor frame: a cleared scratch surface that receives
// draws between BeginLayer and EndLayer.
type Layer struct {
	surface
	open bool
}

// Region returns the device pixels the layer covers.
func (l *Layer) Region() geom.Region { return l.region }

// BeginLayer pushes a compositor frame covering region clipped to the
// current surface. Draws go to the layer until EndLayer.
func (r *Renderer) BeginLayer(region geom.Region) (*Layer, error) {
	cur := r.current()
	region = region.Intersect(cur.region)
	l := &Layer{surface: surface{stride: region.W, region: region, order: cur.order}, open: true}
	if !region.Empty() {
		buf, err := r.mem.get(region.W * region.H)
		if err != nil {
			return nil, err
		}
		l.buf = buf
	}
	r.layers = append(r.layers, l)
	return l, nil
}

// EndLayer pops l, which must be the innermost open layer.
func (r *Renderer) EndLayer(l *Layer) {
	n := len(r.layers)
	if n == 0 || r.layers[n-1] != l {
		slogger().Warn("sw: EndLayer out of order")
		return
	}
	r.layers[n-1] = nil
	r.layers = r.layers[:n-1]
	l.open = false
}

// ReleaseLayer returns the layer's buffer to the mempool.
func (r *Renderer) ReleaseLayer(l *Layer) {
	if l == nil {
		return
	}
	if l.open {
		r.EndLayer(l)
	}
	if l.buf == nil {
		return
	}
	r.mem.put(l.buf)
	l.buf = nil
	l.region = geom.Region{}
}

// Composite blends l onto the current surface with the given opacity and
// blend method.
func (r *Renderer) Composite(l *Layer, opacity uint8, method blend.Method) {
	if l == nil || l.buf == nil || opacity == 0 {
		return
	}
	cur := r.current()
	reg := l.region.Intersect(cur.region)
	f := blend.FuncFor(method)
	for y := reg.Y; y < reg.Y2(); y++ {
		src := l.span(y, reg.X, reg.X2())
		dst := cur.span(y, reg.X, reg.X2())
		for i, s := range src {
			if opacity < 255 {
				s = blend.Scale(s, opacity)
			}
			if s == 0 {
				continue
			}
			dst[i] = f(s, dst[i])
		}
	}
}

// Mask combines the paint layer with the mask layer in place. Both layers
// must cover the same region.
func (r *Renderer) Mask(paint, mask *Layer, method render.MaskMethod) {
	if paint == nil || paint.buf == nil {
		return
	}
	combine := maskCombiner(method, paint.order)
	if combine == nil {
		return
	}
	hasMask := mask != nil && mask.buf != nil
	if hasMask && mask.region != paint.region {
		slogger().Warn("sw: mask layer does not match paint layer", "mask", mask.region, "paint", paint.region)
		return
	}
	for i, s := range paint.buf {
		var d uint32
		if hasMask {
			d = mask.buf[i]
		}
		paint.buf[i] = combine(s, d)
	}
}

// maskCombiner returns the per-pixel function merging paint pixel s with
// mask pixel d.
func maskCombiner(method render.MaskMethod, order image.Order) func(s, d uint32) uint32 {
	switch method {
	case render.MaskClip, render.MaskAlpha:
		return func(s, d uint32) uint32 { return blend.Scale(s, uint8(d>>24)) }
	case render.MaskInvAlpha:
		return func(s, d uint32) uint32 { return blend.Scale(s, 255-uint8(d>>24)) }
	case render.MaskLuma:
		return func(s, d uint32) uint32 { return blend.Scale(s, image.Luma(d, order)) }
	case render.MaskInvLuma:
		return func(s, d uint32) uint32 { return blend.Scale(s, 255-image.Luma(d, order)) }
	case render.MaskAdd:
		return func(s, d uint32) uint32 { return s + blend.Scale(d, 255-uint8(s>>24)) }
	case render.MaskSubtract:
		return func(s, d uint32) uint32 { return blend.Scale(d, 255-uint8(s>>24)) }
	case render.MaskIntersect:
		return func(s, d uint32) uint32 { return blend.Scale(d, uint8(s>>24)) }
	case render.MaskDifference:
		return func(s, d uint32) uint32 {
			return blend.Scale(s, 255-uint8(d>>24)) + blend.Scale(d, 255-uint8(s>>24))
		}
	case render.MaskLighten:
		return func(s, d uint32) uint32 {
			if s>>24 >= d>>24 {
				return s
			}
			return d
		}
	case render.MaskDarken:
		return func(s, d uint32) uint32 {
			if s>>24 <= d>>24 {
				return s
			}
			return d
		}
	default:
		return nil
	}
}

// DrawClip writes a clip shape's coverage into the current surface as an
// opaque mask.
func (r *Renderer) DrawClip(d *ShapeData) {
	if d == nil {
		return
	}
	d.join()
	r.k.mask(r.current(), d.clipRLE())
}
