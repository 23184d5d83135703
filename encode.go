package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/path"
	"github.com/gogpu/tvg/internal/tvgbin"
)

// Encode serializes p and its subtree in the TVG binary format. Text is
// written as the glyph shapes it expands to.
func Encode(p Paint) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil paint", ErrInvalidArguments)
	}
	if p.base().freed {
		return nil, fmt.Errorf("%w: paint was destroyed", ErrMemoryCorruption)
	}
	w := tvgbin.NewWriter()
	if err := encodePaint(w, p); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodePaint(w *tvgbin.Writer, p Paint) error {
	switch v := p.(type) {
	case *Shape:
		w.Begin(tvgbin.TagShape)
		if err := encodeCommon(w, p); err != nil {
			return err
		}
		encodeShape(w, v)
	case *Scene:
		w.Begin(tvgbin.TagScene)
		if err := encodeCommon(w, p); err != nil {
			return err
		}
		for _, e := range v.effects {
			encodeEffect(w, e)
		}
		if err := encodeChildren(w, v.children); err != nil {
			return err
		}
	case *Picture:
		w.Begin(tvgbin.TagPicture)
		if err := encodeCommon(w, p); err != nil {
			return err
		}
		if err := encodePicture(w, v); err != nil {
			return err
		}
	case *Text:
		g, err := v.expand()
		if err != nil {
			return err
		}
		w.Begin(tvgbin.TagScene)
		if err := encodeCommon(w, p); err != nil {
			return err
		}
		if err := encodeChildren(w, g.children); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: paint %T", ErrNonSupport, p)
	}
	w.End()
	return nil
}

func encodeCommon(w *tvgbin.Writer, p Paint) error {
	b := p.base()
	if b.opacity != 255 {
		w.U8Block(tvgbin.TagOpacity, b.opacity)
	}
	if !b.m.IsIdentity() {
		w.F32Block(tvgbin.TagTransform, matrixValues(b.m)...)
	}
	if b.blend != BlendNormal {
		w.U8Block(tvgbin.TagBlend, uint8(b.blend))
	}
	if b.mask != nil {
		w.Begin(tvgbin.TagComposite)
		w.U8Block(tvgbin.TagMaskMethod, uint8(b.method))
		if err := encodePaint(w, b.mask); err != nil {
			return err
		}
		w.End()
	}
	return nil
}

func encodeEffect(w *tvgbin.Writer, e Effect) {
	w.Begin(tvgbin.TagEffect)
	w.U8(uint8(e.kind()))
	switch v := e.(type) {
	case GaussianBlur:
		w.F32(v.Sigma)
		w.U8(uint8(v.Direction))
		w.U8(uint8(v.Border))
		w.U8(v.Quality)
	case DropShadow:
		w.RGBA(v.R, v.G, v.B, v.A)
		w.F32s(v.Angle, v.Distance, v.Sigma)
		w.U8(v.Quality)
	case FillEffect:
		w.RGBA(v.R, v.G, v.B, v.A)
	case Tint:
		writeRGB(w, v.Black, v.White)
		w.F32(v.Intensity)
	case Tritone:
		writeRGB(w, v.Shadow, v.Midtone, v.Highlight)
	}
	w.End()
}

func writeRGB(w *tvgbin.Writer, cs ...RGB) {
	for _, c := range cs {
		w.U8(c.R)
		w.U8(c.G)
		w.U8(c.B)
	}
}

func encodeChildren(w *tvgbin.Writer, kids []Paint) error {
	w.Begin(tvgbin.TagReservedCount)
	w.U32(uint32(len(kids)))
	w.End()
	for _, ch := range kids {
		if err := encodePaint(w, ch); err != nil {
			return err
		}
	}
	return nil
}

func encodeShape(w *tvgbin.Writer, s *Shape) {
	if !s.path.Empty() {
		w.Begin(tvgbin.TagPath)
		w.U32(uint32(len(s.path.Cmds)))
		w.U32(uint32(len(s.path.Pts)))
		for _, c := range s.path.Cmds {
			w.U8(uint8(c))
		}
		for _, pt := range s.path.Pts {
			w.F32s(pt.X, pt.Y)
		}
		w.End()
	}
	if s.rule == EvenOdd {
		w.U8Block(tvgbin.TagFillRule, tvgbin.FillRuleEvenOdd)
	}
	if c := s.color; c.A > 0 || c.R > 0 || c.G > 0 || c.B > 0 {
		w.RGBABlock(tvgbin.TagColor, c.R, c.G, c.B, c.A)
	}
	if s.fill != nil {
		w.Begin(tvgbin.TagFill)
		encodeFill(w, s.fill)
		w.End()
	}
	if s.trim != path.NoTrim {
		w.Begin(tvgbin.TagTrimPath)
		w.F32s(s.trim.Begin, s.trim.End)
		w.U8(boolByte(s.trim.Simultaneous))
		w.End()
	}
	if st := s.stroke; st != nil {
		w.Begin(tvgbin.TagStroke)
		w.U8Block(tvgbin.TagStrokeCap, uint8(st.cap))
		w.U8Block(tvgbin.TagStrokeJoin, uint8(st.join))
		w.F32Block(tvgbin.TagStrokeWidth, st.width)
		w.RGBABlock(tvgbin.TagStrokeColor, st.color.R, st.color.G, st.color.B, st.color.A)
		if st.fill != nil {
			w.Begin(tvgbin.TagStrokeFill)
			encodeFill(w, st.fill)
			w.End()
		}
		if len(st.dash) > 0 {
			w.Begin(tvgbin.TagStrokeDash)
			w.U32(uint32(len(st.dash)))
			w.F32s(st.dash...)
			w.F32(st.dashOffset)
			w.End()
		}
		if st.strokeFirst {
			w.U8Block(tvgbin.TagStrokeOrder, 1)
		}
		w.F32Block(tvgbin.TagStrokeMiter, st.miterLimit)
		w.End()
	}
}

func encodeFill(w *tvgbin.Writer, f Fill) {
	switch g := f.(type) {
	case *LinearGradient:
		x1, y1, x2, y2 := g.Linear()
		w.F32Block(tvgbin.TagLinear, x1, y1, x2, y2)
	case *RadialGradient:
		cx, cy, r := g.Radial()
		w.F32Block(tvgbin.TagRadial, cx, cy, r)
	}
	if stops := f.ColorStops(); len(stops) > 0 {
		w.Begin(tvgbin.TagStops)
		for _, s := range stops {
			w.F32(s.Offset)
			w.RGBA(s.R, s.G, s.B, s.A)
		}
		w.End()
	}
	if sp := f.Spread(); sp != SpreadPad {
		w.U8Block(tvgbin.TagSpread, uint8(sp))
	}
	if m := f.Transform(); !m.IsIdentity() {
		w.F32Block(tvgbin.TagFillTransform, matrixValues(m)...)
	}
}

func encodePicture(w *tvgbin.Writer, p *Picture) error {
	switch {
	case p.child != nil:
		if err := encodePaint(w, p.child); err != nil {
			return err
		}
	case p.img != nil:
		img := p.img.Clone()
		img.Premultiply()
		img.ConvertOrder(image.ARGB)
		w.Begin(tvgbin.TagRawImage)
		w.U32(uint32(img.W))
		w.U32(uint32(img.H))
		for _, px := range img.Pix {
			w.U32(px)
		}
		w.End()
	}
	if p.dw > 0 && p.dh > 0 {
		w.F32Block(tvgbin.TagPictureSize, p.dw, p.dh)
	}
	if len(p.mesh) > 0 {
		w.Begin(tvgbin.TagMesh)
		w.U32(uint32(len(p.mesh)))
		for _, t := range p.mesh {
			for _, v := range t {
				w.F32s(v.Pt.X, v.Pt.Y, v.UV.X, v.UV.Y)
			}
		}
		w.End()
	}
	return nil
}

func matrixValues(m Matrix) []float32 {
	return []float32{m.E11, m.E12, m.E13, m.E21, m.E22, m.E23, m.E31, m.E32, m.E33}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
