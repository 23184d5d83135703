package tvg

import (
	"fmt"

	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/tvgbin"
)

// maxDepth bounds paint nesting in decoded data.
const maxDepth = 256

// Decode parses TVG data into a new scene holding every top-level paint.
// Unknown blocks are skipped.
func Decode(data []byte) (*Scene, error) {
	body, err := tvgbin.ReadHeader(data)
	if err != nil {
		return nil, classify("decode tvg", err)
	}
	root := NewScene()
	r := tvgbin.NewReader(body)
	for b, ok := r.Next(); ok; b, ok = r.Next() {
		if !b.Tag.IsPaint() {
			continue
		}
		p, err := decodePaint(b, 0)
		if err != nil {
			return nil, err
		}
		if err := root.Push(p); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, classify("decode tvg", err)
	}
	return root, nil
}

func decodePaint(b tvgbin.Block, depth int) (Paint, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: paints nested deeper than %d", ErrInvalidArguments, maxDepth)
	}
	var p Paint
	switch b.Tag {
	case tvgbin.TagShape:
		p = NewShape()
	case tvgbin.TagScene:
		p = NewScene()
	case tvgbin.TagPicture:
		p = NewPicture()
	default:
		return nil, fmt.Errorf("%w: %v is not a paint", ErrInvalidArguments, b.Tag)
	}
	r := tvgbin.NewReader(b.Data)
	for blk, ok := r.Next(); ok; blk, ok = r.Next() {
		if err := decodeBlock(p, blk, depth); err != nil {
			return nil, err
		}
	}
	if err := r.Err(); err != nil {
		return nil, classify("decode "+b.Tag.String(), err)
	}
	return p, nil
}

// done finishes a block decoder; short or overlong payloads are malformed.
func done(b tvgbin.Block, d *tvgbin.Decoder) error {
	if err := d.Done(); err != nil {
		return classify("decode "+b.Tag.String(), err)
	}
	return nil
}

func decodeBlock(p Paint, b tvgbin.Block, depth int) error {
	d := tvgbin.NewDecoder(b.Data)
	switch b.Tag {
	case tvgbin.TagOpacity:
		o := d.U8()
		if err := done(b, d); err != nil {
			return err
		}
		p.SetOpacity(o)
		return nil
	case tvgbin.TagTransform:
		v := d.F32s(9)
		if err := done(b, d); err != nil {
			return err
		}
		return p.SetTransform(matrixOf(v))
	case tvgbin.TagBlend:
		m := d.U8()
		if err := done(b, d); err != nil {
			return err
		}
		return p.SetBlend(BlendMethod(m))
	case tvgbin.TagComposite:
		return decodeComposite(p, b, depth)
	}

	switch v := p.(type) {
	case *Shape:
		return decodeShape(v, b)
	case *Scene:
		if b.Tag == tvgbin.TagEffect {
			e, err := decodeEffect(b)
			if err != nil {
				return err
			}
			return v.PushEffect(e)
		}
		if b.Tag.IsPaint() {
			ch, err := decodePaint(b, depth+1)
			if err != nil {
				return err
			}
			return v.Push(ch)
		}
	case *Picture:
		return decodePicture(v, b, depth)
	}
	return nil
}

func decodeEffect(b tvgbin.Block) (Effect, error) {
	d := tvgbin.NewDecoder(b.Data)
	var e Effect
	switch kind := render.EffectKind(d.U8()); kind {
	case render.EffectGaussianBlur:
		e = GaussianBlur{Sigma: d.F32(), Direction: BlurDirection(d.U8()), Border: BlurBorder(d.U8()), Quality: d.U8()}
	case render.EffectDropShadow:
		var s DropShadow
		s.R, s.G, s.B, s.A = d.RGBA()
		s.Angle, s.Distance, s.Sigma = d.F32(), d.F32(), d.F32()
		s.Quality = d.U8()
		e = s
	case render.EffectFill:
		var f FillEffect
		f.R, f.G, f.B, f.A = d.RGBA()
		e = f
	case render.EffectTint:
		e = Tint{Black: readRGB(d), White: readRGB(d), Intensity: d.F32()}
	case render.EffectTritone:
		e = Tritone{Shadow: readRGB(d), Midtone: readRGB(d), Highlight: readRGB(d)}
	default:
		return nil, fmt.Errorf("%w: effect kind %d", ErrNonSupport, kind)
	}
	if err := done(b, d); err != nil {
		return nil, err
	}
	return e, nil
}

func readRGB(d *tvgbin.Decoder) RGB {
	return RGB{R: d.U8(), G: d.U8(), B: d.U8()}
}

func decodeComposite(p Paint, b tvgbin.Block, depth int) error {
	method := MaskNone
	var target Paint
	r := tvgbin.NewReader(b.Data)
	for blk, ok := r.Next(); ok; blk, ok = r.Next() {
		switch {
		case blk.Tag == tvgbin.TagMaskMethod:
			d := tvgbin.NewDecoder(blk.Data)
			method = MaskMethod(d.U8())
			if err := done(blk, d); err != nil {
				return err
			}
		case blk.Tag.IsPaint():
			if target != nil {
				return fmt.Errorf("%w: composite with two targets", ErrInvalidArguments)
			}
			t, err := decodePaint(blk, depth+1)
			if err != nil {
				return err
			}
			target = t
		}
	}
	if err := r.Err(); err != nil {
		return classify("decode composite", err)
	}
	if target == nil || method == MaskNone {
		return fmt.Errorf("%w: composite without a target or method", ErrInvalidArguments)
	}
	return p.Mask(target, method)
}

func decodeShape(s *Shape, b tvgbin.Block) error {
	d := tvgbin.NewDecoder(b.Data)
	switch b.Tag {
	case tvgbin.TagPath:
		nc, np := d.U32(), d.U32()
		if uint64(nc)+uint64(np)*8 != uint64(d.Len()) {
			return fmt.Errorf("%w: path of %d commands and %d points in %d bytes", ErrInvalidArguments, nc, np, d.Len())
		}
		raw := d.Bytes(int(nc))
		vals := d.F32s(int(np) * 2)
		if err := done(b, d); err != nil {
			return err
		}
		cmds := make([]PathCommand, nc)
		for i, c := range raw {
			cmds[i] = PathCommand(c)
		}
		pts := make([]Point, np)
		for i := range pts {
			pts[i] = Point{X: vals[2*i], Y: vals[2*i+1]}
		}
		return s.AppendPath(cmds, pts)
	case tvgbin.TagColor:
		r, g, bl, a := d.RGBA()
		if err := done(b, d); err != nil {
			return err
		}
		s.SetFillColor(r, g, bl, a)
	case tvgbin.TagFillRule:
		v := d.U8()
		if err := done(b, d); err != nil {
			return err
		}
		rule := NonZero
		if v == tvgbin.FillRuleEvenOdd {
			rule = EvenOdd
		}
		return s.SetFillRule(rule)
	case tvgbin.TagFill:
		f, err := decodeFill(b)
		if err != nil {
			return err
		}
		s.SetFill(f)
	case tvgbin.TagTrimPath:
		return decodeTrim(s, b)
	case tvgbin.TagStroke:
		return decodeStroke(s, b)
	}
	return nil
}

func decodeTrim(s *Shape, b tvgbin.Block) error {
	d := tvgbin.NewDecoder(b.Data)
	v := d.F32s(2)
	sim := d.U8()
	if err := done(b, d); err != nil {
		return err
	}
	return s.SetTrimPath(v[0], v[1], sim != 0)
}

func decodeStroke(s *Shape, b tvgbin.Block) error {
	r := tvgbin.NewReader(b.Data)
	for blk, ok := r.Next(); ok; blk, ok = r.Next() {
		d := tvgbin.NewDecoder(blk.Data)
		var err error
		switch blk.Tag {
		case tvgbin.TagStrokeCap:
			v := d.U8()
			if err = done(blk, d); err == nil {
				err = s.SetStrokeCap(StrokeCap(v))
			}
		case tvgbin.TagStrokeJoin:
			v := d.U8()
			if err = done(blk, d); err == nil {
				err = s.SetStrokeJoin(StrokeJoin(v))
			}
		case tvgbin.TagStrokeWidth:
			v := d.F32()
			if err = done(blk, d); err == nil {
				err = s.SetStrokeWidth(v)
			}
		case tvgbin.TagStrokeColor:
			cr, cg, cb, ca := d.RGBA()
			if err = done(blk, d); err == nil {
				s.SetStrokeColor(cr, cg, cb, ca)
			}
		case tvgbin.TagStrokeFill:
			var f Fill
			if f, err = decodeFill(blk); err == nil {
				s.SetStrokeFill(f)
			}
		case tvgbin.TagStrokeDash:
			n := d.U32()
			if uint64(n)*4 > uint64(d.Len()) {
				return fmt.Errorf("%w: dash of %d lengths in %d bytes", ErrInvalidArguments, n, d.Len())
			}
			pattern := d.F32s(int(n))
			var offset float32
			if d.Len() >= 4 {
				offset = d.F32()
			}
			if err = done(blk, d); err == nil {
				err = s.SetStrokeDash(pattern, offset)
			}
		case tvgbin.TagStrokeOrder:
			v := d.U8()
			if err = done(blk, d); err == nil {
				s.SetOrder(v == 1)
			}
		case tvgbin.TagStrokeMiter:
			v := d.F32()
			if err = done(blk, d); err == nil {
				err = s.SetStrokeMiterlimit(v)
			}
		case tvgbin.TagTrimPath:
			err = decodeTrim(s, blk)
		}
		if err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return classify("decode stroke", err)
	}
	return nil
}

func decodeFill(b tvgbin.Block) (Fill, error) {
	var (
		f      Fill
		stops  []ColorStop
		spread = SpreadPad
		m      = Identity()
	)
	r := tvgbin.NewReader(b.Data)
	for blk, ok := r.Next(); ok; blk, ok = r.Next() {
		d := tvgbin.NewDecoder(blk.Data)
		switch blk.Tag {
		case tvgbin.TagLinear:
			v := d.F32s(4)
			if err := done(blk, d); err != nil {
				return nil, err
			}
			g := NewLinearGradient()
			if err := g.SetLinear(v[0], v[1], v[2], v[3]); err != nil {
				return nil, err
			}
			f = g
		case tvgbin.TagRadial:
			v := d.F32s(3)
			if err := done(blk, d); err != nil {
				return nil, err
			}
			g := NewRadialGradient()
			if err := g.SetRadial(v[0], v[1], v[2]); err != nil {
				return nil, err
			}
			f = g
		case tvgbin.TagStops:
			if len(blk.Data)%8 != 0 {
				return nil, fmt.Errorf("%w: stops block of %d bytes", ErrInvalidArguments, len(blk.Data))
			}
			stops = make([]ColorStop, len(blk.Data)/8)
			for i := range stops {
				off := d.F32()
				cr, cg, cb, ca := d.RGBA()
				stops[i] = ColorStop{Offset: off, R: cr, G: cg, B: cb, A: ca}
			}
			if err := done(blk, d); err != nil {
				return nil, err
			}
		case tvgbin.TagSpread:
			v := d.U8()
			if err := done(blk, d); err != nil {
				return nil, err
			}
			spread = Spread(v)
		case tvgbin.TagFillTransform:
			v := d.F32s(9)
			if err := done(blk, d); err != nil {
				return nil, err
			}
			m = matrixOf(v)
		}
	}
	if err := r.Err(); err != nil {
		return nil, classify("decode fill", err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: gradient without geometry", ErrInvalidArguments)
	}
	if err := f.SetColorStops(stops); err != nil {
		return nil, err
	}
	if err := f.SetSpread(spread); err != nil {
		return nil, err
	}
	f.SetTransform(m)
	return f, nil
}

func decodePicture(p *Picture, b tvgbin.Block, depth int) error {
	if b.Tag.IsPaint() {
		ch, err := decodePaint(b, depth+1)
		if err != nil {
			return err
		}
		s, ok := ch.(*Scene)
		if !ok {
			s = NewScene()
			if err := s.Push(ch); err != nil {
				return err
			}
		}
		p.setChild(s)
		return nil
	}
	d := tvgbin.NewDecoder(b.Data)
	switch b.Tag {
	case tvgbin.TagRawImage:
		w, h := d.U32(), d.U32()
		if w == 0 || h == 0 || d.Len()%4 != 0 || uint64(w)*uint64(h) != uint64(d.Len()/4) {
			return fmt.Errorf("%w: %dx%d image in %d bytes", ErrInvalidArguments, w, h, d.Len())
		}
		pix := make([]uint32, int(w)*int(h))
		for i := range pix {
			pix[i] = d.U32()
		}
		if err := done(b, d); err != nil {
			return err
		}
		return p.LoadPixels(pix, int(w), int(h), ARGB8888, false)
	case tvgbin.TagPictureSize:
		v := d.F32s(2)
		if err := done(b, d); err != nil {
			return err
		}
		return p.SetSize(v[0], v[1])
	case tvgbin.TagMesh:
		n := d.U32()
		if uint64(n)*48 != uint64(d.Len()) {
			return fmt.Errorf("%w: mesh of %d triangles in %d bytes", ErrInvalidArguments, n, d.Len())
		}
		vals := d.F32s(int(n) * 12)
		if err := done(b, d); err != nil {
			return err
		}
		tris := make([]Triangle, n)
		for i := range tris {
			for j := range 3 {
				v := vals[i*12+j*4:]
				tris[i][j] = Vertex{Pt: Point{X: v[0], Y: v[1]}, UV: Point{X: v[2], Y: v[3]}}
			}
		}
		return p.SetMesh(tris)
	}
	return nil
}

func matrixOf(v []float32) Matrix {
	return Matrix{
		E11: v[0], E12: v[1], E13: v[2],
		E21: v[3], E22: v[4], E23: v[5],
		E31: v[6], E32: v[7], E33: v[8],
	}
}
