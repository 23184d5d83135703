package sw

import (
	"math"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/image"
	"github.com/gogpu/tvg/internal/render"
)

// lutSize is the number of entries in a gradient color table.
const lutSize = 1024

// gradient is a prepared color ramp: a premultiplied lookup table with the
// paint opacity folded in plus the device to gradient space mapping.
type gradient struct {
	lut    [lutSize]uint32
	kind   render.GradientKind
	spread render.Spread
	inv    geom.Matrix

	// linear
	x1, y1, dx, dy, invLen2 float32

	// radial
	cx, cy, invR float32

	degenerate bool
}

// newGradient prepares g for drawing under the paint transform m. It
// returns nil when g has no stops or cannot be mapped back from device
// space.
func newGradient(g *render.Gradient, m geom.Matrix, opacity uint8, order image.Order) *gradient {
	if g == nil || len(g.Stops) == 0 {
		return nil
	}
	inv, ok := m.Mul(g.Transform).Invert()
	if !ok {
		return nil
	}
	gr := &gradient{kind: g.Kind, spread: g.Spread, inv: inv}
	switch g.Kind {
	case render.Radial:
		gr.cx, gr.cy = g.CX, g.CY
		if g.R > geom.Epsilon {
			gr.invR = 1 / g.R
		} else {
			gr.degenerate = true
		}
	default:
		gr.x1, gr.y1 = g.X1, g.Y1
		gr.dx, gr.dy = g.X2-g.X1, g.Y2-g.Y1
		l2 := gr.dx*gr.dx + gr.dy*gr.dy
		if l2 > geom.Epsilon {
			gr.invLen2 = 1 / l2
		} else {
			gr.degenerate = true
		}
	}
	buildLUT(&gr.lut, g.Stops, opacity, order)
	return gr
}

// buildLUT interpolates stops in straight RGBA and stores premultiplied
// colors. Offsets outside the stop range take the nearest stop.
func buildLUT(lut *[lutSize]uint32, stops []render.Stop, opacity uint8, order image.Order) {
	pack := func(r, g, b, a float32) uint32 {
		c := render.Color{R: round8(r), G: round8(g), B: round8(b), A: round8(a)}
		return c.Pack(opacity, order)
	}
	first, last := stops[0], stops[len(stops)-1]
	j := 0
	for i := range lutSize {
		t := float32(i) / (lutSize - 1)
		switch {
		case t <= first.Offset:
			lut[i] = first.Color.Pack(opacity, order)
			continue
		case t >= last.Offset:
			lut[i] = last.Color.Pack(opacity, order)
			continue
		}
		for j < len(stops)-2 && t > stops[j+1].Offset {
			j++
		}
		s0, s1 := stops[j], stops[j+1]
		span := s1.Offset - s0.Offset
		f := float32(0)
		if span > geom.Epsilon {
			f = (t - s0.Offset) / span
		}
		lerp := func(a, b uint8) float32 { return float32(a) + (float32(b)-float32(a))*f }
		lut[i] = pack(lerp(s0.Color.R, s1.Color.R), lerp(s0.Color.G, s1.Color.G),
			lerp(s0.Color.B, s1.Color.B), lerp(s0.Color.A, s1.Color.A))
	}
}

func round8(v float32) uint8 {
	return uint8(geom.Clamp(v+0.5, 0, 255))
}

// at returns the table entry for ramp position t after spreading.
func (g *gradient) at(t float32) uint32 {
	switch g.spread {
	case render.Repeat:
		t -= float32(math.Floor(float64(t)))
	case render.Reflect:
		t = float32(math.Mod(float64(t), 2))
		if t < 0 {
			t += 2
		}
		if t > 1 {
			t = 2 - t
		}
	}
	if !(t > 0) {
		return g.lut[0]
	}
	if t >= 1 {
		return g.lut[lutSize-1]
	}
	return g.lut[int(t*(lutSize-1)+0.5)]
}

// fetch fills dst with the ramp colors of device row y starting at x,
// sampling pixel centers.
func (g *gradient) fetch(dst []uint32, x, y int) {
	if g.degenerate {
		c := g.lut[lutSize-1]
		for i := range dst {
			dst[i] = c
		}
		return
	}
	p := g.inv.Apply(geom.Pt(float32(x)+0.5, float32(y)+0.5))
	step := geom.Pt(g.inv.E11, g.inv.E21)
	switch g.kind {
	case render.Radial:
		for i := range dst {
			dx, dy := p.X-g.cx, p.Y-g.cy
			t := float32(math.Sqrt(float64(dx*dx+dy*dy))) * g.invR
			dst[i] = g.at(t)
			p = p.Add(step)
		}
	default:
		for i := range dst {
			t := ((p.X-g.x1)*g.dx + (p.Y-g.y1)*g.dy) * g.invLen2
			dst[i] = g.at(t)
			p = p.Add(step)
		}
	}
}
