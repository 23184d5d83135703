package sw

import (
	"github.com/gogpu/tvg/internal/filter"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
)

// EffectRegion grows a scene's content region by the reach of its
// effects.
func EffectRegion(reg geom.Region, effects []render.Effect) geom.Region {
	if reg.Empty() {
		return reg
	}
	var l, t, r, b int
	for _, e := range effects {
		el, et, er, eb := e.Extent()
		l, t, r, b = l+el, t+et, r+er, b+eb
	}
	return geom.Region{X: reg.X - l, Y: reg.Y - t, W: reg.W + l + r, H: reg.H + t + b}
}

// ApplyEffects runs the effects in order over the pixels of l. The layer
// must have ended.
func (r *Renderer) ApplyEffects(l *Layer, effects []render.Effect) {
	if l == nil || l.buf == nil || len(effects) == 0 {
		return
	}
	s := filter.Surface{
		Pix:    l.buf,
		W:      l.region.W,
		H:      l.region.H,
		Stride: l.stride,
		Order:  l.order,
	}
	for _, e := range effects {
		switch e.Kind {
		case render.EffectGaussianBlur:
			filter.Blur(s, e.Sigma, e.Direction, e.Border)
		case render.EffectDropShadow:
			filter.DropShadow(s, e.Colors[0], e.DX, e.DY, e.Sigma)
		case render.EffectFill:
			m := filter.FillMatrix(e.Colors[0])
			m.Apply(s)
		case render.EffectTint:
			m := filter.TintMatrix(e.Colors[0], e.Colors[1], e.Intensity)
			m.Apply(s)
		case render.EffectTritone:
			filter.Tritone(s, e.Colors[0], e.Colors[1], e.Colors[2])
		default:
			slogger().Warn("sw: unknown effect", "kind", e.Kind)
		}
	}
}
