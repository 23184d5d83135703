package tvg

import (
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/tvg/internal/filter"
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/render"
)

// BlurDirection selects the axes a GaussianBlur runs along.
type BlurDirection = filter.Direction

// Blur directions.
const (
	BlurBoth       = filter.Both
	BlurHorizontal = filter.Horizontal
	BlurVertical   = filter.Vertical
)

// BlurBorder selects how a GaussianBlur samples past the layer edge.
type BlurBorder = filter.Border

// Blur borders.
const (
	BorderDuplicate = filter.Duplicate
	BorderWrap      = filter.Wrap
)

// Effect is a post-processing step applied to a scene's composited
// content. Effects run in the order they were pushed.
type Effect interface {
	kind() render.EffectKind
	check() error
	// device resolves the effect for a scene drawn with matrix m.
	device(m geom.Matrix) render.Effect
}

// RGB is an opaque color.
type RGB struct{ R, G, B uint8 }

func (c RGB) color() filter.Color { return filter.Color{R: c.R, G: c.G, B: c.B, A: 255} }

// GaussianBlur blurs the scene. Sigma is the standard deviation in the
// scene's coordinate space.
type GaussianBlur struct {
	Sigma     float32
	Direction BlurDirection
	Border    BlurBorder
	// Quality is 0..100. The software renderer always uses the full
	// kernel.
	Quality uint8
}

func (GaussianBlur) kind() render.EffectKind { return render.EffectGaussianBlur }

func (e GaussianBlur) check() error {
	if !geom.Finite(e.Sigma) || e.Sigma < 0 {
		return fmt.Errorf("%w: blur sigma %v", ErrInvalidArguments, e.Sigma)
	}
	if e.Direction > BlurVertical || e.Border > BorderWrap {
		return fmt.Errorf("%w: blur direction %v border %v", ErrInvalidArguments, e.Direction, e.Border)
	}
	return checkQuality(e.Quality)
}

func (e GaussianBlur) device(m geom.Matrix) render.Effect {
	return render.Effect{
		Kind:      render.EffectGaussianBlur,
		Sigma:     e.Sigma * m.ScaleX(),
		Direction: e.Direction,
		Border:    e.Border,
	}
}

// DropShadow draws a blurred, offset silhouette of the scene beneath it.
// Angle is in degrees clockwise from straight up. Distance and Sigma are
// in the scene's coordinate space.
type DropShadow struct {
	R, G, B, A uint8
	Angle      float32
	Distance   float32
	Sigma      float32
	Quality    uint8
}

func (DropShadow) kind() render.EffectKind { return render.EffectDropShadow }

func (e DropShadow) check() error {
	if !geom.Finite(e.Angle) || !geom.Finite(e.Distance) || !geom.Finite(e.Sigma) || e.Sigma < 0 {
		return fmt.Errorf("%w: drop shadow angle %v distance %v sigma %v", ErrInvalidArguments, e.Angle, e.Distance, e.Sigma)
	}
	return checkQuality(e.Quality)
}

func (e DropShadow) device(m geom.Matrix) render.Effect {
	scale := m.ScaleX()
	rad := geom.Deg2Rad(90 - e.Angle)
	d := float64(e.Distance * scale)
	return render.Effect{
		Kind:   render.EffectDropShadow,
		Sigma:  e.Sigma * scale,
		DX:     float32(d * math.Cos(rad)),
		DY:     float32(-d * math.Sin(rad)),
		Colors: [3]filter.Color{{R: e.R, G: e.G, B: e.B, A: e.A}},
	}
}

// FillEffect replaces the color of every covered pixel. Coverage is
// multiplied by A.
type FillEffect struct {
	R, G, B, A uint8
}

func (FillEffect) kind() render.EffectKind { return render.EffectFill }

func (FillEffect) check() error { return nil }

func (e FillEffect) device(geom.Matrix) render.Effect {
	return render.Effect{
		Kind:   render.EffectFill,
		Colors: [3]filter.Color{{R: e.R, G: e.G, B: e.B, A: e.A}},
	}
}

// Tint maps luminance onto the Black..White ramp. Intensity runs from 0
// (unchanged) to 100 (fully tinted).
type Tint struct {
	Black, White RGB
	Intensity    float32
}

func (Tint) kind() render.EffectKind { return render.EffectTint }

func (e Tint) check() error {
	if !geom.Finite(e.Intensity) || e.Intensity < 0 || e.Intensity > 100 {
		return fmt.Errorf("%w: tint intensity %v", ErrInvalidArguments, e.Intensity)
	}
	return nil
}

func (e Tint) device(geom.Matrix) render.Effect {
	return render.Effect{
		Kind:      render.EffectTint,
		Colors:    [3]filter.Color{e.Black.color(), e.White.color()},
		Intensity: e.Intensity,
	}
}

// Tritone maps luminance onto the Shadow, Midtone and Highlight ramp.
type Tritone struct {
	Shadow, Midtone, Highlight RGB
}

func (Tritone) kind() render.EffectKind { return render.EffectTritone }

func (Tritone) check() error { return nil }

func (e Tritone) device(geom.Matrix) render.Effect {
	return render.Effect{
		Kind:   render.EffectTritone,
		Colors: [3]filter.Color{e.Shadow.color(), e.Midtone.color(), e.Highlight.color()},
	}
}

func checkQuality(q uint8) error {
	if q > 100 {
		return fmt.Errorf("%w: effect quality %d", ErrInvalidArguments, q)
	}
	return nil
}

// PushEffect appends e to the scene's effects.
func (s *Scene) PushEffect(e Effect) error {
	if e == nil {
		return fmt.Errorf("%w: nil effect", ErrInvalidArguments)
	}
	if err := e.check(); err != nil {
		return err
	}
	s.effects = append(s.effects, e)
	s.dirty |= render.UpdateEffect
	return nil
}

// ClearEffects removes every effect.
func (s *Scene) ClearEffects() {
	if len(s.effects) == 0 {
		return
	}
	s.effects = nil
	s.dirty |= render.UpdateEffect
}

// Effects returns the scene's effects in application order.
func (s *Scene) Effects() []Effect {
	return slices.Clone(s.effects)
}

func (s *Scene) deviceEffects(m geom.Matrix) []render.Effect {
	out := make([]render.Effect, len(s.effects))
	for i, e := range s.effects {
		out[i] = e.device(m)
	}
	return out
}
