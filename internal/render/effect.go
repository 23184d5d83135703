package render

import "github.com/gogpu/tvg/internal/filter"

// EffectKind identifies a scene post-processing effect.
type EffectKind uint8

// Effect kinds.
const (
	EffectGaussianBlur EffectKind = iota + 1
	EffectDropShadow
	EffectFill
	EffectTint
	EffectTritone
)

// String returns the effect name.
func (k EffectKind) String() string {
	switch k {
	case EffectGaussianBlur:
		return "GaussianBlur"
	case EffectDropShadow:
		return "DropShadow"
	case EffectFill:
		return "Fill"
	case EffectTint:
		return "Tint"
	case EffectTritone:
		return "Tritone"
	default:
		return "Unknown"
	}
}

// Effect is a scene effect resolved to device pixels.
type Effect struct {
	Kind EffectKind

	// Sigma is the blur deviation of GaussianBlur and DropShadow.
	Sigma     float32
	Direction filter.Direction
	Border    filter.Border

	// DX and DY move the drop shadow.
	DX, DY float32

	// Colors holds the shadow or fill color in [0], the tint black and
	// white in [0] and [1] and the tritone shadow, midtone and highlight.
	Colors [3]filter.Color

	// Intensity is the tint strength in [0, 100].
	Intensity float32
}

// Extent returns how many pixels the effect reaches past the content on
// each side.
func (e Effect) Extent() (left, top, right, bottom int) {
	switch e.Kind {
	case EffectGaussianBlur:
		r := filter.Radius(e.Sigma)
		h, v := r, r
		switch e.Direction {
		case filter.Horizontal:
			v = 0
		case filter.Vertical:
			h = 0
		}
		return h, v, h, v
	case EffectDropShadow:
		return filter.Extent(e.DX, e.DY, e.Sigma)
	default:
		return 0, 0, 0, 0
	}
}
