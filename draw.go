package tvg

import (
	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/sw"
)

// draw composes p and its subtree onto the current surface.
func (c *Canvas) draw(p Paint) {
	b := p.base()
	if b.slot.skip || b.slot.renderer != c.r {
		return
	}
	if b.mask != nil && !fastClip(b) {
		c.drawMasked(p)
		return
	}
	c.drawContent(p, b.blend)
}

// drawMasked renders the paint and its mask target into two layers of the
// same region, combines them and composites the result.
func (c *Canvas) drawMasked(p Paint) {
	b := p.base()
	region := c.region(p)
	if region.Empty() {
		return
	}
	pl, err := c.r.BeginLayer(region)
	if err != nil {
		c.fail(p, err)
		return
	}
	c.drawContent(p, BlendNormal)
	c.r.EndLayer(pl)

	ml, err := c.r.BeginLayer(region)
	if err != nil {
		c.r.ReleaseLayer(pl)
		c.fail(p, err)
		return
	}
	c.draw(b.mask)
	c.r.EndLayer(ml)

	c.r.Mask(pl, ml, b.method)
	c.r.Composite(pl, 255, b.blend)
	c.r.ReleaseLayer(ml)
	c.r.ReleaseLayer(pl)
}

func (c *Canvas) drawContent(p Paint, method BlendMethod) {
	s := &p.base().slot
	switch v := p.(type) {
	case *Shape:
		c.r.RenderShape(s.shape, method)
	case *Picture:
		if v.child != nil {
			c.drawGroup(v, []Paint{v.child}, method)
			return
		}
		c.r.RenderImage(s.image, method)
	case *Scene:
		c.drawGroup(v, v.children, method)
	case *Text:
		if v.glyphs != nil {
			c.drawGroup(v, []Paint{v.glyphs}, method)
		}
	}
}

func (c *Canvas) drawGroup(p Paint, kids []Paint, method BlendMethod) {
	s := &p.base().slot
	if !s.layered {
		for _, ch := range kids {
			c.draw(ch)
		}
		return
	}
	var region geom.Region
	for _, ch := range kids {
		region = region.Union(c.region(ch))
	}
	if region.Empty() {
		return
	}
	region = sw.EffectRegion(region, s.effects)
	l, err := c.r.BeginLayer(region)
	if err != nil {
		c.fail(p, err)
		return
	}
	for _, ch := range kids {
		c.draw(ch)
	}
	c.r.EndLayer(l)
	c.r.ApplyEffects(l, s.effects)
	c.r.Composite(l, s.opacity, method)
	c.r.ReleaseLayer(l)
}

// region returns the device pixels p may touch, including the part of a
// merging mask target outside the paint.
func (c *Canvas) region(p Paint) geom.Region {
	b := p.base()
	s := &b.slot
	if s.skip || s.renderer != c.r {
		return geom.Region{}
	}
	var reg geom.Region
	switch v := p.(type) {
	case *Shape:
		reg = c.r.ShapeRegion(s.shape)
	case *Picture:
		if v.child != nil {
			reg = c.region(v.child)
		} else {
			reg = c.r.ImageRegion(s.image)
		}
	case *Scene:
		for _, ch := range v.children {
			reg = reg.Union(c.region(ch))
		}
		reg = sw.EffectRegion(reg, s.effects)
	case *Text:
		if v.glyphs != nil {
			reg = c.region(v.glyphs)
		}
	}
	if b.mask != nil && b.method >= MaskAdd {
		reg = reg.Union(c.region(b.mask))
	}
	return reg
}

// fail records a compositor failure; the paint is dropped from the frame.
func (c *Canvas) fail(p Paint, err error) {
	Logger().Warn("tvg: compositor layer failed", "type", p.Type(), "id", p.ID(), "err", err)
	if c.drawErr == nil {
		c.drawErr = classify("draw", err)
	}
}
