package tvg

import (
	"slices"

	"github.com/gogpu/tvg/internal/geom"
	"github.com/gogpu/tvg/internal/raster"
	"github.com/gogpu/tvg/internal/render"
	"github.com/gogpu/tvg/internal/sw"
)

// frame is what a paint inherits from its ancestors during an update.
type frame struct {
	m       geom.Matrix
	opacity uint8
	clips   []*sw.ShapeData
	flags   render.UpdateFlag
	active  bool
}

// updater walks the paint tree and posts prepare work.
type updater struct {
	c *Canvas

	// want limits the walk to these paints and their subtrees. Nil
	// updates everything.
	want map[Paint]bool

	prepared int
}

func (u *updater) root() frame {
	return frame{m: geom.Identity(), opacity: 255, active: u.want == nil}
}

// fastClip reports whether b's mask is a shape clip handled by span
// intersection instead of a compositor layer.
func fastClip(b *paint) bool {
	if b.mask == nil || b.method != MaskClip {
		return false
	}
	_, ok := b.mask.(*Shape)
	return ok
}

func (u *updater) bind(b *paint) {
	if b.slot.renderer != u.c.r {
		b.releaseSlot()
		b.slot.renderer = u.c.r
	}
}

// pollFills picks up gradients edited after they were set.
func pollFills(p Paint) {
	switch v := p.(type) {
	case *Shape:
		v.pollFills()
	case *Text:
		v.pollFill()
	}
}

func (u *updater) update(p Paint, f frame) {
	pollFills(p)
	b := p.base()
	u.bind(b)
	s := &b.slot

	active := f.active || u.want[p]
	flags := b.dirty | f.flags
	m := f.m.Mul(b.m)
	opacity := raster.Multiply(f.opacity, b.opacity)

	if !active {
		if s.skip {
			return
		}
		clips := f.clips
		if fastClip(b) {
			if cd := b.mask.base().slot.shape; cd != nil {
				clips = append(slices.Clip(clips), cd)
			}
		}
		u.descend(p, frame{m: m, opacity: opacity, clips: clips, flags: flags})
		return
	}

	if opacity == 0 {
		// Nothing below is prepared; the flags wait for the paint to
		// become visible again.
		s.skip = true
		b.dirty = flags
		return
	}
	s.skip = false
	b.dirty = 0
	if opacity != s.opacity {
		flags |= render.UpdateColor
	}
	s.opacity = opacity

	clips := f.clips
	if b.mask != nil {
		if treeDirty(b.mask) {
			flags |= render.UpdateClip
		}
		parent := frame{m: f.m, opacity: 255, clips: f.clips, flags: flags, active: true}
		if fastClip(b) {
			cd := u.prepareClip(b.mask.(*Shape), parent)
			clips = append(slices.Clip(clips), cd)
		} else {
			u.update(b.mask, parent)
		}
	}
	u.descend(p, frame{m: m, opacity: opacity, clips: clips, flags: flags, active: true})
}

// descend prepares p itself once its own frame is known.
func (u *updater) descend(p Paint, f frame) {
	switch v := p.(type) {
	case *Shape:
		if f.active {
			u.prepareShape(v, f, false)
		}
	case *Picture:
		if v.child != nil {
			f.m = f.m.Mul(v.scaling())
			u.group(v, []Paint{v.child}, 1, f)
			return
		}
		if f.active {
			u.prepareImage(v, f)
		}
	case *Scene:
		u.group(v, v.children, len(v.children), f)
	case *Text:
		g, err := v.expand()
		if err != nil {
			Logger().Warn("tvg: text layout failed", "family", v.family, "err", err)
			u.c.failed = append(u.c.failed, &PrepareError{ID: v.id, Type: TypeText, Err: err})
			v.slot.skip = true
			return
		}
		u.group(v, []Paint{g}, len(g.children), f)
	}
}

// group updates the children of a container. A container that blends or
// fades several children is drawn through a layer, so the children are
// prepared opaque and the layer carries the opacity.
func (u *updater) group(p Paint, kids []Paint, n int, f frame) {
	b := p.base()
	if f.active {
		b.slot.layered = b.blend != BlendNormal || (f.opacity < 255 && n > 1)
		b.slot.effects = nil
		if sc, ok := p.(*Scene); ok && len(sc.effects) > 0 {
			b.slot.effects = sc.deviceEffects(f.m)
			b.slot.layered = true
		}
	}
	if b.slot.layered {
		f.opacity = 255
	}
	f.flags &^= render.UpdateEffect
	for _, ch := range kids {
		u.update(ch, f)
	}
}

func (u *updater) prepareShape(sh *Shape, f frame, clipper bool) *sw.ShapeData {
	s := &sh.slot
	if f.flags != 0 || s.shape == nil || s.clip != clipper {
		s.shape = u.c.r.PrepareShape(s.shape, sh.renderShape(f.flags), f.m, f.opacity, f.clips, f.flags, clipper)
		s.clip = clipper
		u.prepared++
	}
	u.c.owners[s.shape] = sh
	return s.shape
}

func (u *updater) prepareImage(pic *Picture, f frame) {
	s := &pic.slot
	if pic.img == nil {
		s.skip = true
		return
	}
	mesh := pic.renderMesh()
	m := f.m
	if len(mesh) == 0 {
		m = m.Mul(pic.scaling())
	}
	if f.flags != 0 || s.image == nil {
		s.image = u.c.r.PrepareImage(s.image, pic.img, mesh, m, f.opacity, f.clips, f.flags)
		u.prepared++
	}
	u.c.owners[s.image] = pic
}

// prepareClip prepares a shape used only as a clip. Its fill and stroke
// outline become coverage regardless of color and opacity.
func (u *updater) prepareClip(sh *Shape, f frame) *sw.ShapeData {
	b := &sh.paint
	u.bind(b)
	flags := b.dirty | f.flags
	b.dirty = 0
	b.slot.skip = false

	clips := f.clips
	if fastClip(b) {
		if treeDirty(b.mask) {
			flags |= render.UpdateClip
		}
		nested := frame{m: f.m, opacity: 255, clips: f.clips, flags: flags, active: true}
		clips = append(slices.Clip(clips), u.prepareClip(b.mask.(*Shape), nested))
	}
	return u.prepareShape(sh, frame{m: f.m.Mul(b.m), opacity: 255, clips: clips, flags: flags, active: true}, true)
}
